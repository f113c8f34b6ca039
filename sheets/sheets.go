// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/penny-vault/pv-crypto/observability/opentelemetry"
)

const (
	DefaultBaseURL = "https://sheets.googleapis.com"
	DefaultRange   = "Sheet1"
	ScopeReadWrite = "https://www.googleapis.com/auth/spreadsheets"
)

var (
	ErrNoSpreadsheet  = errors.New("spreadsheet id not configured")
	ErrRequestFailed  = errors.New("sheets request failed")
	ErrReadCredential = errors.New("could not read service account credentials")
)

// Config identifies the spreadsheet range holding the ledger
type Config struct {
	SpreadsheetID   string
	Range           string
	BaseURL         string
	CredentialsFile string
	Scopes          []string
}

// Client reads and appends rows of a Google Sheets range through the v4 REST API
type Client struct {
	conf       Config
	httpClient *http.Client
}

type valueRange struct {
	Range          string          `json:"range,omitempty"`
	MajorDimension string          `json:"majorDimension,omitempty"`
	Values         [][]interface{} `json:"values"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (conf *Config) defaults() error {
	if conf.SpreadsheetID == "" {
		return ErrNoSpreadsheet
	}
	if conf.Range == "" {
		conf.Range = DefaultRange
	}
	if conf.BaseURL == "" {
		conf.BaseURL = DefaultBaseURL
	}
	if len(conf.Scopes) == 0 {
		conf.Scopes = []string{ScopeReadWrite}
	}
	return nil
}

// New creates a client authenticated with the service account key in conf.CredentialsFile,
// or with application default credentials when no file is configured
func New(ctx context.Context, conf Config) (*Client, error) {
	if err := conf.defaults(); err != nil {
		return nil, err
	}

	if conf.CredentialsFile == "" {
		httpClient, err := google.DefaultClient(ctx, conf.Scopes...)
		if err != nil {
			log.Error().Err(err).Msg("could not load default google credentials")
			return nil, err
		}
		return NewWithHTTPClient(conf, httpClient)
	}

	key, err := os.ReadFile(conf.CredentialsFile)
	if err != nil {
		log.Error().Err(err).Str("CredentialsFile", conf.CredentialsFile).Msg("could not read credentials file")
		return nil, fmt.Errorf("%w: %w", ErrReadCredential, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, key, conf.Scopes...)
	if err != nil {
		log.Error().Err(err).Str("CredentialsFile", conf.CredentialsFile).Msg("could not parse credentials file")
		return nil, fmt.Errorf("%w: %w", ErrReadCredential, err)
	}

	return NewWithHTTPClient(conf, oauth2.NewClient(ctx, creds.TokenSource))
}

// NewWithHTTPClient creates a client that sends requests with httpClient as is
func NewWithHTTPClient(conf Config, httpClient *http.Client) (*Client, error) {
	if err := conf.defaults(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		conf:       conf,
		httpClient: httpClient,
	}, nil
}

func (client *Client) valuesURL(suffix string) string {
	return fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s%s", client.conf.BaseURL,
		url.PathEscape(client.conf.SpreadsheetID), url.PathEscape(client.conf.Range), suffix)
}

// ReadRange returns every row of the configured range with each cell as a string
func (client *Client) ReadRange(ctx context.Context) ([][]string, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "sheets.ReadRange")
	defer span.End()

	subLog := log.With().Str("SpreadsheetID", client.conf.SpreadsheetID).Str("Range", client.conf.Range).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.valuesURL(""), nil)
	if err != nil {
		return nil, err
	}

	var vr valueRange
	if err := client.do(req, &vr); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "values.get failed")
		subLog.Error().Err(err).Msg("could not read spreadsheet values")
		return nil, err
	}

	rows := make([][]string, len(vr.Values))
	for idx, row := range vr.Values {
		rows[idx] = make([]string, len(row))
		for jdx, val := range row {
			if val != nil {
				rows[idx][jdx] = fmt.Sprint(val)
			}
		}
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	subLog.Debug().Int("Rows", len(rows)).Msg("read spreadsheet values")
	return rows, nil
}

// AppendRow inserts row after the last row of the range. Values are interpreted as if typed
// by a user so dates and numbers keep their spreadsheet types.
func (client *Client) AppendRow(ctx context.Context, row []string) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "sheets.AppendRow")
	defer span.End()

	subLog := log.With().Str("SpreadsheetID", client.conf.SpreadsheetID).Str("Range", client.conf.Range).Strs("Row", row).Logger()

	cells := make([]interface{}, len(row))
	for idx, val := range row {
		cells[idx] = val
	}

	body, err := json.Marshal(valueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{cells},
	})
	if err != nil {
		return err
	}

	target := client.valuesURL(":append") + "?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := client.do(req, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "values.append failed")
		subLog.Error().Err(err).Msg("could not append spreadsheet row")
		return err
	}

	subLog.Debug().Msg("appended spreadsheet row")
	return nil
}

func (client *Client) do(req *http.Request, out interface{}) error {
	resp, err := client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: %d %s: %s", ErrRequestFailed, resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: %d", ErrRequestFailed, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
