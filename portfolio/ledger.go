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

package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/penny-vault/pv-crypto/observability/opentelemetry"
)

const DefaultTimeout = 30 * time.Second

// Store is a table of string cells supporting read-all-rows and append-row
type Store interface {
	// ReadRange returns every row of the table, the first row is the header
	ReadRange(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
}

// Ledger converts between store rows and transactions
type Ledger struct {
	store   Store
	timeout time.Duration
}

// NewLedger creates a ledger over store. Every store call is bounded by timeout; a
// non-positive timeout selects DefaultTimeout.
func NewLedger(store Store, timeout time.Duration) *Ledger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Ledger{
		store:   store,
		timeout: timeout,
	}
}

// FetchAll reads every transaction in the store. Rows that cannot be converted are excluded
// and reported in a *LoadError which is returned together with the valid transactions.
func (ledger *Ledger) FetchAll(ctx context.Context) ([]*Transaction, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Ledger.FetchAll")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, ledger.timeout)
	defer cancel()

	rows, err := ledger.store.ReadRange(callCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read range failed")
		log.Error().Err(err).Dur("Timeout", ledger.timeout).Msg("could not read transactions from store")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))

	if len(rows) == 0 {
		return []*Transaction{}, nil
	}

	cols, err := headerColumns(rows[0])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad header")
		log.Error().Err(err).Strs("Header", rows[0]).Msg("ledger header is incomplete")
		return nil, err
	}

	trxs := make([]*Transaction, 0, len(rows)-1)
	var malformed []*MalformedRowError
	for idx, row := range rows[1:] {
		if blank(row) {
			continue
		}
		trx, rowErr := toTransaction(row, cols, idx+2)
		if rowErr != nil {
			log.Warn().Int("Row", rowErr.Row).Str("Column", rowErr.Column).Str("Value", rowErr.Value).Msg("excluding malformed ledger row")
			malformed = append(malformed, rowErr)
			continue
		}
		trxs = append(trxs, trx)
	}

	if len(malformed) > 0 {
		span.SetAttributes(attribute.Int("malformed", len(malformed)))
		return trxs, &LoadError{Rows: malformed}
	}

	return trxs, nil
}

// Append writes trx as a new row at the end of the store
func (ledger *Ledger) Append(ctx context.Context, trx *Transaction) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Ledger.Append")
	defer span.End()

	row := trx.Row()
	span.SetAttributes(
		attribute.String("symbol", trx.Symbol),
		attribute.String("action", string(trx.Action)),
	)

	callCtx, cancel := context.WithTimeout(ctx, ledger.timeout)
	defer cancel()

	if err := ledger.store.AppendRow(callCtx, row); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append row failed")
		log.Error().Err(err).Strs("Row", row).Msg("could not append transaction to store")
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	log.Info().Strs("Row", row).Msg("appended transaction")
	return nil
}

type columns struct {
	date   int
	symbol int
	action int
	amount int
}

// headerColumns locates the ledger columns in the header regardless of order
func headerColumns(header []string) (*columns, error) {
	pos := make(map[string]int, len(header))
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := pos[key]; !ok {
			pos[key] = idx
		}
	}

	lookup := func(names ...string) (int, error) {
		for _, name := range names {
			if idx, ok := pos[strings.ToLower(name)]; ok {
				return idx, nil
			}
		}
		return -1, fmt.Errorf("%w: %s", ErrMissingColumn, names[0])
	}

	var cols columns
	var err error
	if cols.date, err = lookup(DateColumn); err != nil {
		return nil, err
	}
	if cols.symbol, err = lookup(SymbolColumn); err != nil {
		return nil, err
	}
	if cols.action, err = lookup(ActionColumn); err != nil {
		return nil, err
	}
	if cols.amount, err = lookup(AmountColumn, "Amount"); err != nil {
		return nil, err
	}

	return &cols, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	// trailing empty cells are omitted by some stores
	return ""
}

func blank(row []string) bool {
	for _, val := range row {
		if strings.TrimSpace(val) != "" {
			return false
		}
	}
	return true
}

func toTransaction(row []string, cols *columns, rowNum int) (*Transaction, *MalformedRowError) {
	dateStr := cell(row, cols.date)
	dt, err := parseDate(dateStr)
	if err != nil {
		return nil, &MalformedRowError{Row: rowNum, Column: DateColumn, Value: dateStr}
	}

	symbol := cell(row, cols.symbol)
	if symbol == "" {
		return nil, &MalformedRowError{Row: rowNum, Column: SymbolColumn, Value: symbol}
	}

	actionStr := cell(row, cols.action)
	action, err := ParseAction(actionStr)
	if err != nil {
		return nil, &MalformedRowError{Row: rowNum, Column: ActionColumn, Value: actionStr}
	}

	amountStr := cell(row, cols.amount)
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, &MalformedRowError{Row: rowNum, Column: AmountColumn, Value: amountStr}
	}

	return &Transaction{
		Date:   dt,
		Symbol: symbol,
		Action: action,
		Amount: amount,
	}, nil
}

// IsLoadError reports whether err only signals excluded rows
func IsLoadError(err error) (*LoadError, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr, true
	}
	return nil, false
}
