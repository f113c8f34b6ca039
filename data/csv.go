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

package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	imports "github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"
)

// price file column names
const (
	colDate      = "Date"
	colHigh      = "High"
	colLow       = "Low"
	colOpen      = "Open"
	colClose     = "Close"
	colVolume    = "Volume"
	colMarketCap = "Marketcap"
)

var metricColumns = map[Metric]string{
	MetricHigh:      colHigh,
	MetricLow:       colLow,
	MetricOpen:      colOpen,
	MetricClose:     colClose,
	MetricVolume:    colVolume,
	MetricMarketCap: colMarketCap,
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var dt time.Time
		dt, err = time.Parse(layout, s)
		if err == nil {
			return dt, nil
		}
	}
	return time.Time{}, err
}

// ReadPrices parses a price history file with the columns SNo, Date, Open, High, Low, Close,
// Volume, and Marketcap. Unparseable cells mark their row as malformed; in strict mode the
// first malformed row fails the read, otherwise malformed rows are logged and dropped.
func ReadPrices(ctx context.Context, symbol string, r io.ReadSeeker, strict bool) ([]*PricePoint, error) {
	subLog := log.With().Str("Symbol", symbol).Bool("Strict", strict).Logger()

	// converters never fail; bad cells become nil dates or NaN floats
	floatConverter := imports.Converter{
		ConcreteType: float64(0),
		ConverterFunc: func(in interface{}) (interface{}, error) {
			s, ok := in.(string)
			if !ok {
				return math.NaN(), nil
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return math.NaN(), nil
			}
			return v, nil
		},
	}

	dateConverter := imports.Converter{
		ConcreteType: time.Time{},
		ConverterFunc: func(in interface{}) (interface{}, error) {
			s, ok := in.(string)
			if !ok {
				return nil, nil
			}
			dt, err := parseDate(s)
			if err != nil {
				return nil, nil
			}
			return dt, nil
		},
	}

	dictate := map[string]interface{}{
		colDate: dateConverter,
	}
	for _, col := range metricColumns {
		dictate[col] = floatConverter
	}

	if err := checkHeader(r); err != nil {
		subLog.Error().Err(err).Msg("invalid price file header")
		return nil, err
	}

	df, err := imports.LoadFromCSV(ctx, r, imports.CSVLoadOptions{
		DictateDataType: dictate,
	})
	if err != nil {
		subLog.Error().Err(err).Msg("could not parse price file")
		return nil, err
	}

	dateSeries, err := column(df, colDate)
	if err != nil {
		return nil, err
	}

	metricSeries := make(map[Metric]dataframe.Series, len(metricColumns))
	for metric, col := range metricColumns {
		series, err := column(df, col)
		if err != nil {
			return nil, err
		}
		metricSeries[metric] = series
	}

	nRows := df.NRows()
	points := make([]*PricePoint, 0, nRows)
	dropped := 0

	for row := 0; row < nRows; row++ {
		pp, badCol := pricePointAt(row, dateSeries, metricSeries)
		if badCol != "" {
			malformed := &MalformedRowError{
				Symbol: symbol,
				Row:    row + 1,
				Column: badCol,
			}
			if strict {
				subLog.Error().Int("Row", malformed.Row).Str("Column", badCol).Msg("malformed row in price file")
				return nil, malformed
			}
			subLog.Warn().Int("Row", malformed.Row).Str("Column", badCol).Msg("dropping malformed row in price file")
			dropped++
			continue
		}
		points = append(points, pp)
	}

	subLog.Debug().Int("NumRows", len(points)).Int("Dropped", dropped).Msg("read price file")
	return points, nil
}

// checkHeader verifies every required column is present and rewinds r
func checkHeader(r io.ReadSeeker) error {
	header, err := csv.NewReader(r).Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[strings.TrimSpace(name)] = true
	}

	required := []string{colDate, colHigh, colLow, colOpen, colClose, colVolume, colMarketCap}
	for _, name := range required {
		if !present[name] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	_, err = r.Seek(0, io.SeekStart)
	return err
}

func column(df *dataframe.DataFrame, name string) (dataframe.Series, error) {
	idx, err := df.NameToColumn(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return df.Series[idx], nil
}

// pricePointAt builds the price point stored in row; if any cell is invalid the name of the
// offending column is returned instead
func pricePointAt(row int, dateSeries dataframe.Series, metricSeries map[Metric]dataframe.Series) (*PricePoint, string) {
	var dt time.Time
	switch v := dateSeries.Value(row).(type) {
	case time.Time:
		dt = v
	case *time.Time:
		if v == nil {
			return nil, colDate
		}
		dt = *v
	default:
		return nil, colDate
	}

	pp := &PricePoint{Date: dt}
	for _, metric := range Metrics {
		val, ok := metricSeries[metric].Value(row).(float64)
		if !ok || math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, metricColumns[metric]
		}

		switch metric {
		case MetricHigh:
			pp.High = val
		case MetricLow:
			pp.Low = val
		case MetricOpen:
			pp.Open = val
		case MetricClose:
			pp.Close = val
		case MetricVolume:
			pp.Volume = val
		case MetricMarketCap:
			pp.MarketCap = val
		}
	}

	return pp, ""
}
