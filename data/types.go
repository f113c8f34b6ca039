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
	"fmt"
	"strings"
	"time"

	"github.com/penny-vault/pv-crypto/dataframe"
)

type Metric string

const (
	MetricHigh      Metric = "High"
	MetricLow       Metric = "Low"
	MetricOpen      Metric = "Open"
	MetricClose     Metric = "Close"
	MetricVolume    Metric = "Volume"
	MetricMarketCap Metric = "MarketCap"
)

// Metrics lists every metric in the column order used by aggregated tables
var Metrics = []Metric{MetricHigh, MetricLow, MetricOpen, MetricClose, MetricVolume, MetricMarketCap}

// Granularity is the time bucket used to aggregate a price history
type Granularity string

const (
	Daily     Granularity = "Daily"
	Quarterly Granularity = "Quarterly"
	Yearly    Granularity = "Yearly"
)

var Granularities = []Granularity{Daily, Quarterly, Yearly}

// ParseMetric accepts the metric names shown on the dashboard tabs
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return MetricHigh, nil
	case "low":
		return MetricLow, nil
	case "open":
		return MetricOpen, nil
	case "close":
		return MetricClose, nil
	case "volume":
		return MetricVolume, nil
	case "marketcap", "market_cap", "market cap", "market capitalisation", "market capitalization":
		return MetricMarketCap, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMetric, s)
	}
}

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year", "annually":
		return Yearly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGranularity, s)
	}
}

// PricePoint is one row of an asset's daily price history
type PricePoint struct {
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	MarketCap float64
}

// Value returns the value of the requested metric
func (pp *PricePoint) Value(metric Metric) float64 {
	switch metric {
	case MetricHigh:
		return pp.High
	case MetricLow:
		return pp.Low
	case MetricOpen:
		return pp.Open
	case MetricClose:
		return pp.Close
	case MetricVolume:
		return pp.Volume
	case MetricMarketCap:
		return pp.MarketCap
	default:
		return 0
	}
}

// History holds the aggregated price tables of a single asset. Each table is indexed by
// period label and has one column per entry in Metrics.
type History struct {
	Symbol    string                       `json:"symbol"`
	Rows      int                          `json:"rows"`
	Daily     *dataframe.DataFrame[string] `json:"daily"`
	Quarterly *dataframe.DataFrame[string] `json:"quarterly"`
	Yearly    *dataframe.DataFrame[string] `json:"yearly"`
}

// Table returns the aggregated table for the requested granularity
func (h *History) Table(granularity Granularity) (*dataframe.DataFrame[string], error) {
	switch granularity {
	case Daily:
		return h.Daily, nil
	case Quarterly:
		return h.Quarterly, nil
	case Yearly:
		return h.Yearly, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGranularity, granularity)
	}
}
