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
	"sort"
	"time"

	"github.com/penny-vault/pv-crypto/dataframe"
)

// PeriodKey returns the label of the period containing dt
func PeriodKey(granularity Granularity, dt time.Time) string {
	switch granularity {
	case Quarterly:
		return fmt.Sprintf("%d Q%d", dt.Year(), 1+(int(dt.Month())-1)/3)
	case Yearly:
		return fmt.Sprintf("%d", dt.Year())
	default:
		return dt.Format("2006-01-02")
	}
}

// Aggregate averages the price points of an asset over days, quarters, and years. Points are
// put in chronological order first so every table is sorted by period.
func Aggregate(symbol string, points []*PricePoint) *History {
	sorted := make([]*PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	colNames := make([]string, len(Metrics))
	for idx, metric := range Metrics {
		colNames[idx] = string(metric)
	}

	raw := dataframe.New[time.Time](colNames...)
	vals := make([]float64, len(Metrics))
	for _, pp := range sorted {
		for idx, metric := range Metrics {
			vals[idx] = pp.Value(metric)
		}
		// vals always has one entry per column
		_ = raw.InsertRow(pp.Date, vals...)
	}

	groupBy := func(granularity Granularity) *dataframe.DataFrame[string] {
		return raw.GroupBy(func(dt time.Time) string {
			return PeriodKey(granularity, dt)
		}, dataframe.Mean)
	}

	return &History{
		Symbol:    symbol,
		Rows:      len(sorted),
		Daily:     groupBy(Daily),
		Quarterly: groupBy(Quarterly),
		Yearly:    groupBy(Yearly),
	}
}
