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

package dataframe

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"
)

// New creates an empty dataframe with the given column names
func New[T comparable](colNames ...string) *DataFrame[T] {
	df := &DataFrame[T]{
		Index:    make([]T, 0),
		ColNames: make([]string, len(colNames)),
		Vals:     make([][]float64, len(colNames)),
	}

	copy(df.ColNames, colNames)
	for idx := range df.Vals {
		df.Vals[idx] = make([]float64, 0)
	}

	return df
}

// Mean is the unweighted arithmetic mean of vals
func Mean(vals []float64) float64 {
	return stat.Mean(vals, nil)
}

// ColIndex returns the index of the specified column; returns -1 if column doesn't exist
func (df *DataFrame[T]) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame[T]) ColCount() int {
	return len(df.ColNames)
}

// Column returns the values stored in the named column
func (df *DataFrame[T]) Column(colName string) ([]float64, error) {
	colIdx := df.ColIndex(colName)
	if colIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, colName)
	}
	return df.Vals[colIdx], nil
}

// Copy creates a deep copy of the dataframe
func (df *DataFrame[T]) Copy() *DataFrame[T] {
	df2 := &DataFrame[T]{
		ColNames: make([]string, len(df.ColNames)),
		Index:    make([]T, len(df.Index)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Index, df.Index)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// GroupBy buckets rows by the key computed from their index and reduces every column of
// each bucket with agg. Groups are emitted in order of first appearance, so a dataframe
// sorted by date produces groups sorted by date.
func (df *DataFrame[T]) GroupBy(key func(T) string, agg Aggregator) *DataFrame[string] {
	groupOrder := make([]string, 0)
	members := make(map[string][]int)

	for rowIdx, idx := range df.Index {
		k := key(idx)
		if _, ok := members[k]; !ok {
			groupOrder = append(groupOrder, k)
		}
		members[k] = append(members[k], rowIdx)
	}

	res := New[string](df.ColNames...)
	buf := make([]float64, 0, len(df.Index))
	for _, k := range groupOrder {
		rows := members[k]
		res.Index = append(res.Index, k)
		for colIdx, col := range df.Vals {
			buf = buf[:0]
			for _, rowIdx := range rows {
				buf = append(buf, col[rowIdx])
			}
			res.Vals[colIdx] = append(res.Vals[colIdx], agg(buf))
		}
	}

	return res
}

// InsertRow adds a new row to the end of the dataframe; vals must be given in column order
func (df *DataFrame[T]) InsertRow(idx T, vals ...float64) error {
	if len(vals) != len(df.ColNames) {
		return ErrRowLength
	}

	if len(df.Vals) != len(df.ColNames) {
		df.Vals = make([][]float64, len(df.ColNames))
	}

	df.Index = append(df.Index, idx)
	for colIdx, val := range vals {
		df.Vals[colIdx] = append(df.Vals[colIdx], val)
	}

	return nil
}

// Len returns the number of rows in the dataframe
func (df *DataFrame[T]) Len() int {
	return len(df.Index)
}

// Valid checks that every column has exactly one value per index entry
func (df *DataFrame[T]) Valid() error {
	if len(df.Vals) != len(df.ColNames) {
		return ErrIndexNotAligned
	}

	for _, col := range df.Vals {
		if len(col) != len(df.Index) {
			return ErrIndexNotAligned
		}
	}

	return nil
}

// Table renders the dataframe as an ASCII formatted table
func (df *DataFrame[T]) Table() string {
	if len(df.Index) == 0 {
		return "<NO DATA>" // nothing to do as there is no data available in the dataframe
	}

	// construct table header
	tableCols := append([]string{"Index"}, df.ColNames...)

	// initialize table
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	if len(footer) > 1 {
		footer[1] = fmt.Sprintf("%d", df.Len())
	}
	table.SetFooter(footer)
	table.SetBorder(false)

	for idx, rowIdx := range df.Index {
		row := make([]string, 0, len(df.Vals)+1)

		if date, ok := any(rowIdx).(time.Time); ok {
			row = append(row, date.Format("2006-01-02"))
		} else {
			row = append(row, fmt.Sprintf("%v", rowIdx))
		}

		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[idx]))
		}

		table.Append(row)
	}

	table.Render()
	return s.String()
}
