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

package pgxmockhelper

import (
	"os"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/pashagolub/pgxmock"
	"github.com/rs/zerolog/log"
)

type CSVRows struct {
	rows   [][]any
	header []string
}

// NewCSVRows reads a comma separated file whose first line is the column list. Every value
// is kept as a string.
func NewCSVRows(csvFn string) *CSVRows {
	subLog := log.With().Str("CsvFn", csvFn).Logger()

	rows := &CSVRows{
		rows: make([][]any, 0),
	}
	rawData, err := os.ReadFile(csvFn)
	if err != nil {
		subLog.Panic().Err(err).Msg("could not read file")
	}

	lines := strings.Split(string(rawData), "\n")

	// header + trailing new line at a minimum
	if len(lines) < 2 {
		subLog.Panic().Int("NumLines", len(lines)).Msg("input file does not have enough lines, need at least 2 (header + trailing new line)")
	}
	if lines[len(lines)-1] != "" {
		subLog.Panic().Msg("input file is missing a trailing new line")
	}

	rows.header = strings.Split(lines[0], ",")
	for _, ll := range lines[1 : len(lines)-1] {
		parts := strings.Split(ll, ",")
		if len(parts) != len(rows.header) {
			subLog.Panic().Str("Line", ll).Msg("line does not match header")
		}
		cols := make([]any, len(parts))
		for idx, val := range parts {
			cols[idx] = val
		}
		rows.rows = append(rows.rows, cols)
	}

	return rows
}

// Strings returns the rows as cells
func (csvRows *CSVRows) Strings() [][]string {
	res := make([][]string, len(csvRows.rows))
	for idx, row := range csvRows.rows {
		res[idx] = make([]string, len(row))
		for jdx, val := range row {
			res[idx][jdx] = val.(string)
		}
	}
	return res
}

func (csvRows *CSVRows) Rows() *pgxmock.Rows {
	r := pgxmock.NewRows(csvRows.header)
	for _, row := range csvRows.rows {
		r.AddRow(row...)
	}
	return r
}

// MockLedgerQuery expects the transactions select and answers it with the contents of fn
func MockLedgerQuery(db pgxmock.PgxConnIface, fn string) {
	db.ExpectQuery("SELECT trade_date, symbol, action, amount FROM transactions").WillReturnRows(
		NewCSVRows(fn).Rows())
}

// MockLedgerInsert expects a committed insert of row
func MockLedgerInsert(db pgxmock.PgxConnIface, row []string) {
	args := make([]interface{}, len(row))
	for idx, val := range row {
		args[idx] = val
	}
	db.ExpectBegin()
	db.ExpectExec("INSERT INTO transactions").WithArgs(args...).WillReturnResult(pgconn.CommandTag("INSERT 0 1"))
	db.ExpectCommit()
}
