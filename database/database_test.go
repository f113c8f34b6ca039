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

package database_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"
	"github.com/shopspring/decimal"

	"github.com/penny-vault/pv-crypto/database"
	"github.com/penny-vault/pv-crypto/pgxmockhelper"
	"github.com/penny-vault/pv-crypto/portfolio"
)

var errConnection = errors.New("connection reset")

var _ = Describe("Store", func() {
	var (
		ctx    context.Context
		dbPool pgxmock.PgxConnIface
		store  *database.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		store = database.NewStore(dbPool)
	})

	AfterEach(func() {
		Expect(dbPool.ExpectationsWereMet()).To(Succeed())
	})

	It("reads the header and every row", func() {
		pgxmockhelper.MockLedgerQuery(dbPool, "testdata/transactions.csv")

		rows, err := store.ReadRange(ctx)
		Expect(err).To(BeNil())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0]).To(Equal(portfolio.Header))
		Expect(rows[1:]).To(Equal(pgxmockhelper.NewCSVRows("testdata/transactions.csv").Strings()))
	})

	It("feeds the ledger", func() {
		pgxmockhelper.MockLedgerQuery(dbPool, "testdata/transactions.csv")

		trxs, err := portfolio.NewLedger(store, time.Second).FetchAll(ctx)
		Expect(err).To(BeNil())
		positions := portfolio.ComputeNetPositions(trxs)
		Expect(positions["BTC"].Equal(decimal.RequireFromString("1.5"))).To(BeTrue())
		Expect(positions["ETH"].Equal(decimal.NewFromInt(1))).To(BeTrue())
	})

	It("returns query errors", func() {
		dbPool.ExpectQuery("SELECT trade_date").WillReturnError(errConnection)

		_, err := store.ReadRange(ctx)
		Expect(err).To(MatchError(errConnection))
	})

	It("inserts a row in a transaction", func() {
		row := []string{"09/07/2030", "DOGE", "Sell", "1250.75"}
		pgxmockhelper.MockLedgerInsert(dbPool, row)

		Expect(store.AppendRow(ctx, row)).To(Succeed())
	})

	It("rolls back a failed insert", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectExec("INSERT INTO transactions").WillReturnError(errConnection)
		dbPool.ExpectRollback()

		err := store.AppendRow(ctx, []string{"09/07/2030", "DOGE", "Sell", "1"})
		Expect(err).To(MatchError(errConnection))
	})

	It("rejects rows of the wrong length", func() {
		err := store.AppendRow(ctx, []string{"09/07/2030", "DOGE"})
		Expect(errors.Is(err, database.ErrRowLength)).To(BeTrue())
	})

	It("creates the table", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectExec("CREATE TABLE IF NOT EXISTS transactions").WillReturnResult(pgconn.CommandTag("CREATE TABLE"))
		dbPool.ExpectCommit()

		Expect(store.Migrate(ctx)).To(Succeed())
	})
})
