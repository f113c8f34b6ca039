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

package portfolio_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/penny-vault/pv-crypto/portfolio"
)

var errBackend = errors.New("backend exploded")

type rowsStore struct {
	rows      [][]string
	err       error
	block     bool
	appended  [][]string
	appendErr error
}

func (store *rowsStore) ReadRange(ctx context.Context) ([][]string, error) {
	if store.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return store.rows, store.err
}

func (store *rowsStore) AppendRow(ctx context.Context, row []string) error {
	if store.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if store.appendErr != nil {
		return store.appendErr
	}
	store.appended = append(store.appended, row)
	return nil
}

var _ = Describe("Ledger", func() {
	var (
		ctx   context.Context
		store *rowsStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = &rowsStore{}
	})

	Context("reading transactions", func() {
		It("maps columns by header name", func() {
			store.rows = [][]string{
				{"Amount of Crypto", "Action", "Symbol", "Date"},
				{"2", "Buy", "BTC", "01/02/2030"},
				{"0.5", "sell", "BTC", "2030-03-04"},
			}
			trxs, err := portfolio.NewLedger(store, time.Second).FetchAll(ctx)
			Expect(err).To(BeNil())
			Expect(trxs).To(HaveLen(2))

			Expect(trxs[0].Date).To(Equal(time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)))
			Expect(trxs[0].Symbol).To(Equal("BTC"))
			Expect(trxs[0].Action).To(Equal(portfolio.Buy))
			Expect(trxs[0].Amount.Equal(decimal.NewFromInt(2))).To(BeTrue())

			Expect(trxs[1].Date).To(Equal(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)))
			Expect(trxs[1].Action).To(Equal(portfolio.Sell))
			Expect(trxs[1].Amount.String()).To(Equal("0.5"))
		})

		DescribeTable("accepts several date formats",
			func(val string, expected time.Time) {
				store.rows = [][]string{portfolio.Header, {val, "ETH", "Buy", "1"}}
				trxs, err := portfolio.NewLedger(store, time.Second).FetchAll(ctx)
				Expect(err).To(BeNil())
				Expect(trxs).To(HaveLen(1))
				Expect(trxs[0].Date.Equal(expected)).To(BeTrue())
			},
			Entry("day first with padding", "05/04/2031", time.Date(2031, 4, 5, 0, 0, 0, 0, time.UTC)),
			Entry("day first without padding", "5/4/2031", time.Date(2031, 4, 5, 0, 0, 0, 0, time.UTC)),
			Entry("iso date", "2031-04-05", time.Date(2031, 4, 5, 0, 0, 0, 0, time.UTC)),
			Entry("date and time", "2031-04-05 00:00:00", time.Date(2031, 4, 5, 0, 0, 0, 0, time.UTC)),
			Entry("rfc3339", "2031-04-05T00:00:00Z", time.Date(2031, 4, 5, 0, 0, 0, 0, time.UTC)),
		)

		It("returns nothing for an empty store", func() {
			trxs, err := portfolio.NewLedger(store, time.Second).FetchAll(ctx)
			Expect(err).To(BeNil())
			Expect(trxs).To(BeEmpty())
		})

		It("fails when a header column is missing", func() {
			store.rows = [][]string{{"Date", "Symbol", "Amount of Crypto"}, {"01/01/2030", "BTC", "1"}}
			_, err := portfolio.NewLedger(store, time.Second).FetchAll(ctx)
			Expect(errors.Is(err, portfolio.ErrMissingColumn)).To(BeTrue())
		})

		It("excludes malformed rows and reports them", func() {
			store.rows = [][]string{
				portfolio.Header,
				{"01/01/2030", "BTC", "Buy", "1"},
				{"someday", "BTC", "Buy", "1"},
				{"01/01/2030", "ETH", "Hold", "1"},
				{"01/01/2030", "ETH", "Buy", "lots"},
				{"", "", "", ""},
				{"01/01/2030", "LTC", "Sell"},
			}
			trxs, err := portfolio.NewLedger(store, time.Second).FetchAll(ctx)
			Expect(trxs).To(HaveLen(1))
			Expect(trxs[0].Symbol).To(Equal("BTC"))

			Expect(errors.Is(err, portfolio.ErrMalformedRow)).To(BeTrue())
			loadErr, ok := portfolio.IsLoadError(err)
			Expect(ok).To(BeTrue())
			Expect(loadErr.Rows).To(HaveLen(4))

			Expect(loadErr.Rows[0].Row).To(Equal(3))
			Expect(loadErr.Rows[0].Column).To(Equal(portfolio.DateColumn))
			Expect(loadErr.Rows[1].Column).To(Equal(portfolio.ActionColumn))
			Expect(loadErr.Rows[2].Column).To(Equal(portfolio.AmountColumn))
			Expect(loadErr.Rows[3].Row).To(Equal(7))
			Expect(loadErr.Rows[3].Column).To(Equal(portfolio.AmountColumn))
		})

		It("wraps backend failures", func() {
			store.err = errBackend
			_, err := portfolio.NewLedger(store, time.Second).FetchAll(ctx)
			Expect(errors.Is(err, portfolio.ErrStoreUnavailable)).To(BeTrue())
			Expect(errors.Is(err, errBackend)).To(BeTrue())
		})

		It("gives up when the store is too slow", func() {
			store.block = true
			_, err := portfolio.NewLedger(store, 10*time.Millisecond).FetchAll(ctx)
			Expect(errors.Is(err, portfolio.ErrStoreUnavailable)).To(BeTrue())
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})
	})

	Context("appending transactions", func() {
		It("writes a day first date row", func() {
			trx := &portfolio.Transaction{
				Date:   time.Date(2030, 7, 9, 0, 0, 0, 0, time.UTC),
				Symbol: "DOGE",
				Action: portfolio.Sell,
				Amount: decimal.RequireFromString("1250.75"),
			}
			Expect(portfolio.NewLedger(store, time.Second).Append(ctx, trx)).To(Succeed())
			Expect(store.appended).To(Equal([][]string{{"09/07/2030", "DOGE", "Sell", "1250.75"}}))
		})

		It("wraps backend failures", func() {
			store.appendErr = errBackend
			err := portfolio.NewLedger(store, time.Second).Append(ctx, &portfolio.Transaction{Symbol: "BTC", Action: portfolio.Buy})
			Expect(errors.Is(err, portfolio.ErrStoreUnavailable)).To(BeTrue())
		})

		It("gives up when the store is too slow", func() {
			store.block = true
			err := portfolio.NewLedger(store, 10*time.Millisecond).Append(ctx, &portfolio.Transaction{Symbol: "BTC", Action: portfolio.Buy})
			Expect(errors.Is(err, portfolio.ErrStoreUnavailable)).To(BeTrue())
		})
	})

	Context("with the memory store", func() {
		It("reads back appended transactions", func() {
			ledger := portfolio.NewLedger(portfolio.NewMemoryStore(), 0)
			trx := &portfolio.Transaction{
				Date:   time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC),
				Symbol: "ETH",
				Action: portfolio.Buy,
				Amount: decimal.RequireFromString("3.25"),
			}
			Expect(ledger.Append(ctx, trx)).To(Succeed())

			trxs, err := ledger.FetchAll(ctx)
			Expect(err).To(BeNil())
			Expect(trxs).To(HaveLen(1))
			Expect(trxs[0].Date).To(Equal(trx.Date))
			Expect(trxs[0].Amount.Equal(trx.Amount)).To(BeTrue())
		})
	})
})

var _ = Describe("Transaction", func() {
	It("has a stable content id", func() {
		trx := &portfolio.Transaction{
			Date:   time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC),
			Symbol: "ETH",
			Action: portfolio.Buy,
			Amount: decimal.RequireFromString("3.25"),
		}
		id1, err := trx.ID()
		Expect(err).To(BeNil())
		Expect(id1).To(HaveLen(32))

		same := *trx
		id2, err := same.ID()
		Expect(err).To(BeNil())
		Expect(id2).To(Equal(id1))

		same.Action = portfolio.Sell
		id3, err := same.ID()
		Expect(err).To(BeNil())
		Expect(id3).ToNot(Equal(id1))
	})

	DescribeTable("parses actions",
		func(val string, expected portfolio.Action, ok bool) {
			action, err := portfolio.ParseAction(val)
			if ok {
				Expect(err).To(BeNil())
				Expect(action).To(Equal(expected))
			} else {
				Expect(errors.Is(err, portfolio.ErrUnknownAction)).To(BeTrue())
			}
		},
		Entry("buy", "Buy", portfolio.Buy, true),
		Entry("sell lower case", "sell", portfolio.Sell, true),
		Entry("padded", " BUY ", portfolio.Buy, true),
		Entry("unknown", "Hold", portfolio.Action(""), false),
		Entry("empty", "", portfolio.Action(""), false),
	)
})
