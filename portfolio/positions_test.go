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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/penny-vault/pv-crypto/portfolio"
)

func trx(symbol string, action portfolio.Action, amount string) *portfolio.Transaction {
	return &portfolio.Transaction{
		Date:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Symbol: symbol,
		Action: action,
		Amount: decimal.RequireFromString(amount),
	}
}

var _ = Describe("Positions", func() {
	var trxs []*portfolio.Transaction

	BeforeEach(func() {
		trxs = []*portfolio.Transaction{
			trx("BTC", portfolio.Buy, "2"),
			trx("BTC", portfolio.Sell, "0.5"),
			trx("ETH", portfolio.Buy, "1"),
		}
	})

	It("nets buys against sells per symbol", func() {
		positions := portfolio.ComputeNetPositions(trxs)
		Expect(positions).To(HaveLen(2))
		Expect(positions["BTC"].Equal(decimal.RequireFromString("1.5"))).To(BeTrue())
		Expect(positions["ETH"].Equal(decimal.NewFromInt(1))).To(BeTrue())
	})

	It("does not depend on transaction order", func() {
		reversed := []*portfolio.Transaction{trxs[2], trxs[1], trxs[0]}
		a := portfolio.ComputeNetPositions(trxs)
		b := portfolio.ComputeNetPositions(reversed)
		Expect(a).To(HaveLen(len(b)))
		for symbol, amount := range a {
			Expect(b[symbol].Equal(amount)).To(BeTrue())
		}
	})

	It("keeps negative positions", func() {
		positions := portfolio.ComputeNetPositions([]*portfolio.Transaction{trx("XRP", portfolio.Sell, "4")})
		Expect(positions["XRP"].Equal(decimal.NewFromInt(-4))).To(BeTrue())
	})

	It("is empty without transactions", func() {
		Expect(portfolio.ComputeNetPositions(nil)).To(BeEmpty())
	})

	It("sorts positions by symbol", func() {
		sorted := portfolio.SortedPositions(portfolio.ComputeNetPositions(append(trxs, trx("ADA", portfolio.Buy, "10"))))
		Expect(sorted).To(HaveLen(3))
		Expect(sorted[0].Symbol).To(Equal("ADA"))
		Expect(sorted[1].Symbol).To(Equal("BTC"))
		Expect(sorted[2].Symbol).To(Equal("ETH"))
	})
})
