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
	"sort"

	"github.com/shopspring/decimal"
)

type Position struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// ComputeNetPositions sums bought minus sold amounts per symbol. Symbols never traded are
// absent from the result.
func ComputeNetPositions(trxs []*Transaction) map[string]decimal.Decimal {
	positions := make(map[string]decimal.Decimal)
	for _, trx := range trxs {
		positions[trx.Symbol] = positions[trx.Symbol].Add(trx.Signed())
	}
	return positions
}

// SortedPositions orders positions by symbol
func SortedPositions(positions map[string]decimal.Decimal) []Position {
	res := make([]Position, 0, len(positions))
	for symbol, amount := range positions {
		res = append(res, Position{Symbol: symbol, Amount: amount})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Symbol < res[j].Symbol
	})
	return res
}
