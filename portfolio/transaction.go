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
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/zeebo/blake3"
)

type Action string

const (
	Buy  Action = "Buy"
	Sell Action = "Sell"
)

// Column names of the ledger
const (
	DateColumn   = "Date"
	SymbolColumn = "Symbol"
	ActionColumn = "Action"
	AmountColumn = "Amount of Crypto"
)

// DateLayout is the format dates are written to the store in
const DateLayout = "02/01/2006"

var (
	Header = []string{DateColumn, SymbolColumn, ActionColumn, AmountColumn}

	// slash dates are day first
	readLayouts = []string{
		DateLayout,
		"2/1/2006",
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
)

type Transaction struct {
	Date   time.Time       `json:"date"`
	Symbol string          `json:"symbol"`
	Action Action          `json:"action"`
	Amount decimal.Decimal `json:"amount"`
}

// ParseAction converts a case-insensitive Buy or Sell into an Action
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range readLayouts {
		var dt time.Time
		dt, err = time.Parse(layout, s)
		if err == nil {
			return dt, nil
		}
	}
	return time.Time{}, err
}

// Row returns the transaction as written to the store
func (trx *Transaction) Row() []string {
	return []string{
		trx.Date.Format(DateLayout),
		trx.Symbol,
		string(trx.Action),
		trx.Amount.String(),
	}
}

// Signed returns the amount with the sign of its effect on the position
func (trx *Transaction) Signed() decimal.Decimal {
	if trx.Action == Sell {
		return trx.Amount.Neg()
	}
	return trx.Amount
}

// ID calculates a 16-byte blake3 hash of the date, symbol, action, and amount
func (trx *Transaction) ID() (string, error) {
	h := blake3.New()

	for _, part := range trx.Row() {
		if _, err := h.Write([]byte(part)); err != nil {
			log.Error().Stack().Err(err).Msg("could not write transaction to blake3 hasher")
			return "", err
		}
		// separator keeps ("AB", "C") and ("A", "BC") apart
		if _, err := h.Write([]byte{0}); err != nil {
			return "", err
		}
	}

	digest := h.Digest()
	buf := make([]byte, 16)
	n, err := digest.Read(buf)
	if err != nil {
		return "", err
	}
	if n != 16 {
		return "", ErrGenerateHash
	}

	return hex.EncodeToString(buf), nil
}
