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

package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/penny-vault/pv-crypto/portfolio"
)

// Form fields
const (
	FieldSymbol = "symbol"
	FieldDate   = "date"
	FieldAction = "action"
	FieldAmount = "amount"
)

// Warnings shown to the user
const (
	MsgMissingSymbol  = "Please provide a cryptocurrency."
	MsgUnknownSymbol  = "Please select a supported cryptocurrency."
	MsgMissingAmount  = "Please specify the amount of cryptocurrency."
	MsgNegativeAmount = "Please specify a positive amount of cryptocurrency."
	MsgMissingDate    = "Please provide a date."
	MsgPastDate       = "Please select a date in the future."
	MsgBadAction      = "Please choose Buy or Sell."
)

// DefaultSymbols are the cryptocurrencies offered by the order form
var DefaultSymbols = []string{
	"AAVE", "BNB", "BTC", "ADA", "LINK", "ATOM", "CRO", "DOGE", "EOS", "ETH", "MIOTA", "LTC",
	"XMR", "XEM", "DOT", "SOL", "XLM", "USDT", "TRX", "UNI", "USDC", "WBTC", "XRP",
}

// Form is a proposed transaction as entered by the user. Nil fields were left empty.
type Form struct {
	Symbol string           `json:"symbol"`
	Date   *time.Time       `json:"date"`
	Action string           `json:"action"`
	Amount *decimal.Decimal `json:"amount"`
}

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule a form broke
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for idx, v := range e.Violations {
		msgs[idx] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "invalid order: " + strings.Join(msgs, "; ")
}

// Options configure the validation rules
type Options struct {
	// Symbols restricts the accepted symbols; empty accepts any
	Symbols               []string
	RequirePositiveAmount bool
}

type Validator struct {
	// Now returns the current time; only its calendar date is used
	Now func() time.Time

	symbols         map[string]bool
	requirePositive bool
}

func NewValidator(opts Options) *Validator {
	validator := &Validator{
		Now:             time.Now,
		requirePositive: opts.RequirePositiveAmount,
	}
	if len(opts.Symbols) > 0 {
		validator.symbols = make(map[string]bool, len(opts.Symbols))
		for _, symbol := range opts.Symbols {
			validator.symbols[strings.ToUpper(symbol)] = true
		}
	}
	return validator
}

// Validate checks every rule independently and returns the transaction described by form, or
// a *ValidationError with all violations
func (validator *Validator) Validate(form *Form) (*portfolio.Transaction, error) {
	var violations []Violation
	violate := func(field, msg string) {
		violations = append(violations, Violation{Field: field, Message: msg})
	}

	symbol := strings.ToUpper(strings.TrimSpace(form.Symbol))
	switch {
	case symbol == "":
		violate(FieldSymbol, MsgMissingSymbol)
	case validator.symbols != nil && !validator.symbols[symbol]:
		violate(FieldSymbol, MsgUnknownSymbol)
	}

	switch {
	case form.Amount == nil:
		violate(FieldAmount, MsgMissingAmount)
	case validator.requirePositive && !form.Amount.IsPositive():
		violate(FieldAmount, MsgNegativeAmount)
	}

	var date time.Time
	if form.Date == nil {
		violate(FieldDate, MsgMissingDate)
	} else {
		date = day(*form.Date)
		if !validator.isFuture(date) {
			violate(FieldDate, MsgPastDate)
		}
	}

	// the form preselects Buy
	action := portfolio.Buy
	if strings.TrimSpace(form.Action) != "" {
		var err error
		if action, err = portfolio.ParseAction(form.Action); err != nil {
			violate(FieldAction, MsgBadAction)
		}
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return &portfolio.Transaction{
		Date:   date,
		Symbol: symbol,
		Action: action,
		Amount: *form.Amount,
	}, nil
}

// isFuture reports whether date falls on a calendar day after today
func (validator *Validator) isFuture(date time.Time) bool {
	today := day(validator.Now())
	return date.After(today)
}

// day truncates t to midnight UTC of its calendar date
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Submit validates form and appends the resulting transaction to ledger. Nothing is written
// when validation fails.
func (validator *Validator) Submit(ctx context.Context, ledger *portfolio.Ledger, form *Form) (*portfolio.Transaction, error) {
	trx, err := validator.Validate(form)
	if err != nil {
		log.Info().Err(err).Msg("rejected order")
		return nil, err
	}

	if err := ledger.Append(ctx, trx); err != nil {
		return nil, err
	}

	return trx, nil
}
