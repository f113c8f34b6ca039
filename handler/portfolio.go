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

package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/penny-vault/pv-crypto/order"
	"github.com/penny-vault/pv-crypto/portfolio"
)

var (
	ErrInvalidDate = errors.New("invalid date")
)

type transaction struct {
	ID     string           `json:"id"`
	Date   string           `json:"date"`
	Symbol string           `json:"symbol"`
	Action portfolio.Action `json:"action"`
	Amount decimal.Decimal  `json:"amount"`
}

type rowWarning struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type TransactionsResponse struct {
	Transactions []*transaction `json:"transactions"`
	Warnings     []*rowWarning  `json:"warnings"`
}

type PositionsResponse struct {
	Positions []portfolio.Position `json:"positions"`
	Warnings  []*rowWarning        `json:"warnings"`
}

type orderRequest struct {
	Symbol string           `json:"symbol"`
	Date   string           `json:"date"`
	Action string           `json:"action"`
	Amount *decimal.Decimal `json:"amount"`
}

func newTransaction(trx *portfolio.Transaction) *transaction {
	id, err := trx.ID()
	if err != nil {
		log.Warn().Err(err).Str("Symbol", trx.Symbol).Msg("could not compute transaction id")
	}
	return &transaction{
		ID:     id,
		Date:   trx.Date.Format("2006-01-02"),
		Symbol: trx.Symbol,
		Action: trx.Action,
		Amount: trx.Amount,
	}
}

// fetch reads the ledger and splits a partial load into transactions and warnings
func (h *Handler) fetch(c *fiber.Ctx) ([]*portfolio.Transaction, []*rowWarning, error) {
	trxs, err := h.ledger.FetchAll(c.UserContext())
	warnings := make([]*rowWarning, 0)
	if err != nil {
		loadErr, ok := portfolio.IsLoadError(err)
		if !ok {
			return nil, nil, err
		}
		for _, row := range loadErr.Rows {
			warnings = append(warnings, &rowWarning{
				Row:     row.Row,
				Column:  row.Column,
				Value:   row.Value,
				Message: row.Error(),
			})
		}
	}
	return trxs, warnings, nil
}

// ListTransactions returns every readable transaction plus a warning for each excluded row
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	trxs, warnings, err := h.fetch(c)
	if err != nil {
		return sendError(c, statusFor(err), err)
	}

	res := TransactionsResponse{
		Transactions: make([]*transaction, len(trxs)),
		Warnings:     warnings,
	}
	for idx, trx := range trxs {
		res.Transactions[idx] = newTransaction(trx)
	}
	return c.JSON(res)
}

// ListPositions returns the net amount held of each traded symbol
func (h *Handler) ListPositions(c *fiber.Ctx) error {
	trxs, warnings, err := h.fetch(c)
	if err != nil {
		return sendError(c, statusFor(err), err)
	}

	return c.JSON(PositionsResponse{
		Positions: portfolio.SortedPositions(portfolio.ComputeNetPositions(trxs)),
		Warnings:  warnings,
	})
}

// CreateOrder validates the submitted order and appends it to the ledger
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req orderRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Err(err).Msg("could not parse order body")
		return sendError(c, fiber.StatusBadRequest, fmt.Errorf("invalid order body: %w", err))
	}

	form := &order.Form{
		Symbol: req.Symbol,
		Action: req.Action,
		Amount: req.Amount,
	}
	if req.Date != "" {
		dt, err := parseDate(req.Date)
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date))
		}
		form.Date = &dt
	}

	trx, err := h.validator.Submit(c.UserContext(), h.ledger, form)
	if err != nil {
		var validationErr *order.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Status:     "error",
				Message:    err.Error(),
				Violations: validationErr.Violations,
			})
		}
		return sendError(c, statusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(newTransaction(trx))
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", portfolio.DateLayout, time.RFC3339} {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
