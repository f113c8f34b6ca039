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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/pv-crypto/chart"
	"github.com/penny-vault/pv-crypto/data"
	"github.com/penny-vault/pv-crypto/order"
	"github.com/penny-vault/pv-crypto/portfolio"
)

// AssetLister reports the assets price data exists for
type AssetLister interface {
	Available() ([]string, error)
}

// Config holds the dashboard defaults served to clients
type Config struct {
	DefaultAssets []string
	MaxAssets     int
}

// Handler serves the dashboard API
type Handler struct {
	assets    AssetLister
	chart     *chart.Builder
	ledger    *portfolio.Ledger
	validator *order.Validator
	conf      Config
}

func New(assets AssetLister, builder *chart.Builder, ledger *portfolio.Ledger, validator *order.Validator, conf Config) *Handler {
	return &Handler{
		assets:    assets,
		chart:     builder,
		ledger:    ledger,
		validator: validator,
		conf:      conf,
	}
}

type PingResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"API is alive"`
	Time    string `json:"time" example:"2021-06-19T08:09:10.115924-05:00"`
}

type ErrorResponse struct {
	Status     string            `json:"status" example:"error"`
	Message    string            `json:"message"`
	Violations []order.Violation `json:"violations,omitempty"`
}

func (h *Handler) Ping(c *fiber.Ctx) error {
	return c.JSON(PingResponse{
		Status:  "success",
		Message: "API is alive",
		Time:    time.Now().Format(time.RFC3339Nano),
	})
}

func sendError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ErrorResponse{
		Status:  "error",
		Message: err.Error(),
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, chart.ErrTooManyAssets),
		errors.Is(err, data.ErrUnsupportedGranularity),
		errors.Is(err, data.ErrUnsupportedMetric),
		errors.Is(err, data.ErrInvalidSymbol):
		return fiber.StatusBadRequest
	case errors.Is(err, portfolio.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders errors that escaped a handler as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("Path", c.Path()).Msg("request failed")
	}
	return sendError(c, status, err)
}
