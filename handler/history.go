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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/pv-crypto/chart"
	"github.com/penny-vault/pv-crypto/data"
)

type AssetsResponse struct {
	Available     []string           `json:"available"`
	Default       []string           `json:"default"`
	MaxAssets     int                `json:"maxAssets"`
	Granularities []data.Granularity `json:"granularities"`
	Metrics       []data.Metric      `json:"metrics"`
}

type HistoryResponse struct {
	Granularity data.Granularity `json:"granularity"`
	Metric      data.Metric      `json:"metric"`
	Series      []*chart.Series  `json:"series"`
}

// ListAssets returns the assets with price data and the default chart selection
func (h *Handler) ListAssets(c *fiber.Ctx) error {
	available, err := h.assets.Available()
	if err != nil {
		log.Error().Err(err).Msg("could not list available assets")
		return sendError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(AssetsResponse{
		Available:     available,
		Default:       h.conf.DefaultAssets,
		MaxAssets:     h.conf.MaxAssets,
		Granularities: data.Granularities,
		Metrics:       data.Metrics,
	})
}

// History returns one chart series per requested asset
func (h *Handler) History(c *fiber.Ctx) error {
	assets := splitList(c.Query("assets"))
	if len(assets) == 0 {
		assets = h.conf.DefaultAssets
	}

	granularity, err := data.ParseGranularity(c.Query("granularity", string(data.Daily)))
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err)
	}

	metric, err := data.ParseMetric(c.Query("metric", string(data.MetricHigh)))
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err)
	}

	series, err := h.chart.Build(c.UserContext(), assets, granularity, metric)
	if err != nil {
		return sendError(c, statusFor(err), err)
	}

	return c.JSON(HistoryResponse{
		Granularity: granularity,
		Metric:      metric,
		Series:      series,
	})
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
