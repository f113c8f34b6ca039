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

package chart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/penny-vault/pv-crypto/data"
)

const DefaultMaxAssets = 5

var (
	ErrTooManyAssets = errors.New("too many assets requested")
)

// HistoryLoader returns the aggregated price history of an asset
type HistoryLoader interface {
	Load(ctx context.Context, symbol string) (*data.History, error)
}

// Series is one line of a multi-series chart
type Series struct {
	Label string    `json:"label"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
}

// Builder assembles overlaid line series for a set of assets
type Builder struct {
	loader HistoryLoader

	// MaxAssets bounds the number of assets per chart; 0 disables the check
	MaxAssets int
}

func NewBuilder(loader HistoryLoader, maxAssets int) *Builder {
	return &Builder{
		loader:    loader,
		MaxAssets: maxAssets,
	}
}

// Build returns one series per requested asset, in request order. Assets without price data
// are skipped; any other load failure is returned.
func (builder *Builder) Build(ctx context.Context, assets []string, granularity data.Granularity, metric data.Metric) ([]*Series, error) {
	assets = unique(assets)
	if builder.MaxAssets > 0 && len(assets) > builder.MaxAssets {
		return nil, fmt.Errorf("%w: %d requested, at most %d allowed", ErrTooManyAssets, len(assets), builder.MaxAssets)
	}

	subLog := log.With().Strs("Assets", assets).Str("Granularity", string(granularity)).Str("Metric", string(metric)).Logger()

	series := make([]*Series, 0, len(assets))
	for _, asset := range assets {
		history, err := builder.loader.Load(ctx, asset)
		if err != nil {
			if errors.Is(err, data.ErrNotFound) {
				subLog.Debug().Str("Asset", asset).Msg("skipping asset without price data")
				continue
			}
			subLog.Error().Err(err).Str("Asset", asset).Msg("could not load asset history")
			return nil, err
		}

		s, err := extract(history, granularity, metric)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}

	return series, nil
}

func extract(history *data.History, granularity data.Granularity, metric data.Metric) (*Series, error) {
	df, err := history.Table(granularity)
	if err != nil {
		return nil, err
	}

	vals, err := df.Column(string(metric))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", data.ErrUnsupportedMetric, metric)
	}

	s := &Series{
		Label: history.Symbol,
		X:     make([]string, len(df.Index)),
		Y:     make([]float64, len(vals)),
	}
	copy(s.X, df.Index)
	copy(s.Y, vals)

	return s, nil
}

// unique drops repeated and empty symbols keeping the first occurrence
func unique(assets []string) []string {
	seen := make(map[string]bool, len(assets))
	res := make([]string, 0, len(assets))
	for _, asset := range assets {
		if asset == "" || seen[asset] {
			continue
		}
		seen[asset] = true
		res = append(res, asset)
	}
	return res
}
