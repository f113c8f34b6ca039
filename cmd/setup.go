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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-crypto/chart"
	"github.com/penny-vault/pv-crypto/data"
	"github.com/penny-vault/pv-crypto/database"
	"github.com/penny-vault/pv-crypto/order"
	"github.com/penny-vault/pv-crypto/portfolio"
	"github.com/penny-vault/pv-crypto/sheets"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// newLoader builds the price loader and its cache from the data.* and cache.* settings
func newLoader() (*data.Loader, error) {
	cache, err := data.NewCache(data.CacheOptions{
		LocalSize: viper.GetInt("cache.size"),
		RedisURL:  viper.GetString("cache.redis_url"),
		TTL:       viper.GetDuration("cache.ttl"),
	})
	if err != nil {
		return nil, err
	}

	return data.NewLoader(data.Options{
		Dir:         viper.GetString("data.dir"),
		FilePattern: viper.GetString("data.file_pattern"),
		Strict:      viper.GetBool("data.strict"),
	}, cache), nil
}

func newBuilder(loader *data.Loader) *chart.Builder {
	return chart.NewBuilder(loader, viper.GetInt("dashboard.max_assets"))
}

func newValidator() *order.Validator {
	return order.NewValidator(order.Options{
		Symbols:               viper.GetStringSlice("order.symbols"),
		RequirePositiveAmount: viper.GetBool("order.require_positive_amount"),
	})
}

// newStore connects to the configured transaction store. The returned function releases
// any connection held by the store.
func newStore(ctx context.Context) (portfolio.Store, func(), error) {
	backend := strings.ToLower(viper.GetString("store.backend"))
	subLog := log.With().Str("Backend", backend).Logger()

	switch backend {
	case "", "sheets":
		client, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:   viper.GetString("sheets.spreadsheet_id"),
			Range:           viper.GetString("sheets.range"),
			BaseURL:         viper.GetString("sheets.base_url"),
			CredentialsFile: viper.GetString("sheets.credentials_file"),
		})
		if err != nil {
			subLog.Error().Err(err).Msg("could not create sheets client")
			return nil, nil, err
		}
		return client, func() {}, nil
	case "postgres":
		pool, err := database.Connect(ctx, viper.GetString("database.url"))
		if err != nil {
			return nil, nil, err
		}
		store := database.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case "memory":
		subLog.Warn().Msg("transactions are kept in memory and lost on exit")
		return portfolio.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

func newLedger(ctx context.Context) (*portfolio.Ledger, func(), error) {
	store, closer, err := newStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return portfolio.NewLedger(store, viper.GetDuration("store.timeout")), closer, nil
}
