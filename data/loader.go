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

package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const DefaultFilePattern = "coin_%s.csv"

type Options struct {
	// Dir holds one price file per asset
	Dir string

	// FilePattern maps a symbol to its file name; it must contain a single %s
	FilePattern string

	// Strict fails a load on the first malformed row instead of dropping the row
	Strict bool
}

// Loader reads price files and memoizes their aggregated histories
type Loader struct {
	opts  Options
	cache *Cache
	group singleflight.Group
}

func NewLoader(opts Options, cache *Cache) *Loader {
	if opts.FilePattern == "" {
		opts.FilePattern = DefaultFilePattern
	}

	return &Loader{
		opts:  opts,
		cache: cache,
	}
}

// Cache returns the cache owned by the loader
func (loader *Loader) Cache() *Cache {
	return loader.cache
}

// Path returns the location of the price file for symbol
func (loader *Loader) Path(symbol string) string {
	return filepath.Join(loader.opts.Dir, fmt.Sprintf(loader.opts.FilePattern, symbol))
}

// Load returns the aggregated history of symbol. ErrNotFound is returned when no price file
// exists for the symbol. Concurrent loads of the same symbol share a single file read.
func (loader *Loader) Load(ctx context.Context, symbol string) (*History, error) {
	if symbol == "" || symbol != filepath.Base(symbol) || strings.HasPrefix(symbol, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}

	if history, ok := loader.cache.Get(ctx, symbol); ok {
		return history, nil
	}

	res, err, _ := loader.group.Do(symbol, func() (interface{}, error) {
		// another caller may have populated the cache while we waited
		if history, ok := loader.cache.Get(ctx, symbol); ok {
			return history, nil
		}

		history, err := loader.read(ctx, symbol)
		if err != nil {
			return nil, err
		}

		loader.cache.Set(ctx, history)
		return history, nil
	})
	if err != nil {
		return nil, err
	}

	return res.(*History), nil
}

func (loader *Loader) read(ctx context.Context, symbol string) (*History, error) {
	fn := loader.Path(symbol)
	subLog := log.With().Str("Symbol", symbol).Str("File", fn).Logger()
	subLog.Info().Msg("reading price file")

	fh, err := os.Open(fn)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			subLog.Warn().Msg("unable to find price data for asset")
			return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		subLog.Error().Err(err).Msg("could not open price file")
		return nil, err
	}
	defer fh.Close()

	points, err := ReadPrices(ctx, symbol, fh, loader.opts.Strict)
	if err != nil {
		return nil, err
	}

	history := Aggregate(symbol, points)
	subLog.Info().Int("NumRows", history.Rows).Msg("read and processed price file")
	return history, nil
}

// Available lists the symbols with a price file in the data directory
func (loader *Loader) Available() ([]string, error) {
	entries, err := os.ReadDir(loader.opts.Dir)
	if err != nil {
		log.Error().Err(err).Str("Dir", loader.opts.Dir).Msg("could not list price files")
		return nil, err
	}

	prefix, suffix, _ := strings.Cut(loader.opts.FilePattern, "%s")

	symbols := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}

		symbol := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	sort.Strings(symbols)
	return symbols, nil
}
