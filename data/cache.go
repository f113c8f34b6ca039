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
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/pv-crypto/common"
)

const redisKeyPrefix = "pvcrypto:history:"

type CacheOptions struct {
	// LocalSize is the number of assets kept in process
	LocalSize int

	// RedisURL enables the shared second level cache when not empty
	RedisURL string

	// TTL of redis entries; the in-process level never expires
	TTL time.Duration
}

// Cache memoizes aggregated histories by symbol. The first level lives in process for the
// lifetime of the dashboard; an optional redis level shares histories between processes.
type Cache struct {
	local *lru.Cache
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCache(opts CacheOptions) (*Cache, error) {
	size := opts.LocalSize
	if size <= 0 {
		size = 128
	}

	local, err := lru.New(size)
	if err != nil {
		log.Error().Err(err).Int("Size", size).Msg("could not create LRU cache")
		return nil, err
	}

	cache := &Cache{
		local: local,
		ttl:   opts.TTL,
	}

	if opts.RedisURL != "" {
		opt, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		cache.rdb = redis.NewClient(opt)
	}

	return cache, nil
}

// Get returns the cached history for symbol
func (cache *Cache) Get(ctx context.Context, symbol string) (*History, bool) {
	if val, ok := cache.local.Get(symbol); ok {
		return val.(*History), true
	}

	if cache.rdb == nil {
		return nil, false
	}

	raw, err := cache.rdb.Get(ctx, redisKeyPrefix+symbol).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("redis get failed")
		}
		return nil, false
	}

	decompressed, err := common.Decompress(raw)
	if err != nil {
		log.Warn().Err(err).Str("Symbol", symbol).Msg("could not decompress cached history")
		return nil, false
	}

	history := &History{}
	if err := json.Unmarshal(decompressed, history); err != nil {
		log.Warn().Err(err).Str("Symbol", symbol).Msg("could not unmarshal cached history")
		return nil, false
	}

	cache.local.Add(symbol, history)
	return history, true
}

// Set stores history under its symbol
func (cache *Cache) Set(ctx context.Context, history *History) {
	cache.local.Add(history.Symbol, history)

	if cache.rdb == nil {
		return
	}

	encoded, err := json.Marshal(history)
	if err != nil {
		log.Warn().Err(err).Str("Symbol", history.Symbol).Msg("could not marshal history for redis")
		return
	}

	compressed, err := common.Compress(encoded)
	if err != nil {
		log.Warn().Err(err).Str("Symbol", history.Symbol).Msg("could not compress history for redis")
		return
	}

	if err := cache.rdb.Set(ctx, redisKeyPrefix+history.Symbol, compressed, cache.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("Symbol", history.Symbol).Msg("redis set failed")
	}
}

// Invalidate forgets the history of symbol so the next load re-reads its file
func (cache *Cache) Invalidate(ctx context.Context, symbol string) {
	cache.local.Remove(symbol)

	if cache.rdb != nil {
		if err := cache.rdb.Del(ctx, redisKeyPrefix+symbol).Err(); err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("redis delete failed")
		}
	}
}

// Purge empties the in-process level; redis entries are left to expire
func (cache *Cache) Purge() {
	cache.local.Purge()
}

// Len returns the number of histories held in process
func (cache *Cache) Len() int {
	return cache.local.Len()
}

// Close releases the redis connection, if any
func (cache *Cache) Close() error {
	if cache.rdb != nil {
		return cache.rdb.Close()
	}
	return nil
}
