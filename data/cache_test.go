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

package data_test

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-crypto/common"
	"github.com/penny-vault/pv-crypto/data"
)

func historyFor(symbol string) *data.History {
	return data.Aggregate(symbol, []*data.PricePoint{
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), High: 1, Low: 0.5, Open: 0.7, Close: 0.9, Volume: 10, MarketCap: 100},
		{Date: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC), High: 3, Low: 1.5, Open: 2.7, Close: 2.9, Volume: 30, MarketCap: 300},
	})
}

var _ = Describe("Cache", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("misses unknown symbols", func() {
		cache, err := data.NewCache(data.CacheOptions{})
		Expect(err).To(BeNil())
		_, ok := cache.Get(ctx, "Bitcoin")
		Expect(ok).To(BeFalse())
	})

	It("returns what was stored", func() {
		cache, err := data.NewCache(data.CacheOptions{})
		Expect(err).To(BeNil())

		history := historyFor("Bitcoin")
		cache.Set(ctx, history)

		cached, ok := cache.Get(ctx, "Bitcoin")
		Expect(ok).To(BeTrue())
		Expect(cached).To(BeIdenticalTo(history))
		Expect(cache.Len()).To(Equal(1))
	})

	It("evicts the least recently used history", func() {
		cache, err := data.NewCache(data.CacheOptions{LocalSize: 2})
		Expect(err).To(BeNil())

		cache.Set(ctx, historyFor("Bitcoin"))
		cache.Set(ctx, historyFor("Ethereum"))
		_, _ = cache.Get(ctx, "Bitcoin")
		cache.Set(ctx, historyFor("Litecoin"))

		_, ok := cache.Get(ctx, "Ethereum")
		Expect(ok).To(BeFalse())
		_, ok = cache.Get(ctx, "Bitcoin")
		Expect(ok).To(BeTrue())
		Expect(cache.Len()).To(Equal(2))
	})

	It("forgets invalidated symbols", func() {
		cache, err := data.NewCache(data.CacheOptions{})
		Expect(err).To(BeNil())

		cache.Set(ctx, historyFor("Bitcoin"))
		cache.Set(ctx, historyFor("Ethereum"))
		cache.Invalidate(ctx, "Bitcoin")

		_, ok := cache.Get(ctx, "Bitcoin")
		Expect(ok).To(BeFalse())
		_, ok = cache.Get(ctx, "Ethereum")
		Expect(ok).To(BeTrue())
	})

	It("rejects a malformed redis url", func() {
		_, err := data.NewCache(data.CacheOptions{RedisURL: "not a url"})
		Expect(err).ToNot(BeNil())
	})

	It("closes without redis", func() {
		cache, err := data.NewCache(data.CacheOptions{})
		Expect(err).To(BeNil())
		Expect(cache.Close()).To(Succeed())
	})

	It("encodes histories the way redis stores them", func() {
		history := historyFor("Bitcoin")

		encoded, err := json.Marshal(history)
		Expect(err).To(BeNil())
		compressed, err := common.Compress(encoded)
		Expect(err).To(BeNil())

		decompressed, err := common.Decompress(compressed)
		Expect(err).To(BeNil())
		decoded := &data.History{}
		Expect(json.Unmarshal(decompressed, decoded)).To(Succeed())

		Expect(decoded.Symbol).To(Equal("Bitcoin"))
		Expect(decoded.Rows).To(Equal(2))
		Expect(decoded.Quarterly.Index).To(Equal([]string{"2021 Q1", "2021 Q2"}))
		Expect(decoded.Yearly.Vals).To(Equal(history.Yearly.Vals))
	})
})
