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
	"context"
	"sync"
)

// MemoryStore keeps ledger rows in process memory
type MemoryStore struct {
	mu   sync.Mutex
	rows [][]string
}

// NewMemoryStore creates a store holding the ledger header followed by rows
func NewMemoryStore(rows ...[]string) *MemoryStore {
	store := &MemoryStore{
		rows: [][]string{clone(Header)},
	}
	for _, row := range rows {
		store.rows = append(store.rows, clone(row))
	}
	return store
}

func (store *MemoryStore) ReadRange(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	res := make([][]string, len(store.rows))
	for idx, row := range store.rows {
		res[idx] = clone(row)
	}
	return res, nil
}

func (store *MemoryStore) AppendRow(ctx context.Context, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.rows = append(store.rows, clone(row))
	return nil
}

func clone(row []string) []string {
	res := make([]string, len(row))
	copy(res, row)
	return res
}
