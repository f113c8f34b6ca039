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

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/penny-vault/pv-crypto/observability/opentelemetry"
	"github.com/penny-vault/pv-crypto/portfolio"
)

// types

type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

var (
	ErrRowLength = errors.New("ledger row must have exactly 4 cells")
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS transactions (
	id         BIGSERIAL PRIMARY KEY,
	trade_date TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	action     TEXT NOT NULL,
	amount     TEXT NOT NULL,
	created_on TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
)`
	selectSQL = "SELECT trade_date, symbol, action, amount FROM transactions ORDER BY id"
	insertSQL = "INSERT INTO transactions (trade_date, symbol, action, amount) VALUES ($1, $2, $3, $4)"
)

// Store keeps the ledger in the transactions table. Cells are stored as text exactly as
// they would appear in a spreadsheet.
type Store struct {
	pool PgxIface
}

// Connect opens a connection pool and verifies the server is reachable
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not connect to pool")
		return nil, err
	}
	if err = pool.Ping(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("could not ping database server")
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func NewStore(pool PgxIface) *Store {
	return &Store{
		pool: pool,
	}
}

// Migrate creates the transactions table if it does not exist
func (store *Store) Migrate(ctx context.Context) error {
	return store.inTx(ctx, func(trx pgx.Tx) error {
		_, err := trx.Exec(ctx, createTableSQL)
		return err
	})
}

// ReadRange returns the ledger header followed by every stored row in insertion order
func (store *Store) ReadRange(ctx context.Context) ([][]string, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "database.ReadRange")
	defer span.End()

	rows, err := store.pool.Query(ctx, selectSQL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		log.Error().Stack().Err(err).Str("Query", selectSQL).Msg("could not query transactions")
		return nil, err
	}
	defer rows.Close()

	res := [][]string{append([]string{}, portfolio.Header...)}
	for rows.Next() {
		var date, symbol, action, amount string
		if err := rows.Scan(&date, &symbol, &action, &amount); err != nil {
			log.Error().Stack().Err(err).Msg("could not scan transaction row")
			return nil, err
		}
		res = append(res, []string{date, symbol, action, amount})
	}
	if err := rows.Err(); err != nil {
		log.Error().Stack().Err(err).Msg("transaction rows failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", len(res)-1))
	return res, nil
}

// AppendRow inserts row as the newest transaction
func (store *Store) AppendRow(ctx context.Context, row []string) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "database.AppendRow")
	defer span.End()

	if len(row) != len(portfolio.Header) {
		return fmt.Errorf("%w: got %d", ErrRowLength, len(row))
	}

	err := store.inTx(ctx, func(trx pgx.Tx) error {
		_, err := trx.Exec(ctx, insertSQL, row[0], row[1], row[2], row[3])
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

func (store *Store) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	trx, err := store.pool.Begin(ctx)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not create new transaction")
		return err
	}

	if err := fn(trx); err != nil {
		log.Error().Stack().Err(err).Msg("statement failed")
		if err := trx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	if err := trx.Commit(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("failed to commit changes")
		if err := trx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	return nil
}
