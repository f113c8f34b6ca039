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
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/penny-vault/pv-crypto/order"
)

var (
	orderSymbol string
	orderDate   string
	orderAction string
	orderAmount string
)

func init() {
	orderCmd.Flags().StringVarP(&orderSymbol, "symbol", "s", "", "Cryptocurrency symbol, e.g. BTC")
	orderCmd.Flags().StringVarP(&orderDate, "date", "d", "", "Date of the order as YYYY-MM-DD")
	orderCmd.Flags().StringVarP(&orderAction, "action", "a", "Buy", "Buy or Sell")
	orderCmd.Flags().StringVar(&orderAmount, "amount", "", "Amount of cryptocurrency")

	rootCmd.AddCommand(orderCmd)
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Append a buy or sell order to the ledger",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		form := &order.Form{
			Symbol: orderSymbol,
			Action: orderAction,
		}
		if orderDate != "" {
			dt, err := time.Parse("2006-01-02", orderDate)
			if err != nil {
				log.Fatal().Err(err).Str("Date", orderDate).Msg("date must be formatted as YYYY-MM-DD")
			}
			form.Date = &dt
		}
		if orderAmount != "" {
			amount, err := decimal.NewFromString(orderAmount)
			if err != nil {
				log.Fatal().Err(err).Str("Amount", orderAmount).Msg("amount is not a number")
			}
			form.Amount = &amount
		}

		ledger, closeStore, err := newLedger(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open transaction store")
		}
		defer closeStore()

		trx, err := newValidator().Submit(ctx, ledger, form)
		if err != nil {
			var validationErr *order.ValidationError
			if errors.As(err, &validationErr) {
				for _, v := range validationErr.Violations {
					fmt.Fprintln(os.Stderr, v.Message)
				}
				closeStore()
				os.Exit(2)
			}
			log.Fatal().Err(err).Msg("could not submit order")
		}

		fmt.Printf("recorded %s %s %s on %s\n", trx.Action, trx.Amount, trx.Symbol, trx.Date.Format("2006-01-02"))
	},
}
