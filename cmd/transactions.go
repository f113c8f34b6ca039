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
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/pv-crypto/portfolio"
)

func init() {
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(positionsCmd)
}

// fetchTransactions reads the ledger and prints a warning for every excluded row
func fetchTransactions(ctx context.Context) []*portfolio.Transaction {
	ledger, closeStore, err := newLedger(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open transaction store")
	}
	defer closeStore()

	trxs, err := ledger.FetchAll(ctx)
	if err != nil {
		loadErr, ok := portfolio.IsLoadError(err)
		if !ok {
			log.Fatal().Err(err).Msg("could not read transactions")
		}
		for _, row := range loadErr.Rows {
			fmt.Fprintf(os.Stderr, "warning: %s\n", row.Error())
		}
	}
	return trxs
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List every transaction in the ledger",
	Run: func(cmd *cobra.Command, args []string) {
		trxs := fetchTransactions(context.Background())

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader(portfolio.Header)
		for _, trx := range trxs {
			table.Append(trx.Row())
		}
		table.Render()
	},
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Show the net amount held of each symbol",
	Run: func(cmd *cobra.Command, args []string) {
		trxs := fetchTransactions(context.Background())
		positions := portfolio.SortedPositions(portfolio.ComputeNetPositions(trxs))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Symbol", "Net Amount"})
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
		for _, pos := range positions {
			table.Append([]string{pos.Symbol, pos.Amount.String()})
		}
		table.Render()
	},
}
