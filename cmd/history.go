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
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-crypto/data"
)

var (
	historyGranularity string
	historyMetric      string
	historyAll         bool
)

func init() {
	historyCmd.Flags().StringVarP(&historyGranularity, "granularity", "g", "Daily", "Aggregation interval one of: Daily, Quarterly, or Yearly")
	historyCmd.Flags().StringVarP(&historyMetric, "metric", "m", "High", "Metric to show one of: High, Low, Open, Close, Volume, or MarketCap")
	historyCmd.Flags().BoolVarP(&historyAll, "all", "a", false, "Show every metric of a single asset")

	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [assets...]",
	Short: "Print aggregated price history",
	Long:  `Print one column per asset of the selected metric aggregated by the selected interval. Without assets the default selection is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		granularity, err := data.ParseGranularity(historyGranularity)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid granularity")
		}

		metric, err := data.ParseMetric(historyMetric)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid metric")
		}

		if len(args) == 0 {
			args = viper.GetStringSlice("dashboard.default_assets")
		}

		loader, err := newLoader()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create price loader")
		}
		defer loader.Cache().Close()

		if historyAll {
			for _, asset := range args {
				history, err := loader.Load(ctx, asset)
				if err != nil {
					log.Error().Err(err).Str("Asset", asset).Msg("could not load asset")
					continue
				}
				df, err := history.Table(granularity)
				if err != nil {
					log.Fatal().Err(err).Msg("invalid granularity")
				}
				fmt.Printf("%s (%s)\n%s\n", asset, granularity, df.Table())
			}
			return
		}

		series, err := newBuilder(loader).Build(ctx, args, granularity, metric)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build chart series")
		}
		if len(series) == 0 {
			fmt.Println("<NO DATA>")
			return
		}

		var periods []string
		seen := make(map[string]bool)
		values := make([]map[string]float64, len(series))
		header := []string{string(granularity)}
		for idx, s := range series {
			header = append(header, s.Label)
			values[idx] = make(map[string]float64, len(s.X))
			for jdx, x := range s.X {
				values[idx][x] = s.Y[jdx]
				if !seen[x] {
					seen[x] = true
					periods = append(periods, x)
				}
			}
		}

		// period labels sort chronologically
		sort.Strings(periods)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader(header)
		for _, period := range periods {
			row := []string{period}
			for idx := range series {
				if val, ok := values[idx][period]; ok {
					row = append(row, fmt.Sprintf("%.4f", val))
				} else {
					row = append(row, "")
				}
			}
			table.Append(row)
		}
		fmt.Printf("%s by %s period\n", metric, strings.ToLower(string(granularity)))
		table.Render()
	},
}
