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
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(assetsCmd)
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List assets with price data",
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := newLoader()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create price loader")
		}
		defer loader.Cache().Close()

		available, err := loader.Available()
		if err != nil {
			log.Fatal().Err(err).Msg("could not list assets")
		}

		defaults := make(map[string]bool)
		for _, asset := range viper.GetStringSlice("dashboard.default_assets") {
			defaults[asset] = true
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Asset", "Default", "File"})
		for _, asset := range available {
			mark := ""
			if defaults[asset] {
				mark = "*"
			}
			table.Append([]string{asset, mark, loader.Path(asset)})
		}
		table.Render()

		if limit := viper.GetInt("dashboard.max_assets"); limit > 0 {
			fmt.Printf("At most %d assets per chart. Default: %s\n", limit, strings.Join(viper.GetStringSlice("dashboard.default_assets"), ", "))
		}
	},
}
