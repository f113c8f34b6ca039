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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-crypto/common"
	"github.com/penny-vault/pv-crypto/order"
)

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "PVCRYPTO_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PVCRYPTO_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PVCRYPTO_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "PVCRYPTO_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Write human readable logs instead of JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Price data
	viper.BindEnv("data.dir", "PVCRYPTO_DATA_DIR")
	rootCmd.PersistentFlags().String("data-dir", "./assets/data", "Directory holding one price file per asset")
	viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	viper.BindEnv("data.file_pattern", "PVCRYPTO_DATA_FILE_PATTERN")
	rootCmd.PersistentFlags().String("data-file-pattern", "coin_%s.csv", "Name of a price file; %s is replaced by the asset")
	viper.BindPFlag("data.file_pattern", rootCmd.PersistentFlags().Lookup("data-file-pattern"))

	viper.BindEnv("data.strict", "PVCRYPTO_DATA_STRICT")
	rootCmd.PersistentFlags().Bool("data-strict", false, "Fail on malformed price rows instead of skipping them")
	viper.BindPFlag("data.strict", rootCmd.PersistentFlags().Lookup("data-strict"))

	// Cache
	viper.BindEnv("cache.size", "PVCRYPTO_CACHE_SIZE")
	rootCmd.PersistentFlags().Int("cache-size", 128, "Number of asset histories kept in memory")
	viper.BindPFlag("cache.size", rootCmd.PersistentFlags().Lookup("cache-size"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	rootCmd.PersistentFlags().String("cache-redis-url", "", "Redis server shared by dashboard instances, if blank only memory is used")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("cache-redis-url"))

	viper.BindEnv("cache.ttl", "PVCRYPTO_CACHE_TTL")
	rootCmd.PersistentFlags().Duration("cache-ttl", 0, "Expiration of redis entries, 0 never expires")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	// Dashboard
	viper.SetDefault("dashboard.default_assets", []string{"Bitcoin", "Ethereum", "Litecoin", "Uniswap", "Dogecoin"})
	viper.BindEnv("dashboard.max_assets", "PVCRYPTO_MAX_ASSETS")
	rootCmd.PersistentFlags().Int("max-assets", 5, "Maximum number of assets on one chart, 0 for no limit")
	viper.BindPFlag("dashboard.max_assets", rootCmd.PersistentFlags().Lookup("max-assets"))

	// Transaction store
	viper.BindEnv("store.backend", "PVCRYPTO_STORE")
	rootCmd.PersistentFlags().String("store", "sheets", "Transaction store one of: `sheets`, `postgres`, or `memory`")
	viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))

	viper.BindEnv("store.timeout", "PVCRYPTO_STORE_TIMEOUT")
	rootCmd.PersistentFlags().Duration("store-timeout", 30*time.Second, "Maximum duration of a transaction store call")
	viper.BindPFlag("store.timeout", rootCmd.PersistentFlags().Lookup("store-timeout"))

	viper.BindEnv("sheets.spreadsheet_id", "PVCRYPTO_SPREADSHEET_ID")
	rootCmd.PersistentFlags().String("spreadsheet-id", "", "Google Sheets spreadsheet holding the transactions")
	viper.BindPFlag("sheets.spreadsheet_id", rootCmd.PersistentFlags().Lookup("spreadsheet-id"))

	viper.BindEnv("sheets.range", "PVCRYPTO_SHEETS_RANGE")
	rootCmd.PersistentFlags().String("sheets-range", "Sheet1", "Range of the spreadsheet holding the transactions")
	viper.BindPFlag("sheets.range", rootCmd.PersistentFlags().Lookup("sheets-range"))

	viper.BindEnv("sheets.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	rootCmd.PersistentFlags().String("sheets-credentials", "", "Service account key file, if blank application default credentials are used")
	viper.BindPFlag("sheets.credentials_file", rootCmd.PersistentFlags().Lookup("sheets-credentials"))

	viper.SetDefault("sheets.base_url", "https://sheets.googleapis.com")

	viper.BindEnv("database.url", "DATABASE_URL")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))

	// Order form
	viper.SetDefault("order.symbols", order.DefaultSymbols)
	viper.BindEnv("order.require_positive_amount", "PVCRYPTO_REQUIRE_POSITIVE_AMOUNT")
	rootCmd.PersistentFlags().Bool("require-positive-amount", false, "Reject orders with an amount of zero or less")
	viper.BindPFlag("order.require_positive_amount", rootCmd.PersistentFlags().Lookup("require-positive-amount"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	viper.BindEnv("otlp.http", "PVCRYPTO_OTLP_HTTP")
}

var rootCmd = &cobra.Command{
	Use:     "pvcrypto",
	Version: common.CurrentVersion.String(),
	Short:   "Crypto price history and portfolio dashboard",
	Long:    `Chart historical cryptocurrency prices and keep a ledger of buy and sell orders in a spreadsheet.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
