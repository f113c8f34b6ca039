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
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-crypto/handler"
	"github.com/penny-vault/pv-crypto/observability/opentelemetry"
	"github.com/penny-vault/pv-crypto/router"
)

var profile bool

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	viper.BindEnv("server.cors_origins", "PVCRYPTO_CORS_ORIGINS")
	serveCmd.Flags().StringSlice("cors-origins", []string{}, "Origins allowed to call the API, all when empty")
	viper.BindPFlag("server.cors_origins", serveCmd.Flags().Lookup("cors-origins"))

	serveCmd.Flags().BoolVar(&profile, "cpu-profile", false, "Run pprof and save in profile.out")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long:  `Run HTTP server that serves price history and portfolio data to the dashboard`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile file")
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not start profiler")
			}
			defer pprof.StopCPUProfile()
		}

		shutdown, err := opentelemetry.Setup(opentelemetry.Config{
			Endpoint: viper.GetString("otlp.endpoint"),
			HTTP:     viper.GetBool("otlp.http"),
			Headers:  viper.GetStringMapString("otlp.headers"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not setup tracing")
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("could not flush traces")
			}
		}()

		loader, err := newLoader()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create price loader")
		}
		defer loader.Cache().Close()

		ledger, closeStore, err := newLedger(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open transaction store")
		}
		defer closeStore()

		h := handler.New(loader, newBuilder(loader), ledger, newValidator(), handler.Config{
			DefaultAssets: viper.GetStringSlice("dashboard.default_assets"),
			MaxAssets:     viper.GetInt("dashboard.max_assets"),
		})

		app := router.New(router.Config{
			CORSOrigins: viper.GetStringSlice("server.cors_origins"),
		}, h)

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c
			log.Info().Str("Signal", sig.String()).Msg("shutting down")
			if err := app.Shutdown(); err != nil {
				log.Error().Err(err).Msg("could not shutdown server")
			}
		}()

		addr := ":" + viper.GetString("server.port")
		log.Info().Str("Addr", addr).Msg("starting server")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	},
}
