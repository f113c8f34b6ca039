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

package router

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/penny-vault/pv-crypto/common"
	"github.com/penny-vault/pv-crypto/handler"
	"github.com/penny-vault/pv-crypto/middleware"
)

// Config controls the fiber application
type Config struct {
	CORSOrigins []string
}

// New creates a fiber application serving the dashboard API
func New(conf Config, h *handler.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               common.ProgramName,
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	app.Use(recover.New())

	origins := "*"
	if len(conf.CORSOrigins) > 0 {
		origins = strings.Join(conf.CORSOrigins, ", ")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "*",
		AllowMethods:  "GET,POST,HEAD,OPTIONS",
		ExposeHeaders: middleware.RequestIDHeader,
	}))

	app.Use(middleware.NewLogger())

	SetupRoutes(app, h)
	return app
}

// SetupRoutes setup router api
func SetupRoutes(app *fiber.App, h *handler.Handler) {
	api := app.Group("/v1")
	api.Get("/", h.Ping)

	// Price history
	api.Get("/assets", h.ListAssets)
	api.Get("/history", h.History)

	// Portfolio
	portfolio := api.Group("/portfolio")
	portfolio.Get("/transactions", h.ListTransactions)
	portfolio.Get("/positions", h.ListPositions)
	portfolio.Post("/orders", h.CreateOrder)
}
