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

package sheets_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/goccy/go-json"
	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-crypto/portfolio"
	"github.com/penny-vault/pv-crypto/sheets"
)

var (
	getRegexp = regexp.MustCompile(`^https://sheets\.test/v4/spreadsheets/sheet-123/values/Ledger(!|%21)A:D$`)
	appendURL = regexp.MustCompile(`^https://sheets\.test/v4/spreadsheets/sheet-123/values/Ledger(!|%21)A:D:append`)
)

var _ = Describe("Client", func() {
	var (
		ctx       context.Context
		transport *httpmock.MockTransport
		client    *sheets.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		transport = httpmock.NewMockTransport()

		var err error
		client, err = sheets.NewWithHTTPClient(sheets.Config{
			SpreadsheetID: "sheet-123",
			Range:         "Ledger!A:D",
			BaseURL:       "https://sheets.test",
		}, &http.Client{Transport: transport})
		Expect(err).To(BeNil())
	})

	It("requires a spreadsheet id", func() {
		_, err := sheets.NewWithHTTPClient(sheets.Config{}, nil)
		Expect(errors.Is(err, sheets.ErrNoSpreadsheet)).To(BeTrue())
	})

	Context("reading values", func() {
		It("converts every cell to a string", func() {
			transport.RegisterRegexpResponder("GET", getRegexp,
				httpmock.NewStringResponder(200, `{
					"range": "Ledger!A1:D3",
					"majorDimension": "ROWS",
					"values": [
						["Date", "Symbol", "Action", "Amount of Crypto"],
						["01/02/2030", "BTC", "Buy", 2],
						["03/02/2030", "BTC", "Sell"]
					]
				}`))

			rows, err := client.ReadRange(ctx)
			Expect(err).To(BeNil())
			Expect(rows).To(Equal([][]string{
				{"Date", "Symbol", "Action", "Amount of Crypto"},
				{"01/02/2030", "BTC", "Buy", "2"},
				{"03/02/2030", "BTC", "Sell"},
			}))
			Expect(transport.GetTotalCallCount()).To(Equal(1))
		})

		It("returns no rows for an empty sheet", func() {
			transport.RegisterRegexpResponder("GET", getRegexp,
				httpmock.NewStringResponder(200, `{"range": "Ledger!A1:D1000", "majorDimension": "ROWS"}`))

			rows, err := client.ReadRange(ctx)
			Expect(err).To(BeNil())
			Expect(rows).To(BeEmpty())
		})

		It("reports api errors", func() {
			transport.RegisterRegexpResponder("GET", getRegexp,
				httpmock.NewStringResponder(403, `{"error": {"code": 403, "message": "The caller does not have permission", "status": "PERMISSION_DENIED"}}`))

			_, err := client.ReadRange(ctx)
			Expect(errors.Is(err, sheets.ErrRequestFailed)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("PERMISSION_DENIED"))
		})

		It("reports transport errors", func() {
			transport.RegisterRegexpResponder("GET", getRegexp, httpmock.NewErrorResponder(io.ErrUnexpectedEOF))

			_, err := client.ReadRange(ctx)
			Expect(errors.Is(err, io.ErrUnexpectedEOF)).To(BeTrue())
		})
	})

	Context("appending values", func() {
		It("posts a single user entered row", func() {
			var (
				query appendQuery
				body  map[string]interface{}
			)
			transport.RegisterRegexpResponder("POST", appendURL, func(req *http.Request) (*http.Response, error) {
				query = appendQuery{
					valueInputOption: req.URL.Query().Get("valueInputOption"),
					insertDataOption: req.URL.Query().Get("insertDataOption"),
				}
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
					return httpmock.NewStringResponse(400, ""), nil
				}
				return httpmock.NewStringResponse(200, `{"spreadsheetId": "sheet-123", "updates": {"updatedRows": 1}}`), nil
			})

			Expect(client.AppendRow(ctx, []string{"09/07/2030", "DOGE", "Sell", "1250.75"})).To(Succeed())
			Expect(query.valueInputOption).To(Equal("USER_ENTERED"))
			Expect(query.insertDataOption).To(Equal("INSERT_ROWS"))
			Expect(body["values"]).To(Equal([]interface{}{
				[]interface{}{"09/07/2030", "DOGE", "Sell", "1250.75"},
			}))
		})

		It("reports api errors", func() {
			transport.RegisterRegexpResponder("POST", appendURL, httpmock.NewStringResponder(500, `oops`))

			err := client.AppendRow(ctx, []string{"09/07/2030", "DOGE", "Sell", "1"})
			Expect(errors.Is(err, sheets.ErrRequestFailed)).To(BeTrue())
		})
	})

	It("works as a ledger store", func() {
		transport.RegisterRegexpResponder("GET", getRegexp,
			httpmock.NewStringResponder(200, `{"values": [
				["Symbol", "Date", "Action", "Amount of Crypto"],
				["ETH", "05/06/2031", "Buy", "3"],
				["ETH", "06/06/2031", "Sell", "1"]
			]}`))

		ledger := portfolio.NewLedger(client, time.Second)
		trxs, err := ledger.FetchAll(ctx)
		Expect(err).To(BeNil())
		Expect(trxs).To(HaveLen(2))
		Expect(portfolio.ComputeNetPositions(trxs)["ETH"].String()).To(Equal("2"))
	})
})

type appendQuery struct {
	valueInputOption string
	insertDataOption string
}
