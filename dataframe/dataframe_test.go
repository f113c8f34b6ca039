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

package dataframe_test

import (
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-crypto/dataframe"
)

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var (
			df *dataframe.DataFrame[time.Time]
		)

		BeforeEach(func() {
			df = &dataframe.DataFrame[time.Time]{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("renders a placeholder table", func() {
			Expect(df.Table()).To(Equal("<NO DATA>"))
		})

		It("groups into an empty dataframe", func() {
			grouped := df.GroupBy(func(t time.Time) string { return t.Format("2006") }, dataframe.Mean)
			Expect(grouped.Len()).To(Equal(0))
		})
	})

	Context("with daily values", func() {
		var (
			df *dataframe.DataFrame[time.Time]
		)

		BeforeEach(func() {
			df = dataframe.New[time.Time]("High", "Volume")
			Expect(df.InsertRow(time.Date(2021, 3, 30, 0, 0, 0, 0, time.UTC), 1, 10)).To(Succeed())
			Expect(df.InsertRow(time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC), 2, 20)).To(Succeed())
			Expect(df.InsertRow(time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC), 4, 40)).To(Succeed())
			Expect(df.InsertRow(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 8, 80)).To(Succeed())
		})

		It("is valid", func() {
			Expect(df.Valid()).To(Succeed())
			Expect(df.Len()).To(Equal(4))
		})

		It("rejects rows of the wrong length", func() {
			err := df.InsertRow(time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC), 1)
			Expect(errors.Is(err, dataframe.ErrRowLength)).To(BeTrue())
			Expect(df.Len()).To(Equal(4))
		})

		It("looks up columns by name", func() {
			col, err := df.Column("Volume")
			Expect(err).To(BeNil())
			Expect(col).To(Equal([]float64{10, 20, 40, 80}))

			_, err = df.Column("Close")
			Expect(errors.Is(err, dataframe.ErrColumnNotFound)).To(BeTrue())
		})

		It("copies without sharing storage", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 100
			Expect(df.Vals[0][0]).To(Equal(1.0))
		})

		It("groups by month with the mean", func() {
			grouped := df.GroupBy(func(t time.Time) string { return t.Format("2006-01") }, dataframe.Mean)
			Expect(grouped.Index).To(Equal([]string{"2021-03", "2021-04", "2022-01"}))
			Expect(grouped.ColNames).To(Equal([]string{"High", "Volume"}))
			Expect(grouped.Vals[0]).To(Equal([]float64{1.5, 4, 8}))
			Expect(grouped.Vals[1]).To(Equal([]float64{15, 40, 80}))
		})

		It("keeps groups in order of first appearance", func() {
			grouped := df.GroupBy(func(t time.Time) string { return fmt.Sprintf("%d", t.Year()) }, dataframe.Mean)
			Expect(grouped.Index).To(Equal([]string{"2021", "2022"}))
			Expect(grouped.Vals[0][0]).To(BeNumerically("~", 7.0/3.0, 1e-12))
		})

		It("renders a table", func() {
			table := df.Table()
			Expect(table).To(ContainSubstring("2021-03-30"))
			Expect(table).To(ContainSubstring("HIGH"))
			Expect(table).To(ContainSubstring("80.0000"))
		})
	})
})
