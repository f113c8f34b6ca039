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

package data

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("asset data not found")
	ErrInvalidSymbol          = errors.New("invalid asset symbol")
	ErrMalformedRow           = errors.New("malformed row")
	ErrMissingColumn          = errors.New("required column missing")
	ErrUnsupportedMetric      = errors.New("unsupported metric")
	ErrUnsupportedGranularity = errors.New("unsupported granularity")
)

// MalformedRowError describes a price file row whose date or metrics could not be parsed
type MalformedRowError struct {
	Symbol string
	Row    int
	Column string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s: row %d of %s has an invalid %s value", ErrMalformedRow, e.Row, e.Symbol, e.Column)
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedRow
}
