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

package portfolio

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStoreUnavailable = errors.New("transaction store unavailable")
	ErrMissingColumn    = errors.New("required column missing")
	ErrMalformedRow     = errors.New("malformed row")
	ErrUnknownAction    = errors.New("unknown action")
	ErrGenerateHash     = errors.New("could not create a new hash")
)

// MalformedRowError describes a ledger row that could not be converted into a transaction.
// Row is the position of the row in the store where the header is row 1.
type MalformedRowError struct {
	Row    int
	Column string
	Value  string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s: row %d has an invalid %s value %q", ErrMalformedRow, e.Row, e.Column, e.Value)
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedRow
}

// LoadError is returned alongside the well-formed transactions when some rows were rejected
type LoadError struct {
	Rows []*MalformedRowError
}

func (e *LoadError) Error() string {
	msgs := make([]string, len(e.Rows))
	for idx, row := range e.Rows {
		msgs[idx] = row.Error()
	}
	return fmt.Sprintf("%d malformed rows excluded from ledger: %s", len(e.Rows), strings.Join(msgs, "; "))
}

func (e *LoadError) Unwrap() []error {
	errs := make([]error, len(e.Rows))
	for idx, row := range e.Rows {
		errs[idx] = row
	}
	return errs
}
