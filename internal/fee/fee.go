// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fee holds a single validated fractional fee, always < 1.
package fee

import (
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

// Fee wraps a D64 known to be in [0, 1).
type Fee struct {
	value decimal.D64
}

// Zero is the zero fee.
func Zero() Fee { return Fee{} }

// New validates and wraps a fee value. Fails with ErrInvalidFeeInput if
// value >= 1.
func New(value decimal.D64) (Fee, error) {
	if !value.LessThan(decimal.One()) {
		return Fee{}, poolerr.ErrInvalidFeeInput
	}
	return Fee{value: value}, nil
}

// Get returns the underlying D64 value.
func (f Fee) Get() decimal.D64 {
	return f.value
}

// ValidatePair checks that lpFee + govFee < 1. It is called at Init
// (engine.Init and pool.New) and at PrepareFeeChange; EnactFeeChange
// commits the pair checked at preparation without checking it again.
func ValidatePair(lpFee, govFee decimal.D64) error {
	sum, err := lpFee.Add(govFee)
	if err != nil {
		return err
	}
	if !sum.LessThan(decimal.One()) {
		return poolerr.ErrInvalidFeeInput
	}
	return nil
}
