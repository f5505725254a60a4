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

package pool_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/shai/internal/amp"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/fee"
	"github.com/blinklabs-io/shai/internal/pool"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

func validParams() pool.NewParams {
	lpFee, _ := fee.New(decimal.MustNew(3, 4))
	govFee, _ := fee.New(decimal.MustNew(1, 4))
	return pool.NewParams{
		Nonce:                  1,
		Amp:                    amp.Flat(decimal.MustNew(100, 0), 0),
		LPFee:                  lpFee,
		GovFee:                 govFee,
		LPMintKey:              common.KeyFromBytes([]byte("lp-mint")),
		LPDecimalEqualizer:     0,
		TokenMintKeys:          []common.Key{common.KeyFromBytes([]byte("mint-a")), common.KeyFromBytes([]byte("mint-b")), common.KeyFromBytes([]byte("mint-c"))},
		TokenDecimalEqualizers: []uint8{0, 0, 0},
		TokenAccountKeys:       []common.Key{common.KeyFromBytes([]byte("vault-a")), common.KeyFromBytes([]byte("vault-b")), common.KeyFromBytes([]byte("vault-c"))},
		GovKey:                 common.KeyFromBytes([]byte("gov")),
		GovFeeAccountKey:       common.KeyFromBytes([]byte("gov-fee-account")),
	}
}

func TestNewValidRecord(t *testing.T) {
	r, err := pool.New(validParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.N() != 3 {
		t.Errorf("N() = %d, want 3", r.N())
	}
	if !r.PreviousDepth.IsZero() {
		t.Errorf("expected PreviousDepth = 0 at init")
	}
}

func TestNewRejectsTooFewTokens(t *testing.T) {
	p := validParams()
	p.TokenMintKeys = p.TokenMintKeys[:1]
	p.TokenDecimalEqualizers = p.TokenDecimalEqualizers[:1]
	p.TokenAccountKeys = p.TokenAccountKeys[:1]
	if _, err := pool.New(p); !errors.Is(err, poolerr.ErrInvalidInstructionData) {
		t.Errorf("expected ErrInvalidInstructionData, got %v", err)
	}
}

func TestNewRejectsExcessiveFees(t *testing.T) {
	p := validParams()
	highFee, _ := fee.New(decimal.MustNew(99, 2))
	p.LPFee = highFee
	p.GovFee = highFee
	if _, err := pool.New(p); !errors.Is(err, poolerr.ErrInvalidFeeInput) {
		t.Errorf("expected ErrInvalidFeeInput, got %v", err)
	}
}

func TestNewRejectsDecimalSpreadTooLarge(t *testing.T) {
	p := validParams()
	p.TokenDecimalEqualizers = []uint8{0, 0, 9}
	if _, err := pool.New(p); !errors.Is(err, poolerr.ErrMaxDecimalDifferenceExceeded) {
		t.Errorf("expected ErrMaxDecimalDifferenceExceeded, got %v", err)
	}
}

func TestNewRejectsMissingGovFeeAccount(t *testing.T) {
	p := validParams()
	p.GovFeeAccountKey = common.ZeroKey()
	if _, err := pool.New(p); !errors.Is(err, poolerr.ErrInvalidGovernanceFeeAccount) {
		t.Errorf("expected ErrInvalidGovernanceFeeAccount, got %v", err)
	}
}

func TestNewRejectsDuplicateAccounts(t *testing.T) {
	p := validParams()
	p.TokenMintKeys[1] = p.TokenMintKeys[0]
	if _, err := pool.New(p); !errors.Is(err, poolerr.ErrDuplicateAccount) {
		t.Errorf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestEqualizeAndDeEqualizeRoundTrip(t *testing.T) {
	equalized := pool.Equalize(123, 3)
	if equalized.Trunc() != 123_000 {
		t.Errorf("Equalize(123, 3) = %d, want 123000", equalized.Trunc())
	}
	back := pool.DeEqualize(equalized, 3)
	if back != 123 {
		t.Errorf("DeEqualize round-trip = %d, want 123", back)
	}
}

func TestDeEqualizeRoundsHalfUp(t *testing.T) {
	// 1235 at equalizer 1 (i.e. raw value 123.5) rounds up to 124.
	v, err := decimal.New(1235, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := pool.DeEqualize(v, 1)
	if got != 124 {
		t.Errorf("DeEqualize(1235, equalizer=1) = %d, want 124", got)
	}
}
