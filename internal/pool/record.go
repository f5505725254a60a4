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

// Package pool holds Record, the pool engine's one piece of persistent
// state. Go has no value-generic array length, so where the original
// design fixes N at compile time via a const generic, Record instead
// carries a runtime N validated once at construction and on every
// decode (see wire.DecodeRecord) — hot-path operation code never
// re-checks it.
package pool

import (
	"github.com/blinklabs-io/shai/internal/amp"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/fee"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

// MinTokens and MaxTokens bound N, the number of tokens in a pool.
const (
	MinTokens = 2
	MaxTokens = 6
	// MaxDecimalDifference is the largest allowed spread between the
	// most- and least-precise mint among {LP mint, token mints}.
	MaxDecimalDifference = 8
)

// Record is the persistent pool state: spec.md §3's PoolRecord.
type Record struct {
	Nonce  byte
	Paused bool
	Amp    amp.Factor

	LPFee, GovFee                   fee.Fee
	PreparedLPFee, PreparedGovFee    fee.Fee
	FeeTransitionTS                  int64 // 0 = no pending change

	LPMintKey          common.Key
	LPDecimalEqualizer uint8

	TokenMintKeys          []common.Key
	TokenDecimalEqualizers []uint8
	TokenAccountKeys       []common.Key

	GovKey         common.Key
	PreparedGovKey common.Key
	GovTransitionTS int64 // 0 = no pending change

	GovFeeAccountKey common.Key

	PreviousDepth decimal.D64
}

// N returns the number of tokens the record was constructed with.
func (r *Record) N() int { return len(r.TokenMintKeys) }

// PoolAuthority derives the pool's authority key from its own key and
// nonce, the stand-in for Solana's create_program_address derivation.
func (r *Record) PoolAuthority(poolKey common.Key) common.Key {
	return common.DeriveAuthority(poolKey, r.Nonce)
}

// NewParams bundles the inputs Init validates and stores.
type NewParams struct {
	Nonce byte
	Amp   amp.Factor

	LPFee, GovFee fee.Fee

	LPMintKey          common.Key
	LPDecimalEqualizer uint8

	TokenMintKeys          []common.Key
	TokenDecimalEqualizers []uint8
	TokenAccountKeys       []common.Key

	GovKey           common.Key
	GovFeeAccountKey common.Key
}

// New validates params against every invariant spec.md §3 lists and
// constructs the initial Record, with PreviousDepth = 0 and no pending
// governance transitions.
func New(p NewParams) (*Record, error) {
	n := len(p.TokenMintKeys)
	if n < MinTokens || n > MaxTokens {
		return nil, poolerr.ErrInvalidInstructionData
	}
	if len(p.TokenDecimalEqualizers) != n || len(p.TokenAccountKeys) != n {
		return nil, poolerr.ErrInvalidInstructionData
	}

	if err := fee.ValidatePair(p.LPFee.Get(), p.GovFee.Get()); err != nil {
		return nil, err
	}

	if err := checkDecimalSpread(p.LPDecimalEqualizer, p.TokenDecimalEqualizers); err != nil {
		return nil, err
	}

	if !p.GovFee.Get().IsZero() && p.GovFeeAccountKey.IsZero() {
		return nil, poolerr.ErrInvalidGovernanceFeeAccount
	}

	seen := map[common.Key]bool{p.LPMintKey: true}
	for _, k := range p.TokenMintKeys {
		if seen[k] {
			return nil, poolerr.ErrDuplicateAccount
		}
		seen[k] = true
	}
	for _, k := range p.TokenAccountKeys {
		if !k.IsZero() && seen[k] {
			return nil, poolerr.ErrDuplicateAccount
		}
		seen[k] = true
	}

	tokenMints := append([]common.Key{}, p.TokenMintKeys...)
	tokenEqualizers := append([]uint8{}, p.TokenDecimalEqualizers...)
	tokenAccounts := append([]common.Key{}, p.TokenAccountKeys...)

	return &Record{
		Nonce:                  p.Nonce,
		Paused:                 false,
		Amp:                    p.Amp,
		LPFee:                  p.LPFee,
		GovFee:                 p.GovFee,
		LPMintKey:              p.LPMintKey,
		LPDecimalEqualizer:     p.LPDecimalEqualizer,
		TokenMintKeys:          tokenMints,
		TokenDecimalEqualizers: tokenEqualizers,
		TokenAccountKeys:       tokenAccounts,
		GovKey:                 p.GovKey,
		GovFeeAccountKey:       p.GovFeeAccountKey,
		PreviousDepth:          decimal.Zero(),
	}, nil
}

// checkDecimalSpread enforces max(decimals) - min(decimals) <= 8
// across the LP mint's equalizer and every token's equalizer. Since an
// equalizer is max_decimals - decimals_of(that_mint), the spread among
// raw decimals equals the spread among equalizers.
func checkDecimalSpread(lpEqualizer uint8, tokenEqualizers []uint8) error {
	min, max := lpEqualizer, lpEqualizer
	for _, e := range tokenEqualizers {
		if e < min {
			min = e
		}
		if e > max {
			max = e
		}
	}
	if int(max)-int(min) > MaxDecimalDifference {
		return poolerr.ErrMaxDecimalDifferenceExceeded
	}
	return nil
}

// Equalize scales a raw per-token balance up to the pool's common
// decimal scale.
func Equalize(raw uint64, equalizer uint8) decimal.D64 {
	scaled := raw
	for i := uint8(0); i < equalizer; i++ {
		scaled *= 10
	}
	return decimal.FromU64(scaled)
}

// DeEqualize scales an equalized amount back down to a token's native
// decimals, rounding half-up: (x + 5*10^(e-1)) / 10^e.
func DeEqualize(equalized decimal.D64, equalizer uint8) uint64 {
	x := equalized.Trunc()
	if equalizer == 0 {
		return x
	}
	pow := uint64(1)
	for i := uint8(0); i < equalizer; i++ {
		pow *= 10
	}
	half := pow / 2
	return (x + half) / pow
}
