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

package wire_test

import (
	"testing"

	"github.com/blinklabs-io/shai/internal/amp"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/fee"
	"github.com/blinklabs-io/shai/internal/pool"
	"github.com/blinklabs-io/shai/internal/wire"
)

func TestRequestRoundTripAdd(t *testing.T) {
	req := &wire.Request{
		Tag:     wire.TagDeFi,
		DeFiTag: wire.DeFiAdd,
		Add:     &wire.AddRequest{DeltaIn: []uint64{100, 200, 300}, MinMint: 50},
	}
	encoded, err := wire.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	decoded, err := wire.DecodeRequest(encoded, 3)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if decoded.Tag != wire.TagDeFi || decoded.DeFiTag != wire.DeFiAdd {
		t.Fatalf("unexpected tags: %+v", decoded)
	}
	if decoded.Add.MinMint != 50 || len(decoded.Add.DeltaIn) != 3 || decoded.Add.DeltaIn[2] != 300 {
		t.Errorf("Add payload mismatch: %+v", decoded.Add)
	}
}

func TestRequestRoundTripSwapExactOutput(t *testing.T) {
	req := &wire.Request{
		Tag:     wire.TagDeFi,
		DeFiTag: wire.DeFiSwapExactOutput,
		SwapExactOutput: &wire.SwapExactOutputRequest{
			DeltaOut: []uint64{0, 500, 0},
			K:        0,
			MaxIn:    1000,
		},
	}
	encoded, err := wire.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	decoded, err := wire.DecodeRequest(encoded, 3)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if decoded.SwapExactOutput.MaxIn != 1000 || decoded.SwapExactOutput.K != 0 || decoded.SwapExactOutput.DeltaOut[1] != 500 {
		t.Errorf("SwapExactOutput payload mismatch: %+v", decoded.SwapExactOutput)
	}
}

func TestRequestRoundTripGovernance(t *testing.T) {
	req := &wire.Request{
		Tag:    wire.TagGovernance,
		GovTag: wire.GovAdjustAmpFactor,
		AdjustAmpFactor: &wire.AdjustAmpFactorRequest{
			TargetTS: 1_700_000_000,
			Target:   decimal.MustNew(500, 0),
		},
	}
	encoded, err := wire.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	decoded, err := wire.DecodeRequest(encoded, 2)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if decoded.AdjustAmpFactor.TargetTS != 1_700_000_000 || decoded.AdjustAmpFactor.Target.Trunc() != 500 {
		t.Errorf("AdjustAmpFactor payload mismatch: %+v", decoded.AdjustAmpFactor)
	}
}

func TestRequestRoundTripInit(t *testing.T) {
	req := &wire.Request{
		Tag: wire.TagInit,
		Init: &wire.InitRequest{
			Nonce:      7,
			AmpInitial: decimal.MustNew(1000, 0),
			LPFee:      decimal.MustNew(3, 4),
			GovFee:     decimal.MustNew(1, 4),
		},
	}
	encoded, err := wire.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	decoded, err := wire.DecodeRequest(encoded, 2)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if decoded.Init.Nonce != 7 || decoded.Init.AmpInitial.Trunc() != 1000 {
		t.Errorf("Init payload mismatch: %+v", decoded.Init)
	}
}

func buildTestRecord(t *testing.T, n int) *pool.Record {
	t.Helper()
	lpFee, err := fee.New(decimal.MustNew(3, 4))
	if err != nil {
		t.Fatalf("fee.New: %v", err)
	}
	govFee, err := fee.New(decimal.MustNew(1, 4))
	if err != nil {
		t.Fatalf("fee.New: %v", err)
	}

	mints := make([]common.Key, n)
	equalizers := make([]uint8, n)
	vaults := make([]common.Key, n)
	for i := 0; i < n; i++ {
		mints[i] = common.KeyFromBytes([]byte{byte('m'), byte(i)})
		vaults[i] = common.KeyFromBytes([]byte{byte('v'), byte(i)})
	}

	params := pool.NewParams{
		Nonce:                  3,
		Amp:                    amp.Flat(decimal.MustNew(1000, 0), 0),
		LPFee:                  lpFee,
		GovFee:                 govFee,
		LPMintKey:              common.KeyFromBytes([]byte("lp-mint")),
		LPDecimalEqualizer:     0,
		TokenMintKeys:          mints,
		TokenDecimalEqualizers: equalizers,
		TokenAccountKeys:       vaults,
		GovKey:                 common.KeyFromBytes([]byte("gov")),
		GovFeeAccountKey:       common.KeyFromBytes([]byte("gov-fee-acct")),
	}
	record, err := pool.New(params)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	return record
}

func TestRecordRoundTrip(t *testing.T) {
	for _, n := range []int{2, 3, 4, 6} {
		record := buildTestRecord(t, n)
		record.PreviousDepth = decimal.FromU64(123456)

		encoded, err := wire.EncodeRecord(record)
		if err != nil {
			t.Fatalf("EncodeRecord(n=%d): %v", n, err)
		}
		decoded, err := wire.DecodeRecord(encoded)
		if err != nil {
			t.Fatalf("DecodeRecord(n=%d): %v", n, err)
		}
		if decoded.N() != n {
			t.Errorf("N() = %d, want %d", decoded.N(), n)
		}
		if decoded.Nonce != record.Nonce {
			t.Errorf("Nonce mismatch: got %d, want %d", decoded.Nonce, record.Nonce)
		}
		if decoded.PreviousDepth.Cmp(record.PreviousDepth) != 0 {
			t.Errorf("PreviousDepth mismatch: got %d, want %d", decoded.PreviousDepth.Trunc(), record.PreviousDepth.Trunc())
		}
		if decoded.LPMintKey != record.LPMintKey {
			t.Errorf("LPMintKey mismatch")
		}
		for i := 0; i < n; i++ {
			if decoded.TokenMintKeys[i] != record.TokenMintKeys[i] {
				t.Errorf("TokenMintKeys[%d] mismatch", i)
			}
		}
	}
}
