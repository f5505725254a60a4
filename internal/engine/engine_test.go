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

package engine_test

import (
	"testing"

	"github.com/blinklabs-io/shai/internal/collab"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/engine"
	"github.com/blinklabs-io/shai/internal/poolerr"
	"github.com/blinklabs-io/shai/internal/wire"
)

const enactDelay = 3 * 24 * 60 * 60
const minRampDuration = 24 * 60 * 60

func key(label string) common.Key {
	return common.KeyFromBytes([]byte(label))
}

type harness struct {
	engine *engine.Engine
	ledger *collab.MemoryLedger
	clock  *collab.FixedClock
	store  *engine.MapStore
	poolKey common.Key

	govKey     common.Key
	userKey    common.Key
	lpMint     common.Key
	tokenMints [3]common.Key
	vaults     [3]common.Key
	userTokens [3]common.Key
	userLP     common.Key
	govFeeAcct common.Key
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ledger:  collab.NewMemoryLedger(),
		clock:   collab.NewFixedClock(1_700_000_000),
		store:   engine.NewMapStore(),
		poolKey: key("pool"),
		govKey:  key("gov"),
		userKey: key("user"),
		lpMint:  key("lp-mint"),
		userLP:  key("user-lp"),
		govFeeAcct: key("gov-fee-acct"),
	}
	for i := 0; i < 3; i++ {
		h.tokenMints[i] = key("mint" + string(rune('a'+i)))
		h.vaults[i] = key("vault" + string(rune('a'+i)))
		h.userTokens[i] = key("user-tok" + string(rune('a'+i)))
	}

	signer := collab.NewStaticSignerOracle(h.userKey, h.govKey)
	h.engine = engine.New(h.ledger, h.clock, signer, h.store, enactDelay, minRampDuration, 10)

	h.ledger.OpenAccount(h.userLP, h.lpMint, 0)
	for i := 0; i < 3; i++ {
		h.ledger.OpenAccount(h.vaults[i], h.tokenMints[i], 0)
		h.ledger.OpenAccount(h.userTokens[i], h.tokenMints[i], 10_000_000)
	}

	initReq := &wire.InitRequest{
		Nonce:      1,
		AmpInitial: decimal.MustNew(1000, 0),
		LPFee:      decimal.MustNew(3, 4),
		GovFee:     decimal.MustNew(1, 4),
	}
	initAccounts := engine.InitAccounts{
		LPMintKey:                h.lpMint,
		LPMintHasZeroSupply:      true,
		LPMintHasNoFreezeAuth:    true,
		LPMintAuthorityIsPool:    true,
		TokenMintKeys:            h.tokenMints[:],
		TokenDecimalEqualizers:   []uint8{0, 0, 0},
		TokenAccountKeys:         h.vaults[:],
		TokenAccountsAreEmpty:    true,
		TokenAccountsOwnedByPool: true,
		GovKey:                   h.govKey,
		GovFeeAccountKey:         h.govFeeAcct,
	}
	if err := h.engine.Init(h.poolKey, initAccounts, 0, initReq); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return h
}

func (h *harness) defiAccounts() engine.DeFiAccounts {
	return engine.DeFiAccounts{
		UserAuthority: h.userKey,
		UserTokens:    h.userTokens[:],
		UserLPAccount: h.userLP,
	}
}

func TestInitPersistsRecord(t *testing.T) {
	h := newHarness(t)
	record, err := h.store.Load(h.poolKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record.N() != 3 {
		t.Fatalf("N() = %d, want 3", record.N())
	}
	if record.Paused {
		t.Fatalf("new pool should not start paused")
	}
}

func TestAddOnEmptyPoolRequiresAllTokens(t *testing.T) {
	h := newHarness(t)
	req := &wire.Request{
		Tag:     wire.TagDeFi,
		DeFiTag: wire.DeFiAdd,
		Add:     &wire.AddRequest{DeltaIn: []uint64{1000, 0, 1000}, MinMint: 0},
	}
	err := h.engine.ExecuteDeFi(h.poolKey, h.defiAccounts(), req)
	if err != poolerr.ErrAddRequiresAllTokens {
		t.Fatalf("ExecuteDeFi: got %v, want ErrAddRequiresAllTokens", err)
	}
}

func TestAddThenSwapExactInput(t *testing.T) {
	h := newHarness(t)
	addReq := &wire.Request{
		Tag:     wire.TagDeFi,
		DeFiTag: wire.DeFiAdd,
		Add:     &wire.AddRequest{DeltaIn: []uint64{1_000_000, 1_000_000, 1_000_000}, MinMint: 0},
	}
	if err := h.engine.ExecuteDeFi(h.poolKey, h.defiAccounts(), addReq); err != nil {
		t.Fatalf("Add: %v", err)
	}

	lpBalance, err := h.ledger.BalanceOf(h.userLP)
	if err != nil {
		t.Fatalf("BalanceOf(userLP): %v", err)
	}
	if lpBalance == 0 {
		t.Fatalf("expected LP tokens minted on first deposit")
	}

	swapReq := &wire.Request{
		Tag:     wire.TagDeFi,
		DeFiTag: wire.DeFiSwapExactInput,
		SwapExactInput: &wire.SwapExactInputRequest{
			DeltaIn: []uint64{1000, 0, 0},
			K:       1,
			MinOut:  1,
		},
	}
	before, err := h.ledger.BalanceOf(h.userTokens[1])
	if err != nil {
		t.Fatalf("BalanceOf before swap: %v", err)
	}
	if err := h.engine.ExecuteDeFi(h.poolKey, h.defiAccounts(), swapReq); err != nil {
		t.Fatalf("SwapExactInput: %v", err)
	}
	after, err := h.ledger.BalanceOf(h.userTokens[1])
	if err != nil {
		t.Fatalf("BalanceOf after swap: %v", err)
	}
	if after <= before {
		t.Fatalf("expected user token[1] balance to increase: before=%d after=%d", before, after)
	}
}

func TestSwapOnPausedPoolFails(t *testing.T) {
	h := newHarness(t)
	pauseReq := &wire.Request{
		Tag:       wire.TagGovernance,
		GovTag:    wire.GovSetPaused,
		SetPaused: &wire.SetPausedRequest{Paused: true},
	}
	govAccounts := engine.GovernanceAccounts{Caller: h.govKey}
	if err := h.engine.ExecuteGovernance(h.poolKey, govAccounts, pauseReq); err != nil {
		t.Fatalf("SetPaused: %v", err)
	}

	swapReq := &wire.Request{
		Tag:     wire.TagDeFi,
		DeFiTag: wire.DeFiSwapExactInput,
		SwapExactInput: &wire.SwapExactInputRequest{
			DeltaIn: []uint64{1000, 0, 0},
			K:       1,
			MinOut:  0,
		},
	}
	err := h.engine.ExecuteDeFi(h.poolKey, h.defiAccounts(), swapReq)
	if err != poolerr.ErrPoolIsPaused {
		t.Fatalf("ExecuteDeFi on paused pool: got %v, want ErrPoolIsPaused", err)
	}
}

func TestGovernanceRequiresGovSigner(t *testing.T) {
	h := newHarness(t)
	req := &wire.Request{
		Tag:       wire.TagGovernance,
		GovTag:    wire.GovSetPaused,
		SetPaused: &wire.SetPausedRequest{Paused: true},
	}
	govAccounts := engine.GovernanceAccounts{Caller: h.userKey}
	err := h.engine.ExecuteGovernance(h.poolKey, govAccounts, req)
	if err != poolerr.ErrInvalidGovernanceAccount {
		t.Fatalf("ExecuteGovernance: got %v, want ErrInvalidGovernanceAccount", err)
	}
}

func TestFeeChangeRequiresEnactDelay(t *testing.T) {
	h := newHarness(t)
	prepareReq := &wire.Request{
		Tag:    wire.TagGovernance,
		GovTag: wire.GovPrepareFeeChange,
		PrepareFeeChange: &wire.PrepareFeeChangeRequest{
			LPFee:  decimal.MustNew(5, 4),
			GovFee: decimal.MustNew(2, 4),
		},
	}
	govAccounts := engine.GovernanceAccounts{Caller: h.govKey}
	if err := h.engine.ExecuteGovernance(h.poolKey, govAccounts, prepareReq); err != nil {
		t.Fatalf("PrepareFeeChange: %v", err)
	}

	enactReq := &wire.Request{Tag: wire.TagGovernance, GovTag: wire.GovEnactFeeChange}
	if err := h.engine.ExecuteGovernance(h.poolKey, govAccounts, enactReq); err != poolerr.ErrInsufficientDelay {
		t.Fatalf("EnactFeeChange early: got %v, want ErrInsufficientDelay", err)
	}

	h.clock.Advance(enactDelay)
	if err := h.engine.ExecuteGovernance(h.poolKey, govAccounts, enactReq); err != nil {
		t.Fatalf("EnactFeeChange after delay: %v", err)
	}

	record, err := h.store.Load(h.poolKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record.LPFee.Get().Cmp(decimal.MustNew(5, 4)) != 0 || record.GovFee.Get().Cmp(decimal.MustNew(2, 4)) != 0 {
		t.Fatalf("fee change did not take effect: lp=%v gov=%v", record.LPFee.Get(), record.GovFee.Get())
	}
}

func TestAdjustAmpFactorRejectsTooLargeJump(t *testing.T) {
	h := newHarness(t)
	req := &wire.Request{
		Tag:    wire.TagGovernance,
		GovTag: wire.GovAdjustAmpFactor,
		AdjustAmpFactor: &wire.AdjustAmpFactorRequest{
			TargetTS: h.clock.Now() + minRampDuration,
			Target:   decimal.MustNew(1_000_000, 0), // 1000x current amp of 1000
		},
	}
	govAccounts := engine.GovernanceAccounts{Caller: h.govKey}
	err := h.engine.ExecuteGovernance(h.poolKey, govAccounts, req)
	if err != poolerr.ErrAmpJumpTooLarge {
		t.Fatalf("ExecuteGovernance: got %v, want ErrAmpJumpTooLarge", err)
	}
}
