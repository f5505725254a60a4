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

package sim_test

import (
	"testing"

	"github.com/blinklabs-io/shai/internal/collab"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/engine"
	"github.com/blinklabs-io/shai/internal/sim"
	"github.com/blinklabs-io/shai/internal/wire"
)

func key(label string) common.Key { return common.KeyFromBytes([]byte(label)) }

func buildRunner(t *testing.T) (*sim.Runner, *engine.Engine, common.Key) {
	t.Helper()
	ledger := collab.NewMemoryLedger()
	clock := collab.NewFixedClock(1_700_000_000)
	store := engine.NewMapStore()

	poolKey := key("sim-pool")
	govKey := key("sim-gov")
	userKey := key("sim-user")
	lpMint := key("sim-lp-mint")
	userLP := key("sim-user-lp")
	mints := [2]common.Key{key("sim-mint-a"), key("sim-mint-b")}
	vaults := [2]common.Key{key("sim-vault-a"), key("sim-vault-b")}
	userTokens := [2]common.Key{key("sim-user-a"), key("sim-user-b")}

	signer := collab.NewStaticSignerOracle(userKey, govKey)
	eng := engine.New(ledger, clock, signer, store, 3*24*60*60, 24*60*60, 10)

	ledger.OpenAccount(userLP, lpMint, 0)
	for i := 0; i < 2; i++ {
		ledger.OpenAccount(vaults[i], mints[i], 0)
		ledger.OpenAccount(userTokens[i], mints[i], 10_000_000)
	}

	initReq := &wire.InitRequest{
		Nonce:      1,
		AmpInitial: decimal.MustNew(500, 0),
		LPFee:      decimal.MustNew(3, 4),
		GovFee:     decimal.MustNew(1, 4),
	}
	initAccounts := engine.InitAccounts{
		LPMintKey:                lpMint,
		LPMintHasZeroSupply:      true,
		LPMintHasNoFreezeAuth:    true,
		LPMintAuthorityIsPool:    true,
		TokenMintKeys:            mints[:],
		TokenDecimalEqualizers:   []uint8{0, 0},
		TokenAccountKeys:         vaults[:],
		TokenAccountsAreEmpty:    true,
		TokenAccountsOwnedByPool: true,
		GovKey:                   govKey,
		GovFeeAccountKey:         key("sim-gov-fee"),
	}
	if err := eng.Init(poolKey, initAccounts, 0, initReq); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runner := sim.New(eng)
	return runner, eng, poolKey
}

func TestRunnerReplaysAddThenSwapWithoutError(t *testing.T) {
	runner, _, poolKey := buildRunner(t)

	scenario := sim.Scenario{
		Name:    "add-then-swap",
		PoolKey: poolKey,
		Steps: []sim.Step{
			{
				Label: "add",
				Req: &wire.Request{
					Tag:     wire.TagDeFi,
					DeFiTag: wire.DeFiAdd,
					Add:     &wire.AddRequest{DeltaIn: []uint64{1_000_000, 1_000_000}, MinMint: 0},
				},
				DeFiAccounts: engine.DeFiAccounts{
					UserAuthority: key("sim-user"),
					UserTokens:    []common.Key{key("sim-user-a"), key("sim-user-b")},
					UserLPAccount: key("sim-user-lp"),
				},
			},
			{
				Label: "swap",
				Req: &wire.Request{
					Tag:     wire.TagDeFi,
					DeFiTag: wire.DeFiSwapExactInput,
					SwapExactInput: &wire.SwapExactInputRequest{
						DeltaIn: []uint64{1000, 0},
						K:       1,
						MinOut:  1,
					},
				},
				DeFiAccounts: engine.DeFiAccounts{
					UserAuthority: key("sim-user"),
					UserTokens:    []common.Key{key("sim-user-a"), key("sim-user-b")},
					UserLPAccount: key("sim-user-lp"),
				},
			},
		},
	}

	trace, err := runner.Run(scenario, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(trace.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(trace.Events))
	}
	for _, e := range trace.Events {
		if e.Err != "" {
			t.Errorf("step %q failed: %s", e.Label, e.Err)
		}
	}

	encoded, err := sim.DumpCBOR(trace)
	if err != nil {
		t.Fatalf("DumpCBOR: %v", err)
	}
	if len(encoded) == 0 {
		t.Errorf("expected non-empty CBOR dump")
	}
}

func TestRunnerRecordsStepFailureWithoutHalting(t *testing.T) {
	runner, _, poolKey := buildRunner(t)

	scenario := sim.Scenario{
		Name:    "bad-swap-then-good-add",
		PoolKey: poolKey,
		Steps: []sim.Step{
			{
				Label: "swap-before-liquidity",
				Req: &wire.Request{
					Tag:     wire.TagDeFi,
					DeFiTag: wire.DeFiSwapExactInput,
					SwapExactInput: &wire.SwapExactInputRequest{
						DeltaIn: []uint64{1000, 0},
						K:       1,
						MinOut:  1,
					},
				},
				DeFiAccounts: engine.DeFiAccounts{
					UserAuthority: key("sim-user"),
					UserTokens:    []common.Key{key("sim-user-a"), key("sim-user-b")},
					UserLPAccount: key("sim-user-lp"),
				},
			},
			{
				Label: "add",
				Req: &wire.Request{
					Tag:     wire.TagDeFi,
					DeFiTag: wire.DeFiAdd,
					Add:     &wire.AddRequest{DeltaIn: []uint64{1_000_000, 1_000_000}, MinMint: 0},
				},
				DeFiAccounts: engine.DeFiAccounts{
					UserAuthority: key("sim-user"),
					UserTokens:    []common.Key{key("sim-user-a"), key("sim-user-b")},
					UserLPAccount: key("sim-user-lp"),
				},
			},
		},
	}

	trace, err := runner.Run(scenario, false)
	if err != nil {
		t.Fatalf("Run with haltOnError=false should not return an error: %v", err)
	}
	if trace.Events[0].Err == "" {
		t.Errorf("expected first step (swap on empty pool) to fail")
	}
	if trace.Events[1].Err != "" {
		t.Errorf("expected second step (add) to succeed, got %s", trace.Events[1].Err)
	}
}
