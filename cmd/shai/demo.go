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

package main

import (
	"github.com/blinklabs-io/shai/internal/collab"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/config"
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/engine"
	"github.com/blinklabs-io/shai/internal/sim"
	"github.com/blinklabs-io/shai/internal/storage"
	"github.com/blinklabs-io/shai/internal/wire"
)

// runDemo replays a small two-token add-then-swap scenario against a
// real engine.Engine, persisting through the process's configured
// Badger storage directory. A real host supplies its own Ledger and
// SignerOracle (backed by account state and signature checks on its
// chain); this demo substitutes an in-memory ledger and a static
// signer oracle so the scenario can run standalone, as a smoke test of
// the wiring between engine, storage, and sim.
func runDemo(cfg *config.Config, store *storage.Storage) (sim.Trace, error) {
	key := func(label string) common.Key { return common.KeyFromBytes([]byte(label)) }

	poolKey := key("demo-pool")
	govKey := key("demo-gov")
	userKey := key("demo-user")
	lpMint := key("demo-lp-mint")
	userLP := key("demo-user-lp")
	mints := [2]common.Key{key("demo-mint-a"), key("demo-mint-b")}
	vaults := [2]common.Key{key("demo-vault-a"), key("demo-vault-b")}
	userTokens := [2]common.Key{key("demo-user-a"), key("demo-user-b")}

	ledger := collab.NewMemoryLedger()
	ledger.OpenAccount(userLP, lpMint, 0)
	for i := 0; i < 2; i++ {
		ledger.OpenAccount(vaults[i], mints[i], 0)
		ledger.OpenAccount(userTokens[i], mints[i], 10_000_000)
	}

	clock := collab.NewFixedClock(1_700_000_000)
	signer := collab.NewStaticSignerOracle(userKey, govKey)
	eng := engine.New(
		ledger,
		clock,
		signer,
		store,
		cfg.Governance.EnactDelaySeconds,
		cfg.Governance.MinRampDurationSeconds,
		uint64(cfg.Governance.MaxRampFactor),
	)

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
		GovFeeAccountKey:         key("demo-gov-fee"),
	}
	if err := eng.Init(poolKey, initAccounts, 0, initReq); err != nil {
		return sim.Trace{}, err
	}

	scenario := sim.Scenario{
		Name:    "demo-add-then-swap",
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
					UserAuthority: userKey,
					UserTokens:    userTokens[:],
					UserLPAccount: userLP,
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
					UserAuthority: userKey,
					UserTokens:    userTokens[:],
					UserLPAccount: userLP,
				},
			},
		},
	}

	runner := sim.New(eng)
	return runner.Run(scenario, false)
}

func dumpTraceCBOR(trace sim.Trace) ([]byte, error) {
	return sim.DumpCBOR(trace)
}
