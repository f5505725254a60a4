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

// Package engine is the operation dispatcher (spec.md 4.F): it loads
// the pool record, reads ledger balances, equalizes them, calls the
// invariant solver, de-equalizes the result, checks the caller's
// limits, applies ledger effects in the canonical order, and persists
// the updated record. Governance operations (4.G) and Init (4.I) live
// alongside it in this package since all three share the same Store/
// Ledger/Clock/SignerOracle collaborators and the same record.
//
// The host's account-slot array (spec.md §6) is abstracted here to
// its semantic content: which key is the user authority, which keys
// are the user's token/LP accounts. Decoding a host's raw account list
// into those is the host adapter's job, not this engine's.
package engine

import (
	"fmt"

	"github.com/blinklabs-io/shai/internal/collab"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/pool"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

// Store persists the pool record, keyed by the pool's own account key.
type Store interface {
	Load(poolKey common.Key) (*pool.Record, error)
	Save(poolKey common.Key, record *pool.Record) error
}

// Engine bundles the collaborators every operation needs.
type Engine struct {
	Ledger collab.Ledger
	Clock  collab.Clock
	Signer collab.SignerOracle
	Store  Store

	EnactDelaySeconds      int64
	MinRampDurationSeconds int64
	MaxRampFactor          uint64
}

// New builds an Engine from its collaborators and governance timing
// constants (ordinarily sourced from config.GovernanceConfig).
func New(ledger collab.Ledger, clock collab.Clock, signer collab.SignerOracle, store Store, enactDelaySeconds, minRampDurationSeconds int64, maxRampFactor uint64) *Engine {
	return &Engine{
		Ledger:                 ledger,
		Clock:                  clock,
		Signer:                 signer,
		Store:                  store,
		EnactDelaySeconds:      enactDelaySeconds,
		MinRampDurationSeconds: minRampDurationSeconds,
		MaxRampFactor:          maxRampFactor,
	}
}

func (e *Engine) loadRecord(poolKey common.Key) (*pool.Record, error) {
	record, err := e.Store.Load(poolKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", poolerr.ErrUninitializedAccount, err)
	}
	return record, nil
}

// requireGovSigner enforces the governance-engine precondition shared
// by every governance operation: the caller must present record's
// current gov_key, and the Signer Oracle must confirm it signed.
func (e *Engine) requireGovSigner(record *pool.Record, callerKey common.Key) error {
	if callerKey != record.GovKey {
		return poolerr.ErrInvalidGovernanceAccount
	}
	if !e.Signer.IsSigner(callerKey) {
		return poolerr.ErrMissingRequiredSignature
	}
	return nil
}
