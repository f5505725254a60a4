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

package engine

import (
	"github.com/blinklabs-io/shai/internal/amp"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/fee"
	"github.com/blinklabs-io/shai/internal/pool"
	"github.com/blinklabs-io/shai/internal/poolerr"
	"github.com/blinklabs-io/shai/internal/wire"
)

// InitAccounts names the one-time setup account slots spec.md 4.I
// requires: the LP mint and every token mint/vault the pool will hold,
// plus the governance key and (if gov_fee > 0) its fee account.
type InitAccounts struct {
	LPMintKey              common.Key
	LPMintHasZeroSupply    bool
	LPMintHasNoFreezeAuth  bool
	LPMintAuthorityIsPool  bool

	TokenMintKeys          []common.Key
	TokenDecimalEqualizers []uint8
	TokenAccountKeys       []common.Key
	TokenAccountsAreEmpty  bool // every vault holds a zero balance
	TokenAccountsOwnedByPool bool

	GovKey           common.Key
	GovFeeAccountKey common.Key
}

// Init validates and persists a new pool record at poolKey, per
// spec.md 4.I's one-time setup preconditions: the LP mint must be
// freshly minted with no outstanding supply or freeze authority and
// its mint authority must already be the pool's derived authority;
// every token vault must be empty and owned by that same authority.
// None of these properties are re-derivable from the account model
// abstraction this package uses, so the host adapter computes them and
// reports them via InitAccounts.
func (e *Engine) Init(poolKey common.Key, accounts InitAccounts, lpDecimalEqualizer uint8, req *wire.InitRequest) error {
	if req == nil {
		return poolerr.ErrInvalidInstructionData
	}

	if !accounts.LPMintHasZeroSupply {
		return poolerr.ErrMintHasBalance
	}
	if !accounts.LPMintHasNoFreezeAuth {
		return poolerr.ErrMintHasFreezeAuthority
	}
	if !accounts.LPMintAuthorityIsPool {
		return poolerr.ErrInvalidMintAuthority
	}
	if !accounts.TokenAccountsAreEmpty {
		return poolerr.ErrTokenAccountHasBalance
	}
	if !accounts.TokenAccountsOwnedByPool {
		return poolerr.ErrInvalidPoolAuthorityAccount
	}

	lpFee, err := fee.New(req.LPFee)
	if err != nil {
		return err
	}
	govFee, err := fee.New(req.GovFee)
	if err != nil {
		return err
	}
	if err := fee.ValidatePair(lpFee.Get(), govFee.Get()); err != nil {
		return err
	}
	if req.AmpInitial.LessThan(amp.MinValue) || req.AmpInitial.GreaterThan(amp.MaxValue) {
		return poolerr.ErrOutsideSpecifiedLimits
	}

	record, err := pool.New(pool.NewParams{
		Nonce:                  req.Nonce,
		Amp:                    amp.Flat(req.AmpInitial, e.Clock.Now()),
		LPFee:                  lpFee,
		GovFee:                 govFee,
		LPMintKey:              accounts.LPMintKey,
		LPDecimalEqualizer:     lpDecimalEqualizer,
		TokenMintKeys:          accounts.TokenMintKeys,
		TokenDecimalEqualizers: accounts.TokenDecimalEqualizers,
		TokenAccountKeys:       accounts.TokenAccountKeys,
		GovKey:                 accounts.GovKey,
		GovFeeAccountKey:       accounts.GovFeeAccountKey,
	})
	if err != nil {
		return err
	}

	return e.Store.Save(poolKey, record)
}
