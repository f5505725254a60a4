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
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/fee"
	"github.com/blinklabs-io/shai/internal/poolerr"
	"github.com/blinklabs-io/shai/internal/wire"
)

// GovernanceAccounts names the host-supplied account slots a
// governance operation may reference beyond the caller itself, keyed
// by the index the request payload carries (spec.md §6's governance
// account slots).
type GovernanceAccounts struct {
	Caller       common.Key
	IndexedKeys  []common.Key // resolves PrepareGovernanceTransfer/ChangeGovernanceFeeAcct's index fields
}

func (a GovernanceAccounts) resolve(idx uint8) (common.Key, error) {
	if int(idx) >= len(a.IndexedKeys) {
		return common.Key{}, poolerr.ErrInvalidInstructionData
	}
	return a.IndexedKeys[idx], nil
}

// ExecuteGovernance runs one of the seven governance operations
// (spec.md 4.G) against poolKey's record. Every case is gated by
// requireGovSigner; PrepareFeeChange/PrepareGovernanceTransition stash
// a value that only takes effect after EnactDelaySeconds via the
// matching Enact* operation.
func (e *Engine) ExecuteGovernance(poolKey common.Key, accounts GovernanceAccounts, req *wire.Request) error {
	if req.Tag != wire.TagGovernance {
		return poolerr.ErrInvalidInstructionData
	}
	record, err := e.loadRecord(poolKey)
	if err != nil {
		return err
	}
	if err := e.requireGovSigner(record, accounts.Caller); err != nil {
		return err
	}
	now := e.Clock.Now()

	switch req.GovTag {
	case wire.GovPrepareFeeChange:
		if req.PrepareFeeChange == nil {
			return poolerr.ErrInvalidInstructionData
		}
		lpFee, err := fee.New(req.PrepareFeeChange.LPFee)
		if err != nil {
			return err
		}
		govFee, err := fee.New(req.PrepareFeeChange.GovFee)
		if err != nil {
			return err
		}
		if err := fee.ValidatePair(lpFee.Get(), govFee.Get()); err != nil {
			return err
		}
		record.PreparedLPFee = lpFee
		record.PreparedGovFee = govFee
		record.FeeTransitionTS = now + e.EnactDelaySeconds

	case wire.GovEnactFeeChange:
		if record.FeeTransitionTS == 0 {
			return poolerr.ErrInvalidEnact
		}
		if now < record.FeeTransitionTS {
			return poolerr.ErrInsufficientDelay
		}
		if !record.PreparedGovFee.Get().IsZero() && record.GovFeeAccountKey.IsZero() {
			return poolerr.ErrInvalidGovernanceFeeAccount
		}
		record.LPFee = record.PreparedLPFee
		record.GovFee = record.PreparedGovFee
		record.FeeTransitionTS = 0

	case wire.GovPrepareGovernanceTransfer:
		if req.PrepareGovernanceTransfer == nil {
			return poolerr.ErrInvalidInstructionData
		}
		newGovKey, err := accounts.resolve(req.PrepareGovernanceTransfer.NewGovKeyIndex)
		if err != nil {
			return err
		}
		if newGovKey.IsZero() {
			return poolerr.ErrInvalidGovernanceAccount
		}
		record.PreparedGovKey = newGovKey
		record.GovTransitionTS = now + e.EnactDelaySeconds

	case wire.GovEnactGovernanceTransfer:
		if record.GovTransitionTS == 0 {
			return poolerr.ErrInvalidEnact
		}
		if now < record.GovTransitionTS {
			return poolerr.ErrInsufficientDelay
		}
		record.GovKey = record.PreparedGovKey
		record.PreparedGovKey = common.ZeroKey()
		record.GovTransitionTS = 0

	case wire.GovChangeGovernanceFeeAcct:
		if req.ChangeGovernanceFeeAcct == nil {
			return poolerr.ErrInvalidInstructionData
		}
		newAccount, err := accounts.resolve(req.ChangeGovernanceFeeAcct.NewAccountIndex)
		if err != nil {
			return err
		}
		if newAccount.IsZero() && !record.GovFee.Get().IsZero() {
			return poolerr.ErrInvalidGovernanceFeeAccount
		}
		record.GovFeeAccountKey = newAccount

	case wire.GovAdjustAmpFactor:
		if req.AdjustAmpFactor == nil {
			return poolerr.ErrInvalidInstructionData
		}
		newFactor, err := record.Amp.SetTarget(now, req.AdjustAmpFactor.Target, req.AdjustAmpFactor.TargetTS, e.MinRampDurationSeconds, e.MaxRampFactor)
		if err != nil {
			return err
		}
		record.Amp = newFactor

	case wire.GovSetPaused:
		if req.SetPaused == nil {
			return poolerr.ErrInvalidInstructionData
		}
		record.Paused = req.SetPaused.Paused

	default:
		return poolerr.ErrInvalidInstructionData
	}

	return e.Store.Save(poolKey, record)
}
