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
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/invariant"
	"github.com/blinklabs-io/shai/internal/pool"
	"github.com/blinklabs-io/shai/internal/poolerr"
	"github.com/blinklabs-io/shai/internal/wire"
)

// DeFiAccounts names the host-supplied account slots a DeFi operation
// needs beyond what the pool record already fixes (spec.md §6's
// "DeFi (all)" slot list, reduced to its semantic content).
type DeFiAccounts struct {
	UserAuthority   common.Key
	UserTokens      []common.Key // length N, parallel to record.TokenMintKeys
	UserLPAccount   common.Key   // used by Add and the Remove* variants
}

// ExecuteDeFi runs one of the six liquidity/swap operations against
// poolKey's record.
func (e *Engine) ExecuteDeFi(poolKey common.Key, accounts DeFiAccounts, req *wire.Request) error {
	record, err := e.loadRecord(poolKey)
	if err != nil {
		return err
	}
	n := record.N()

	if req.Tag != wire.TagDeFi {
		return poolerr.ErrInvalidInstructionData
	}
	if req.DeFiTag != wire.DeFiRemoveUniform && record.Paused {
		return poolerr.ErrPoolIsPaused
	}
	// A caller transacting as the pool authority itself needs no extra
	// signer check; anyone else must be confirmed by the SignerOracle.
	if accounts.UserAuthority != record.PoolAuthority(poolKey) {
		if !e.Signer.IsSigner(accounts.UserAuthority) {
			return poolerr.ErrMissingRequiredSignature
		}
	}
	if len(accounts.UserTokens) != n {
		return poolerr.ErrInvalidInstructionData
	}

	balances, err := e.equalizedBalances(record)
	if err != nil {
		return err
	}
	totalLPSupplyRaw, err := e.Ledger.TotalSupply(record.LPMintKey)
	if err != nil {
		return err
	}
	totalLPSupply := pool.Equalize(totalLPSupplyRaw, record.LPDecimalEqualizer)

	ampNow, err := record.Amp.At(e.Clock.Now())
	if err != nil {
		return err
	}

	var result invariant.Result
	switch req.DeFiTag {
	case wire.DeFiAdd:
		result, err = e.runAdd(record, balances, totalLPSupply, ampNow, req.Add)
	case wire.DeFiRemoveUniform:
		result, err = e.runRemoveUniform(record, balances, totalLPSupply, req.RemoveUniform)
	case wire.DeFiRemoveExactBurn:
		result, err = e.runRemoveExactBurn(record, balances, totalLPSupply, ampNow, req.RemoveExactBurn)
	case wire.DeFiRemoveExactOut:
		result, err = e.runRemoveExactOutput(record, balances, totalLPSupply, ampNow, req.RemoveExactOutput)
	case wire.DeFiSwapExactInput:
		result, err = e.runSwapExactInput(record, balances, totalLPSupply, ampNow, req.SwapExactInput)
	case wire.DeFiSwapExactOutput:
		result, err = e.runSwapExactOutput(record, balances, totalLPSupply, ampNow, req.SwapExactOutput)
	default:
		return poolerr.ErrInvalidInstructionData
	}
	if err != nil {
		return err
	}

	if err := e.applyLedgerEffects(record, accounts, req, result); err != nil {
		return err
	}

	record.PreviousDepth = result.NewDepth
	return e.Store.Save(poolKey, record)
}

func (e *Engine) equalizedBalances(record *pool.Record) ([]decimal.D64, error) {
	n := record.N()
	balances := make([]decimal.D64, n)
	for i := 0; i < n; i++ {
		raw, err := e.Ledger.BalanceOf(record.TokenAccountKeys[i])
		if err != nil {
			return nil, err
		}
		balances[i] = pool.Equalize(raw, record.TokenDecimalEqualizers[i])
	}
	return balances, nil
}

func equalizeVector(raw []uint64, equalizers []uint8) []decimal.D64 {
	out := make([]decimal.D64, len(raw))
	for i, v := range raw {
		out[i] = pool.Equalize(v, equalizers[i])
	}
	return out
}

func (e *Engine) runAdd(record *pool.Record, balances []decimal.D64, totalLPSupply, ampNow decimal.D64, req *wire.AddRequest) (invariant.Result, error) {
	if req == nil || len(req.DeltaIn) != record.N() {
		return invariant.Result{}, poolerr.ErrInvalidInstructionData
	}
	deltaIn := equalizeVector(req.DeltaIn, record.TokenDecimalEqualizers)
	result, err := invariant.Add(balances, deltaIn, ampNow, record.PreviousDepth, totalLPSupply, record.LPFee.Get(), record.GovFee.Get())
	if err != nil {
		return invariant.Result{}, err
	}
	minMint := pool.Equalize(req.MinMint, record.LPDecimalEqualizer)
	if result.UserAmount.LessThan(minMint) {
		return invariant.Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	return result, nil
}

func (e *Engine) runRemoveUniform(record *pool.Record, balances []decimal.D64, totalLPSupply decimal.D64, req *wire.RemoveUniformRequest) (invariant.Result, error) {
	if req == nil || len(req.MinOut) != record.N() {
		return invariant.Result{}, poolerr.ErrInvalidInstructionData
	}
	burn := pool.Equalize(req.Burn, record.LPDecimalEqualizer)
	result, err := invariant.RemoveUniform(balances, burn, totalLPSupply, record.PreviousDepth)
	if err != nil {
		return invariant.Result{}, err
	}
	minOut := equalizeVector(req.MinOut, record.TokenDecimalEqualizers)
	for i, amt := range result.PerTokenAmounts {
		if amt.LessThan(minOut[i]) {
			return invariant.Result{}, poolerr.ErrOutsideSpecifiedLimits
		}
	}
	return result, nil
}

func (e *Engine) runRemoveExactBurn(record *pool.Record, balances []decimal.D64, totalLPSupply, ampNow decimal.D64, req *wire.RemoveExactBurnRequest) (invariant.Result, error) {
	if req == nil || int(req.K) >= record.N() {
		return invariant.Result{}, poolerr.ErrInvalidInstructionData
	}
	burn := pool.Equalize(req.Burn, record.LPDecimalEqualizer)
	result, err := invariant.RemoveExactBurn(balances, burn, int(req.K), ampNow, record.PreviousDepth, totalLPSupply, record.LPFee.Get(), record.GovFee.Get())
	if err != nil {
		return invariant.Result{}, err
	}
	minOut := pool.Equalize(req.MinOut, record.TokenDecimalEqualizers[req.K])
	if result.UserAmount.LessThan(minOut) {
		return invariant.Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	return result, nil
}

func (e *Engine) runRemoveExactOutput(record *pool.Record, balances []decimal.D64, totalLPSupply, ampNow decimal.D64, req *wire.RemoveExactOutputRequest) (invariant.Result, error) {
	if req == nil || int(req.K) >= record.N() {
		return invariant.Result{}, poolerr.ErrInvalidInstructionData
	}
	deltaOut := pool.Equalize(req.DeltaOut, record.TokenDecimalEqualizers[req.K])
	result, err := invariant.RemoveExactOutput(balances, deltaOut, int(req.K), ampNow, record.PreviousDepth, totalLPSupply, record.LPFee.Get(), record.GovFee.Get())
	if err != nil {
		return invariant.Result{}, err
	}
	maxBurn := pool.Equalize(req.MaxBurn, record.LPDecimalEqualizer)
	if result.UserAmount.GreaterThan(maxBurn) {
		return invariant.Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	return result, nil
}

func (e *Engine) runSwapExactInput(record *pool.Record, balances []decimal.D64, totalLPSupply, ampNow decimal.D64, req *wire.SwapExactInputRequest) (invariant.Result, error) {
	if req == nil || int(req.K) >= record.N() || len(req.DeltaIn) != record.N() {
		return invariant.Result{}, poolerr.ErrInvalidInstructionData
	}
	deltaIn := equalizeVector(req.DeltaIn, record.TokenDecimalEqualizers)
	result, err := invariant.SwapExactInput(balances, deltaIn, int(req.K), ampNow, record.PreviousDepth, totalLPSupply, record.LPFee.Get(), record.GovFee.Get())
	if err != nil {
		return invariant.Result{}, err
	}
	minOut := pool.Equalize(req.MinOut, record.TokenDecimalEqualizers[req.K])
	if result.UserAmount.LessThan(minOut) {
		return invariant.Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	return result, nil
}

func (e *Engine) runSwapExactOutput(record *pool.Record, balances []decimal.D64, totalLPSupply, ampNow decimal.D64, req *wire.SwapExactOutputRequest) (invariant.Result, error) {
	if req == nil || int(req.K) >= record.N() || len(req.DeltaOut) != record.N() {
		return invariant.Result{}, poolerr.ErrInvalidInstructionData
	}
	deltaOut := equalizeVector(req.DeltaOut, record.TokenDecimalEqualizers)
	result, err := invariant.SwapExactOutput(balances, deltaOut, int(req.K), ampNow, record.PreviousDepth, totalLPSupply, record.LPFee.Get(), record.GovFee.Get())
	if err != nil {
		return invariant.Result{}, err
	}
	maxIn := pool.Equalize(req.MaxIn, record.TokenDecimalEqualizers[req.K])
	if result.UserAmount.GreaterThan(maxIn) {
		return invariant.Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	return result, nil
}

// applyLedgerEffects executes, for the given operation, the ledger
// transfer/mint/burn calls: Add transfers user->pool and then mints LP;
// swaps transfer user->pool before pool->user; the removals burn the
// user's LP before paying out. The governance-fee LP mint always comes
// last.
func (e *Engine) applyLedgerEffects(record *pool.Record, accounts DeFiAccounts, req *wire.Request, result invariant.Result) error {
	switch req.DeFiTag {
	case wire.DeFiAdd:
		for i, raw := range req.Add.DeltaIn {
			if raw == 0 {
				continue
			}
			if err := e.Ledger.Transfer(accounts.UserTokens[i], record.TokenAccountKeys[i], record.TokenMintKeys[i], raw); err != nil {
				return err
			}
		}
		minted := pool.DeEqualize(result.UserAmount, record.LPDecimalEqualizer)
		if minted > 0 {
			if err := e.Ledger.Mint(record.LPMintKey, accounts.UserLPAccount, minted); err != nil {
				return err
			}
		}

	case wire.DeFiRemoveUniform:
		burn := req.RemoveUniform.Burn
		if burn > 0 {
			if err := e.Ledger.Burn(accounts.UserLPAccount, record.LPMintKey, burn); err != nil {
				return err
			}
		}
		for i, amt := range result.PerTokenAmounts {
			raw := pool.DeEqualize(amt, record.TokenDecimalEqualizers[i])
			if raw == 0 {
				continue
			}
			if err := e.Ledger.Transfer(record.TokenAccountKeys[i], accounts.UserTokens[i], record.TokenMintKeys[i], raw); err != nil {
				return err
			}
		}

	case wire.DeFiRemoveExactBurn:
		k := int(req.RemoveExactBurn.K)
		raw := pool.DeEqualize(result.UserAmount, record.TokenDecimalEqualizers[k])
		if err := e.Ledger.Burn(accounts.UserLPAccount, record.LPMintKey, req.RemoveExactBurn.Burn); err != nil {
			return err
		}
		if raw > 0 {
			if err := e.Ledger.Transfer(record.TokenAccountKeys[k], accounts.UserTokens[k], record.TokenMintKeys[k], raw); err != nil {
				return err
			}
		}

	case wire.DeFiRemoveExactOut:
		k := int(req.RemoveExactOutput.K)
		burnRaw := pool.DeEqualize(result.UserAmount, record.LPDecimalEqualizer)
		if burnRaw > 0 {
			if err := e.Ledger.Burn(accounts.UserLPAccount, record.LPMintKey, burnRaw); err != nil {
				return err
			}
		}
		if req.RemoveExactOutput.DeltaOut > 0 {
			if err := e.Ledger.Transfer(record.TokenAccountKeys[k], accounts.UserTokens[k], record.TokenMintKeys[k], req.RemoveExactOutput.DeltaOut); err != nil {
				return err
			}
		}

	case wire.DeFiSwapExactInput:
		k := int(req.SwapExactInput.K)
		for i, raw := range req.SwapExactInput.DeltaIn {
			if raw == 0 {
				continue
			}
			if err := e.Ledger.Transfer(accounts.UserTokens[i], record.TokenAccountKeys[i], record.TokenMintKeys[i], raw); err != nil {
				return err
			}
		}
		outRaw := pool.DeEqualize(result.UserAmount, record.TokenDecimalEqualizers[k])
		if outRaw > 0 {
			if err := e.Ledger.Transfer(record.TokenAccountKeys[k], accounts.UserTokens[k], record.TokenMintKeys[k], outRaw); err != nil {
				return err
			}
		}

	case wire.DeFiSwapExactOutput:
		k := int(req.SwapExactOutput.K)
		inRaw := pool.DeEqualize(result.UserAmount, record.TokenDecimalEqualizers[k])
		if inRaw > 0 {
			if err := e.Ledger.Transfer(accounts.UserTokens[k], record.TokenAccountKeys[k], record.TokenMintKeys[k], inRaw); err != nil {
				return err
			}
		}
		for i, raw := range req.SwapExactOutput.DeltaOut {
			if raw == 0 {
				continue
			}
			if err := e.Ledger.Transfer(record.TokenAccountKeys[i], accounts.UserTokens[i], record.TokenMintKeys[i], raw); err != nil {
				return err
			}
		}
	}

	if !result.GovLP.IsZero() && !record.GovFeeAccountKey.IsZero() {
		govLPRaw := pool.DeEqualize(result.GovLP, record.LPDecimalEqualizer)
		if govLPRaw > 0 {
			if err := e.Ledger.Mint(record.LPMintKey, record.GovFeeAccountKey, govLPRaw); err != nil {
				return err
			}
		}
	}

	return nil
}
