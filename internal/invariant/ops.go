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

package invariant

import (
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

// Result is what every operation-specific solver entry point returns:
// the amount owed to or by the user, the LP tokens owed to the
// governance fee account, and the pool's new depth to persist as
// previous_depth.
type Result struct {
	UserAmount  decimal.D64
	GovLP       decimal.D64
	NewBalances []decimal.D64
	NewDepth    decimal.D64
	// PerTokenAmounts holds one amount per token; only RemoveUniform
	// populates it, since every other operation moves a single token
	// (or mints/burns a single LP amount) and reports it via UserAmount.
	PerTokenAmounts []decimal.D64
}

func wholeFromTrunc(v decimal.D64) decimal.D64 {
	return decimal.FromU64(v.Trunc())
}

// govLPShare computes total_lp_supply * (dNew - dBaseline)/dBaseline *
// gov_fee/(lp_fee+gov_fee), the LP-token mint owed to the governance
// fee account, per spec.md 4.B's fee-accounting paragraph. Returns
// zero if dNew <= dBaseline (no depth gain to share) or if there is no
// fee configured.
func govLPShare(totalLPSupply, dNew, dBaseline, lpFee, govFee decimal.D64) (decimal.D64, error) {
	if govFee.IsZero() || !dNew.GreaterThan(dBaseline) || dBaseline.IsZero() {
		return decimal.Zero(), nil
	}
	gained, err := dNew.Sub(dBaseline)
	if err != nil {
		return decimal.D64{}, err
	}
	gainRatio, err := gained.Div(dBaseline)
	if err != nil {
		return decimal.D64{}, err
	}
	grossShare, err := totalLPSupply.Mul(gainRatio)
	if err != nil {
		return decimal.D64{}, err
	}
	effectiveFee, err := lpFee.Add(govFee)
	if err != nil {
		return decimal.D64{}, err
	}
	if effectiveFee.IsZero() {
		return decimal.Zero(), nil
	}
	govRatio, err := govFee.Div(effectiveFee)
	if err != nil {
		return decimal.D64{}, err
	}
	share, err := grossShare.Mul(govRatio)
	if err != nil {
		return decimal.D64{}, err
	}
	return wholeFromTrunc(share), nil
}

// Add computes the effect of depositing deltaIn[i] of each token.
// balances and deltaIn are equalized. dBefore is the pool's previous
// depth (0 for an as-yet-empty pool). totalLPSupply is the LP mint's
// current total supply.
func Add(balances, deltaIn []decimal.D64, amp, dBefore, totalLPSupply, lpFee, govFee decimal.D64) (Result, error) {
	n := len(balances)
	gross := make([]decimal.D64, n)
	for i := range balances {
		sum, err := balances[i].Add(deltaIn[i])
		if err != nil {
			return Result{}, err
		}
		gross[i] = sum
	}

	dStar, err := ComputeD(gross, amp)
	if err != nil {
		return Result{}, err
	}

	if totalLPSupply.IsZero() {
		for _, delta := range deltaIn {
			if delta.IsZero() {
				return Result{}, poolerr.ErrAddRequiresAllTokens
			}
		}
		return Result{
			UserAmount:  dStar,
			GovLP:       decimal.Zero(),
			NewBalances: gross,
			NewDepth:    dStar,
		}, nil
	}

	effectiveFee, err := lpFee.Add(govFee)
	if err != nil {
		return Result{}, err
	}

	afterFee := make([]decimal.D64, n)
	for i := range gross {
		// idealBalance_i = balances[i] * dStar / dBefore
		ideal := balances[i]
		if !dBefore.IsZero() {
			scaled, err := balances[i].Mul(dStar)
			if err != nil {
				return Result{}, err
			}
			ideal, err = scaled.Div(dBefore)
			if err != nil {
				return Result{}, err
			}
		}
		var diff decimal.D64
		if gross[i].GreaterThan(ideal) {
			diff, err = gross[i].Sub(ideal)
		} else {
			diff, err = ideal.Sub(gross[i])
		}
		if err != nil {
			return Result{}, err
		}
		fee, err := diff.Mul(effectiveFee)
		if err != nil {
			return Result{}, err
		}
		fee = wholeFromTrunc(fee)
		net, err := gross[i].Sub(fee)
		if err != nil {
			// Fee can't exceed the balance itself in any realistic input;
			// fall back to the unadjusted balance rather than fail.
			net = gross[i]
		}
		afterFee[i] = net
	}

	dNet, err := ComputeD(afterFee, amp)
	if err != nil {
		return Result{}, err
	}

	mintRatio, err := dNet.Sub(dBefore)
	if err != nil {
		return Result{}, err
	}
	mintRatio, err = mintRatio.Div(dBefore)
	if err != nil {
		return Result{}, err
	}
	lpMinted, err := totalLPSupply.Mul(mintRatio)
	if err != nil {
		return Result{}, err
	}
	lpMinted = wholeFromTrunc(lpMinted)

	govLP, err := govLPShare(totalLPSupply, dStar, dBefore, lpFee, govFee)
	if err != nil {
		return Result{}, err
	}

	return Result{
		UserAmount:  lpMinted,
		GovLP:       govLP,
		NewBalances: gross,
		NewDepth:    dNet,
	}, nil
}

// SwapExactInput computes the output of swapping a fixed input amount
// of token k's complement tokens in for token k out. deltaIn[k] must
// be zero; every other deltaIn[i] is added to balances[i].
func SwapExactInput(balances, deltaIn []decimal.D64, k int, amp, dBefore, totalLPSupply, lpFee, govFee decimal.D64) (Result, error) {
	if !deltaIn[k].IsZero() {
		return Result{}, poolerr.ErrInvalidInstructionData
	}
	n := len(balances)
	newIn := make([]decimal.D64, n)
	for i := range balances {
		if i == k {
			newIn[i] = balances[i]
			continue
		}
		sum, err := balances[i].Add(deltaIn[i])
		if err != nil {
			return Result{}, err
		}
		newIn[i] = sum
	}

	rawOutBalance, err := ComputeBalance(newIn, amp, dBefore, k)
	if err != nil {
		return Result{}, err
	}
	grossOut, err := balances[k].Sub(rawOutBalance)
	if err != nil {
		return Result{}, err
	}

	effectiveFee, err := lpFee.Add(govFee)
	if err != nil {
		return Result{}, err
	}
	feeAmount, err := grossOut.Mul(effectiveFee)
	if err != nil {
		return Result{}, err
	}
	userOut, err := grossOut.Sub(feeAmount)
	if err != nil {
		userOut = decimal.Zero()
	}
	userOut = wholeFromTrunc(userOut)

	actual := make([]decimal.D64, n)
	copy(actual, newIn)
	actualK, err := balances[k].Sub(userOut)
	if err != nil {
		return Result{}, err
	}
	actual[k] = actualK

	dNew, err := ComputeD(actual, amp)
	if err != nil {
		return Result{}, err
	}
	govLP, err := govLPShare(totalLPSupply, dNew, dBefore, lpFee, govFee)
	if err != nil {
		return Result{}, err
	}
	return Result{
		UserAmount:  userOut,
		GovLP:       govLP,
		NewBalances: actual,
		NewDepth:    dNew,
	}, nil
}

// SwapExactOutput computes the input required to receive a fixed
// output amount of each non-k token, fixing token k as the one the
// user pays in. deltaOut[k] must be zero.
func SwapExactOutput(balances, deltaOut []decimal.D64, k int, amp, dBefore, totalLPSupply, lpFee, govFee decimal.D64) (Result, error) {
	if !deltaOut[k].IsZero() {
		return Result{}, poolerr.ErrInvalidInstructionData
	}
	n := len(balances)
	reduced := make([]decimal.D64, n)
	for i := range balances {
		if i == k {
			reduced[i] = balances[i]
			continue
		}
		if !deltaOut[i].LessThan(balances[i]) {
			return Result{}, poolerr.ErrOutsideSpecifiedLimits
		}
		diff, err := balances[i].Sub(deltaOut[i])
		if err != nil {
			return Result{}, err
		}
		reduced[i] = diff
	}

	rawInBalance, err := ComputeBalance(reduced, amp, dBefore, k)
	if err != nil {
		return Result{}, err
	}
	rawIn, err := rawInBalance.Sub(balances[k])
	if err != nil {
		return Result{}, err
	}

	effectiveFee, err := lpFee.Add(govFee)
	if err != nil {
		return Result{}, err
	}
	one := decimal.One()
	feeComplement, err := one.Sub(effectiveFee)
	if err != nil {
		return Result{}, err
	}
	userIn := rawIn
	if !feeComplement.IsZero() {
		userIn, err = rawIn.Div(feeComplement)
		if err != nil {
			return Result{}, err
		}
	}
	userInWhole := userIn.Trunc()
	if decimal.FromU64(userInWhole).LessThan(userIn) {
		userInWhole++
	}
	userIn = decimal.FromU64(userInWhole) // ceil: owed-by-user side rounds up

	actual := make([]decimal.D64, n)
	copy(actual, reduced)
	actualK, err := balances[k].Add(userIn)
	if err != nil {
		return Result{}, err
	}
	actual[k] = actualK

	dNew, err := ComputeD(actual, amp)
	if err != nil {
		return Result{}, err
	}
	govLP, err := govLPShare(totalLPSupply, dNew, dBefore, lpFee, govFee)
	if err != nil {
		return Result{}, err
	}

	return Result{
		UserAmount:  userIn,
		GovLP:       govLP,
		NewBalances: actual,
		NewDepth:    dNew,
	}, nil
}

// RemoveExactBurn reduces total LP supply by burnAmount and pays out
// token k only, charging the fee on the withdrawal (output) side.
func RemoveExactBurn(balances []decimal.D64, burnAmount decimal.D64, k int, amp, dBefore, totalLPSupply, lpFee, govFee decimal.D64) (Result, error) {
	if totalLPSupply.IsZero() {
		return Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	n := len(balances)

	remainingSupply, err := totalLPSupply.Sub(burnAmount)
	if err != nil {
		return Result{}, err
	}
	ratio, err := remainingSupply.Div(totalLPSupply)
	if err != nil {
		return Result{}, err
	}
	dTarget, err := dBefore.Mul(ratio)
	if err != nil {
		return Result{}, err
	}

	rawOutBalance, err := ComputeBalance(balances, amp, dTarget, k)
	if err != nil {
		return Result{}, err
	}
	grossOut, err := balances[k].Sub(rawOutBalance)
	if err != nil {
		return Result{}, err
	}

	effectiveFee, err := lpFee.Add(govFee)
	if err != nil {
		return Result{}, err
	}
	feeAmount, err := grossOut.Mul(effectiveFee)
	if err != nil {
		return Result{}, err
	}
	feeAmount = wholeFromTrunc(feeAmount)
	userOut, err := grossOut.Sub(feeAmount)
	if err != nil {
		userOut = decimal.Zero()
	}
	userOut = wholeFromTrunc(userOut)

	actual := make([]decimal.D64, n)
	copy(actual, balances)
	actualK, err := balances[k].Sub(userOut)
	if err != nil {
		return Result{}, err
	}
	actual[k] = actualK

	dNew, err := ComputeD(actual, amp)
	if err != nil {
		return Result{}, err
	}
	govLP, err := govLPShare(remainingSupply, dNew, dTarget, lpFee, govFee)
	if err != nil {
		return Result{}, err
	}

	return Result{
		UserAmount:  userOut,
		GovLP:       govLP,
		NewBalances: actual,
		NewDepth:    dNew,
	}, nil
}

// RemoveExactOutput solves for the LP burn required to pay out a fixed
// amount of token k, charging the fee on the input (burn) side.
func RemoveExactOutput(balances []decimal.D64, deltaOutK decimal.D64, k int, amp, dBefore, totalLPSupply, lpFee, govFee decimal.D64) (Result, error) {
	if !deltaOutK.LessThan(balances[k]) {
		return Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	n := len(balances)
	reduced := make([]decimal.D64, n)
	copy(reduced, balances)
	afterK, err := balances[k].Sub(deltaOutK)
	if err != nil {
		return Result{}, err
	}
	reduced[k] = afterK

	dTarget, err := ComputeD(reduced, amp)
	if err != nil {
		return Result{}, err
	}

	rawBurnRatio, err := dBefore.Sub(dTarget)
	if err != nil {
		return Result{}, err
	}
	rawBurnRatio, err = rawBurnRatio.Div(dBefore)
	if err != nil {
		return Result{}, err
	}
	rawBurn, err := totalLPSupply.Mul(rawBurnRatio)
	if err != nil {
		return Result{}, err
	}

	effectiveFee, err := lpFee.Add(govFee)
	if err != nil {
		return Result{}, err
	}
	one := decimal.One()
	feeComplement, err := one.Sub(effectiveFee)
	if err != nil {
		return Result{}, err
	}
	userBurn := rawBurn
	if !feeComplement.IsZero() {
		userBurn, err = rawBurn.Div(feeComplement)
		if err != nil {
			return Result{}, err
		}
	}
	userBurnWhole := userBurn.Trunc()
	if decimal.FromU64(userBurnWhole).LessThan(userBurn) {
		userBurnWhole++
	}
	userBurn = decimal.FromU64(userBurnWhole) // ceil: owed-by-user side

	remainingSupply, err := totalLPSupply.Sub(userBurn)
	if err != nil {
		return Result{}, err
	}

	// Baseline: the depth the remaining LP supply held before the
	// operation; anything dTarget keeps above it is the retained fee.
	remainingRatio, err := remainingSupply.Div(totalLPSupply)
	if err != nil {
		return Result{}, err
	}
	dBaseline, err := dBefore.Mul(remainingRatio)
	if err != nil {
		return Result{}, err
	}
	govLP, err := govLPShare(remainingSupply, dTarget, dBaseline, lpFee, govFee)
	if err != nil {
		return Result{}, err
	}

	return Result{
		UserAmount:  userBurn,
		GovLP:       govLP,
		NewBalances: reduced,
		NewDepth:    dTarget,
	}, nil
}

// RemoveUniform withdraws a proportional share of every balance for
// burn LP tokens. No solver call, no fee: this is the pause-bypass
// path, always admitted regardless of the pool's paused bit.
func RemoveUniform(balances []decimal.D64, burn, totalLPSupply, dBefore decimal.D64) (Result, error) {
	if totalLPSupply.IsZero() || !burn.LessOrEqual(totalLPSupply) {
		return Result{}, poolerr.ErrOutsideSpecifiedLimits
	}
	n := len(balances)
	out := make([]decimal.D64, n)
	newBalances := make([]decimal.D64, n)
	for i, b := range balances {
		scaled, err := b.Mul(burn)
		if err != nil {
			return Result{}, err
		}
		share, err := scaled.Div(totalLPSupply)
		if err != nil {
			return Result{}, err
		}
		share = wholeFromTrunc(share) // floor, user-favorable down
		out[i] = share
		remaining, err := b.Sub(share)
		if err != nil {
			return Result{}, err
		}
		newBalances[i] = remaining
	}

	remainingSupply, err := totalLPSupply.Sub(burn)
	if err != nil {
		return Result{}, err
	}
	var dNew decimal.D64
	if remainingSupply.IsZero() {
		dNew = decimal.Zero()
	} else {
		ratio, err := remainingSupply.Div(totalLPSupply)
		if err != nil {
			return Result{}, err
		}
		dNew, err = dBefore.Mul(ratio)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		UserAmount:      decimal.Zero(),
		GovLP:           decimal.Zero(),
		NewBalances:     newBalances,
		NewDepth:        dNew,
		PerTokenAmounts: out,
	}, nil
}
