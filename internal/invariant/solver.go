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

// Package invariant implements the stable-swap curve: the iterative
// numeric kernel that computes a depth D and per-token balances for a
// hybrid constant-sum/constant-product AMM, plus the per-operation
// framings (Add, the swap and removal variants) built on top of it.
//
// The two low-level solves (ComputeD, ComputeBalance) mirror Curve
// Finance's StableSwap get_D/get_y Newton iterations; the fixed-point
// arithmetic needed to square a balance without losing precision runs
// on math/big internally (as decimal.D64 itself does), surfacing only
// D64 at the package boundary.
package invariant

import (
	"math/big"

	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

// MaxIterations bounds both Newton solves. Exhausting it fails with
// poolerr.ErrDidNotConverge, per spec.md 4.B.
const MaxIterations = 32

// commonPoint returns the largest decimal point among the given
// values, used to rescale everything onto one integer lattice before
// doing big.Int arithmetic.
func commonPoint(values ...decimal.D64) uint8 {
	var point uint8
	for _, v := range values {
		if v.Point() > point {
			point = v.Point()
		}
	}
	return point
}

func nPowN(n int) *big.Int {
	v := big.NewInt(1)
	nb := big.NewInt(int64(n))
	for i := 0; i < n; i++ {
		v.Mul(v, nb)
	}
	return v
}

// ComputeD computes the stable-swap depth D for the given equalized,
// positive balances and amplification factor A.
//
//	A * N^N * S + D = A * D * N^N + D^(N+1) / (N^N * P)
//
// solved by the Newton iteration spec.md 4.B describes. Returns zero
// (not an error) for an empty pool (S = 0).
func ComputeD(balances []decimal.D64, amp decimal.D64) (decimal.D64, error) {
	n := len(balances)
	point := commonPoint(balances...)

	s := big.NewInt(0)
	bals := make([]*big.Int, n)
	for i, b := range balances {
		bals[i] = b.BigAt(point)
		s.Add(s, bals[i])
	}
	if s.Sign() == 0 {
		return decimal.Zero(), nil
	}

	nBig := big.NewInt(int64(n))
	nPlus1 := big.NewInt(int64(n + 1))
	nn := nPowN(n)
	ann := new(big.Int).Mul(amp.BigAt(0), nn)

	d := new(big.Int).Set(s)
	for iter := 0; iter < MaxIterations; iter++ {
		dP := new(big.Int).Set(d)
		for _, b := range bals {
			if b.Sign() == 0 {
				continue
			}
			dP.Mul(dP, d)
			dP.Div(dP, new(big.Int).Mul(b, nBig))
		}

		prevD := new(big.Int).Set(d)

		// numerator = (Ann*S + N*dP) * D
		numerator := new(big.Int).Mul(ann, s)
		numerator.Add(numerator, new(big.Int).Mul(nBig, dP))
		numerator.Mul(numerator, d)

		// denominator = (Ann-1)*D + (N+1)*dP
		annMinus1 := new(big.Int).Sub(ann, big.NewInt(1))
		denominator := new(big.Int).Mul(annMinus1, d)
		denominator.Add(denominator, new(big.Int).Mul(nPlus1, dP))

		if denominator.Sign() == 0 {
			return decimal.D64{}, poolerr.ErrDidNotConverge
		}
		d.Div(numerator, denominator)

		diff := new(big.Int).Sub(d, prevD)
		if diff.Sign() < 0 {
			diff.Neg(diff)
		}
		if diff.Cmp(big.NewInt(1)) <= 0 {
			// Stay on the safe side of the invariant: return the larger
			// of the last two iterates.
			if d.Cmp(prevD) < 0 {
				d = prevD
			}
			return decimal.FromBig(d, point)
		}
	}
	return decimal.D64{}, poolerr.ErrDidNotConverge
}

// ComputeBalance solves for the balance at unknownIndex given the
// other (equalized, positive) balances, the target depth D, and A,
// via Newton iteration on the same invariant equation held fixed at D.
// Mirrors Curve's get_y.
func ComputeBalance(balances []decimal.D64, amp decimal.D64, targetD decimal.D64, unknownIndex int) (decimal.D64, error) {
	n := len(balances)
	if unknownIndex < 0 || unknownIndex >= n {
		return decimal.D64{}, poolerr.ErrInvalidInstructionData
	}
	point := commonPoint(append(append([]decimal.D64{}, balances...), targetD)...)

	d := targetD.BigAt(point)
	nBig := big.NewInt(int64(n))
	nn := nPowN(n)
	ann := new(big.Int).Mul(amp.BigAt(0), nn)

	c := new(big.Int).Set(d)
	s := big.NewInt(0)
	for i, b := range balances {
		if i == unknownIndex {
			continue
		}
		x := b.BigAt(point)
		if x.Sign() == 0 {
			return decimal.D64{}, poolerr.ErrDidNotConverge
		}
		s.Add(s, x)
		c.Mul(c, d)
		c.Div(c, new(big.Int).Mul(x, nBig))
	}
	c.Mul(c, d)
	c.Div(c, new(big.Int).Mul(ann, nBig))

	bTerm := new(big.Int).Add(s, new(big.Int).Div(d, ann))

	y := new(big.Int).Set(d)
	two := big.NewInt(2)
	for iter := 0; iter < MaxIterations; iter++ {
		yPrev := new(big.Int).Set(y)

		num := new(big.Int).Mul(y, y)
		num.Add(num, c)

		denom := new(big.Int).Mul(two, y)
		denom.Add(denom, bTerm)
		denom.Sub(denom, d)

		if denom.Sign() <= 0 {
			return decimal.D64{}, poolerr.ErrDidNotConverge
		}
		y.Div(num, denom)

		diff := new(big.Int).Sub(y, yPrev)
		if diff.Sign() < 0 {
			diff.Neg(diff)
		}
		if diff.Cmp(big.NewInt(1)) <= 0 {
			return decimal.FromBig(y, point)
		}
	}
	return decimal.D64{}, poolerr.ErrDidNotConverge
}
