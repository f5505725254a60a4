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

// Package decimal implements D64, the unsigned fixed-point decimal used
// for every pool-facing number (fees, amplification, depth). No float
// ever appears on the pool's hot path; every operation is checked and
// fails with a poolerr sentinel on overflow or division by zero.
package decimal

import (
	"math"
	"math/big"

	"github.com/blinklabs-io/shai/internal/poolerr"
)

// MaxPoint is the largest decimal-point position D64 can carry.
const MaxPoint = 19

var maxUint64Big = new(big.Int).SetUint64(math.MaxUint64)

// D64 represents mantissa * 10^-point, an unsigned value with a
// tracked number of fractional digits.
type D64 struct {
	mantissa uint64
	point    uint8
}

// New builds a D64 from a raw mantissa and point, normalizing trailing
// zeros. Returns ErrNumericOverflow if point exceeds MaxPoint.
func New(mantissa uint64, point uint8) (D64, error) {
	if point > MaxPoint {
		return D64{}, poolerr.ErrNumericOverflow
	}
	return normalize(mantissa, point), nil
}

// MustNew is New, panicking on error. Intended for package-level
// constants built from literals known to be valid.
func MustNew(mantissa uint64, point uint8) D64 {
	d, err := New(mantissa, point)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero is the additive identity.
func Zero() D64 { return D64{} }

// One is the multiplicative identity.
func One() D64 { return D64{mantissa: 1, point: 0} }

// FromU64 converts an integer to a D64 with point 0.
func FromU64(v uint64) D64 {
	return D64{mantissa: v, point: 0}
}

// TenToThe returns 10^k as a D64. k must be in [0, MaxPoint].
func TenToThe(k uint8) (D64, error) {
	if k > MaxPoint {
		return D64{}, poolerr.ErrNumericOverflow
	}
	return D64{mantissa: pow10(k), point: 0}, nil
}

// FromFraction builds numerator/denominator as a D64 with maximal
// precision, e.g. for fee ratios like 3/10000.
func FromFraction(numerator, denominator uint64) (D64, error) {
	return FromU64(numerator).Div(FromU64(denominator))
}

// Mantissa returns the raw mantissa.
func (d D64) Mantissa() uint64 { return d.mantissa }

// Point returns the decimal-point position.
func (d D64) Point() uint8 { return d.point }

// IsZero reports whether d represents the value zero.
func (d D64) IsZero() bool { return d.mantissa == 0 }

func normalize(mantissa uint64, point uint8) D64 {
	for point > 0 && mantissa%10 == 0 {
		mantissa /= 10
		point--
	}
	return D64{mantissa: mantissa, point: point}
}

func pow10(k uint8) uint64 {
	v := uint64(1)
	for i := uint8(0); i < k; i++ {
		v *= 10
	}
	return v
}

// bigAt returns d's mantissa rescaled to the given point, as a big.Int,
// used internally to align operands before add/sub/compare.
func bigAt(d D64, point uint8) *big.Int {
	v := new(big.Int).SetUint64(d.mantissa)
	if point > d.point {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(point-d.point)), nil)
		v.Mul(v, scale)
	}
	return v
}

// BigAt rescales d to the given decimal point and returns it as a
// big.Int, for callers (like the invariant solver) that need
// intermediate precision wider than 64 bits, e.g. squaring a balance.
// point must be >= d.Point().
func (d D64) BigAt(point uint8) *big.Int {
	return bigAt(d, point)
}

// FromBig converts a big.Int already scaled by 10^point back into a
// D64, failing with ErrNumericOverflow if it doesn't fit in 64 bits or
// point exceeds MaxPoint.
func FromBig(v *big.Int, point uint8) (D64, error) {
	if point > MaxPoint {
		return D64{}, poolerr.ErrNumericOverflow
	}
	if v.Sign() < 0 || v.Cmp(maxUint64Big) > 0 {
		return D64{}, poolerr.ErrNumericOverflow
	}
	return normalize(v.Uint64(), point), nil
}

// Cmp compares d and o as rational numbers, returning -1, 0, or 1.
func (d D64) Cmp(o D64) int {
	point := d.point
	if o.point > point {
		point = o.point
	}
	return bigAt(d, point).Cmp(bigAt(o, point))
}

// LessThan reports whether d < o.
func (d D64) LessThan(o D64) bool { return d.Cmp(o) < 0 }

// LessOrEqual reports whether d <= o.
func (d D64) LessOrEqual(o D64) bool { return d.Cmp(o) <= 0 }

// GreaterThan reports whether d > o.
func (d D64) GreaterThan(o D64) bool { return d.Cmp(o) > 0 }

// Add returns d + o, aligning both operands to the larger point.
// Fails with ErrNumericOverflow if the aligned sum overflows 64 bits.
func (d D64) Add(o D64) (D64, error) {
	point := d.point
	if o.point > point {
		point = o.point
	}
	sum := new(big.Int).Add(bigAt(d, point), bigAt(o, point))
	if sum.Cmp(maxUint64Big) > 0 {
		return D64{}, poolerr.ErrNumericOverflow
	}
	return normalize(sum.Uint64(), point), nil
}

// Sub returns d - o. Since D64 is unsigned, a negative result fails
// with ErrNumericOverflow rather than wrapping.
func (d D64) Sub(o D64) (D64, error) {
	point := d.point
	if o.point > point {
		point = o.point
	}
	da := bigAt(d, point)
	oa := bigAt(o, point)
	if da.Cmp(oa) < 0 {
		return D64{}, poolerr.ErrNumericOverflow
	}
	diff := new(big.Int).Sub(da, oa)
	return normalize(diff.Uint64(), point), nil
}

// Mul returns d * o. The point of the product is d.point + o.point;
// if the exact mantissa would not fit in 64 bits, or the point would
// exceed MaxPoint, trailing digits are truncated (saturating
// truncation) until it fits. Fails with ErrNumericOverflow only if no
// amount of truncation (down to point 0) makes it fit.
func (d D64) Mul(o D64) (D64, error) {
	product := new(big.Int).Mul(
		new(big.Int).SetUint64(d.mantissa),
		new(big.Int).SetUint64(o.mantissa),
	)
	point := int(d.point) + int(o.point)
	ten := big.NewInt(10)
	for point > 0 && (point > MaxPoint || product.Cmp(maxUint64Big) > 0) {
		product.Div(product, ten)
		point--
	}
	if point > MaxPoint || product.Cmp(maxUint64Big) > 0 {
		return D64{}, poolerr.ErrNumericOverflow
	}
	return normalize(product.Uint64(), uint8(point)), nil
}

// Div returns d / o, computing the most significant 64 bits of the
// (possibly infinite) quotient and recording the corresponding point.
// Fails with ErrDivByZero if o is zero.
func (d D64) Div(o D64) (D64, error) {
	if o.mantissa == 0 {
		return D64{}, poolerr.ErrDivByZero
	}
	num := new(big.Int).SetUint64(d.mantissa)
	den := new(big.Int).SetUint64(o.mantissa)
	point := int(d.point) - int(o.point)
	ten := big.NewInt(10)

	// Grow the numerator's precision until the quotient would use the
	// full 64-bit mantissa, capped at MaxPoint fractional digits.
	for point < MaxPoint {
		scaled := new(big.Int).Mul(num, ten)
		// Stop growing once scaled/den would exceed 64 bits.
		if new(big.Int).Div(scaled, den).Cmp(maxUint64Big) > 0 {
			break
		}
		num = scaled
		point++
	}

	quotient := new(big.Int).Div(num, den)
	for quotient.Cmp(maxUint64Big) > 0 && point > 0 {
		quotient.Div(quotient, ten)
		point--
	}
	if quotient.Cmp(maxUint64Big) > 0 {
		return D64{}, poolerr.ErrNumericOverflow
	}

	if point < 0 {
		// Negative point would mean the integer part itself doesn't fit
		// at point 0; scale up as far as possible, erroring if it still
		// doesn't represent the value within a non-negative point.
		scale := new(big.Int).Exp(ten, big.NewInt(int64(-point)), nil)
		scaledUp := new(big.Int).Mul(quotient, scale)
		if scaledUp.Cmp(maxUint64Big) > 0 {
			return D64{}, poolerr.ErrNumericOverflow
		}
		return normalize(scaledUp.Uint64(), 0), nil
	}

	return normalize(quotient.Uint64(), uint8(point)), nil
}

// Trunc floors d to the nearest integer (returns the integer part).
func (d D64) Trunc() uint64 {
	if d.point == 0 {
		return d.mantissa
	}
	return d.mantissa / pow10(d.point)
}
