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

// Package amp implements the amplification-factor ramp: a piecewise
// linear interpolation between a starting and a target value, bounded
// in slope so governance cannot yank liquidity depth out from under
// traders in a single transition.
package amp

import (
	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

// MinValue and MaxValue bound both the initial and target amp values,
// per spec.md's [1, 10^6] range.
var (
	MinValue = decimal.One()
	MaxValue = decimal.MustNew(1_000_000, 0)
)

// Factor is the persistent ramp state: A interpolates linearly from
// (InitialTS, InitialValue) to (TargetTS, TargetValue), clamped to
// TargetValue once now reaches TargetTS.
type Factor struct {
	InitialValue decimal.D64
	InitialTS    int64
	TargetValue  decimal.D64
	TargetTS     int64
}

// Flat constructs a ramp that is already at rest on value, i.e. its
// initial and target endpoints coincide. Used by Init.
func Flat(value decimal.D64, now int64) Factor {
	return Factor{
		InitialValue: value,
		InitialTS:    now,
		TargetValue:  value,
		TargetTS:     now,
	}
}

// At evaluates A(t): the current amplification factor at time now.
func (f Factor) At(now int64) (decimal.D64, error) {
	if now <= f.InitialTS || f.TargetTS <= f.InitialTS {
		return f.InitialValue, nil
	}
	if now >= f.TargetTS {
		return f.TargetValue, nil
	}

	elapsed := decimal.FromU64(uint64(now - f.InitialTS))
	span := decimal.FromU64(uint64(f.TargetTS - f.InitialTS))
	progress, err := elapsed.Div(span)
	if err != nil {
		return decimal.D64{}, err
	}

	if f.TargetValue.GreaterThan(f.InitialValue) {
		delta, err := f.TargetValue.Sub(f.InitialValue)
		if err != nil {
			return decimal.D64{}, err
		}
		step, err := delta.Mul(progress)
		if err != nil {
			return decimal.D64{}, err
		}
		return f.InitialValue.Add(step)
	}

	delta, err := f.InitialValue.Sub(f.TargetValue)
	if err != nil {
		return decimal.D64{}, err
	}
	step, err := delta.Mul(progress)
	if err != nil {
		return decimal.D64{}, err
	}
	return f.InitialValue.Sub(step)
}

// SetTarget validates and applies a new ramp target, per spec.md 4.C
// and the AdjustAmpFactor governance operation. minRampDuration and
// maxRampFactor come from the running config (ordinarily
// config.DefaultMinRampDurationSeconds / DefaultMaxRampFactor) so tests
// don't have to wait on real wall-clock days.
func (f Factor) SetTarget(now int64, newTarget decimal.D64, newTargetTS int64, minRampDuration int64, maxRampFactor uint64) (Factor, error) {
	if newTarget.LessThan(MinValue) || newTarget.GreaterThan(MaxValue) {
		return Factor{}, poolerr.ErrOutsideSpecifiedLimits
	}
	if newTargetTS < now+minRampDuration {
		return Factor{}, poolerr.ErrInsufficientDelay
	}

	current, err := f.At(now)
	if err != nil {
		return Factor{}, err
	}

	maxFactor := decimal.FromU64(maxRampFactor)
	if current.IsZero() {
		return Factor{}, poolerr.ErrAmpJumpTooLarge
	}

	var ratio decimal.D64
	if newTarget.GreaterThan(current) {
		ratio, err = newTarget.Div(current)
	} else {
		ratio, err = current.Div(newTarget)
	}
	if err != nil {
		return Factor{}, err
	}
	if ratio.GreaterThan(maxFactor) {
		return Factor{}, poolerr.ErrAmpJumpTooLarge
	}

	return Factor{
		InitialValue: current,
		InitialTS:    now,
		TargetValue:  newTarget,
		TargetTS:     newTargetTS,
	}, nil
}
