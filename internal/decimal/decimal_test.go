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

package decimal_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

func TestAddAlignsPoints(t *testing.T) {
	a := decimal.FromU64(1) // 1
	b, err := decimal.New(5, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// 1 + 0.5 = 1.5
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want, _ := decimal.New(15, 1)
	if sum.Cmp(want) != 0 {
		t.Errorf("1 + 0.5 = %v/%d, want %v/%d", sum.Mantissa(), sum.Point(), want.Mantissa(), want.Point())
	}
}

func TestSubUnderflowErrors(t *testing.T) {
	a := decimal.FromU64(1)
	b := decimal.FromU64(2)
	if _, err := a.Sub(b); !errors.Is(err, poolerr.ErrNumericOverflow) {
		t.Errorf("expected ErrNumericOverflow for 1 - 2, got %v", err)
	}
}

func TestMulBasic(t *testing.T) {
	half, err := decimal.New(5, 1) // 0.5
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	product, err := half.Mul(half)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	want, _ := decimal.New(25, 2) // 0.25
	if product.Cmp(want) != 0 {
		t.Errorf("0.5 * 0.5 != 0.25, got mantissa=%d point=%d", product.Mantissa(), product.Point())
	}
}

func TestDivByZero(t *testing.T) {
	a := decimal.FromU64(1)
	if _, err := a.Div(decimal.Zero()); !errors.Is(err, poolerr.ErrDivByZero) {
		t.Errorf("expected ErrDivByZero, got %v", err)
	}
}

func TestFromFractionAndTrunc(t *testing.T) {
	lpFee, err := decimal.FromFraction(3, 10000) // 0.0003
	if err != nil {
		t.Fatalf("FromFraction: %v", err)
	}
	if lpFee.Trunc() != 0 {
		t.Errorf("0.0003 truncated should be 0, got %d", lpFee.Trunc())
	}

	three, err := decimal.FromFraction(7, 2) // 3.5
	if err != nil {
		t.Fatalf("FromFraction: %v", err)
	}
	if three.Trunc() != 3 {
		t.Errorf("3.5 truncated should be 3, got %d", three.Trunc())
	}
}

func TestTenToThe(t *testing.T) {
	v, err := decimal.TenToThe(3)
	if err != nil {
		t.Fatalf("TenToThe: %v", err)
	}
	if v.Trunc() != 1000 {
		t.Errorf("10^3 = %d, want 1000", v.Trunc())
	}
	if _, err := decimal.TenToThe(20); err == nil {
		t.Errorf("expected error for point > MaxPoint")
	}
}

func TestCmpAndOrdering(t *testing.T) {
	a, _ := decimal.New(1, 0)
	b, _ := decimal.New(10, 1)
	if a.Cmp(b) != 0 {
		t.Errorf("1 and 1.0 (10/10) should compare equal")
	}
	c := decimal.FromU64(2)
	if !a.LessThan(c) {
		t.Errorf("1 should be less than 2")
	}
	if !c.GreaterThan(a) {
		t.Errorf("2 should be greater than 1")
	}
}

func TestNormalizeStripsTrailingZeros(t *testing.T) {
	d, err := decimal.New(100, 2) // 1.00 -> 1
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Point() != 0 || d.Mantissa() != 1 {
		t.Errorf("expected normalized (1, point 0), got (%d, %d)", d.Mantissa(), d.Point())
	}
}
