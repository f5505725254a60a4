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

// Package wire implements the operation and pool-record wire formats
// spec.md §6 describes: a tag byte selecting the top-level variant, a
// nested tag for DeFi/Governance sub-operations, little-endian
// fixed-width integers throughout, D64 as (mantissa:u64, point:u8),
// and flat N-length arrays. encoding/binary, not the CBOR codec
// internal/sim uses for its trace dumps, is the right tool
// here: CBOR's integers and arrays are variable-width, which cannot
// satisfy "total size is constant for a given N" (spec.md §6); a flat
// binary layout can.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/decimal"
)

// Tag is the top-level operation-request variant selector.
type Tag byte

const (
	TagInit       Tag = 0
	TagDeFi       Tag = 1
	TagGovernance Tag = 2
)

// DeFiTag selects among the six liquidity/swap operations.
type DeFiTag byte

const (
	DeFiAdd              DeFiTag = 0
	DeFiRemoveUniform    DeFiTag = 1
	DeFiRemoveExactBurn  DeFiTag = 2
	DeFiRemoveExactOut   DeFiTag = 3
	DeFiSwapExactInput   DeFiTag = 4
	DeFiSwapExactOutput  DeFiTag = 5
)

// GovernanceTag selects among the governance operations.
type GovernanceTag byte

const (
	GovPrepareFeeChange          GovernanceTag = 0
	GovEnactFeeChange            GovernanceTag = 1
	GovPrepareGovernanceTransfer GovernanceTag = 2
	GovEnactGovernanceTransfer   GovernanceTag = 3
	GovChangeGovernanceFeeAcct   GovernanceTag = 4
	GovAdjustAmpFactor           GovernanceTag = 5
	GovSetPaused                 GovernanceTag = 6
)

func putD64(buf *bytes.Buffer, d decimal.D64) {
	var mantissa [8]byte
	binary.LittleEndian.PutUint64(mantissa[:], d.Mantissa())
	buf.Write(mantissa[:])
	buf.WriteByte(d.Point())
}

func getD64(r *bytes.Reader) (decimal.D64, error) {
	var mantissa [8]byte
	if _, err := r.Read(mantissa[:]); err != nil {
		return decimal.D64{}, fmt.Errorf("wire: read D64 mantissa: %w", err)
	}
	point, err := r.ReadByte()
	if err != nil {
		return decimal.D64{}, fmt.Errorf("wire: read D64 point: %w", err)
	}
	return decimal.New(binary.LittleEndian.Uint64(mantissa[:]), point)
}

func putKey(buf *bytes.Buffer, k common.Key) {
	buf.Write(k[:])
}

func getKey(r *bytes.Reader) (common.Key, error) {
	var raw [common.KeySize]byte
	if _, err := r.Read(raw[:]); err != nil {
		return common.Key{}, fmt.Errorf("wire: read key: %w", err)
	}
	return common.Key(raw), nil
}

func putU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func getU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, fmt.Errorf("wire: read u64: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func putI64(buf *bytes.Buffer, v int64) {
	putU64(buf, uint64(v))
}

func getI64(r *bytes.Reader) (int64, error) {
	v, err := getU64(r)
	return int64(v), err
}

// AmountVector is a fixed-N array of raw (non-equalized) token
// amounts, as carried by DeFi operations.
type AmountVector []uint64

func putAmounts(buf *bytes.Buffer, amounts []uint64) {
	for _, a := range amounts {
		putU64(buf, a)
	}
}

func getAmounts(r *bytes.Reader, n int) ([]uint64, error) {
	out := make([]uint64, n)
	for i := range out {
		v, err := getU64(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
