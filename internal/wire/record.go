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

package wire

import (
	"bytes"
	"fmt"

	"github.com/blinklabs-io/shai/internal/amp"
	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/fee"
	"github.com/blinklabs-io/shai/internal/poolerr"
	"github.com/blinklabs-io/shai/internal/pool"
)

// EncodeRecord serializes r in the declared field order, per spec.md
// §6. Because Record carries its token count N at runtime rather than
// as a build-time constant (see package pool's doc comment), the
// layout opens with a token-count byte the original design leaves
// implicit; everything after it is exactly the PoolRecord field order
// spec.md §3 lists, flat for N tokens.
func EncodeRecord(r *pool.Record) ([]byte, error) {
	n := r.N()
	if n < pool.MinTokens || n > pool.MaxTokens {
		return nil, poolerr.ErrInvalidInstructionData
	}

	buf := new(bytes.Buffer)
	buf.WriteByte(byte(n))
	buf.WriteByte(r.Nonce)
	if r.Paused {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	putD64(buf, r.Amp.InitialValue)
	putI64(buf, r.Amp.InitialTS)
	putD64(buf, r.Amp.TargetValue)
	putI64(buf, r.Amp.TargetTS)

	putD64(buf, r.LPFee.Get())
	putD64(buf, r.GovFee.Get())
	putD64(buf, r.PreparedLPFee.Get())
	putD64(buf, r.PreparedGovFee.Get())
	putI64(buf, r.FeeTransitionTS)

	putKey(buf, r.LPMintKey)
	buf.WriteByte(r.LPDecimalEqualizer)

	for i := 0; i < n; i++ {
		putKey(buf, r.TokenMintKeys[i])
	}
	for i := 0; i < n; i++ {
		buf.WriteByte(r.TokenDecimalEqualizers[i])
	}
	for i := 0; i < n; i++ {
		putKey(buf, r.TokenAccountKeys[i])
	}

	putKey(buf, r.GovKey)
	putKey(buf, r.PreparedGovKey)
	putI64(buf, r.GovTransitionTS)

	putKey(buf, r.GovFeeAccountKey)

	putD64(buf, r.PreviousDepth)

	return buf.Bytes(), nil
}

// DecodeRecord parses data per EncodeRecord's layout, validating N is
// in [pool.MinTokens, pool.MaxTokens] before trusting it to size the
// rest of the read — the one point where a decoded record's token
// count is checked, so operation code downstream never has to.
func DecodeRecord(data []byte) (*pool.Record, error) {
	r := bytes.NewReader(data)

	nByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", poolerr.ErrInvalidInstructionData, err)
	}
	n := int(nByte)
	if n < pool.MinTokens || n > pool.MaxTokens {
		return nil, poolerr.ErrInvalidInstructionData
	}

	nonce, err := r.ReadByte()
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	pausedByte, err := r.ReadByte()
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}

	ampInitial, err := getD64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	ampInitialTS, err := getI64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	ampTarget, err := getD64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	ampTargetTS, err := getI64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}

	lpFeeVal, err := getD64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	govFeeVal, err := getD64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	preparedLPFeeVal, err := getD64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	preparedGovFeeVal, err := getD64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	feeTransitionTS, err := getI64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}

	lpMintKey, err := getKey(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	lpDecimalEqualizer, err := r.ReadByte()
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}

	tokenMintKeys := make([]common.Key, n)
	for i := 0; i < n; i++ {
		k, err := getKey(r)
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		tokenMintKeys[i] = k
	}
	tokenDecimalEqualizers := make([]uint8, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		tokenDecimalEqualizers[i] = b
	}
	tokenAccountKeys := make([]common.Key, n)
	for i := 0; i < n; i++ {
		k, err := getKey(r)
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		tokenAccountKeys[i] = k
	}

	govKey, err := getKey(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	preparedGovKey, err := getKey(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}
	govTransitionTS, err := getI64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}

	govFeeAccountKey, err := getKey(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}

	previousDepth, err := getD64(r)
	if err != nil {
		return nil, poolerr.ErrInvalidInstructionData
	}

	lpFeeBox, err := fee.New(lpFeeVal)
	if err != nil {
		return nil, err
	}
	govFeeBox, err := fee.New(govFeeVal)
	if err != nil {
		return nil, err
	}
	preparedLPFeeBox, err := fee.New(preparedLPFeeVal)
	if err != nil {
		return nil, err
	}
	preparedGovFeeBox, err := fee.New(preparedGovFeeVal)
	if err != nil {
		return nil, err
	}

	return &pool.Record{
		Nonce:                  nonce,
		Paused:                 pausedByte != 0,
		Amp:                    amp.Factor{InitialValue: ampInitial, InitialTS: ampInitialTS, TargetValue: ampTarget, TargetTS: ampTargetTS},
		LPFee:                  lpFeeBox,
		GovFee:                 govFeeBox,
		PreparedLPFee:          preparedLPFeeBox,
		PreparedGovFee:         preparedGovFeeBox,
		FeeTransitionTS:        feeTransitionTS,
		LPMintKey:              lpMintKey,
		LPDecimalEqualizer:     lpDecimalEqualizer,
		TokenMintKeys:          tokenMintKeys,
		TokenDecimalEqualizers: tokenDecimalEqualizers,
		TokenAccountKeys:       tokenAccountKeys,
		GovKey:                 govKey,
		PreparedGovKey:         preparedGovKey,
		GovTransitionTS:        govTransitionTS,
		GovFeeAccountKey:       govFeeAccountKey,
		PreviousDepth:          previousDepth,
	}, nil
}
