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

	"github.com/blinklabs-io/shai/internal/decimal"
	"github.com/blinklabs-io/shai/internal/poolerr"
)

// Go has no sum types, so the Rust-style tagged instruction enum
// becomes one Request struct carrying the decoded tag plus whichever
// typed payload that tag selects; every other payload field is nil /
// zero. Callers switch on Tag (and DeFiTag/GovTag) the way the engine
// dispatcher does.
type Request struct {
	Tag Tag

	Init *InitRequest

	DeFiTag            DeFiTag
	Add                *AddRequest
	RemoveUniform      *RemoveUniformRequest
	RemoveExactBurn    *RemoveExactBurnRequest
	RemoveExactOutput  *RemoveExactOutputRequest
	SwapExactInput     *SwapExactInputRequest
	SwapExactOutput    *SwapExactOutputRequest

	GovTag                    GovernanceTag
	PrepareFeeChange          *PrepareFeeChangeRequest
	PrepareGovernanceTransfer *PrepareGovernanceTransferRequest
	ChangeGovernanceFeeAcct   *ChangeGovernanceFeeAcctRequest
	AdjustAmpFactor           *AdjustAmpFactorRequest
	SetPaused                 *SetPausedRequest
}

// InitRequest carries the amp/fee parameters for pool creation; the
// account keys themselves arrive via the host's account slots, not
// the instruction payload (spec.md §6).
type InitRequest struct {
	Nonce       byte
	AmpInitial  decimal.D64
	LPFee       decimal.D64
	GovFee      decimal.D64
}

// AddRequest deposits DeltaIn[i] of each token for at least MinMint LP
// tokens.
type AddRequest struct {
	DeltaIn []uint64
	MinMint uint64
}

// RemoveUniformRequest burns Burn LP tokens for a proportional share
// of every balance, each at least MinOut[i].
type RemoveUniformRequest struct {
	Burn   uint64
	MinOut []uint64
}

// RemoveExactBurnRequest burns Burn LP tokens entirely for token K,
// requiring at least MinOut of it.
type RemoveExactBurnRequest struct {
	Burn   uint64
	K      uint8
	MinOut uint64
}

// RemoveExactOutputRequest withdraws exactly DeltaOut of token K,
// burning at most MaxBurn LP tokens.
type RemoveExactOutputRequest struct {
	DeltaOut uint64
	K        uint8
	MaxBurn  uint64
}

// SwapExactInputRequest swaps DeltaIn[i] of every token but K in,
// receiving at least MinOut of token K.
type SwapExactInputRequest struct {
	DeltaIn []uint64
	K       uint8
	MinOut  uint64
}

// SwapExactOutputRequest receives DeltaOut[i] of every token but K,
// paying at most MaxIn of token K.
type SwapExactOutputRequest struct {
	DeltaOut []uint64
	K        uint8
	MaxIn    uint64
}

// PrepareFeeChangeRequest stashes a pending (lp_fee, gov_fee) pair for
// enactment after ENACT_DELAY.
type PrepareFeeChangeRequest struct {
	LPFee  decimal.D64
	GovFee decimal.D64
}

// PrepareGovernanceTransferRequest stashes a pending new gov_key.
type PrepareGovernanceTransferRequest struct {
	NewGovKeyIndex uint8 // index into the host-supplied account slots
}

// ChangeGovernanceFeeAcctRequest reassigns gov_fee_account_key
// immediately (no enact delay).
type ChangeGovernanceFeeAcctRequest struct {
	NewAccountIndex uint8
}

// AdjustAmpFactorRequest retargets the amp ramp.
type AdjustAmpFactorRequest struct {
	TargetTS int64
	Target   decimal.D64
}

// SetPausedRequest flips the pool's paused bit.
type SetPausedRequest struct {
	Paused bool
}

// EncodeRequest serializes req per spec.md §6's fixed-width layout.
// The flat per-token arrays are written with as many elements as req
// carries; their length is not itself encoded, so DecodeRequest needs
// the pool's token count to read them back.
func EncodeRequest(req *Request) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(req.Tag))

	switch req.Tag {
	case TagInit:
		r := req.Init
		buf.WriteByte(r.Nonce)
		putD64(buf, r.AmpInitial)
		putD64(buf, r.LPFee)
		putD64(buf, r.GovFee)

	case TagDeFi:
		buf.WriteByte(byte(req.DeFiTag))
		switch req.DeFiTag {
		case DeFiAdd:
			putAmounts(buf, req.Add.DeltaIn)
			putU64(buf, req.Add.MinMint)
		case DeFiRemoveUniform:
			putU64(buf, req.RemoveUniform.Burn)
			putAmounts(buf, req.RemoveUniform.MinOut)
		case DeFiRemoveExactBurn:
			putU64(buf, req.RemoveExactBurn.Burn)
			buf.WriteByte(req.RemoveExactBurn.K)
			putU64(buf, req.RemoveExactBurn.MinOut)
		case DeFiRemoveExactOut:
			putU64(buf, req.RemoveExactOutput.DeltaOut)
			buf.WriteByte(req.RemoveExactOutput.K)
			putU64(buf, req.RemoveExactOutput.MaxBurn)
		case DeFiSwapExactInput:
			putAmounts(buf, req.SwapExactInput.DeltaIn)
			buf.WriteByte(req.SwapExactInput.K)
			putU64(buf, req.SwapExactInput.MinOut)
		case DeFiSwapExactOutput:
			putAmounts(buf, req.SwapExactOutput.DeltaOut)
			buf.WriteByte(req.SwapExactOutput.K)
			putU64(buf, req.SwapExactOutput.MaxIn)
		default:
			return nil, poolerr.ErrInvalidInstructionData
		}

	case TagGovernance:
		buf.WriteByte(byte(req.GovTag))
		switch req.GovTag {
		case GovPrepareFeeChange:
			putD64(buf, req.PrepareFeeChange.LPFee)
			putD64(buf, req.PrepareFeeChange.GovFee)
		case GovEnactFeeChange:
			// no payload
		case GovPrepareGovernanceTransfer:
			buf.WriteByte(req.PrepareGovernanceTransfer.NewGovKeyIndex)
		case GovEnactGovernanceTransfer:
			// no payload
		case GovChangeGovernanceFeeAcct:
			buf.WriteByte(req.ChangeGovernanceFeeAcct.NewAccountIndex)
		case GovAdjustAmpFactor:
			putI64(buf, req.AdjustAmpFactor.TargetTS)
			putD64(buf, req.AdjustAmpFactor.Target)
		case GovSetPaused:
			if req.SetPaused.Paused {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		default:
			return nil, poolerr.ErrInvalidInstructionData
		}

	default:
		return nil, poolerr.ErrInvalidInstructionData
	}

	return buf.Bytes(), nil
}

// DecodeRequest parses data per EncodeRequest's layout. n is the
// pool's token count (read from the already-loaded pool record, not
// the payload itself), needed to size the flat per-token arrays.
func DecodeRequest(data []byte, n int) (*Request, error) {
	r := bytes.NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", poolerr.ErrInvalidInstructionData, err)
	}
	req := &Request{Tag: Tag(tagByte)}

	switch req.Tag {
	case TagInit:
		nonce, err := r.ReadByte()
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		ampInitial, err := getD64(r)
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		lpFee, err := getD64(r)
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		govFee, err := getD64(r)
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		req.Init = &InitRequest{Nonce: nonce, AmpInitial: ampInitial, LPFee: lpFee, GovFee: govFee}

	case TagDeFi:
		defiTagByte, err := r.ReadByte()
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		req.DeFiTag = DeFiTag(defiTagByte)
		if err := decodeDeFiBody(r, n, req); err != nil {
			return nil, err
		}

	case TagGovernance:
		govTagByte, err := r.ReadByte()
		if err != nil {
			return nil, poolerr.ErrInvalidInstructionData
		}
		req.GovTag = GovernanceTag(govTagByte)
		if err := decodeGovernanceBody(r, req); err != nil {
			return nil, err
		}

	default:
		return nil, poolerr.ErrInvalidInstructionData
	}

	return req, nil
}

func decodeDeFiBody(r *bytes.Reader, n int, req *Request) error {
	fail := func(error) error { return poolerr.ErrInvalidInstructionData }
	switch req.DeFiTag {
	case DeFiAdd:
		deltaIn, err := getAmounts(r, n)
		if err != nil {
			return fail(err)
		}
		minMint, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		req.Add = &AddRequest{DeltaIn: deltaIn, MinMint: minMint}

	case DeFiRemoveUniform:
		burn, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		minOut, err := getAmounts(r, n)
		if err != nil {
			return fail(err)
		}
		req.RemoveUniform = &RemoveUniformRequest{Burn: burn, MinOut: minOut}

	case DeFiRemoveExactBurn:
		burn, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		k, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		minOut, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		req.RemoveExactBurn = &RemoveExactBurnRequest{Burn: burn, K: k, MinOut: minOut}

	case DeFiRemoveExactOut:
		deltaOut, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		k, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		maxBurn, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		req.RemoveExactOutput = &RemoveExactOutputRequest{DeltaOut: deltaOut, K: k, MaxBurn: maxBurn}

	case DeFiSwapExactInput:
		deltaIn, err := getAmounts(r, n)
		if err != nil {
			return fail(err)
		}
		k, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		minOut, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		req.SwapExactInput = &SwapExactInputRequest{DeltaIn: deltaIn, K: k, MinOut: minOut}

	case DeFiSwapExactOutput:
		deltaOut, err := getAmounts(r, n)
		if err != nil {
			return fail(err)
		}
		k, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		maxIn, err := getU64(r)
		if err != nil {
			return fail(err)
		}
		req.SwapExactOutput = &SwapExactOutputRequest{DeltaOut: deltaOut, K: k, MaxIn: maxIn}

	default:
		return poolerr.ErrInvalidInstructionData
	}
	return nil
}

func decodeGovernanceBody(r *bytes.Reader, req *Request) error {
	fail := func(error) error { return poolerr.ErrInvalidInstructionData }
	switch req.GovTag {
	case GovPrepareFeeChange:
		lpFee, err := getD64(r)
		if err != nil {
			return fail(err)
		}
		govFee, err := getD64(r)
		if err != nil {
			return fail(err)
		}
		req.PrepareFeeChange = &PrepareFeeChangeRequest{LPFee: lpFee, GovFee: govFee}

	case GovEnactFeeChange, GovEnactGovernanceTransfer:
		// no payload

	case GovPrepareGovernanceTransfer:
		idx, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		req.PrepareGovernanceTransfer = &PrepareGovernanceTransferRequest{NewGovKeyIndex: idx}

	case GovChangeGovernanceFeeAcct:
		idx, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		req.ChangeGovernanceFeeAcct = &ChangeGovernanceFeeAcctRequest{NewAccountIndex: idx}

	case GovAdjustAmpFactor:
		targetTS, err := getI64(r)
		if err != nil {
			return fail(err)
		}
		target, err := getD64(r)
		if err != nil {
			return fail(err)
		}
		req.AdjustAmpFactor = &AdjustAmpFactorRequest{TargetTS: targetTS, Target: target}

	case GovSetPaused:
		b, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		req.SetPaused = &SetPausedRequest{Paused: b != 0}

	default:
		return poolerr.ErrInvalidInstructionData
	}
	return nil
}
