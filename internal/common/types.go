// Copyright 2025 Blink Labs Software
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

// Package common holds account-identifier primitives shared by the pool
// record, the engine, and the external-collaborator interfaces.
package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeySize is the width, in bytes, of a Key.
const KeySize = 32

// Key identifies an account — a pool, a mint, a token vault, a
// governance key — in the host's account model. The host itself is an
// external collaborator (see spec §1), so Key is a plain fixed-size
// byte array rather than any particular chain's address type.
type Key [KeySize]byte

// ZeroKey is the sentinel "no account" key. A zero governance-fee
// account means "no governance fee account configured".
func ZeroKey() Key {
	return Key{}
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool {
	return k == Key{}
}

// String returns the hex encoding of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// NewKeyFromHex decodes a hex string into a Key. The string must decode
// to exactly KeySize bytes.
func NewKeyFromHex(s string) (Key, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key hex: %w", err)
	}
	if len(raw) != KeySize {
		return Key{}, fmt.Errorf(
			"invalid key length: expected %d bytes, got %d",
			KeySize,
			len(raw),
		)
	}
	var k Key
	copy(k[:], raw)
	return k, nil
}

// KeyFromBytes truncates or zero-pads raw to a Key. Used for deriving
// non-address identifiers (e.g. pool authorities) from arbitrary-length
// digests.
func KeyFromBytes(raw []byte) Key {
	var k Key
	copy(k[:], raw)
	return k
}

// DeriveAuthority deterministically derives a pool's authority key from
// the pool's own key and a nonce byte, standing in for the host's
// program-derived-address scheme (e.g. Solana's
// create_program_address). The derivation only needs to be
// collision-resistant and deterministic; it has no cryptographic
// signing role since the authority is never itself a signer.
func DeriveAuthority(poolKey Key, nonce byte) Key {
	h := sha256.New()
	h.Write(poolKey[:])
	h.Write([]byte{nonce})
	return KeyFromBytes(h.Sum(nil))
}
