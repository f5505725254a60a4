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

// Package collab defines the engine's external collaborators: the
// blockchain host's account model, cryptographic signing, and clock
// are all out of scope for the pool engine proper and are abstracted
// behind these interfaces instead (spec.md §1). An in-memory
// implementation of each is provided for tests and the simulation
// harness.
package collab

import (
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/shai/internal/common"
)

// Ledger is the fungible-token ledger the engine moves funds against.
// It is the host's account model, abstracted: implementations are
// expected to enforce their own authorization (a transfer the engine
// issues is, from the ledger's point of view, always authorized by the
// pool authority or the user authority the engine already checked).
type Ledger interface {
	Transfer(from, to, mint common.Key, amount uint64) error
	Mint(mint, to common.Key, amount uint64) error
	Burn(from, mint common.Key, amount uint64) error
	BalanceOf(account common.Key) (uint64, error)
	TotalSupply(mint common.Key) (uint64, error)
}

// Clock provides the current Unix-seconds timestamp. Abstracted so the
// governance engine's time-gated transitions can be tested without
// waiting on wall-clock days.
type Clock interface {
	Now() int64
}

// SignerOracle answers whether a named key authorized the operation
// currently being processed.
type SignerOracle interface {
	IsSigner(key common.Key) bool
}

// SystemClock is a Clock backed by the real wall clock.
type SystemClock struct{}

// Now returns time.Now() as Unix seconds.
func (SystemClock) Now() int64 { return time.Now().Unix() }

// FixedClock is a Clock that always reports the same instant, useful
// for deterministic tests and the simulation harness.
type FixedClock struct {
	ts int64
}

// NewFixedClock builds a FixedClock set to ts.
func NewFixedClock(ts int64) *FixedClock { return &FixedClock{ts: ts} }

// Now returns the fixed timestamp.
func (c *FixedClock) Now() int64 { return c.ts }

// Advance moves the fixed clock forward by delta seconds and returns
// the new timestamp.
func (c *FixedClock) Advance(delta int64) int64 {
	c.ts += delta
	return c.ts
}

// StaticSignerOracle treats a fixed set of keys as having signed the
// current operation.
type StaticSignerOracle struct {
	signers map[common.Key]bool
}

// NewStaticSignerOracle builds an oracle that reports the given keys
// as signers.
func NewStaticSignerOracle(keys ...common.Key) *StaticSignerOracle {
	signers := make(map[common.Key]bool, len(keys))
	for _, k := range keys {
		signers[k] = true
	}
	return &StaticSignerOracle{signers: signers}
}

// IsSigner reports whether key is among the configured signers.
func (o *StaticSignerOracle) IsSigner(key common.Key) bool {
	return o.signers[key]
}

// account is one fungible-token balance entry in MemoryLedger.
type account struct {
	mint    common.Key
	balance uint64
}

// MemoryLedger is an in-memory Ledger, used by tests and the
// simulation harness. Mints are tracked implicitly via total supply
// counters; accounts are keyed by account key alone (one mint per
// account, matching the token-account model the pool vaults follow).
type MemoryLedger struct {
	mu       sync.Mutex
	accounts map[common.Key]*account
	supply   map[common.Key]uint64
}

// NewMemoryLedger builds an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[common.Key]*account),
		supply:   make(map[common.Key]uint64),
	}
}

// OpenAccount registers account as holding mint, with an initial
// balance. Used by tests and the simulation harness to set up pool
// vaults and user token accounts before an operation runs.
func (l *MemoryLedger) OpenAccount(acct, mint common.Key, balance uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[acct] = &account{mint: mint, balance: balance}
	l.supply[mint] += balance
}

// Transfer moves amount of mint from the from account to the to
// account. Both accounts must already hold mint.
func (l *MemoryLedger) Transfer(from, to, mint common.Key, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fromAcct, ok := l.accounts[from]
	if !ok || fromAcct.mint != mint {
		return fmt.Errorf("transfer: source account does not hold mint %s", mint)
	}
	toAcct, ok := l.accounts[to]
	if !ok || toAcct.mint != mint {
		return fmt.Errorf("transfer: destination account does not hold mint %s", mint)
	}
	if fromAcct.balance < amount {
		return fmt.Errorf("transfer: insufficient balance in %s", from)
	}
	fromAcct.balance -= amount
	toAcct.balance += amount
	return nil
}

// Mint increases to's balance of mint by amount and the mint's total
// supply.
func (l *MemoryLedger) Mint(mint, to common.Key, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	toAcct, ok := l.accounts[to]
	if !ok {
		toAcct = &account{mint: mint}
		l.accounts[to] = toAcct
	} else if toAcct.mint != mint {
		return fmt.Errorf("mint: destination account does not hold mint %s", mint)
	}
	toAcct.balance += amount
	l.supply[mint] += amount
	return nil
}

// Burn decreases from's balance of mint by amount and the mint's total
// supply.
func (l *MemoryLedger) Burn(from, mint common.Key, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fromAcct, ok := l.accounts[from]
	if !ok || fromAcct.mint != mint {
		return fmt.Errorf("burn: source account does not hold mint %s", mint)
	}
	if fromAcct.balance < amount {
		return fmt.Errorf("burn: insufficient balance in %s", from)
	}
	fromAcct.balance -= amount
	l.supply[mint] -= amount
	return nil
}

// BalanceOf returns account's current balance.
func (l *MemoryLedger) BalanceOf(acct common.Key) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[acct]
	if !ok {
		return 0, fmt.Errorf("balance_of: unknown account %s", acct)
	}
	return a.balance, nil
}

// TotalSupply returns the total outstanding supply of mint.
func (l *MemoryLedger) TotalSupply(mint common.Key) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply[mint], nil
}
