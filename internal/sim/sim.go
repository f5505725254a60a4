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

// Package sim drives scripted operation sequences against an
// engine.Engine, the way internal/indexer drives a chainsync pipeline
// against event handlers: a Runner replays a Scenario's Steps in order
// and records one Event per step, producing a Trace that scenario and
// property tests assert against.
package sim

import (
	"fmt"

	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/engine"
	"github.com/blinklabs-io/shai/internal/wire"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/google/uuid"
)

// Step is one scripted operation against a single pool.
type Step struct {
	Label string
	Req   *wire.Request

	// Exactly one of DeFiAccounts/GovAccounts applies, per Req.Tag.
	DeFiAccounts engine.DeFiAccounts
	GovAccounts  engine.GovernanceAccounts
}

// Scenario is a named sequence of Steps run against one pool.
type Scenario struct {
	Name    string
	PoolKey common.Key
	Steps   []Step
}

// Event records the outcome of one replayed Step, for assertions and
// for the CBOR trace dump.
type Event struct {
	Index int    `cbor:"index"`
	Label string `cbor:"label"`
	Err   string `cbor:"err,omitempty"`
}

// Trace is a full scenario replay: a run id (for correlating dumps
// across log lines) plus one Event per step.
type Trace struct {
	RunID  string  `cbor:"run_id"`
	Name   string  `cbor:"name"`
	Events []Event `cbor:"events"`
}

// Runner replays Scenarios against an engine.Engine.
type Runner struct {
	Engine *engine.Engine
}

// New builds a Runner around eng.
func New(eng *engine.Engine) *Runner {
	return &Runner{Engine: eng}
}

// Run replays every Step of s in order, stopping at the first error
// only if haltOnError is set; otherwise every step runs regardless of
// prior failures, so a scenario can assert on an expected rejection in
// the middle of a sequence without aborting the rest.
func (r *Runner) Run(s Scenario, haltOnError bool) (Trace, error) {
	trace := Trace{
		RunID: uuid.NewString(),
		Name:  s.Name,
	}
	for i, step := range s.Steps {
		err := r.runStep(s.PoolKey, step)
		event := Event{Index: i, Label: step.Label}
		if err != nil {
			event.Err = err.Error()
		}
		trace.Events = append(trace.Events, event)
		if err != nil && haltOnError {
			return trace, fmt.Errorf("step %d (%s): %w", i, step.Label, err)
		}
	}
	return trace, nil
}

func (r *Runner) runStep(poolKey common.Key, step Step) error {
	switch step.Req.Tag {
	case wire.TagInit:
		return fmt.Errorf("sim: TagInit steps are not replayed; initialize the pool with engine.Engine.Init before Run")
	case wire.TagDeFi:
		return r.Engine.ExecuteDeFi(poolKey, step.DeFiAccounts, step.Req)
	case wire.TagGovernance:
		return r.Engine.ExecuteGovernance(poolKey, step.GovAccounts, step.Req)
	default:
		return fmt.Errorf("sim: unknown request tag %d", step.Req.Tag)
	}
}

// DumpCBOR encodes a Trace for human-auditable debug logging or
// fixture storage. The canonical wire format stays fixed-width
// little-endian (internal/wire); CBOR here is strictly an
// observability aid, mirroring how the teacher's indexer persists
// UTxO snapshots as CBOR for later inspection.
func DumpCBOR(trace Trace) ([]byte, error) {
	return cbor.Encode(&trace)
}
