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

package engine

import (
	"fmt"
	"sync"

	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/pool"
)

// MapStore is an in-memory Store, used by tests and the simulation
// harness in place of the Badger-backed implementation.
type MapStore struct {
	mu      sync.Mutex
	records map[common.Key]*pool.Record
}

// NewMapStore builds an empty in-memory store.
func NewMapStore() *MapStore {
	return &MapStore{records: make(map[common.Key]*pool.Record)}
}

// Load returns the record at poolKey, or an error if none exists.
func (s *MapStore) Load(poolKey common.Key) (*pool.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[poolKey]
	if !ok {
		return nil, fmt.Errorf("no record for pool %s", poolKey)
	}
	cp := *r
	return &cp, nil
}

// Save stores record at poolKey, replacing any previous value.
func (s *MapStore) Save(poolKey common.Key, record *pool.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *record
	s.records[poolKey] = &cp
	return nil
}
