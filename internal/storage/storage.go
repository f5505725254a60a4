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

// Package storage is the durable engine.Store: every pool record lives
// as one Badger key, encoded with wire.EncodeRecord/DecodeRecord.
package storage

import (
	"fmt"

	"github.com/blinklabs-io/shai/internal/common"
	"github.com/blinklabs-io/shai/internal/config"
	"github.com/blinklabs-io/shai/internal/logging"
	"github.com/blinklabs-io/shai/internal/pool"
	"github.com/blinklabs-io/shai/internal/wire"

	"github.com/dgraph-io/badger/v4"
)

const poolKeyPrefix = "pool_"

// Storage persists pool records in a Badger database. One process owns
// one Storage; it satisfies engine.Store.
type Storage struct {
	db *badger.DB
}

var globalStorage = &Storage{}

// Open opens (creating if necessary) the Badger database at the
// configured storage directory.
func (s *Storage) Open() error {
	cfg := config.GetConfig()
	badgerOpts := badger.DefaultOptions(cfg.Storage.Directory).
		WithLogger(NewBadgerLogger()).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Close releases the underlying Badger database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func recordKey(poolKey common.Key) []byte {
	return []byte(poolKeyPrefix + poolKey.String())
}

// Load fetches and decodes the record stored at poolKey. Satisfies
// engine.Store.
func (s *Storage) Load(poolKey common.Key) (*pool.Record, error) {
	var encoded []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(poolKey))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			encoded = append([]byte{}, v...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading pool record %s: %w", poolKey, err)
	}
	return wire.DecodeRecord(encoded)
}

// Save encodes and persists record at poolKey, replacing any previous
// value. Satisfies engine.Store.
func (s *Storage) Save(poolKey common.Key, record *pool.Record) error {
	encoded, err := wire.EncodeRecord(record)
	if err != nil {
		return err
	}
	logger := logging.WithPool(poolKey.String())
	logger.Debugw("saving pool record", "bytes", len(encoded))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(poolKey), encoded)
	})
}

// GetStorage returns the process-wide Storage singleton.
func GetStorage() *Storage {
	return globalStorage
}

// BadgerLogger adapts the process logger to Badger's expected Logger
// interface (Errorf/Warningf/Infof/Debugf).
type BadgerLogger struct {
	*logging.Logger
}

// NewBadgerLogger wraps the process-wide logger for Badger's use.
func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{
		Logger: logging.GetLogger(),
	}
}

// Warningf satisfies badger.Logger's naming (badger calls Warningf, not
// Warnf).
func (b *BadgerLogger) Warningf(msg string, args ...any) {
	b.Logger.Warnf(msg, args...)
}
