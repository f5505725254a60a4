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

// Package logging configures the process-wide structured logger used by
// the pool engine, storage, and simulation harness.
package logging

import (
	"github.com/blinklabs-io/shai/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sugared logger type used throughout the engine.
type Logger = zap.SugaredLogger

var globalLogger *Logger

// Configure (re)builds the global logger from the current config.
func Configure() {
	cfg := config.GetConfig()

	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	baseLogger, err := zapCfg.Build()
	if err != nil {
		// Logging cannot be constructed; fall back to a no-op logger rather
		// than panic, since a pool operation should never fail because of
		// its own observability layer.
		baseLogger = zap.NewNop()
	}
	globalLogger = baseLogger.Sugar().With("component", "pool-engine")
}

// GetLogger returns the process-wide logger, configuring it on first use.
func GetLogger() *Logger {
	if globalLogger == nil {
		Configure()
	}
	return globalLogger
}

// WithPool returns a child logger annotated with a pool identifier, used
// by the engine and storage layers to correlate log lines for one pool.
func WithPool(poolID string) *Logger {
	return GetLogger().With("pool", poolID)
}
