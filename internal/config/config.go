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

// Package config loads the runtime envelope around the pool engine:
// where to persist pool records and how to log. It does not configure
// any pool's on-chain parameters — those live in pool.Record and are set
// via Init/governance operations, not process config.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the top-level process configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Debug      DebugConfig      `yaml:"debug"`
	Storage    StorageConfig    `yaml:"storage"`
	Governance GovernanceConfig `yaml:"governance"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

// DebugConfig controls the optional pprof/debug HTTP listener.
type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port" envconfig:"DEBUG_PORT"`
}

// StorageConfig points at the directory backing the Badger-based pool
// record store.
type StorageConfig struct {
	Directory string `yaml:"dir" envconfig:"STORAGE_DIR"`
}

// GovernanceConfig carries the engine's time-gating constants. They
// default to the values spec.md fixes (3 day enact delay, 1 day minimum
// ramp duration, 10x max ramp factor) but are overridable so integration
// tests don't have to wait on real wall-clock days.
type GovernanceConfig struct {
	EnactDelaySeconds      int64 `yaml:"enactDelaySeconds"      envconfig:"GOVERNANCE_ENACT_DELAY_SECONDS"`
	MinRampDurationSeconds int64 `yaml:"minRampDurationSeconds" envconfig:"GOVERNANCE_MIN_RAMP_DURATION_SECONDS"`
	MaxRampFactor          int64 `yaml:"maxRampFactor"          envconfig:"GOVERNANCE_MAX_RAMP_FACTOR"`
}

const (
	// DefaultEnactDelaySeconds is spec.md's ENACT_DELAY (3 days).
	DefaultEnactDelaySeconds = 3 * 24 * 60 * 60
	// DefaultMinRampDurationSeconds is spec.md's MIN_RAMP_DURATION (1 day).
	DefaultMinRampDurationSeconds = 24 * 60 * 60
	// DefaultMaxRampFactor is spec.md's MAX_RAMP_FACTOR.
	DefaultMaxRampFactor = 10
)

// Singleton config instance with default values.
var globalConfig = &Config{
	Logging: LoggingConfig{
		Level: "info",
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Storage: StorageConfig{
		Directory: "./.stablepool",
	},
	Governance: GovernanceConfig{
		EnactDelaySeconds:      DefaultEnactDelaySeconds,
		MinRampDurationSeconds: DefaultMinRampDurationSeconds,
		MaxRampFactor:          DefaultMaxRampFactor,
	},
}

// Load reads an optional YAML config file, then overlays environment
// variables, and returns the resulting singleton.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %s", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %s", err)
		}
	}
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	if err := envconfig.Process("dummy", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %s", err)
	}
	if globalConfig.Governance.EnactDelaySeconds <= 0 {
		return nil, fmt.Errorf("governance.enactDelaySeconds must be positive")
	}
	if globalConfig.Governance.MinRampDurationSeconds <= 0 {
		return nil, fmt.Errorf("governance.minRampDurationSeconds must be positive")
	}
	if globalConfig.Governance.MaxRampFactor <= 0 {
		return nil, fmt.Errorf("governance.maxRampFactor must be positive")
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance.
func GetConfig() *Config {
	return globalConfig
}
