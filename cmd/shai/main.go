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

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/blinklabs-io/shai/internal/config"
	"github.com/blinklabs-io/shai/internal/logging"
	"github.com/blinklabs-io/shai/internal/storage"
	"github.com/blinklabs-io/shai/internal/version"
)

const (
	programName = "shai"
)

var cmdlineFlags struct {
	configFile string
	version    bool
	demo       bool
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.BoolVar(&cmdlineFlags.version, "version", false, "show version")
	flag.BoolVar(&cmdlineFlags.demo, "demo", false, "replay a built-in smoke-test scenario against the configured storage directory and print its trace")
	flag.Parse()

	if cmdlineFlags.version {
		fmt.Printf("%s %s\n", programName, version.GetVersionString())
		os.Exit(0)
	}

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	logging.Configure()
	logger := logging.GetLogger()
	// Sync logger on exit
	defer func() {
		if err := logger.Sync(); err != nil {
			// We don't actually care about the error here, but we have to do something
			// to appease the linter
			return
		}
	}()

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Infof("starting debug listener on %s:%d", cfg.Debug.ListenAddress, cfg.Debug.ListenPort)
		go func() {
			err := http.ListenAndServe(fmt.Sprintf("%s:%d", cfg.Debug.ListenAddress, cfg.Debug.ListenPort), nil)
			if err != nil {
				logger.Fatalf("failed to start debug listener: %s", err)
			}
		}()
	}

	store := storage.GetStorage()
	if err := store.Open(); err != nil {
		logger.Fatalf("failed to open storage: %s", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("failed to close storage: %s", err)
		}
	}()

	if cmdlineFlags.demo {
		trace, err := runDemo(cfg, store)
		if err != nil {
			logger.Fatalf("demo scenario failed: %s", err)
		}
		for _, event := range trace.Events {
			if event.Err != "" {
				logger.Warnf("demo step %q (%d) failed: %s", event.Label, event.Index, event.Err)
			} else {
				logger.Infof("demo step %q (%d) ok", event.Label, event.Index)
			}
		}
		encoded, err := dumpTraceCBOR(trace)
		if err != nil {
			logger.Fatalf("failed to encode trace: %s", err)
		}
		fmt.Printf("%x\n", encoded)
	}
}
