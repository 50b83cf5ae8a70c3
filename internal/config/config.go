// Copyright 2025 Relascope Authors
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

// Package config loads the relascope settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the settings file location (test isolation).
const EnvConfigPath = "RELASCOPE_CONFIG"

// Settings are the file-configurable knobs. CLI flags override all of them.
type Settings struct {
	Database    string `yaml:"database"`     // inventory database path (default: ~/.relascope.db)
	LogLevel    string `yaml:"log_level"`    // trace, debug, info, warn (default: info)
	BusyTimeout int    `yaml:"busy_timeout"` // SQLite busy_timeout in ms, 0 = default
}

// ApplyDefaults fills zero-value fields with their defaults. The default
// database path lives under the home directory; with no resolvable home and
// no configured path there is nowhere sensible to put the database, so that
// is an error rather than a silent relative path.
func (s *Settings) ApplyDefaults() error {
	if s.Database == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("no database path configured and home directory unavailable: %w", err)
		}
		s.Database = filepath.Join(home, ".relascope.db")
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	return nil
}

// NormalizedLogLevel returns the lowercase log level.
func (s *Settings) NormalizedLogLevel() string {
	return strings.ToLower(s.LogLevel)
}

// Path returns the settings file location: RELASCOPE_CONFIG if set, otherwise
// ~/.config/relascope/config.yaml.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "relascope", "config.yaml")
}

// Load reads the settings file; a missing file yields pure defaults.
func Load() (*Settings, error) {
	var s Settings
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			if derr := s.ApplyDefaults(); derr != nil {
				return nil, derr
			}
			return &s, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &s, nil
}
