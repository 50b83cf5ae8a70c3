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

package commands

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"relascope/internal/config"
	"relascope/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

var (
	flagDB      string
	flagVerbose bool

	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "relascope",
	Short: "Inventory a forest of directory trees",
	Long: `Relascope inventories a forest of directory trees, keeping per-directory
cumulative statistics (sizes, counts, newest times) in a database and
synchronizing them incrementally with live filesystem state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		settings, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := settings.NormalizedLogLevel()
		if flagVerbose {
			level = "debug"
		}
		switch level {
		case "trace":
			log.SetLevel(log.TraceLevel)
		case "debug":
			log.SetLevel(log.DebugLevel)
		case "warn":
			log.SetLevel(log.WarnLevel)
		default:
			log.SetLevel(log.InfoLevel)
		}

		storage.SetConfigBusyTimeout(settings.BusyTimeout)
		if flagDB == "" {
			flagDB = settings.Database
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("relascope version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "inventory database file (default from config, else ~/.relascope.db)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// openDB opens the configured inventory database.
func openDB() (*storage.DB, error) {
	db, err := storage.Open(flagDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", flagDB, err)
	}
	return db, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
