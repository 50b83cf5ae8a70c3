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
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"relascope/internal/common"
	"relascope/internal/scan"
)

var flagFull bool

var scanCmd = &cobra.Command{
	Use:   "scan <dir>...",
	Short: "Scan or refresh directory trees",
	Long: `Bring the inventory in sync with the live filesystem state of each tree.

Trees already tracked are refreshed incrementally: unchanged subtrees are
trusted from the database, new subtrees are scanned, vanished subtrees are
pruned. Untracked trees are scanned in full and registered as new roots.

Examples:
  relascope scan /data/projects
  relascope scan --full /data/projects   # force a full re-scan
  relascope scan /srv/a /srv/b`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&flagFull, "full", false, "discard stored aggregates and re-scan the whole tree")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	// Validate every root before any scanning begins.
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", arg, err)
		}
		abs = common.NormalizePath(abs)
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("cannot scan %s: %w", abs, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("cannot scan %s: %w", abs, common.ErrNotDir)
		}
		roots = append(roots, abs)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	logger := log.StandardLogger()
	store := db.Store()
	engine := scan.NewEngine(store, scan.NewLocalLister(logger), logger)

	mode := "refresh"
	if flagFull {
		mode = "full"
	}

	for _, root := range roots {
		run, err := db.Runs().Start(ctx, root, mode)
		if err != nil {
			return err
		}

		var top *scan.Node
		if flagFull {
			top, err = engine.AddTree(ctx, root)
		} else {
			top, err = engine.Refresh(ctx, root)
		}
		if err != nil {
			if ferr := db.Runs().Finish(ctx, run, 0, err); ferr != nil {
				logger.WithError(ferr).Warn("failed to record scan run")
			}
			return fmt.Errorf("scan of %s failed: %w", root, err)
		}

		tracked, err := store.CountSubtree(ctx, top.Path)
		if err != nil {
			return err
		}
		if err := db.Runs().Finish(ctx, run, tracked, nil); err != nil {
			return err
		}

		fmt.Printf("%s: %d files, %d dirs, %d bytes, %d exceptions (%d tracked under %s)\n",
			root, top.NumFiles, top.NumDirs, top.NumBytes, top.NumExceptions, tracked, top.Path)
	}
	return nil
}
