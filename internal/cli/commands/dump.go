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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"relascope/internal/common"
	"relascope/internal/scan"
)

var (
	flagMaxDepth int64
	flagHuman    bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump [subtree]",
	Short: "Report tracked directories as TSV",
	Long: `Write tracked directory statistics to stdout, one header row of field
names followed by one tab-separated row per directory, ordered by path.

With a subtree argument only that path and its descendants are reported.

Examples:
  relascope dump
  relascope dump /data/projects --max-depth 3
  relascope dump --human | less`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().Int64Var(&flagMaxDepth, "max-depth", -1, "deepest directory depth to report (-1: unlimited)")
	dumpCmd.Flags().BoolVar(&flagHuman, "human", false, "humanize sizes")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	filter := scan.ListFilter{MaxDepth: flagMaxDepth}
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", args[0], err)
		}
		filter.Subtree = common.NormalizePath(abs)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	nodes, err := db.Store().List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return writeReport(nodes)
}

var reportHeader = []string{
	"path", "parent", "depth", "max_depth",
	"scan_started", "scan_finished", "last_updated",
	"max_atime", "max_ctime", "max_mtime",
	"num_blocks", "num_bytes",
	"num_files", "num_dirs", "num_symlinks", "num_specials",
	"num_multi_links", "num_exceptions",
}

// writeReport emits the TSV report. A broken output pipe is a normal,
// non-error termination.
func writeReport(nodes []*scan.Node) error {
	if err := writeRow(reportHeader); err != nil {
		return pipeSafe(err)
	}
	for _, n := range nodes {
		row := []string{
			n.Path,
			n.Parent,
			strconv.FormatInt(n.Depth, 10),
			strconv.FormatInt(n.MaxDepth, 10),
			formatEpoch(n.ScanStarted),
			formatEpoch(n.ScanFinished),
			formatEpoch(n.LastUpdated),
			formatEpoch(n.MaxAtime),
			formatEpoch(n.MaxCtime),
			formatEpoch(n.MaxMtime),
			formatBlocks(n.NumBlocks),
			formatBytes(n.NumBytes),
			strconv.FormatInt(n.NumFiles, 10),
			strconv.FormatInt(n.NumDirs, 10),
			strconv.FormatInt(n.NumSymlinks, 10),
			strconv.FormatInt(n.NumSpecials, 10),
			strconv.FormatInt(n.NumMultiLinks, 10),
			strconv.FormatInt(n.NumExceptions, 10),
		}
		if err := writeRow(row); err != nil {
			return pipeSafe(err)
		}
	}
	return nil
}

func writeRow(cols []string) error {
	_, err := fmt.Fprintln(os.Stdout, strings.Join(cols, "\t"))
	return err
}

// pipeSafe turns EPIPE into a clean exit (e.g. `relascope dump | head`).
func pipeSafe(err error) error {
	if errors.Is(err, syscall.EPIPE) {
		return nil
	}
	return err
}

func formatEpoch(epoch int64) string {
	if epoch == scan.TimeNever {
		return "never"
	}
	return time.Unix(epoch, 0).UTC().Format("2006-01-02 15:04:05")
}

// formatBlocks renders the 512-byte block count, humanized as allocated
// bytes when --human is set.
func formatBlocks(blocks int64) string {
	if flagHuman {
		return humanize.IBytes(uint64(blocks) * 512)
	}
	return strconv.FormatInt(blocks, 10)
}

func formatBytes(bytes int64) string {
	if flagHuman {
		return humanize.IBytes(uint64(bytes))
	}
	return strconv.FormatInt(bytes, 10)
}
