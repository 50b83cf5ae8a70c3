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
	"strconv"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List scan invocation history",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs().List(cmd.Context())
	if err != nil {
		return err
	}

	header := []string{"id", "root", "mode", "started", "finished", "nodes_tracked", "status", "error"}
	if err := writeRow(header); err != nil {
		return pipeSafe(err)
	}
	for _, r := range runs {
		row := []string{
			r.ID,
			r.Root,
			r.Mode,
			formatEpoch(r.Started),
			formatEpoch(r.Finished),
			strconv.FormatInt(r.NodesTracked, 10),
			r.Status,
			r.Error,
		}
		if err := writeRow(row); err != nil {
			return pipeSafe(err)
		}
	}
	return nil
}
