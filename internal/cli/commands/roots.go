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
	"github.com/spf13/cobra"

	"relascope/internal/scan"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Report tracked tree tops as TSV",
	Args:  cobra.NoArgs,
	RunE:  runRoots,
}

func init() {
	rootsCmd.Flags().BoolVar(&flagHuman, "human", false, "humanize sizes")
	rootCmd.AddCommand(rootsCmd)
}

func runRoots(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	nodes, err := db.Store().List(cmd.Context(), scan.RootsOnly())
	if err != nil {
		return err
	}
	return writeReport(nodes)
}
