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

package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RunLog records one row per scan invocation, so operators of a long-lived
// inventory can see what was scanned when and whether it finished.
type RunLog struct {
	idb bun.IDB
}

// Start records the beginning of a scan over root and returns the run row.
func (r *RunLog) Start(ctx context.Context, root, mode string) (*ScanRunModel, error) {
	run := &ScanRunModel{
		ID:       uuid.NewString(),
		Root:     root,
		Mode:     mode,
		Started:  time.Now().Unix(),
		Finished: -1,
		Status:   "running",
	}
	if _, err := r.idb.NewInsert().Model(run).Exec(ctx); err != nil {
		return nil, err
	}
	return run, nil
}

// Finish marks a run completed. runErr nil means success; otherwise the error
// text is recorded with status "error".
func (r *RunLog) Finish(ctx context.Context, run *ScanRunModel, nodesTracked int64, runErr error) error {
	run.Finished = time.Now().Unix()
	run.NodesTracked = nodesTracked
	run.Status = "ok"
	if runErr != nil {
		run.Status = "error"
		run.Error = runErr.Error()
	}
	_, err := r.idb.NewUpdate().
		Model(run).
		Column("finished", "nodes_tracked", "status", "error").
		WherePK().
		Exec(ctx)
	return err
}

// List returns all recorded runs, newest first.
func (r *RunLog) List(ctx context.Context) ([]ScanRunModel, error) {
	var runs []ScanRunModel
	err := r.idb.NewSelect().
		Model(&runs).
		Order("started DESC", "id").
		Scan(ctx)
	return runs, err
}
