// Package pipeline wires the full resolve -> sync -> reconcile run. It
// is single pass: one schema resolution, one synchronization round, one
// manifest. Nothing here retries; every failure aborts the job.
package pipeline

import (
	"context"
	"fmt"

	"tagsync/internal/config"
	"tagsync/internal/hierarchy"
	"tagsync/internal/logging"
	"tagsync/internal/manifest"
	"tagsync/internal/schema"
	"tagsync/internal/syncer"
)

// Job bundles the collaborators for one run.
type Job struct {
	Client hierarchy.Client
	Tool   syncer.Tool
	Config *config.Config
	Schema *schema.Schema
	// RootID is the container the tag search starts from.
	RootID string
}

// Result is the terminal state of a successful run.
type Result struct {
	// Mapping is field -> local paths; every schema field is present.
	Mapping map[string][]string
	// ManifestPath is the written tags manifest.
	ManifestPath string
}

// Run executes the pipeline. Partial success is not a valid terminal
// state: either every field resolves, syncs and reconciles, or Run
// returns an error and no manifest is written.
func Run(ctx context.Context, job Job) (*Result, error) {
	root, err := job.Client.GetContainer(ctx, job.RootID)
	if err != nil {
		return nil, fmt.Errorf("get root container: %w", err)
	}
	logging.Boot("pipeline start: root %s %q, %d fields", root.Kind, root.ID, len(job.Schema.Fields))

	binder := schema.NewBinder(job.Client)
	resolved, err := binder.Resolve(ctx, job.Schema, root)
	if err != nil {
		return nil, err
	}

	orch := syncer.New(job.Client, job.Tool, syncer.Options{
		RemotePath:         job.Config.RemotePath(),
		WorkDir:            job.Config.Sync.WorkDir,
		Includes:           job.Config.Sync.Includes,
		SuffixFilter:       job.Config.Sync.SuffixFilter,
		AllowEmptyFiltered: job.Config.Sync.AllowEmptyFiltered,
		Parallelism:        job.Config.Sync.Parallelism,
	})
	mapping, err := orch.Synchronize(ctx, resolved)
	if err != nil {
		return nil, err
	}

	path, err := manifest.Write(job.Config.Sync.WorkDir, mapping)
	if err != nil {
		return nil, err
	}
	logging.Boot("pipeline done: manifest at %s", path)
	return &Result{Mapping: mapping, ManifestPath: path}, nil
}
