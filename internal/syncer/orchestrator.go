package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tagsync/internal/hierarchy"
	"tagsync/internal/logging"
	"tagsync/internal/schema"
)

// Options configures an Orchestrator.
type Options struct {
	// RemotePath is the "<group>/<project>" source for every invocation.
	RemotePath string
	// WorkDir receives synced files and audit logs.
	WorkDir string
	// Includes are file-type include flags forwarded to the tool.
	Includes []string
	// SuffixFilter keeps only synced paths with this suffix in the
	// final mapping. Empty keeps everything.
	SuffixFilter string
	// AllowEmptyFiltered lets a field end up empty after the suffix
	// filter instead of failing.
	AllowEmptyFiltered bool
	// Parallelism bounds concurrent tool invocations. Values below 1
	// mean sequential.
	Parallelism int
}

// Orchestrator materializes resolved file groups locally by driving the
// external sync tool once per field, scoped to the distinct parent
// containers of that field's files.
type Orchestrator struct {
	client hierarchy.Client
	tool   Tool
	opts   Options

	// tagMu serializes the read-then-write idempotency tagging per
	// container identifier so two fields sharing a parent cannot race.
	tagMu    sync.Mutex
	tagLocks map[string]*sync.Mutex
}

// New returns an orchestrator for the given store client and tool.
func New(client hierarchy.Client, tool Tool, opts Options) *Orchestrator {
	return &Orchestrator{
		client:   client,
		tool:     tool,
		opts:     opts,
		tagLocks: make(map[string]*sync.Mutex),
	}
}

// Synchronize mirrors every resolved field group into the work directory
// and returns the field -> local paths mapping. Fields run under a
// bounded worker pool; the first failure cancels the remaining work and
// fails the job. Empty groups never reach this method (the binder
// rejects them).
func (o *Orchestrator) Synchronize(ctx context.Context, resolved schema.Resolution) (map[string][]string, error) {
	timer := logging.StartTimer(logging.CategorySync, "synchronization")
	defer timer.Stop()

	if err := os.MkdirAll(o.opts.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	// Deterministic scheduling order.
	fields := make([]string, 0, len(resolved))
	for field := range resolved {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	synced := make(map[string][]string, len(resolved))
	var syncedMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if o.opts.Parallelism > 1 {
		g.SetLimit(o.opts.Parallelism)
	} else {
		g.SetLimit(1)
	}

	for _, field := range fields {
		field := field
		files := resolved[field]
		g.Go(func() error {
			paths, err := o.syncField(gctx, field, files)
			if err != nil {
				return err
			}
			syncedMu.Lock()
			synced[field] = paths
			syncedMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return synced, nil
}

// syncField runs one tool invocation for a field's file group.
func (o *Orchestrator) syncField(ctx context.Context, field string, files []*hierarchy.File) ([]string, error) {
	filter := NewFilterExpression()
	for _, f := range files {
		parent, err := o.ensureParentTagged(ctx, f)
		if err != nil {
			return nil, &InvocationError{Field: field, Err: err}
		}
		filter.Add(parent.Kind, parent.ID)
	}

	auditPath := filepath.Join(o.opts.WorkDir, uuid.New().String()+".csv")
	inv := Invocation{
		RemotePath: o.opts.RemotePath,
		Dest:       o.opts.WorkDir,
		Includes:   o.opts.Includes,
		Filter:     filter,
		AuditPath:  auditPath,
	}
	logging.Sync("field %q: syncing %d files with filter %s", field, len(files), filter)
	if err := o.tool.Sync(ctx, inv); err != nil {
		return nil, &InvocationError{Field: field, Err: err}
	}

	paths, err := Reconcile(auditPath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &AuditTrailError{Path: auditPath, Reason: "no records for expected files"}
	}

	if o.opts.SuffixFilter != "" {
		kept := make([]string, 0, len(paths))
		for _, p := range paths {
			if strings.HasSuffix(p, o.opts.SuffixFilter) {
				kept = append(kept, p)
			}
		}
		logging.AuditDebug("field %q: %d of %d paths match suffix %q",
			field, len(kept), len(paths), o.opts.SuffixFilter)
		if len(kept) == 0 && !o.opts.AllowEmptyFiltered {
			return nil, &EmptyAfterFilterError{Field: field, Suffix: o.opts.SuffixFilter}
		}
		paths = kept
	}
	return paths, nil
}

// ensureParentTagged fetches a file's owning container and tags it with
// its own identifier unless the tag is already there. A pre-existing
// self-tag means the container was synchronized before; it is logged and
// the sync proceeds, but the tag write is not repeated. This is the only
// write against the remote store.
func (o *Orchestrator) ensureParentTagged(ctx context.Context, f *hierarchy.File) (*hierarchy.Container, error) {
	lock := o.lockFor(f.ParentID)
	lock.Lock()
	defer lock.Unlock()

	parent, err := o.client.GetContainer(ctx, f.ParentID)
	if err != nil {
		return nil, fmt.Errorf("get parent of %q: %w", f.Name, err)
	}
	if parent.HasTag(parent.ID) {
		logging.SyncWarn("container %q already carries its own id tag; previously synchronized", parent.ID)
		return parent, nil
	}
	logging.Sync("tagging container %q with its own id", parent.ID)
	if err := o.client.AddTag(ctx, parent, parent.ID); err != nil {
		return nil, fmt.Errorf("tag container %q: %w", parent.ID, err)
	}
	return parent, nil
}

func (o *Orchestrator) lockFor(id string) *sync.Mutex {
	o.tagMu.Lock()
	defer o.tagMu.Unlock()
	l, ok := o.tagLocks[id]
	if !ok {
		l = &sync.Mutex{}
		o.tagLocks[id] = l
	}
	return l
}
