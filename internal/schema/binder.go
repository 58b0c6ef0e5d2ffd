package schema

import (
	"context"
	"fmt"

	"tagsync/internal/hierarchy"
	"tagsync/internal/logging"
	"tagsync/internal/search"
)

// Resolution maps field names to the files that satisfied them, in
// walk order.
type Resolution map[string][]*hierarchy.File

// Names returns the file names for one field, for logs and errors.
func fileNames(files []*hierarchy.File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

// Binder resolves a schema against a container tree.
type Binder struct {
	walker *search.Walker
}

// NewBinder returns a binder backed by the given store client.
func NewBinder(client hierarchy.Client) *Binder {
	return &Binder{walker: search.NewWalker(client)}
}

// Resolve walks the tree once per field, using the field name as the
// search tag, and validates each field's arity. Resolution is atomic:
// the first violation fails the whole call and no partial mapping is
// returned. After arity validation the schema's type filter is applied;
// a field filtered down to zero files is a missing resolution.
func (b *Binder) Resolve(ctx context.Context, s *Schema, root *hierarchy.Container) (Resolution, error) {
	timer := logging.StartTimer(logging.CategoryResolve, "schema resolution")
	defer timer.Stop()

	resolved := make(Resolution, len(s.Fields))
	for _, field := range s.Fields {
		pred := search.TagPredicate(field.Name)
		files, err := b.walker.Walk(ctx, root, pred, true)
		if err != nil {
			return nil, fmt.Errorf("search for field %q: %w", field.Name, err)
		}
		logging.ResolveDebug("field %q matched %d files: %v", field.Name, len(files), fileNames(files))

		switch field.Arity {
		case AritySingle:
			if len(files) > 1 {
				return nil, &AmbiguousResolutionError{Field: field.Name, Files: fileNames(files)}
			}
			if len(files) == 0 {
				return nil, &MissingResolutionError{Field: field.Name, Predicate: pred.String()}
			}
		case ArityMultiple:
			if len(files) == 0 {
				return nil, &MissingResolutionError{Field: field.Name, Predicate: pred.String()}
			}
		default:
			return nil, fmt.Errorf("field %q: invalid arity %q", field.Name, field.Arity)
		}
		resolved[field.Name] = files
	}
	logResolution("resolved %d files across %d fields", resolved)

	if len(s.FilterTypes) > 0 {
		filtered, err := filterByType(resolved, s.FilterTypes)
		if err != nil {
			return nil, err
		}
		resolved = filtered
		logResolution("kept %d files across %d fields after type filter", resolved)
	}
	return resolved, nil
}

// filterByType keeps only files whose type classifier is in keep.
// Filtering a field to zero files is a missing resolution.
func filterByType(resolved Resolution, keep []string) (Resolution, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, t := range keep {
		keepSet[t] = true
	}
	out := make(Resolution, len(resolved))
	for field, files := range resolved {
		var kept []*hierarchy.File
		for _, f := range files {
			if keepSet[f.Type] {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			return nil, &MissingResolutionError{Field: field, FilterTypes: keep}
		}
		logging.ResolveDebug("field %q: %d of %d files kept by type filter %v",
			field, len(kept), len(files), keep)
		out[field] = kept
	}
	return out, nil
}

func logResolution(format string, resolved Resolution) {
	total := 0
	for _, files := range resolved {
		total += len(files)
	}
	logging.Resolve(format, total, len(resolved))
	for field, files := range resolved {
		logging.ResolveDebug("  %s: %v", field, fileNames(files))
	}
}
