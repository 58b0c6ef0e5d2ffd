// Package search finds tagged files in the container tree. It is the
// read-only half of the pipeline: predicate matching against a single
// container (the tag index) and recursive traversal over the fixed
// project -> subject -> session -> acquisition child chain (the walker).
package search

import (
	"context"
	"fmt"

	"tagsync/internal/hierarchy"
	"tagsync/internal/logging"
)

// Predicate is a tag matching rule. With a single tag it is plain
// membership. With several tags, Inclusive false (the default) matches
// files carrying any of the tags; Inclusive true requires all of them.
type Predicate struct {
	Tags      []string
	Inclusive bool
}

// TagPredicate returns a single-tag membership predicate.
func TagPredicate(tag string) Predicate {
	return Predicate{Tags: []string{tag}}
}

// Matches reports whether a file tag set satisfies the predicate.
func (p Predicate) Matches(fileTags []string) bool {
	if len(p.Tags) == 0 {
		return false
	}
	has := func(tag string) bool {
		for _, t := range fileTags {
			if t == tag {
				return true
			}
		}
		return false
	}
	if p.Inclusive {
		for _, t := range p.Tags {
			if !has(t) {
				return false
			}
		}
		return true
	}
	for _, t := range p.Tags {
		if has(t) {
			return true
		}
	}
	return false
}

// String renders the predicate for error messages and logs.
func (p Predicate) String() string {
	if len(p.Tags) == 1 {
		return p.Tags[0]
	}
	mode := "any"
	if p.Inclusive {
		mode = "all"
	}
	return fmt.Sprintf("%s of %v", mode, p.Tags)
}

// Walker performs tag searches over a container subtree.
type Walker struct {
	client hierarchy.Client
}

// NewWalker returns a walker backed by the given store client.
func NewWalker(client hierarchy.Client) *Walker {
	return &Walker{client: client}
}

// Match returns the files directly attached to c that satisfy the
// predicate, in the store's file order. It never recurses.
func (w *Walker) Match(ctx context.Context, c *hierarchy.Container, p Predicate) ([]*hierarchy.File, error) {
	files, err := w.client.ListFiles(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("list files of %s %q: %w", c.Kind, c.ID, err)
	}
	var matched []*hierarchy.File
	for _, f := range files {
		if p.Matches(f.Tags) {
			matched = append(matched, f)
		}
	}
	logging.SearchDebug("match %s %q predicate=%s: %d of %d files", c.Kind, c.ID, p, len(matched), len(files))
	return matched, nil
}

// Walk returns the files under root matching the predicate. With
// recursive false it is identical to Match. With recursive true it
// concatenates the root's direct matches with each child subtree's
// matches, root first, children in store order, depth first.
//
// Results are not deduplicated: a file that matches at several visited
// levels appears once per level. Walk never mutates the tree.
func (w *Walker) Walk(ctx context.Context, root *hierarchy.Container, p Predicate, recursive bool) ([]*hierarchy.File, error) {
	matched, err := w.Match(ctx, root, p)
	if err != nil {
		return nil, err
	}
	if !recursive {
		return matched, nil
	}
	if _, ok := root.Kind.Child(); !ok {
		// Acquisitions are leaves; recursion bottoms out here.
		return matched, nil
	}
	children, err := w.client.ListChildren(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list children of %s %q: %w", root.Kind, root.ID, err)
	}
	for _, child := range children {
		sub, err := w.Walk(ctx, child, p, true)
		if err != nil {
			return nil, err
		}
		matched = append(matched, sub...)
	}
	return matched, nil
}
