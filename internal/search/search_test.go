package search

import (
	"context"
	"testing"

	"tagsync/internal/hierarchy"
)

// buildTree returns a client with one container per level, each holding
// one file tagged "t", plus the root project.
func buildTree(t *testing.T) (*hierarchy.MemClient, *hierarchy.Container) {
	t.Helper()
	m := hierarchy.NewMemClient()
	project := &hierarchy.Container{ID: "p1", Label: "proj", Kind: hierarchy.KindProject}
	subject := &hierarchy.Container{ID: "su1", Label: "subj", Kind: hierarchy.KindSubject}
	session := &hierarchy.Container{ID: "se1", Label: "sess", Kind: hierarchy.KindSession}
	acq := &hierarchy.Container{ID: "a1", Label: "acq", Kind: hierarchy.KindAcquisition}
	m.AddContainer(project, "")
	m.AddContainer(subject, "p1")
	m.AddContainer(session, "su1")
	m.AddContainer(acq, "se1")
	m.AddFile("p1", &hierarchy.File{Name: "p.txt", Type: "text", Tags: []string{"t"}})
	m.AddFile("su1", &hierarchy.File{Name: "su.txt", Type: "text", Tags: []string{"t"}})
	m.AddFile("se1", &hierarchy.File{Name: "se.txt", Type: "text", Tags: []string{"t"}})
	m.AddFile("a1", &hierarchy.File{Name: "a.txt", Type: "text", Tags: []string{"t"}})
	return m, project
}

func TestPredicate_SingleTag(t *testing.T) {
	p := TagPredicate("t1")
	if !p.Matches([]string{"t0", "t1"}) {
		t.Error("expected membership match")
	}
	if p.Matches([]string{"t0", "t2"}) {
		t.Error("unexpected match")
	}
	if p.Matches(nil) {
		t.Error("empty tag set should not match")
	}
}

func TestPredicate_AnyVsAll(t *testing.T) {
	any := Predicate{Tags: []string{"a", "b"}}
	all := Predicate{Tags: []string{"a", "b"}, Inclusive: true}

	cases := []struct {
		tags    []string
		wantAny bool
		wantAll bool
	}{
		{[]string{"a"}, true, false},
		{[]string{"b"}, true, false},
		{[]string{"a", "b"}, true, true},
		{[]string{"a", "b", "c"}, true, true},
		{[]string{"c"}, false, false},
		{nil, false, false},
	}
	for _, tc := range cases {
		if got := any.Matches(tc.tags); got != tc.wantAny {
			t.Errorf("any.Matches(%v) = %v, want %v", tc.tags, got, tc.wantAny)
		}
		if got := all.Matches(tc.tags); got != tc.wantAll {
			t.Errorf("all.Matches(%v) = %v, want %v", tc.tags, got, tc.wantAll)
		}
		// Inclusive results must be a subset of exclusive results.
		if tc.wantAll && !tc.wantAny {
			t.Errorf("inclusive matched %v but exclusive did not", tc.tags)
		}
	}
}

func TestWalk_NonRecursiveMatchesDirectOnly(t *testing.T) {
	m, project := buildTree(t)
	w := NewWalker(m)

	files, err := w.Walk(context.Background(), project, TagPredicate("t"), false)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 direct match, got %d", len(files))
	}
	if files[0].Name != "p.txt" {
		t.Errorf("expected p.txt, got %s", files[0].Name)
	}
}

func TestWalk_RecursiveOneMatchPerLevel(t *testing.T) {
	m, project := buildTree(t)
	w := NewWalker(m)

	files, err := w.Walk(context.Background(), project, TagPredicate("t"), true)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	// Four levels, one file each: exactly 4, not 1 and not 16.
	if len(files) != 4 {
		t.Fatalf("expected 4 matches (one per level), got %d", len(files))
	}
	// Root-first, depth-first order.
	order := []string{"p.txt", "su.txt", "se.txt", "a.txt"}
	for i, want := range order {
		if files[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, files[i].Name)
		}
	}
}

func TestWalk_NonRecursiveIsSubsetOfRecursive(t *testing.T) {
	m, project := buildTree(t)
	w := NewWalker(m)
	ctx := context.Background()
	p := TagPredicate("t")

	direct, err := w.Walk(ctx, project, p, false)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	recursive, err := w.Walk(ctx, project, p, true)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	seen := make(map[string]int)
	for _, f := range recursive {
		seen[f.ParentID+"/"+f.Name]++
	}
	for _, f := range direct {
		if seen[f.ParentID+"/"+f.Name] == 0 {
			t.Errorf("direct match %s missing from recursive result", f.Name)
		}
	}
}

func TestWalk_DoesNotMutateTree(t *testing.T) {
	m, project := buildTree(t)
	w := NewWalker(m)
	ctx := context.Background()

	if _, err := w.Walk(ctx, project, TagPredicate("t"), true); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	for _, id := range []string{"p1", "su1", "se1", "a1"} {
		c, err := m.GetContainer(ctx, id)
		if err != nil {
			t.Fatalf("GetContainer(%s): %v", id, err)
		}
		if len(c.Tags) != 0 {
			t.Errorf("container %s tags mutated: %v", id, c.Tags)
		}
	}
}

func TestWalk_StopsAtAcquisition(t *testing.T) {
	m, _ := buildTree(t)
	w := NewWalker(m)
	acq, err := m.GetContainer(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetContainer: %v", err)
	}

	files, err := w.Walk(context.Background(), acq, TagPredicate("t"), true)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 match at leaf, got %d", len(files))
	}
}

func TestMatch_NoMatchesReturnsEmpty(t *testing.T) {
	m, project := buildTree(t)
	w := NewWalker(m)

	files, err := w.Match(context.Background(), project, TagPredicate("absent"))
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no matches, got %d", len(files))
	}
}
