package hierarchy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestKind_ChildChain(t *testing.T) {
	cases := []struct {
		kind  Kind
		child Kind
		ok    bool
	}{
		{KindProject, KindSubject, true},
		{KindSubject, KindSession, true},
		{KindSession, KindAcquisition, true},
		{KindAcquisition, "", false},
		{Kind("analysis"), "", false},
	}
	for _, tc := range cases {
		child, ok := tc.kind.Child()
		if ok != tc.ok || child != tc.child {
			t.Errorf("%s.Child() = (%s, %v), want (%s, %v)", tc.kind, child, ok, tc.child, tc.ok)
		}
	}
}

func TestContainer_HasTag(t *testing.T) {
	c := &Container{ID: "x", Tags: []string{"a", "b"}}
	if !c.HasTag("a") || !c.HasTag("b") {
		t.Error("expected existing tags to be found")
	}
	if c.HasTag("c") {
		t.Error("unexpected tag found")
	}
}

func TestMemClient_AddTagDeduplicates(t *testing.T) {
	m := NewMemClient()
	c := &Container{ID: "a1", Kind: KindAcquisition}
	m.AddContainer(c, "")
	ctx := context.Background()

	if err := m.AddTag(ctx, c, "a1"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := m.AddTag(ctx, c, "a1"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	got, err := m.GetContainer(ctx, "a1")
	if err != nil {
		t.Fatalf("GetContainer: %v", err)
	}
	if len(got.Tags) != 1 {
		t.Errorf("expected one tag after double add, got %v", got.Tags)
	}
}

func TestMemClient_ChildOrderIsInsertionOrder(t *testing.T) {
	m := NewMemClient()
	p := &Container{ID: "p1", Kind: KindProject}
	m.AddContainer(p, "")
	m.AddContainer(&Container{ID: "s2", Kind: KindSubject}, "p1")
	m.AddContainer(&Container{ID: "s1", Kind: KindSubject}, "p1")

	kids, err := m.ListChildren(context.Background(), p)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(kids) != 2 || kids[0].ID != "s2" || kids[1].ID != "s1" {
		t.Errorf("unexpected child order: %v", kids)
	}
}

func TestLoadFixture(t *testing.T) {
	content := `
project:
  id: p1
  label: Demo
  subjects:
    - id: su1
      sessions:
        - id: se1
          acquisitions:
            - id: a1
              files:
                - name: scan.dcm
                  type: dicom
                  tags: [t2_tse]
`
	path := filepath.Join(t.TempDir(), "tree.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m, root, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if root.ID != "p1" || root.Kind != KindProject {
		t.Fatalf("unexpected root: %+v", root)
	}

	ctx := context.Background()
	acq, err := m.GetContainer(ctx, "a1")
	if err != nil {
		t.Fatalf("GetContainer: %v", err)
	}
	if acq.Kind != KindAcquisition {
		t.Errorf("expected acquisition kind, got %s", acq.Kind)
	}
	files, err := m.ListFiles(ctx, acq)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Name != "scan.dcm" || files[0].ParentID != "a1" {
		t.Errorf("unexpected files: %+v", files)
	}
}

func TestLoadFixture_RequiresProjectID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	if err := os.WriteFile(path, []byte("project: {label: NoID}\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for missing project id")
	}
}
