package manifest

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	mapping := map[string][]string{
		"t2_tse":    {"/work/t2_tse.nii.gz"},
		"nifti_out": {"/work/one.nii.gz", "/work/two.nii.gz"},
	}

	path, err := Write(dir, mapping)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("unexpected manifest path: %s", path)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if diff := cmp.Diff(mapping, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_NilPathsBecomeEmptyList(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, map[string][]string{"empty": nil})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	paths, ok := got["empty"]
	if !ok {
		t.Fatal("field missing from manifest")
	}
	if paths == nil || len(paths) != 0 {
		t.Errorf("expected empty list, got %#v", paths)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
