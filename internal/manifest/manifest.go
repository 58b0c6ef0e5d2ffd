// Package manifest writes the final field -> local paths mapping for the
// downstream consumer. The pipeline guarantees every schema field is
// present by the time this runs; a partial mapping never gets here.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest written into the work directory.
const FileName = "tags_in.yaml"

// Write serializes the mapping as YAML into dir and returns the path.
// Nil path slices are written as empty lists.
func Write(dir string, mapping map[string][]string) (string, error) {
	out := make(map[string][]string, len(mapping))
	for field, paths := range mapping {
		if paths == nil {
			paths = []string{}
		}
		out[field] = paths
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// Read loads a manifest back into a mapping.
func Read(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var mapping map[string][]string
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return mapping, nil
}
