// Package schema declares which remote files a job needs and resolves
// that declaration into concrete file sets. A schema is a list of named
// fields; each field name doubles as the tag searched for, and the
// field's arity fixes how many matches are acceptable.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Arity is the expected match count for a field, fixed at schema
// definition time.
type Arity string

const (
	// AritySingle requires exactly one matching file.
	AritySingle Arity = "single"
	// ArityMultiple requires one or more matching files.
	ArityMultiple Arity = "multiple"
)

// Valid reports whether a is a known arity.
func (a Arity) Valid() bool {
	return a == AritySingle || a == ArityMultiple
}

// Field is one named slot in the schema. The name is searched as a tag
// across the container tree.
type Field struct {
	Name  string `yaml:"name"`
	Arity Arity  `yaml:"arity"`
}

// Schema is the full resolution declaration for one job.
type Schema struct {
	Fields []Field `yaml:"fields"`

	// FilterTypes restricts every field to files with one of these type
	// classifiers after arity validation. Empty means no type filter.
	FilterTypes []string `yaml:"filter_types"`
}

// Load reads and validates a schema YAML file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks field names and arities.
func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("no fields declared")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if !f.Arity.Valid() {
			return fmt.Errorf("field %q: arity must be %q or %q, got %q",
				f.Name, AritySingle, ArityMultiple, f.Arity)
		}
	}
	return nil
}
