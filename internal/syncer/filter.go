package syncer

import (
	"encoding/json"

	"tagsync/internal/hierarchy"
)

// FilterExpression scopes a sync invocation to containers carrying
// specific tags, grouped by container kind. It renders to the tool's
// --include-container-tags JSON argument.
type FilterExpression struct {
	tags map[hierarchy.Kind][]string
}

// NewFilterExpression returns an empty filter.
func NewFilterExpression() *FilterExpression {
	return &FilterExpression{tags: make(map[hierarchy.Kind][]string)}
}

// Add appends a tag for the given container kind, skipping duplicates.
func (f *FilterExpression) Add(kind hierarchy.Kind, tag string) {
	for _, t := range f.tags[kind] {
		if t == tag {
			return
		}
	}
	f.tags[kind] = append(f.tags[kind], tag)
}

// Empty reports whether the filter scopes nothing.
func (f *FilterExpression) Empty() bool {
	return len(f.tags) == 0
}

// String renders the filter as the tool's JSON argument. json.Marshal
// sorts map keys, so the rendering is deterministic.
func (f *FilterExpression) String() string {
	out := make(map[string][]string, len(f.tags))
	for k, tags := range f.tags {
		out[string(k)] = tags
	}
	data, err := json.Marshal(out)
	if err != nil {
		// Maps of strings always marshal.
		return "{}"
	}
	return string(data)
}
