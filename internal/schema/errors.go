package schema

import "fmt"

// MissingResolutionError reports a field whose predicate matched no
// qualifying file, either before or after type filtering.
type MissingResolutionError struct {
	Field     string
	Predicate string
	// FilterTypes is set when the field had matches that were all
	// removed by the type filter.
	FilterTypes []string
}

func (e *MissingResolutionError) Error() string {
	if len(e.FilterTypes) > 0 {
		return fmt.Sprintf("no file found for tag %q with type %v", e.Field, e.FilterTypes)
	}
	return fmt.Sprintf("no file found for tag %q", e.Field)
}

// AmbiguousResolutionError reports a single-arity field that matched more
// than one file.
type AmbiguousResolutionError struct {
	Field string
	Files []string
}

func (e *AmbiguousResolutionError) Error() string {
	return fmt.Sprintf("more than one file found for tag %q: %v", e.Field, e.Files)
}
