// Package hierarchy defines the read-side view of the remote data store:
// a fixed four-level container tree (project -> subject -> session ->
// acquisition) with tagged files attached at every level.
//
// The store itself is consumed through the narrow Client interface; this
// package holds no connection state and performs no I/O of its own.
package hierarchy

import "context"

// Kind identifies a container's depth in the tree.
type Kind string

const (
	KindProject     Kind = "project"
	KindSubject     Kind = "subject"
	KindSession     Kind = "session"
	KindAcquisition Kind = "acquisition"
)

// Child returns the fixed child kind for this depth. Acquisitions are
// leaves, so ok is false there (and for unknown kinds).
func (k Kind) Child() (Kind, bool) {
	switch k {
	case KindProject:
		return KindSubject, true
	case KindSubject:
		return KindSession, true
	case KindSession:
		return KindAcquisition, true
	default:
		return "", false
	}
}

// Valid reports whether k is one of the four tree kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindProject, KindSubject, KindSession, KindAcquisition:
		return true
	}
	return false
}

// Container is a transient read reference to one node of the remote tree.
// Children and files are listed through the Client, not stored here.
// Tags is the container's own tag set, distinct from its files' tags.
type Container struct {
	ID    string
	Label string
	Kind  Kind
	Tags  []string
}

// HasTag reports whether the container carries the given tag.
func (c *Container) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// File is a read reference to a file attached to a container.
// Type is the store's opaque classifier (e.g. "dicom", "nifti").
type File struct {
	Name       string
	Type       string
	Tags       []string
	ParentID   string
	ParentKind Kind
}

// Client is the capability surface this module needs from the remote
// store. AddTag is the only write the pipeline ever performs.
type Client interface {
	// GetContainer fetches a container by identifier.
	GetContainer(ctx context.Context, id string) (*Container, error)

	// ListChildren returns c's direct children in the store's native
	// order. Acquisitions return an empty slice.
	ListChildren(ctx context.Context, c *Container) ([]*Container, error)

	// ListFiles returns the files directly attached to c, in the
	// store's native order.
	ListFiles(ctx context.Context, c *Container) ([]*File, error)

	// AddTag appends a tag to the container itself.
	AddTag(ctx context.Context, c *Container, tag string) error

	// Download copies a single file to destPath.
	Download(ctx context.Context, f *File, destPath string) error
}
