package hierarchy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemClient is an in-memory Client. It backs tests and the fixture-driven
// CLI path; real deployments supply a store-specific Client instead.
//
// Child and file ordering is insertion order, which stands in for the
// store's native ordering.
type MemClient struct {
	mu         sync.Mutex
	containers map[string]*Container
	children   map[string][]string // parent id -> child ids
	files      map[string][]*File  // container id -> files
	contents   map[string][]byte   // "containerID/name" -> file body
}

// NewMemClient returns an empty in-memory client.
func NewMemClient() *MemClient {
	return &MemClient{
		containers: make(map[string]*Container),
		children:   make(map[string][]string),
		files:      make(map[string][]*File),
		contents:   make(map[string][]byte),
	}
}

// AddContainer registers a container. parentID is "" for the project.
func (m *MemClient) AddContainer(c *Container, parentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers[c.ID] = c
	if parentID != "" {
		m.children[parentID] = append(m.children[parentID], c.ID)
	}
}

// AddFile attaches a file to the container with the given id.
func (m *MemClient) AddFile(containerID string, f *File) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ParentID = containerID
	if c, ok := m.containers[containerID]; ok {
		f.ParentKind = c.Kind
	}
	m.files[containerID] = append(m.files[containerID], f)
}

// SetContent sets the body returned by Download for a file.
func (m *MemClient) SetContent(containerID, name string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[containerID+"/"+name] = body
}

func (m *MemClient) GetContainer(ctx context.Context, id string) (*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.containers[id]
	if !ok {
		return nil, fmt.Errorf("container %q not found", id)
	}
	return c, nil
}

func (m *MemClient) ListChildren(ctx context.Context, c *Container) ([]*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.children[c.ID]
	out := make([]*Container, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.containers[id])
	}
	return out, nil
}

func (m *MemClient) ListFiles(ctx context.Context, c *Container) ([]*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*File(nil), m.files[c.ID]...), nil
}

func (m *MemClient) AddTag(ctx context.Context, c *Container, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.containers[c.ID]
	if !ok {
		return fmt.Errorf("container %q not found", c.ID)
	}
	if !stored.HasTag(tag) {
		stored.Tags = append(stored.Tags, tag)
	}
	if stored != c && !c.HasTag(tag) {
		c.Tags = append(c.Tags, tag)
	}
	return nil
}

func (m *MemClient) Download(ctx context.Context, f *File, destPath string) error {
	m.mu.Lock()
	body, ok := m.contents[f.ParentID+"/"+f.Name]
	m.mu.Unlock()
	if !ok {
		body = []byte{}
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(destPath, body, 0644)
}

// fixtureFile mirrors one file entry in a tree fixture.
type fixtureFile struct {
	Name string   `yaml:"name"`
	Type string   `yaml:"type"`
	Tags []string `yaml:"tags"`
}

// fixtureNode mirrors one container in a tree fixture. Exactly one of the
// child lists is meaningful per depth.
type fixtureNode struct {
	ID           string        `yaml:"id"`
	Label        string        `yaml:"label"`
	Tags         []string      `yaml:"tags"`
	Files        []fixtureFile `yaml:"files"`
	Subjects     []fixtureNode `yaml:"subjects"`
	Sessions     []fixtureNode `yaml:"sessions"`
	Acquisitions []fixtureNode `yaml:"acquisitions"`
}

type fixtureDoc struct {
	Project fixtureNode `yaml:"project"`
}

// LoadFixture builds a MemClient from a YAML tree description and returns
// it with the root project container.
func LoadFixture(path string) (*MemClient, *Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read fixture: %w", err)
	}
	var doc fixtureDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if doc.Project.ID == "" {
		return nil, nil, fmt.Errorf("fixture %s: project.id is required", path)
	}

	m := NewMemClient()
	root := addFixtureNode(m, doc.Project, KindProject, "")
	return m, root, nil
}

func addFixtureNode(m *MemClient, n fixtureNode, kind Kind, parentID string) *Container {
	c := &Container{ID: n.ID, Label: n.Label, Kind: kind, Tags: n.Tags}
	m.AddContainer(c, parentID)
	for _, f := range n.Files {
		m.AddFile(c.ID, &File{Name: f.Name, Type: f.Type, Tags: f.Tags})
	}
	var kids []fixtureNode
	switch kind {
	case KindProject:
		kids = n.Subjects
	case KindSubject:
		kids = n.Sessions
	case KindSession:
		kids = n.Acquisitions
	}
	child, _ := kind.Child()
	for _, k := range kids {
		addFixtureNode(m, k, child, c.ID)
	}
	return c
}
