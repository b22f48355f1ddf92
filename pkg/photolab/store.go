package photolab

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// Properties is the persisted metadata of a photo.
type Properties struct {
	Title  string
	Rating uint
}

// File references the file backing a Record.
type File struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile returns a File for path.
func StatFile(path string) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat: %w", err)
	}
	return File{Path: path, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Store loads and persists photo metadata.
type Store interface {
	Load(ctx context.Context, f File) (*Properties, error)
	Save(ctx context.Context, f File, p Properties) error
}

// MemoryStore keeps metadata in memory, keyed by path.
type MemoryStore struct {
	mu    sync.Mutex
	props map[string]Properties
	saves int
	err   error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{props: map[string]Properties{}}
}

// Put sets the stored metadata for path without counting a save.
func (m *MemoryStore) Put(path string, p Properties) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[path] = p
}

// Get returns the stored metadata for path.
func (m *MemoryStore) Get(path string) (Properties, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.props[path]
	return p, ok
}

// Saves returns how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes subsequent saves return err. A nil err restores normal behavior.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) Load(_ context.Context, f File) (*Properties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.props[f.Path]
	return &p, nil
}

func (m *MemoryStore) Save(_ context.Context, f File, p Properties) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.props[f.Path] = p
	return nil
}
