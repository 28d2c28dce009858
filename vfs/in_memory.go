package vfs

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// InMemory is the process-local virtual filesystem the embedded engine
// exchanges files through. It keeps all files in a flat path-keyed map
// guarded by an RWMutex, with an explicit directory set so staging can
// create and remove its directory symmetrically. Data is copied on write and
// on read to avoid accidental external mutation of internal buffers.
//
// Paths are rooted slash-separated strings ("/model.stl"). The store is
// intentionally minimal; it does not enforce quotas or eviction, matching
// its role as a per-process scratch space rather than durable storage.
type InMemory struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]struct{}
}

// NewInMemory returns an empty in-memory virtual filesystem.
func NewInMemory() *InMemory {
	return &InMemory{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

// Write stores (or overwrites) the file at p. The input slice is copied
// before storage.
func (s *InMemory) Write(p string, data []byte) error {
	p, err := normalize(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.files[p] = cp
	return nil
}

// Read returns a copy of the stored file bytes or ErrNotFound.
func (s *InMemory) Read(p string) ([]byte, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Remove deletes the file at p or returns ErrNotFound.
func (s *InMemory) Remove(p string) error {
	p, err := normalize(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[p]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	delete(s.files, p)
	return nil
}

// Exists reports whether a file is present at p.
func (s *InMemory) Exists(p string) bool {
	p, err := normalize(p)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[p]
	return ok
}

// List returns the sorted paths of all files under the given directory
// prefix ("/" lists everything). The slice is a snapshot and safe for caller
// mutation.
func (s *InMemory) List(dir string) []string {
	dir, err := normalize(dir)
	if err != nil {
		return nil
	}
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for p := range s.files {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// MkdirAll records the directory and all of its parents as existing.
// Creating an already existing directory is a no-op.
func (s *InMemory) MkdirAll(p string) error {
	p, err := normalize(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for p != "/" {
		s.dirs[p] = struct{}{}
		p = path.Dir(p)
	}
	return nil
}

// RemoveDir removes the directory at p. The directory must exist and must
// contain no files.
func (s *InMemory) RemoveDir(p string) error {
	p, err := normalize(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dirs[p]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	prefix := p + "/"
	for f := range s.files {
		if strings.HasPrefix(f, prefix) {
			return fmt.Errorf("directory not empty: %s", p)
		}
	}
	delete(s.dirs, p)
	return nil
}

// DirExists reports whether the directory is present at p.
func (s *InMemory) DirExists(p string) bool {
	p, err := normalize(p)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dirs[p]
	return ok
}

// FS returns a read-only fs.FS view of the store. fs.FS names are unrooted,
// so Open("model.stl") reads "/model.stl".
func (s *InMemory) FS() fs.FS {
	return &fsAdapter{store: s}
}

// normalize validates and canonicalizes a rooted slash-separated path.
func normalize(p string) (string, error) {
	if p == "" || !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("path must be rooted: %q", p)
	}
	cleaned := path.Clean(p)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("path escapes root: %q", p)
	}
	return cleaned, nil
}
