package vfs

import (
	"bytes"
	"io/fs"
	"path"
	"time"
)

// fsAdapter exposes an InMemory store as a read-only fs.FS so it can be
// mounted into a foreign module's filesystem namespace. Only Open is
// supported; fs.FS names are unrooted relative to the store root.
type fsAdapter struct {
	store *InMemory
}

var _ fs.FS = (*fsAdapter)(nil)

func (a *fsAdapter) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &memDir{name: "."}, nil
	}
	rooted := "/" + name
	data, err := a.store.Read(rooted)
	if err != nil {
		if a.store.DirExists(rooted) {
			return &memDir{name: path.Base(name)}, nil
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memFile{name: path.Base(name), size: int64(len(data)), r: bytes.NewReader(data)}, nil
}

// memFile is a read-only fs.File over a byte snapshot.
type memFile struct {
	name string
	size int64
	r    *bytes.Reader
}

func (f *memFile) Stat() (fs.FileInfo, error) { return fileInfo{name: f.name, size: f.size}, nil }
func (f *memFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *memFile) Close() error               { return nil }

// memDir is a minimal directory handle; listing is not supported because the
// engine opens files by exact path.
type memDir struct {
	name string
}

func (d *memDir) Stat() (fs.FileInfo, error) { return fileInfo{name: d.name, dir: true}, nil }
func (d *memDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}
func (d *memDir) Close() error { return nil }

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) ModTime() time.Time { return time.Time{} }
func (i fileInfo) IsDir() bool        { return i.dir }
func (i fileInfo) Sys() any           { return nil }

func (i fileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
