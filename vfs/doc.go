// Package vfs contains the in-memory virtual filesystem implementation of
// core.FileStore.
//
// The canonical FileStore interface lives in the core package to keep domain
// contracts central. This implementation is the only one the engine needs in
// practice: the embedded engine's whole filesystem is an in-process scratch
// space that exists for the duration of the host process.
package vfs
