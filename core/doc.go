// Package core holds the central contracts and domain types shared across
// the slicerun packages: the Backend and FileStore interfaces, the per-run
// hook bundle, override and metadata records, the error taxonomy, and the
// single-slot Notifier used by the progress and metadata streams.
//
// Contracts live here (rather than next to their implementations) to keep
// dependency direction one-way: implementation packages import core, never
// each other's concrete types.
package core
