package core

import (
	"context"
	"io/fs"
)

// Fixed virtual-filesystem paths exchanged with the embedded engine. The
// engine's argument vector references these paths, so they are part of the
// wire contract rather than tunables.
const (
	// DefinitionsDir is the directory definition files are staged into.
	DefinitionsDir = "/definitions"

	// PrinterDefinitionPath is the staged printer definition.
	PrinterDefinitionPath = DefinitionsDir + "/printer.def.json"

	// InputPath is the transient per-run model input in canonical format.
	InputPath = "/model.stl"

	// OutputPath is the transient per-run G-code output.
	OutputPath = "/output.gcode"
)

// CanonicalExtension is the mesh format the engine consumes natively. Inputs
// in any other format pass through a Converter first.
const CanonicalExtension = "stl"

// FileStore is the in-memory virtual filesystem shared between the
// orchestrator and the embedded engine. Paths are rooted, slash separated
// strings (e.g. "/model.stl"). Implementations must be safe for concurrent
// use and must copy data on both write and read so callers cannot mutate
// stored bytes.
//
// The canonical implementation lives in the vfs package; the interface is
// defined here so packages can depend on the contract without importing the
// implementation.
type FileStore interface {
	// Write stores (or overwrites) the file at path.
	Write(path string, data []byte) error

	// Read returns a copy of the file bytes or an error if absent.
	Read(path string) ([]byte, error)

	// Remove deletes the file at path. Removing an absent file is an error.
	Remove(path string) error

	// Exists reports whether a file is present at path.
	Exists(path string) bool

	// MkdirAll records the directory (and parents) as existing.
	MkdirAll(path string) error

	// RemoveDir removes an empty directory.
	RemoveDir(path string) error

	// DirExists reports whether the directory is present.
	DirExists(path string) bool

	// FS exposes a read-only fs.FS view of the store, suitable for mounting
	// into a foreign module's filesystem namespace.
	FS() fs.FS
}

// RunHooks carries the per-run callback hooks the engine re-enters the host
// through while its blocking entry point executes. Hooks are registered by
// passing them into Backend.Run and released when the call returns; there is
// no ambient global registration.
//
// Both hooks are invoked synchronously on the goroutine executing the engine
// call, so implementations must not block.
type RunHooks struct {
	// OnProgress receives raw engine progress fractions in [0, 1] at
	// whatever granularity the engine emits them.
	OnProgress func(fraction float64)

	// OnMetadata receives the one-shot result record. The engine is expected
	// to invoke it exactly once per successful run.
	OnMetadata func(m Metadata)
}

// Backend is the embedded, blocking, foreign slicing engine. Exactly one
// backend handle exists per initialized engine; the orchestrator serializes
// access to it.
type Backend interface {
	// Run invokes the engine's blocking entry point with the synthesized
	// argument vector. It does not return until slicing completes or the
	// engine aborts. The store carries the staged definitions and the
	// transient model input; the engine writes its output there. Progress
	// and metadata notifications arrive through hooks as nested calls
	// during Run.
	Run(ctx context.Context, store FileStore, args []string, hooks RunHooks) error

	// Close releases the engine's native resources. The backend must not be
	// used after Close.
	Close(ctx context.Context) error
}

// BackendFactory creates the one process-wide backend handle. The verbose
// flag controls whether the engine's native logging is surfaced or
// suppressed.
type BackendFactory func(ctx context.Context, verbose bool) (Backend, error)
