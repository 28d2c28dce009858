// Package engine implements the run orchestration core: it owns the one
// process-wide handle to the embedded slicing engine and sequences each run
// from raw model bytes to G-code output.
//
// # Lifecycle
//
// Initialize creates the backend handle exactly once; every staging and run
// operation before that fails with core.ErrNotInitialized. Shutdown releases
// the handle and returns the engine to the uninitialized state.
//
// # Run sequence
//
//  1. Acquire the handle (ErrBusy if a run is in flight).
//  2. Convert the input to canonical format, feeding the conversion share of
//     the blended progress stream. A conversion error ends the run before
//     any file is written.
//  3. Write the converted model to the fixed input path.
//  4. Invoke the blocking engine entry point with per-invocation hooks that
//     route progress into the blender and metadata into the collector.
//  5. Read the output, then unconditionally delete the transient input and
//     output files.
//
// Progress and metadata reach callers through single-slot subscriptions;
// see the progress and metadata packages.
package engine
