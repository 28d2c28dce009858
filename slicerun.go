// Package slicerun provides a high-level façade over the core engine and
// service abstractions (virtual filesystem, definition staging, progress and
// metadata streams) for driving an embedded slicing engine. Most
// applications interact with this package by:
//  1. Creating a SliceRun via New() with a backend factory (typically
//     backend/wasm over the engine binary)
//  2. Calling Initialize once per process
//  3. Staging printer/extruder definitions around one or more Run calls
//  4. Observing progress and metadata through the subscription streams
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. Defaults are safe for local development and
// testing; production deployments typically supply a structured logger.
package slicerun

import (
	"context"

	"github.com/printforge/slicerun/convert"
	"github.com/printforge/slicerun/core"
	"github.com/printforge/slicerun/definition"
	"github.com/printforge/slicerun/engine"
	"github.com/printforge/slicerun/logging"
	"github.com/printforge/slicerun/vfs"
)

// Options configures the SliceRun instance.
type Options struct {
	// Backend creates the one process-wide engine handle on Initialize.
	Backend core.BackendFactory

	// Store is the virtual filesystem shared with the engine (defaults to a
	// fresh in-memory store).
	Store core.FileStore

	// Converters resolves input formats (defaults to the built-in registry).
	Converters *convert.Registry

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// SliceRun is the high-level façade aggregating the underlying engine and
// services.
type SliceRun struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new SliceRun instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *SliceRun {
	opts := Options{
		Store:      vfs.NewInMemory(),
		Converters: convert.NewRegistry(),
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := engine.New(func(o *engine.Options) {
		o.NewBackend = opts.Backend
		o.Store = opts.Store
		o.Converters = opts.Converters
		o.Logger = opts.Logger
	})

	return &SliceRun{opts: opts, engine: e}
}

// Initialize creates the engine handle exactly once and configures whether
// the engine's native logging is suppressed.
func (s *SliceRun) Initialize(ctx context.Context, verbose bool) error {
	return s.engine.Initialize(ctx, verbose)
}

// Shutdown releases the engine handle.
func (s *SliceRun) Shutdown(ctx context.Context) error {
	return s.engine.Shutdown(ctx)
}

// StageDefinitions writes the printer and extruder definition files into the
// engine's virtual filesystem.
func (s *SliceRun) StageDefinitions(def definition.Definition) error {
	return s.engine.StageDefinitions(def)
}

// UnstageDefinitions removes exactly the files written by the last
// StageDefinitions call.
func (s *SliceRun) UnstageDefinitions() error {
	return s.engine.UnstageDefinitions()
}

// Run executes one slicing run and returns the G-code output bytes.
// Conversion failures come back as *core.ConversionError, engine aborts as
// *core.EngineError.
func (s *SliceRun) Run(ctx context.Context, req engine.RunRequest) ([]byte, error) {
	return s.engine.Run(ctx, req)
}

// SubscribeProgress returns the blended progress stream in [0, 1]. Single
// active subscriber; subscribing replaces any previous subscription.
func (s *SliceRun) SubscribeProgress() <-chan float64 {
	return s.engine.SubscribeProgress()
}

// SubscribeMetadata returns the metadata stream with exactly one record per
// successful run. Single active subscriber; subscribing replaces any
// previous subscription.
func (s *SliceRun) SubscribeMetadata() <-chan core.Metadata {
	return s.engine.SubscribeMetadata()
}
