package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/printforge/slicerun/convert"
	"github.com/printforge/slicerun/core"
	"github.com/printforge/slicerun/definition"
	"github.com/printforge/slicerun/logging"
	"github.com/printforge/slicerun/metadata"
	"github.com/printforge/slicerun/progress"
	"github.com/printforge/slicerun/vfs"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// NewBackend creates the one process-wide engine handle on Initialize.
	// Required before Initialize can succeed.
	NewBackend core.BackendFactory

	// Store is the virtual filesystem shared with the engine. Defaults to a
	// fresh in-memory store.
	Store core.FileStore

	// Converters resolves input formats to canonical-format converters.
	// Defaults to the built-in registry (stl passthrough, obj).
	Converters *convert.Registry

	// Logger provides structured logging. Defaults to NoOp so the library
	// stays silent unless configured.
	Logger logging.Logger
}

// Engine owns the lifecycle of the embedded slicing engine handle and
// orchestrates runs against it: convert, stage the model file, register the
// transient callback hooks, invoke the blocking entry point, harvest the
// output, and clean up.
//
// The engine handle is a single shared resource: exactly one run may hold it
// at a time and a second run request is rejected with ErrBusy rather than
// queued. Once the blocking foreign call starts there is no cancellation.
type Engine struct {
	newBackend core.BackendFactory
	store      core.FileStore
	converters *convert.Registry
	logger     logging.Logger

	stager    *definition.Stager
	blender   *progress.Blender
	collector *metadata.Collector

	mu      sync.Mutex
	backend core.Backend // nil until Initialize
	verbose bool
	running bool
}

// New constructs an Engine with optional overrides. The engine is inert
// until Initialize creates the backend handle.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Store:      vfs.NewInMemory(),
		Converters: convert.NewRegistry(),
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		newBackend: opts.NewBackend,
		store:      opts.Store,
		converters: opts.Converters,
		logger:     opts.Logger,
		stager:     definition.NewStager(opts.Store, opts.Logger),
		blender:    progress.NewBlender(),
		collector:  metadata.NewCollector(),
	}
}

// Initialize creates the engine handle exactly once. The verbose flag
// configures whether the engine's native logging is surfaced; it also
// becomes the default verbosity for runs that do not override it.
// Initializing twice is ErrAlreadyInitialized; initializing without a
// backend factory is an error.
func (e *Engine) Initialize(ctx context.Context, verbose bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend != nil {
		return core.ErrAlreadyInitialized
	}
	if e.newBackend == nil {
		return fmt.Errorf("no backend factory configured")
	}

	backend, err := e.newBackend(ctx, verbose)
	if err != nil {
		return fmt.Errorf("create engine backend: %w", err)
	}
	e.backend = backend
	e.verbose = verbose
	e.logger.Info("engine initialized", "verbose", verbose)
	return nil
}

// Shutdown releases the engine handle. Subsequent operations fail with
// ErrNotInitialized until Initialize is called again. Shutting down while a
// run is in flight is ErrBusy.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend == nil {
		return core.ErrNotInitialized
	}
	if e.running {
		return core.ErrBusy
	}
	err := e.backend.Close(ctx)
	e.backend = nil
	if err != nil {
		return fmt.Errorf("close engine backend: %w", err)
	}
	e.logger.Info("engine shut down")
	return nil
}

// Initialized reports whether the engine handle exists.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend != nil
}

// StageDefinitions writes the definition files into the virtual filesystem.
// It requires an initialized engine handle.
func (e *Engine) StageDefinitions(def definition.Definition) error {
	if !e.Initialized() {
		return core.ErrNotInitialized
	}
	return e.stager.Stage(def)
}

// UnstageDefinitions removes exactly the files written by the last
// StageDefinitions call. It requires an initialized engine handle.
func (e *Engine) UnstageDefinitions() error {
	if !e.Initialized() {
		return core.ErrNotInitialized
	}
	return e.stager.Unstage()
}

// SubscribeProgress returns the blended progress stream in [0, 1]. At most
// one subscriber is active; subscribing replaces any previous subscription.
func (e *Engine) SubscribeProgress() <-chan float64 {
	return e.blender.Subscribe()
}

// SubscribeMetadata returns the metadata stream: exactly one record per
// successful run. At most one subscriber is active; subscribing replaces
// any previous subscription.
func (e *Engine) SubscribeMetadata() <-chan core.Metadata {
	return e.collector.Subscribe()
}
