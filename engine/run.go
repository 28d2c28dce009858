package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/printforge/slicerun/args"
	"github.com/printforge/slicerun/core"
)

// RunRequest describes one slicing run.
type RunRequest struct {
	// Command, when non-empty, is split into the argument vector verbatim;
	// Overrides and Verbose are ignored in this path.
	Command string

	// Overrides adjust engine settings; caller order is preserved into
	// argument synthesis.
	Overrides []core.Override

	// Verbose overrides the engine-level verbosity for this run when
	// non-nil.
	Verbose *bool

	// Model is the raw input model.
	Model []byte

	// Extension is the input format tag (e.g. "stl", "obj").
	Extension string
}

// Run executes one slicing run and returns the output bytes, or an error.
// Conversion failures come back as *core.ConversionError through the normal
// return channel; engine aborts come back as *core.EngineError. Exactly one
// of output and error is set.
//
// The run sequence: convert the model to canonical format (feeding the
// conversion share of the progress stream), write it to the fixed input
// path, invoke the blocking engine entry point with transient hooks routing
// into the progress blender and metadata collector, read the output, and
// unconditionally delete the transient input and output files.
func (e *Engine) Run(ctx context.Context, req RunRequest) ([]byte, error) {
	backend, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.release()

	runID := uuid.NewString()
	logger := e.logger

	weight := e.blender.Begin(req.Extension)
	logger.Debug("run started",
		"run_id", runID, "extension", req.Extension, "conversion_weight", weight)

	// Convert before anything touches the virtual filesystem, so a
	// conversion failure leaves no partial state behind.
	start := time.Now()
	model, err := e.converters.Convert(req.Extension, req.Model, e.blender.Conversion)
	if err != nil {
		logger.Warn("conversion failed",
			"run_id", runID, "extension", req.Extension, "error", err)
		return nil, err
	}
	logger.Debug("conversion completed",
		"run_id", runID, "bytes", len(model), "duration", time.Since(start))

	if err := e.store.Write(core.InputPath, model); err != nil {
		return nil, fmt.Errorf("stage model input: %w", err)
	}

	argv := e.buildArgs(req)

	// Transient hooks live exactly as long as the blocking call: they are
	// handed to the backend for this invocation only and cannot outlive it.
	hooks := core.RunHooks{
		OnProgress: e.blender.Slicing,
		OnMetadata: e.collector.Collect,
	}

	start = time.Now()
	engineErr := backend.Run(ctx, e.store, argv, hooks)
	logger.Debug("engine invocation returned",
		"run_id", runID, "duration", time.Since(start), "error", engineErr)

	if engineErr != nil {
		// Control returned, so transient files can still be cleaned up.
		e.cleanupTransient(runID)
		if _, ok := engineErr.(*core.EngineError); ok {
			return nil, engineErr
		}
		return nil, &core.EngineError{ExitCode: -1, Err: engineErr}
	}

	output, err := e.store.Read(core.OutputPath)
	if err != nil {
		e.cleanupTransient(runID)
		return nil, &core.EngineError{ExitCode: -1, Err: fmt.Errorf("engine produced no output: %w", err)}
	}

	e.cleanupTransient(runID)
	e.blender.Finish()
	logger.Info("run completed", "run_id", runID, "output_bytes", len(output))
	return output, nil
}

// acquire takes the engine handle for one run, rejecting when the handle is
// absent or already held.
func (e *Engine) acquire() (core.Backend, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return nil, core.ErrNotInitialized
	}
	if e.running {
		return nil, core.ErrBusy
	}
	e.running = true
	return e.backend, nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// buildArgs synthesizes the argument vector, or splits a raw command
// verbatim when one is supplied.
func (e *Engine) buildArgs(req RunRequest) []string {
	if req.Command != "" {
		return args.SplitCommand(req.Command)
	}
	verbose := e.verbose
	if req.Verbose != nil {
		verbose = *req.Verbose
	}
	return args.Synthesize(req.Overrides, verbose)
}

// cleanupTransient removes the per-run model input and output, tolerating
// files the engine never produced.
func (e *Engine) cleanupTransient(runID string) {
	for _, path := range []string{core.InputPath, core.OutputPath} {
		if !e.store.Exists(path) {
			continue
		}
		if err := e.store.Remove(path); err != nil {
			e.logger.Warn("transient cleanup failed", "run_id", runID, "path", path, "error", err)
		}
	}
}
