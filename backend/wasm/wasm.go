// Package wasm embeds the slicing engine compiled to WebAssembly and adapts
// it to the core.Backend contract using the wazero runtime.
//
// The engine module's ABI is fixed: it imports three host functions from the
// "env" namespace — a progress callback, a positional metadata callback and
// an output sink — under hardcoded names, and reads its inputs from the
// filesystem mounted at "/". Those names and the metadata argument order are
// part of the engine binary and must not change on the host side.
package wasm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/printforge/slicerun/core"
	"github.com/printforge/slicerun/logging"
)

// Host function import names hardcoded in the engine binary.
const (
	importProgress = "slicerun_on_progress"
	importMetadata = "slicerun_on_metadata"
	importOutput   = "slicerun_emit_output"
)

// hostModule is the import namespace the engine binary resolves host
// functions from.
const hostModule = "env"

// Options configures the Backend.
type Options struct {
	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// Stderr receives the engine's native log output when verbose; defaults
	// to os.Stderr.
	Stderr io.Writer
}

// Backend runs the engine WASM module. The module is compiled once at
// construction and instantiated per run; WASM linear memory only grows, so
// per-run instances keep long-lived processes from accumulating it.
type Backend struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	verbose  bool
	logger   logging.Logger
	stderr   io.Writer
}

var _ core.Backend = (*Backend)(nil)

// New compiles the engine module and prepares the runtime. The verbose flag
// decides whether the engine's native logging is surfaced or suppressed for
// the lifetime of the handle.
func New(ctx context.Context, engineWASM []byte, verbose bool, optFns ...func(o *Options)) (*Backend, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Stderr: os.Stderr,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	compiled, err := r.CompileModule(ctx, engineWASM)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("compile engine module: %w", err)
	}

	return &Backend{
		runtime:  r,
		compiled: compiled,
		verbose:  verbose,
		logger:   opts.Logger,
		stderr:   opts.Stderr,
	}, nil
}

// Factory returns a core.BackendFactory constructing this backend from the
// given engine binary.
func Factory(engineWASM []byte, optFns ...func(o *Options)) core.BackendFactory {
	return func(ctx context.Context, verbose bool) (core.Backend, error) {
		return New(ctx, engineWASM, verbose, optFns...)
	}
}

// Run instantiates the engine module and executes its entry point. The hooks
// are bound to host functions for exactly this instantiation; closing the
// host module when the call returns releases them.
func (b *Backend) Run(ctx context.Context, store core.FileStore, argv []string, hooks core.RunHooks) error {
	host, err := b.instantiateHooks(ctx, store, hooks)
	if err != nil {
		return fmt.Errorf("bind run hooks: %w", err)
	}
	defer host.Close(ctx)

	stdout, stderr := io.Discard, io.Discard
	if b.verbose {
		stdout, stderr = b.stderr, b.stderr
	}

	cfg := wazero.NewModuleConfig().
		WithName(""). // anonymous: one instance per run
		WithArgs(append([]string{"slicerun-engine"}, argv...)...).
		WithStdout(stdout).
		WithStderr(stderr).
		WithFSConfig(wazero.NewFSConfig().WithFSMount(store.FS(), "/"))

	mod, err := b.runtime.InstantiateModule(ctx, b.compiled, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == 0 {
				return nil
			}
			return &core.EngineError{ExitCode: int(exitErr.ExitCode()), Err: err}
		}
		return &core.EngineError{ExitCode: -1, Err: err}
	}
	return nil
}

// Close releases the runtime and every module compiled or instantiated
// under it.
func (b *Backend) Close(ctx context.Context) error {
	return b.runtime.Close(ctx)
}

// instantiateHooks exports the per-run host functions the engine binary
// imports. The closures capture this run's hooks and store, so the module
// must be closed when the run ends.
func (b *Backend) instantiateHooks(ctx context.Context, store core.FileStore, hooks core.RunHooks) (api.Module, error) {
	return b.runtime.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, fraction float32) {
			if hooks.OnProgress != nil {
				hooks.OnProgress(float64(fraction))
			}
		}).
		Export(importProgress).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module,
			flavorPtr, flavorLen uint32,
			printTime, material1Usage, material2Usage, nozzleSize, filamentUsage float64,
			minX, minY, minZ, maxX, maxY, maxZ float64,
		) {
			if hooks.OnMetadata == nil {
				return
			}
			hooks.OnMetadata(core.MetadataFromArgs(
				readString(m, flavorPtr, flavorLen),
				printTime, material1Usage, material2Usage, nozzleSize, filamentUsage,
				minX, minY, minZ, maxX, maxY, maxZ,
			))
		}).
		Export(importMetadata).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, ptr, length uint32) {
			data, ok := m.Memory().Read(ptr, length)
			if !ok {
				b.logger.Error("engine emitted output outside its memory",
					"ptr", ptr, "len", length)
				return
			}
			if err := store.Write(core.OutputPath, data); err != nil {
				b.logger.Error("write engine output", "error", err)
			}
		}).
		Export(importOutput).
		Instantiate(ctx)
}

// readString copies a guest memory region into a host string; out-of-range
// regions yield the empty string.
func readString(m api.Module, ptr, length uint32) string {
	data, ok := m.Memory().Read(ptr, length)
	if !ok {
		return ""
	}
	return string(data)
}
