package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printforge/slicerun/core"
	"github.com/printforge/slicerun/definition"
	"github.com/printforge/slicerun/internal/testutil"
	"github.com/printforge/slicerun/vfs"
)

func sampleMetadata() *core.Metadata {
	m := core.MetadataFromArgs("Marlin", 5400, 21.7, 0, 0.4, 1210, -5, -5, 0, 5, 5, 12)
	return &m
}

func oneExtruderDefinition() definition.Definition {
	return definition.Definition{
		Printer:   testutil.PrinterJSON(1),
		Extruders: []json.RawMessage{testutil.ExtruderJSON()},
	}
}

func newTestEngine(backend *testutil.ScriptedBackend, store *vfs.InMemory) *Engine {
	return New(func(o *Options) {
		o.NewBackend = backend.Factory(nil)
		o.Store = store
	})
}

func TestOperationsBeforeInitialize(t *testing.T) {
	e := New()

	_, err := e.Run(context.Background(), RunRequest{Model: []byte("solid"), Extension: "stl"})
	assert.ErrorIs(t, err, core.ErrNotInitialized)
	assert.ErrorIs(t, e.StageDefinitions(oneExtruderDefinition()), core.ErrNotInitialized)
	assert.ErrorIs(t, e.UnstageDefinitions(), core.ErrNotInitialized)
	assert.ErrorIs(t, e.Shutdown(context.Background()), core.ErrNotInitialized)
}

func TestInitializeOnce(t *testing.T) {
	var verboseSeen bool
	backend := &testutil.ScriptedBackend{}
	e := New(func(o *Options) {
		o.NewBackend = backend.Factory(&verboseSeen)
	})

	require.NoError(t, e.Initialize(context.Background(), true))
	assert.True(t, verboseSeen, "verbose flag must reach the backend factory")
	assert.True(t, e.Initialized())
	assert.ErrorIs(t, e.Initialize(context.Background(), false), core.ErrAlreadyInitialized)
}

func TestInitializeWithoutFactory(t *testing.T) {
	e := New()
	require.Error(t, e.Initialize(context.Background(), false))
}

func TestRunSuccessEndToEnd(t *testing.T) {
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{
		ProgressScript: []float64{0.25, 0.5, 0.75},
		Metadata:       sampleMetadata(),
		Output:         []byte("G1 X0 Y0\nG1 X10 Y10\n"),
	}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))
	require.NoError(t, e.StageDefinitions(oneExtruderDefinition()))

	progressCh := e.SubscribeProgress()
	metadataCh := e.SubscribeMetadata()

	out, err := e.Run(context.Background(), RunRequest{
		Model:     []byte("solid cube"),
		Extension: "stl",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, backend.Output, out)

	// Delivery keeps only the latest undrained value; after a successful
	// run that is the guaranteed terminal 1.0.
	select {
	case p := <-progressCh:
		assert.Equal(t, 1.0, p)
	default:
		t.Fatal("expected a terminal progress value")
	}

	select {
	case m := <-metadataCh:
		assert.Equal(t, *sampleMetadata(), m)
	default:
		t.Fatal("expected exactly one metadata record")
	}
	select {
	case <-metadataCh:
		t.Fatal("expected no second metadata record")
	default:
	}

	// Transient files are gone, staged definitions are untouched.
	assert.False(t, store.Exists(core.InputPath))
	assert.False(t, store.Exists(core.OutputPath))
	assert.True(t, store.Exists(core.PrinterDefinitionPath))

	require.NoError(t, e.UnstageDefinitions())
	assert.Empty(t, store.List("/"))
	assert.False(t, store.DirExists(core.DefinitionsDir))
}

func TestRunSynthesizesArguments(t *testing.T) {
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{Output: []byte("G1\n")}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))

	verbose := true
	_, err := e.Run(context.Background(), RunRequest{
		Model:     []byte("solid"),
		Extension: "stl",
		Verbose:   &verbose,
		Overrides: []core.Override{core.GlobalOverride("layer_height", "0.2")},
	})
	require.NoError(t, err)

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"slice",
		"-j", "/definitions/printer.def.json",
		"-v",
		"-s", "layer_height=0.2",
		"-o", "/output.gcode",
		"-l", "/model.stl",
	}, calls[0])
}

func TestRunRawCommandBypassesSynthesis(t *testing.T) {
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{Output: []byte("G1\n")}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))

	verbose := true
	_, err := e.Run(context.Background(), RunRequest{
		Command:   "slice -j /definitions/printer.def.json -o /output.gcode -l /model.stl",
		Overrides: []core.Override{core.GlobalOverride("layer_height", "0.2")}, // ignored
		Verbose:   &verbose,                                                    // ignored
		Model:     []byte("solid"),
		Extension: "stl",
	})
	require.NoError(t, err)

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"slice", "-j", "/definitions/printer.def.json", "-o", "/output.gcode", "-l", "/model.stl",
	}, calls[0])
}

func TestRunConversionErrorLeavesNoState(t *testing.T) {
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{Output: []byte("G1\n")}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))

	_, err := e.Run(context.Background(), RunRequest{
		Model:     []byte("not a mesh"),
		Extension: "step",
	})
	var convErr *core.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "step", convErr.Extension)

	assert.Empty(t, backend.Calls(), "engine must not be invoked after conversion failure")
	assert.Empty(t, store.List("/"), "no files may be left behind")
}

func TestRunEngineFailureCleansTransientFiles(t *testing.T) {
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{
		Err: &core.EngineError{ExitCode: 1, Err: errors.New("slice aborted")},
	}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))

	_, err := e.Run(context.Background(), RunRequest{Model: []byte("solid"), Extension: "stl"})
	var engErr *core.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, 1, engErr.ExitCode)

	assert.False(t, store.Exists(core.InputPath))
	assert.False(t, store.Exists(core.OutputPath))
}

func TestRunMissingOutputIsEngineError(t *testing.T) {
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{SkipOutput: true}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))

	_, err := e.Run(context.Background(), RunRequest{Model: []byte("solid"), Extension: "stl"})
	var engErr *core.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.False(t, store.Exists(core.InputPath))
}

func TestRunWhileRunningIsRejected(t *testing.T) {
	gate := make(chan struct{})
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{Output: []byte("G1\n"), Gate: gate}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))

	done := make(chan error, 1)
	go func() {
		_, err := e.Run(context.Background(), RunRequest{Model: []byte("solid"), Extension: "stl"})
		done <- err
	}()

	require.Eventually(t, func() bool {
		return len(backend.Calls()) == 1
	}, time.Second, time.Millisecond, "first run must reach the backend")

	_, err := e.Run(context.Background(), RunRequest{Model: []byte("solid"), Extension: "stl"})
	assert.ErrorIs(t, err, core.ErrBusy)
	assert.ErrorIs(t, e.Shutdown(context.Background()), core.ErrBusy)

	close(gate)
	require.NoError(t, <-done)

	// With the handle free again, runs are accepted.
	_, err = e.Run(context.Background(), RunRequest{Model: []byte("solid"), Extension: "stl"})
	require.NoError(t, err)
}

func TestShutdownReleasesHandle(t *testing.T) {
	backend := &testutil.ScriptedBackend{Output: []byte("G1\n")}
	e := newTestEngine(backend, vfs.NewInMemory())
	require.NoError(t, e.Initialize(context.Background(), false))
	require.NoError(t, e.Shutdown(context.Background()))

	assert.True(t, backend.Closed())
	assert.False(t, e.Initialized())
	_, err := e.Run(context.Background(), RunRequest{Model: []byte("solid"), Extension: "stl"})
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	// The handle no longer exists, so initialization is permitted again.
	require.NoError(t, e.Initialize(context.Background(), false))
}

func TestRunBlendsConversionPhase(t *testing.T) {
	store := vfs.NewInMemory()
	backend := &testutil.ScriptedBackend{Output: []byte("G1\n")}
	e := newTestEngine(backend, store)
	require.NoError(t, e.Initialize(context.Background(), false))

	progressCh := e.SubscribeProgress()

	// Minimal OBJ input exercises the non-canonical path (w_c = 0.3).
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	_, err := e.Run(context.Background(), RunRequest{Model: []byte(obj), Extension: "obj"})
	require.NoError(t, err)

	select {
	case p := <-progressCh:
		assert.Equal(t, 1.0, p, "terminal value survives for slow subscribers")
	default:
		t.Fatal("expected a progress value")
	}
}
