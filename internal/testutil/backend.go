package testutil

import (
	"context"
	"sync"

	"github.com/printforge/slicerun/core"
)

// ScriptedBackend is a deterministic core.Backend stand-in: it replays a
// progress script, emits at most one metadata record, and writes the
// configured output to the fixed output path, mimicking the re-entrant
// synchronous callback behavior of the real engine.
type ScriptedBackend struct {
	// ProgressScript is replayed through hooks.OnProgress in order.
	ProgressScript []float64

	// Metadata, when non-nil, is emitted once through hooks.OnMetadata.
	Metadata *core.Metadata

	// Output is written to core.OutputPath. When SkipOutput is set nothing
	// is written, simulating an engine that died before producing output.
	Output     []byte
	SkipOutput bool

	// Err, when non-nil, is returned after the callbacks fire.
	Err error

	// Gate, when non-nil, blocks Run until the channel is closed, letting
	// tests hold a run in flight.
	Gate <-chan struct{}

	mu     sync.Mutex
	calls  [][]string
	closed bool
}

var _ core.Backend = (*ScriptedBackend)(nil)

// Run replays the script synchronously, the way the foreign engine re-enters
// the host during its blocking call.
func (b *ScriptedBackend) Run(ctx context.Context, store core.FileStore, argv []string, hooks core.RunHooks) error {
	b.mu.Lock()
	b.calls = append(b.calls, append([]string(nil), argv...))
	b.mu.Unlock()

	if b.Gate != nil {
		<-b.Gate
	}

	// The real engine reads its input from the virtual filesystem; fail the
	// same way it would if staging was skipped.
	if _, err := store.Read(core.InputPath); err != nil {
		return err
	}

	for _, p := range b.ProgressScript {
		if hooks.OnProgress != nil {
			hooks.OnProgress(p)
		}
	}
	if b.Metadata != nil && hooks.OnMetadata != nil {
		hooks.OnMetadata(*b.Metadata)
	}
	if b.Err != nil {
		return b.Err
	}
	if b.SkipOutput {
		return nil
	}
	return store.Write(core.OutputPath, b.Output)
}

// Close records the shutdown.
func (b *ScriptedBackend) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Calls returns a snapshot of the argument vectors Run was invoked with.
func (b *ScriptedBackend) Calls() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]string, len(b.calls))
	copy(out, b.calls)
	return out
}

// Closed reports whether Close was called.
func (b *ScriptedBackend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Factory wraps the backend in a core.BackendFactory and records the
// verbose flag Initialize passed in.
func (b *ScriptedBackend) Factory(verboseSeen *bool) core.BackendFactory {
	return func(ctx context.Context, verbose bool) (core.Backend, error) {
		if verboseSeen != nil {
			*verboseSeen = verbose
		}
		return b, nil
	}
}
