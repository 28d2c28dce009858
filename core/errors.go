package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when staging, unstaging or running is
	// attempted before Initialize has created the engine handle.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrAlreadyInitialized is returned when Initialize is called while an
	// engine handle already exists.
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrBusy is returned when a run is requested while another run holds
	// the engine handle. Runs are rejected rather than queued.
	ErrBusy = errors.New("a run is already in flight")

	// ErrAlreadyStaged is returned when definitions are staged twice without
	// an intervening unstage.
	ErrAlreadyStaged = errors.New("definitions already staged")

	// ErrNotStaged is returned when unstaging without a prior stage.
	ErrNotStaged = errors.New("no definitions staged")
)

// ConversionError reports that the external converter could not produce
// canonical-format bytes. It flows back through the normal return channel of
// Run; no engine invocation happens and no files are left behind.
type ConversionError struct {
	// Extension is the input format tag the conversion was attempted for.
	Extension string

	// Reason is a short human-readable cause.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("convert %q: %s: %v", e.Extension, e.Reason, e.Err)
	}
	return fmt.Sprintf("convert %q: %s", e.Extension, e.Reason)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// EngineError reports that the foreign engine invocation aborted or signaled
// failure. It is fatal to the current run; no partial output should be
// trusted.
type EngineError struct {
	// ExitCode is the engine's exit status, or -1 when the engine trapped
	// before reaching an exit.
	ExitCode int

	// Err is the underlying failure from the foreign call.
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
