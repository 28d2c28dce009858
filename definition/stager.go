package definition

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/printforge/slicerun/core"
	"github.com/printforge/slicerun/logging"
)

// Definition bundles the printer definition with one definition per
// extruder. All payloads are raw JSON; schema validation is the engine's
// concern, not ours.
type Definition struct {
	Printer   json.RawMessage
	Extruders []json.RawMessage
}

// Stager writes and removes definition files in the virtual filesystem
// around runs. Staging records every path it writes so unstaging removes
// exactly that set; a changed extruder count cannot corrupt cleanup because
// removal never recomputes paths.
//
// A Stager brackets zero or more runs: Stage, run..., Unstage.
type Stager struct {
	store  core.FileStore
	logger logging.Logger

	mu     sync.Mutex
	staged []string // paths written by the last Stage, nil when unstaged
}

// NewStager constructs a Stager over the given store. A nil logger is
// replaced with a no-op logger.
func NewStager(store core.FileStore, logger logging.Logger) *Stager {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Stager{store: store, logger: logger}
}

// Staged reports whether definitions are currently staged.
func (s *Stager) Staged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged != nil
}

// Stage writes the primary definitions, the printer definition and one file
// per extruder (numbered from 0) into the definitions directory under
// deterministic paths. If the printer definition declares
// metadata.machine_extruder_count it must match the number of supplied
// extruder definitions. Staging twice without an intervening Unstage is
// ErrAlreadyStaged.
func (s *Stager) Stage(def Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged != nil {
		return core.ErrAlreadyStaged
	}
	if len(def.Printer) == 0 {
		return fmt.Errorf("printer definition is required")
	}
	if declared := gjson.GetBytes(def.Printer, "metadata.machine_extruder_count"); declared.Exists() {
		if int(declared.Int()) != len(def.Extruders) {
			return fmt.Errorf("printer definition declares %d extruders, got %d",
				declared.Int(), len(def.Extruders))
		}
	}

	if err := s.store.MkdirAll(core.DefinitionsDir); err != nil {
		return fmt.Errorf("create definitions directory: %w", err)
	}

	var written []string
	write := func(path string, data []byte) error {
		if err := s.store.Write(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}
	// Best-effort rollback so a half-written stage leaves nothing behind.
	fail := func(err error) error {
		for _, p := range written {
			if rmErr := s.store.Remove(p); rmErr != nil {
				s.logger.Warn("rollback remove failed", "path", p, "error", rmErr)
			}
		}
		if rmErr := s.store.RemoveDir(core.DefinitionsDir); rmErr != nil {
			s.logger.Warn("rollback rmdir failed", "error", rmErr)
		}
		return err
	}

	for _, name := range PrimaryDefinitionNames() {
		path := fmt.Sprintf("%s/%s.def.json", core.DefinitionsDir, name)
		if err := write(path, primaryDefinitions[name]); err != nil {
			return fail(err)
		}
	}
	if err := write(core.PrinterDefinitionPath, def.Printer); err != nil {
		return fail(err)
	}
	for i, extruder := range def.Extruders {
		stamped, err := sjson.SetBytes(extruder, "metadata.position", i)
		if err != nil {
			return fail(fmt.Errorf("stamp extruder %d position: %w", i, err))
		}
		path := fmt.Sprintf("%s/extruder-%d.def.json", core.DefinitionsDir, i)
		if err := write(path, stamped); err != nil {
			return fail(err)
		}
	}

	s.staged = written
	s.logger.Debug("definitions staged", "files", len(written), "extruders", len(def.Extruders))
	return nil
}

// Unstage deletes every file written by the last Stage call and removes the
// definitions directory, leaving the filesystem as if Stage never ran. It is
// ErrNotStaged without a prior successful Stage.
func (s *Stager) Unstage() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged == nil {
		return core.ErrNotStaged
	}
	for _, path := range s.staged {
		if err := s.store.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	if err := s.store.RemoveDir(core.DefinitionsDir); err != nil {
		return fmt.Errorf("remove definitions directory: %w", err)
	}
	count := len(s.staged)
	s.staged = nil
	s.logger.Debug("definitions unstaged", "files", count)
	return nil
}
