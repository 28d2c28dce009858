// Package convert turns raw model bytes into the engine's canonical binary
// STL format. Converters are registered per input extension; the canonical
// format itself passes through untouched.
package convert

import (
	"sync"

	"github.com/printforge/slicerun/core"
	"github.com/printforge/slicerun/progress"
)

// Converter produces canonical-format bytes from raw input bytes, reporting
// fractional progress in [0, 1] through onProgress. Implementations return a
// *core.ConversionError when the input cannot be converted.
type Converter interface {
	Convert(data []byte, onProgress func(fraction float64)) ([]byte, error)
}

// Registry maps lowercase input extensions to converters. The zero set of a
// new registry already handles the canonical format ("stl") and Wavefront
// OBJ; callers may register more.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry constructs a Registry with the built-in converters.
func NewRegistry() *Registry {
	r := &Registry{converters: make(map[string]Converter)}
	r.Register(core.CanonicalExtension, Passthrough{})
	r.Register("obj", OBJ{})
	return r
}

// Register adds (or replaces) the converter for an extension. The extension
// is normalized, so ".OBJ" and "obj" address the same slot.
func (r *Registry) Register(extension string, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[progress.NormalizeExtension(extension)] = c
}

// Convert resolves the converter for the extension and applies it. Unknown
// extensions yield a *core.ConversionError.
func (r *Registry) Convert(extension string, data []byte, onProgress func(float64)) ([]byte, error) {
	r.mu.RLock()
	c, ok := r.converters[progress.NormalizeExtension(extension)]
	r.mu.RUnlock()
	if !ok {
		return nil, &core.ConversionError{Extension: extension, Reason: "unsupported input format"}
	}
	return c.Convert(data, onProgress)
}

// Passthrough is the canonical-format converter: the input already is binary
// or ASCII STL, so it is copied through with a single terminal progress
// report.
type Passthrough struct{}

// Convert returns a copy of data.
func (Passthrough) Convert(data []byte, onProgress func(float64)) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	if onProgress != nil {
		onProgress(1)
	}
	return out, nil
}
