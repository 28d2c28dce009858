package progress

import (
	"math"
	"strings"
	"sync"

	"github.com/printforge/slicerun/core"
)

// conversionBias is the share of the blended progress bar assigned to the
// conversion phase for non-canonical inputs. Conversion is typically much
// cheaper than slicing, so it occupies the smaller share.
const conversionBias = 0.3

// ConversionWeight returns the conversion-phase weight w_c for the given
// input format tag: 0 when the input is already in the engine's canonical
// format, conversionBias otherwise. The engine-phase weight is 1 - w_c.
func ConversionWeight(extension string) float64 {
	if NormalizeExtension(extension) == core.CanonicalExtension {
		return 0
	}
	return conversionBias
}

// NormalizeExtension lowercases an extension and strips a leading dot, so
// "STL", ".stl" and "stl" all compare equal.
func NormalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(extension, "."))
}

// Blender combines the conversion-phase and engine-phase progress fractions
// into one observable stream in [0, 1].
//
// Guarantees for a successful run:
//   - the emitted sequence is non-decreasing and bounded by 1
//   - consecutive values that round to the same two decimal places are
//     deduplicated, so a tight-looping engine callback cannot flood the
//     subscriber
//   - a terminal 1.0 is always emitted (Finish)
//
// A Blender is reused across runs; Begin resets it for the next run.
type Blender struct {
	notifier *core.Notifier[float64]

	mu         sync.Mutex
	weight     float64 // w_c for the current run
	last       float64 // last emitted blended value
	emittedAny bool
	finished   bool
}

// NewBlender constructs a Blender publishing to a fresh notifier.
func NewBlender() *Blender {
	return &Blender{notifier: core.NewNotifier[float64]()}
}

// Subscribe returns the blended progress stream. At most one subscriber is
// active; subscribing replaces any previous subscription.
func (b *Blender) Subscribe() <-chan float64 {
	return b.notifier.Subscribe()
}

// Begin resets the blender for a run with the given input format tag and
// returns the conversion weight it selected.
func (b *Blender) Begin(extension string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.weight = ConversionWeight(extension)
	b.last = 0
	b.emittedAny = false
	b.finished = false
	return b.weight
}

// Conversion reports a raw conversion-phase fraction in [0, 1].
func (b *Blender) Conversion(raw float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emit(clamp01(raw) * b.weight)
}

// Slicing reports a raw engine-phase fraction in [0, 1].
func (b *Blender) Slicing(raw float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emit(clamp01(raw)*(1-b.weight) + b.weight)
}

// Finish emits the terminal 1.0 for a successful run. Subsequent Finish
// calls are no-ops until the next Begin.
func (b *Blender) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	if round2(b.last) == 1 && b.emittedAny {
		return
	}
	b.last = 1
	b.emittedAny = true
	b.notifier.Publish(1)
}

// emit applies the monotonic clamp and two-decimal dedupe before forwarding.
// Caller must hold b.mu.
func (b *Blender) emit(blended float64) {
	if b.finished {
		return
	}
	if blended < b.last {
		// The engine occasionally steps a fraction backwards between
		// slicing stages; the observable stream must not.
		return
	}
	if b.emittedAny && round2(blended) == round2(b.last) {
		return
	}
	b.last = blended
	b.emittedAny = true
	b.notifier.Publish(round2(blended))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
