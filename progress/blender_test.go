package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture runs each step and records the value (if any) the step delivered.
// Delivery is non-blocking with a single slot, so each step is drained
// before the next runs; a step that emits nothing records nothing.
func capture(b *Blender, steps ...func()) []float64 {
	ch := b.Subscribe()
	var got []float64
	for _, step := range steps {
		step()
		select {
		case v := <-ch:
			got = append(got, v)
		default:
		}
	}
	return got
}

func TestConversionWeight(t *testing.T) {
	assert.Equal(t, 0.0, ConversionWeight("stl"))
	assert.Equal(t, 0.0, ConversionWeight(".STL"))
	assert.Equal(t, 0.3, ConversionWeight("obj"))
	assert.Equal(t, 0.3, ConversionWeight(".3mf"))
	assert.Equal(t, 0.3, ConversionWeight(""))
}

func TestBlenderTwoPhaseBlend(t *testing.T) {
	b := NewBlender()
	w := b.Begin("obj")
	assert.Equal(t, 0.3, w)

	got := capture(b,
		func() { b.Conversion(0.5) }, // 0.15
		func() { b.Conversion(1.0) }, // 0.30
		func() { b.Slicing(0.5) },    // 0.65
		func() { b.Slicing(1.0) },    // 1.00
	)

	assert.Equal(t, []float64{0.15, 0.3, 0.65, 1.0}, got)
}

func TestBlenderCanonicalInputSkipsConversionShare(t *testing.T) {
	b := NewBlender()
	b.Begin("stl")

	got := capture(b,
		func() { b.Slicing(0.25) },
		func() { b.Slicing(0.5) },
	)

	assert.Equal(t, []float64{0.25, 0.5}, got)
}

func TestBlenderDeduplicatesTwoDecimalValues(t *testing.T) {
	b := NewBlender()
	b.Begin("stl")

	got := capture(b,
		func() { b.Slicing(0.1001) },
		func() { b.Slicing(0.1003) }, // rounds to the same 0.10
		func() { b.Slicing(0.1049) }, // still 0.10
		func() { b.Slicing(0.105) },  // 0.11
	)

	assert.Equal(t, []float64{0.1, 0.11}, got)
}

func TestBlenderMonotonicAndBounded(t *testing.T) {
	b := NewBlender()
	b.Begin("obj")

	got := capture(b,
		func() { b.Conversion(0.9) },
		func() { b.Slicing(0.0) }, // 0.30, not below 0.27
		func() { b.Slicing(0.5) },
		func() { b.Slicing(0.2) }, // regression, dropped
		func() { b.Slicing(2.0) }, // clamped to 1
		func() { b.Finish() },
	)

	last := -1.0
	for _, v := range got {
		assert.GreaterOrEqual(t, v, last, "sequence must be non-decreasing")
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		last = v
	}
	assert.Equal(t, 1.0, got[len(got)-1])
}

func TestBlenderFinishEmitsTerminalExactlyOnce(t *testing.T) {
	b := NewBlender()
	b.Begin("stl")

	got := capture(b,
		func() { b.Slicing(0.4) },
		func() { b.Finish() },
		func() { b.Finish() },
		func() { b.Slicing(0.9) }, // after Finish, ignored
	)

	assert.Equal(t, []float64{0.4, 1.0}, got)
}

func TestBlenderFinishSkipsDuplicateTerminal(t *testing.T) {
	b := NewBlender()
	b.Begin("stl")

	got := capture(b,
		func() { b.Slicing(1.0) },
		func() { b.Finish() }, // 1.0 already emitted, no duplicate
	)

	assert.Equal(t, []float64{1.0}, got)
}

func TestBlenderBeginResetsBetweenRuns(t *testing.T) {
	b := NewBlender()
	b.Begin("stl")
	first := capture(b,
		func() { b.Slicing(1.0) },
		func() { b.Finish() },
	)
	assert.Equal(t, []float64{1.0}, first)

	b.Begin("stl")
	second := capture(b,
		func() { b.Slicing(0.2) },
	)
	assert.Equal(t, []float64{0.2}, second)
}
