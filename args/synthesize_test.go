package args

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/printforge/slicerun/core"
)

func TestSynthesizeBaseline(t *testing.T) {
	argv := Synthesize(nil, false)
	assert.Equal(t, []string{
		"slice",
		"-j", "/definitions/printer.def.json",
		"-o", "/output.gcode",
		"-l", "/model.stl",
	}, argv)
}

func TestSynthesizeVerbose(t *testing.T) {
	argv := Synthesize(nil, true)
	assert.Contains(t, argv, "-v")
}

func TestSynthesizeOverridesDifferOnlyBySettingFlags(t *testing.T) {
	baseline := Synthesize(nil, false)
	argv := Synthesize([]core.Override{
		core.GlobalOverride("mesh_position_x", "20"),
		core.GlobalOverride("layer_height", "0.2"),
	}, false)

	// The override flags are inserted in caller order; everything else
	// matches the baseline.
	assert.Equal(t, baseline[:3], argv[:3])
	assert.Equal(t, []string{"-s", "mesh_position_x=20", "-s", "layer_height=0.2"}, argv[3:7])
	assert.Equal(t, baseline[3:], argv[7:])
}

func TestSynthesizeExtruderScope(t *testing.T) {
	argv := Synthesize([]core.Override{
		core.ExtruderOverride(1, "material_diameter", "2.85"),
	}, false)
	assert.Equal(t, []string{"-e1", "-s", "material_diameter=2.85"}, argv[3:6])
}

func TestSplitCommandVerbatim(t *testing.T) {
	argv := SplitCommand("slice -v -j /definitions/printer.def.json -o /out.gcode -l /in.stl")
	assert.Equal(t, []string{
		"slice", "-v", "-j", "/definitions/printer.def.json", "-o", "/out.gcode", "-l", "/in.stl",
	}, argv)
	assert.Empty(t, SplitCommand("   "))
}
