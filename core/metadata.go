package core

// Metadata is the one-shot result record the engine emits once per
// successful run. Field order mirrors the engine's positional metadata
// callback: flavor, printTime, material1Usage, material2Usage, nozzleSize,
// filamentUsage, then the bounding-box minimum and maximum on three axes.
type Metadata struct {
	// Flavor is the G-code dialect of the output (e.g. "Marlin").
	Flavor string `json:"flavor"`

	// PrintTime is the estimated print duration in seconds.
	PrintTime float64 `json:"print_time"`

	// Material1Usage and Material2Usage are per-material filament volumes
	// in mm^3.
	Material1Usage float64 `json:"material1_usage"`
	Material2Usage float64 `json:"material2_usage"`

	// NozzleSize is the nozzle diameter in mm.
	NozzleSize float64 `json:"nozzle_size"`

	// FilamentUsage is the total filament length in mm.
	FilamentUsage float64 `json:"filament_usage"`

	// Model bounding box in mm.
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
	MaxZ float64 `json:"max_z"`
}

// MetadataFromArgs reshapes the engine's positional metadata callback
// arguments into a Metadata record. The argument order is fixed by the
// engine ABI and must not change.
func MetadataFromArgs(
	flavor string,
	printTime, material1Usage, material2Usage, nozzleSize, filamentUsage float64,
	minX, minY, minZ, maxX, maxY, maxZ float64,
) Metadata {
	return Metadata{
		Flavor:         flavor,
		PrintTime:      printTime,
		Material1Usage: material1Usage,
		Material2Usage: material2Usage,
		NozzleSize:     nozzleSize,
		FilamentUsage:  filamentUsage,
		MinX:           minX,
		MinY:           minY,
		MinZ:           minZ,
		MaxX:           maxX,
		MaxY:           maxY,
		MaxZ:           maxZ,
	}
}
