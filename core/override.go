package core

// Override adjusts a single engine setting for one extruder or for all of
// them. Overrides are passed to argument synthesis in caller order; order is
// preserved into the argument vector.
type Override struct {
	// Extruder selects the zero-based extruder the setting applies to.
	// Nil applies the setting globally.
	Extruder *int `json:"extruder,omitempty"`

	// Key is the engine setting name (e.g. "layer_height").
	Key string `json:"key"`

	// Value is the setting value, always string encoded.
	Value string `json:"value"`
}

// GlobalOverride builds an Override that applies to all extruders.
func GlobalOverride(key, value string) Override {
	return Override{Key: key, Value: value}
}

// ExtruderOverride builds an Override scoped to the given zero-based
// extruder.
func ExtruderOverride(extruder int, key, value string) Override {
	return Override{Extruder: &extruder, Key: key, Value: value}
}
