// Package definition stages printer and extruder configuration files into
// the engine's virtual filesystem before runs and removes them symmetrically
// afterwards.
//
// Paths are deterministic: the fixed primary definitions land at
// /definitions/<name>.def.json, the printer at
// /definitions/printer.def.json, and each extruder at
// /definitions/extruder-<i>.def.json numbered from zero. Unstaging removes
// exactly the recorded file set and then the directory.
package definition
