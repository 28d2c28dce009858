package testutil

import (
	"encoding/json"
	"fmt"
)

// PrinterJSON builds a minimal printer definition declaring the given
// extruder count.
func PrinterJSON(extruders int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"name":"Test Printer","version":2,"metadata":{"machine_extruder_count":%d}}`,
		extruders))
}

// ExtruderJSON builds a minimal extruder definition.
func ExtruderJSON() json.RawMessage {
	return json.RawMessage(`{"name":"Test Extruder","version":2,"metadata":{}}`)
}
