package definition

// Primary definitions are the base settings every printer and extruder
// definition inherits from. The engine resolves the inheritance chain itself;
// the stager only has to make the files reachable under their canonical
// names.
//
// The payloads here are the minimal roots of that chain. Real deployments
// ship the full upstream fdmprinter/fdmextruder trees via SetPrimaryDefinition
// before staging.
var primaryDefinitions = map[string][]byte{
	"fdmprinter": []byte(`{
  "name": "FDM Printer Base Description",
  "version": 2,
  "metadata": {
    "type": "machine",
    "visible": false
  },
  "settings": {}
}`),
	"fdmextruder": []byte(`{
  "name": "Extruder",
  "version": 2,
  "metadata": {
    "type": "extruder",
    "visible": false
  },
  "settings": {}
}`),
}

// primaryOrder fixes the staging order of the primary definitions.
var primaryOrder = []string{"fdmprinter", "fdmextruder"}

// PrimaryDefinitionNames returns the fixed primary definition names in
// staging order.
func PrimaryDefinitionNames() []string {
	out := make([]string, len(primaryOrder))
	copy(out, primaryOrder)
	return out
}

// SetPrimaryDefinition replaces the payload staged for the named primary
// definition. Unknown names are ignored; the fixed name set cannot grow
// because the engine looks the files up by exactly these names.
func SetPrimaryDefinition(name string, data []byte) {
	if _, ok := primaryDefinitions[name]; !ok {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	primaryDefinitions[name] = cp
}
