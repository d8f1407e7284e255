package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Mapping links a parameter to a field location inside a graph document
// node. Path is dot-delimited and resolved relative to the node record, so
// a typical value is "inputs.seed".
type Mapping struct {
	NodeID string
	Path   string
}

// Segments splits the mapping path into its field segments. An empty path
// or an empty segment ("a..b") is malformed.
func (m Mapping) Segments() ([]string, error) {
	segments := strings.Split(m.Path, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("malformed mapping path %q", m.Path)
		}
	}
	return segments, nil
}

// ParameterDefinition is the fully decoded declaration of one parameter.
type ParameterDefinition struct {
	// Name is taken from the block label: `parameter "seed" {...}`.
	Name string

	// Type is the declared value type. Caller-supplied values are converted
	// to this type before composition; a value that cannot be converted is
	// rejected, never written as-is.
	Type cty.Type

	// Description is optional free text for discovery output.
	Description string

	// Default is the declared fallback value, or nil when the parameter has
	// no default. Defaults apply to dynamic values only; a template's graph
	// never gets invented defaults.
	Default *cty.Value

	// Options, when non-empty, restricts a string parameter to an
	// enumerated set of values.
	Options []string

	// Mapping is the graph location this parameter writes to, or nil for an
	// inert parameter.
	Mapping *Mapping
}

// Document is one template's parameter schema: the declared parameters in
// file order.
type Document struct {
	Parameters []ParameterDefinition
}

// Definition returns the parameter declaration with the given name.
func (d *Document) Definition(name string) (ParameterDefinition, bool) {
	for _, def := range d.Parameters {
		if def.Name == name {
			return def, true
		}
	}
	return ParameterDefinition{}, false
}

// Mappings returns the parameter name -> mapping table for every parameter
// that declares one.
func (d *Document) Mappings() map[string]Mapping {
	mappings := make(map[string]Mapping)
	for _, def := range d.Parameters {
		if def.Mapping != nil {
			mappings[def.Name] = *def.Mapping
		}
	}
	return mappings
}
