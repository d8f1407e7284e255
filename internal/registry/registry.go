package registry

import (
	"github.com/comfygate/comfygate/internal/repository"
	"github.com/comfygate/comfygate/internal/schema"
)

// Property is one parameter definition tagged with the template that owns
// it.
type Property struct {
	Definition schema.ParameterDefinition
	OwningSlug string
}

// VisibleFor reports whether this property applies when the given template
// slug is the selected one.
func (p Property) VisibleFor(selectedSlug string) bool {
	return p.OwningSlug == selectedSlug
}

// Registry is the merged, ordered property set of one repository snapshot.
type Registry struct {
	properties []Property
}

// Build creates a fresh Registry from a repository snapshot. Entries follow
// snapshot order, then declaration order within each template's schema
// document.
func Build(snapshot *repository.Snapshot) *Registry {
	reg := &Registry{}
	for _, tpl := range snapshot.Templates() {
		for _, def := range tpl.Schema.Parameters {
			reg.properties = append(reg.properties, Property{
				Definition: def,
				OwningSlug: tpl.Slug,
			})
		}
	}
	return reg
}

// Properties returns every property in order.
func (r *Registry) Properties() []Property {
	out := make([]Property, len(r.properties))
	copy(out, r.properties)
	return out
}

// VisibleProperties returns the definitions visible for the selected
// template, in declaration order.
func (r *Registry) VisibleProperties(selectedSlug string) []schema.ParameterDefinition {
	var out []schema.ParameterDefinition
	for _, prop := range r.properties {
		if prop.VisibleFor(selectedSlug) {
			out = append(out, prop.Definition)
		}
	}
	return out
}
