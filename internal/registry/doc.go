// Package registry builds the merged parameter property set across every
// loaded template.
//
// Each template declares its own parameters; the registry flattens them
// into one ordered list in which every entry is tagged with the slug of the
// template that owns it. An entry is visible only when its owning template
// is the currently selected one, which is what makes cross-template name
// collisions (two templates both declaring "seed") harmless: entries are
// distinct by (name, owning slug), never deduplicated by name alone.
//
// A registry is rebuilt from scratch from a repository snapshot and holds
// no other state, so repeated rebuilds can never accumulate duplicate
// entries.
package registry
