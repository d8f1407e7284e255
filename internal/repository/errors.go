package repository

import (
	"errors"
	"fmt"
)

// ErrNoTemplatesFound is returned when a repository scan finds zero usable
// templates. An empty repository is a broken configuration, never a
// silently disabled feature.
var ErrNoTemplatesFound = errors.New("no templates found")

// LoadError reports that one template's documents could not be read or
// parsed.
type LoadError struct {
	Slug string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load template %q: %v", e.Slug, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
