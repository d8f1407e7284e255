// Package host defines the boundary with the hosting automation platform:
// where dynamic parameter values come from, how binary output is handed
// back, and what identifies the current execution. The rest of the client
// consumes these interfaces and never assumes a particular host.
package host

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ParameterSource retrieves caller-supplied parameter values. Retrieval may
// fail per parameter; the caller is expected to fall back to the
// parameter's declared default, never to invent one.
type ParameterSource interface {
	Parameter(name string, itemIndex int) (any, error)
}

// ExecutionIdentity names the current host execution for job submissions.
type ExecutionIdentity interface {
	CurrentExecutionID() string
}

// BinaryPreparer turns decoded binary output into whatever attachment shape
// the host wants. The returned value is opaque to this client.
type BinaryPreparer interface {
	PrepareBinary(data []byte, filename string, mimeType string) (any, error)
}

// StaticValues is a ParameterSource backed by a fixed map, used by the CLI
// where every item shares the same values.
type StaticValues map[string]any

// Parameter returns the value for name, or an error when the map has none.
func (v StaticValues) Parameter(name string, _ int) (any, error) {
	value, ok := v[name]
	if !ok {
		return nil, fmt.Errorf("no value supplied for parameter %q", name)
	}
	return value, nil
}

// RunIdentity is an ExecutionIdentity fixed for the lifetime of one run.
type RunIdentity string

// NewRunIdentity allocates a fresh execution identifier.
func NewRunIdentity() RunIdentity {
	return RunIdentity(uuid.NewString())
}

// CurrentExecutionID returns the run's identifier.
func (id RunIdentity) CurrentExecutionID() string {
	return string(id)
}

// DirPreparer is a BinaryPreparer that writes attachments to a directory
// and returns their structured description.
type DirPreparer struct {
	Dir string
}

// PrepareBinary writes the bytes under the attachment's filename and
// returns the written location plus metadata.
func (p DirPreparer) PrepareBinary(data []byte, filename string, mimeType string) (any, error) {
	if filename == "" {
		filename = uuid.NewString()
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", p.Dir, err)
	}
	target := filepath.Join(p.Dir, filepath.Base(filename))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write attachment %s: %w", target, err)
	}
	return map[string]any{
		"filePath": target,
		"filename": filepath.Base(filename),
		"mimeType": mimeType,
	}, nil
}
