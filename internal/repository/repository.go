package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/comfygate/comfygate/internal/ctxlog"
	"github.com/comfygate/comfygate/internal/fsutil"
	"github.com/comfygate/comfygate/internal/schema"
	"github.com/comfygate/comfygate/internal/workflow"
)

// Document file names inside each template directory.
const (
	GraphDocumentFile  = "workflow.json"
	SchemaDocumentFile = "ui_inputs.hcl"
)

// Template is one fully loaded template. Instances are never mutated after
// loading; composition always works on deep copies of Graph.
type Template struct {
	Slug   string
	Graph  workflow.Document
	Schema *schema.Document
}

// Reader reads templates from a repository root directory.
type Reader struct {
	root string
}

// NewReader creates a Reader over the given root directory.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// ListTemplates returns the slugs of all template directories, sorted. A
// subdirectory counts as a template only if it contains a graph document.
// Zero discovered templates is a hard error.
func (r *Reader) ListTemplates(ctx context.Context) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	slugs, err := fsutil.ListDirsContaining(r.root, GraphDocumentFile)
	if err != nil {
		return nil, fmt.Errorf("failed to scan template repository %s: %w", r.root, err)
	}
	if len(slugs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTemplatesFound, r.root)
	}

	logger.Debug("Template repository scanned.", "root", r.root, "templates", len(slugs))
	return slugs, nil
}

// LoadTemplate reads and parses both documents for one slug. Any missing or
// unparseable document is fatal for this operation.
func (r *Reader) LoadTemplate(ctx context.Context, slug string) (*Template, error) {
	dir := filepath.Join(r.root, slug)

	graphRaw, err := os.ReadFile(filepath.Join(dir, GraphDocumentFile))
	if err != nil {
		return nil, &LoadError{Slug: slug, Err: err}
	}
	graph, err := workflow.ParseDocument(graphRaw)
	if err != nil {
		return nil, &LoadError{Slug: slug, Err: err}
	}

	schemaPath := filepath.Join(dir, SchemaDocumentFile)
	schemaRaw, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, &LoadError{Slug: slug, Err: err}
	}
	doc, err := schema.DecodeDocument(ctx, schemaPath, schemaRaw)
	if err != nil {
		return nil, &LoadError{Slug: slug, Err: err}
	}

	return &Template{Slug: slug, Graph: graph, Schema: doc}, nil
}

// Scan lists and loads every template into a fresh immutable Snapshot.
// A template that fails to load is logged and excluded rather than
// aborting the scan; a scan that yields zero usable templates fails with
// ErrNoTemplatesFound.
func (r *Reader) Scan(ctx context.Context) (*Snapshot, error) {
	logger := ctxlog.FromContext(ctx)

	slugs, err := r.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{templates: make(map[string]*Template)}
	for _, slug := range slugs {
		tpl, err := r.LoadTemplate(ctx, slug)
		if err != nil {
			logger.Warn("Excluding unloadable template from scan.", "slug", slug, "error", err)
			continue
		}
		snapshot.slugs = append(snapshot.slugs, slug)
		snapshot.templates[slug] = tpl
	}

	if len(snapshot.slugs) == 0 {
		return nil, fmt.Errorf("%w in %s: every discovered template failed to load", ErrNoTemplatesFound, r.root)
	}

	logger.Info("Template repository loaded.", "root", r.root, "templates", len(snapshot.slugs))
	return snapshot, nil
}

// Snapshot is an immutable view of a repository produced by one Scan. It is
// safe for concurrent readers; reloading means running a new Scan, never
// patching a snapshot in place.
type Snapshot struct {
	slugs     []string
	templates map[string]*Template
}

// Slugs returns the loaded template slugs in scan order.
func (s *Snapshot) Slugs() []string {
	out := make([]string, len(s.slugs))
	copy(out, s.slugs)
	return out
}

// Template returns the loaded template for a slug.
func (s *Snapshot) Template(slug string) (*Template, bool) {
	tpl, ok := s.templates[slug]
	return tpl, ok
}

// Templates returns all loaded templates in scan order.
func (s *Snapshot) Templates() []*Template {
	out := make([]*Template, 0, len(s.slugs))
	for _, slug := range s.slugs {
		out = append(out, s.templates[slug])
	}
	return out
}
