package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfygate/comfygate/internal/repository"
)

const graphDoc = `{"3": {"inputs": {"seed": 0}}}`

func buildSnapshot(t *testing.T) *repository.Snapshot {
	t.Helper()
	root := t.TempDir()

	// Both templates declare "seed" on purpose: collisions across templates
	// are legal because visibility gating keeps them apart.
	templates := map[string]string{
		"image-gen": `
parameter "seed" {
  type = number
  mapping {
    node_id = "3"
    path    = "inputs.seed"
  }
}
parameter "prompt" {
  type = string
  mapping {
    node_id = "6"
    path    = "inputs.text"
  }
}
`,
		"video-gen": `
parameter "seed" {
  type = number
  mapping {
    node_id = "3"
    path    = "inputs.seed"
  }
}
`,
	}
	for slug, schemaSrc := range templates {
		dir := filepath.Join(root, slug)
		require.NoError(t, os.Mkdir(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, repository.GraphDocumentFile), []byte(graphDoc), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, repository.SchemaDocumentFile), []byte(schemaSrc), 0o644))
	}

	snapshot, err := repository.NewReader(root).Scan(context.Background())
	require.NoError(t, err)
	return snapshot
}

func TestBuildKeepsCollidingNamesApart(t *testing.T) {
	reg := Build(buildSnapshot(t))

	props := reg.Properties()
	require.Len(t, props, 3)

	// Snapshot order is sorted slugs, then declaration order.
	assert.Equal(t, "image-gen", props[0].OwningSlug)
	assert.Equal(t, "seed", props[0].Definition.Name)
	assert.Equal(t, "image-gen", props[1].OwningSlug)
	assert.Equal(t, "prompt", props[1].Definition.Name)
	assert.Equal(t, "video-gen", props[2].OwningSlug)
	assert.Equal(t, "seed", props[2].Definition.Name)
}

func TestVisibility(t *testing.T) {
	reg := Build(buildSnapshot(t))

	for _, prop := range reg.Properties() {
		assert.True(t, prop.VisibleFor(prop.OwningSlug))
		assert.False(t, prop.VisibleFor("some-other-template"))
	}

	visible := reg.VisibleProperties("video-gen")
	require.Len(t, visible, 1)
	assert.Equal(t, "seed", visible[0].Name)
}

func TestRebuildIsIdempotent(t *testing.T) {
	snapshot := buildSnapshot(t)

	first := Build(snapshot)
	second := Build(snapshot)

	assert.Equal(t, first.Properties(), second.Properties())
	assert.Len(t, second.Properties(), 3)
}
