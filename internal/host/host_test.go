package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticValues(t *testing.T) {
	values := StaticValues{"seed": 42}

	got, err := values.Parameter("seed", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = values.Parameter("missing", 0)
	assert.Error(t, err)
}

func TestRunIdentityIsStable(t *testing.T) {
	id := NewRunIdentity()
	assert.NotEmpty(t, id.CurrentExecutionID())
	assert.Equal(t, id.CurrentExecutionID(), id.CurrentExecutionID())
	assert.NotEqual(t, id.CurrentExecutionID(), NewRunIdentity().CurrentExecutionID())
}

func TestDirPreparer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	preparer := DirPreparer{Dir: dir}

	result, err := preparer.PrepareBinary([]byte("pixels"), "a.png", "image/png")
	require.NoError(t, err)

	fields, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.png", fields["filename"])
	assert.Equal(t, "image/png", fields["mimeType"])

	written, err := os.ReadFile(fields["filePath"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), written)
}

func TestDirPreparerStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	preparer := DirPreparer{Dir: dir}

	result, err := preparer.PrepareBinary([]byte("x"), "../escape.png", "image/png")
	require.NoError(t, err)

	fields := result.(map[string]any)
	assert.Equal(t, filepath.Join(dir, "escape.png"), fields["filePath"])
}
