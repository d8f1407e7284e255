package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectErr bool
	}{
		{name: "object", raw: `{"3": {"inputs": {"seed": 0}}}`},
		{name: "empty object", raw: `{}`},
		{name: "error - array", raw: `[1, 2]`, expectErr: true},
		{name: "error - scalar", raw: `"hi"`, expectErr: true},
		{name: "error - truncated", raw: `{"3": {`, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tc.raw))
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"b": {"inputs": {"y": 2, "x": 1}}, "a": {"inputs": {}}}`))
	require.NoError(t, err)

	first, err := doc.Encode()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := doc.Encode()
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"3": {"inputs": {"seed": 0}}}`))
	require.NoError(t, err)

	cp, err := doc.DeepCopy()
	require.NoError(t, err)

	node, ok := cp.Node("3")
	require.True(t, ok)
	node["inputs"].(map[string]any)["seed"] = float64(99)

	origNode, ok := doc.Node("3")
	require.True(t, ok)
	assert.Equal(t, float64(0), origNode["inputs"].(map[string]any)["seed"])
}

func TestNode(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"3": {"inputs": {}}, "bad": 7}`))
	require.NoError(t, err)

	_, ok := doc.Node("3")
	assert.True(t, ok)
	_, ok = doc.Node("missing")
	assert.False(t, ok)
	_, ok = doc.Node("bad")
	assert.False(t, ok)
}
