package integration_tests

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfygate/comfygate/internal/app"
)

const graphJSON = `{
  "3": {"class_type": "KSampler", "inputs": {"seed": 0, "steps": 20}},
  "5": {"class_type": "EmptyLatentImage", "inputs": {"batch_size": 1}}
}`

const schemaHCL = `
parameter "seed" {
  type = number

  mapping {
    node_id = "3"
    path    = "inputs.seed"
  }
}

parameter "batch_size" {
  type = number

  mapping {
    node_id = "5"
    path    = "inputs.batch_size"
  }
}
`

// submitRecorder captures the last body POSTed to /execute.
type submitRecorder struct {
	mu   sync.Mutex
	body []byte
}

func (r *submitRecorder) record(body []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.body = body
}

func (r *submitRecorder) decoded(t *testing.T) map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.body, "gateway never received a submission")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(r.body, &decoded))
	return decoded
}

// stubGateway serves POST /execute and the /ws/{job_id} push channel.
func stubGateway(t *testing.T, jobID string, resultJSON string) (*httptest.Server, *submitRecorder) {
	t.Helper()
	recorder := &submitRecorder{}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		recorder.record(body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"job_id": jobID})
	})
	mux.HandleFunc("/ws/"+jobID, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(resultJSON)))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, recorder
}

func writeTemplateRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "basic-image-generation")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workflow.json"), []byte(graphJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ui_inputs.hcl"), []byte(schemaHCL), 0o644))
	return root
}

func runApp(t *testing.T, config app.Config) (*bytes.Buffer, error) {
	t.Helper()
	validated, err := app.NewConfig(config)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	instance, err := app.NewApp(out, validated)
	require.NoError(t, err)
	return out, instance.Run(context.Background())
}

func decodeResults(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var results []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &results), "output was: %s", out.String())
	return results
}

// TestAwaitLifecycle drives the full pipeline: a template repository on
// disk, a caller-supplied value, composition, submission, and a result
// awaited over the push channel.
func TestAwaitLifecycle(t *testing.T) {
	server, recorder := stubGateway(t, "job-123", `{"format": "text", "data": "done"}`)

	out, err := runApp(t, app.Config{
		TemplatesPath: writeTemplateRepo(t),
		GatewayURL:    server.URL,
		Template:      "basic-image-generation",
		Values:        map[string]string{"seed": "42"},
		BatchSize:     2,
		OutputFormat:  "text",
		OutputDir:     t.TempDir(),
		Timeout:       5 * time.Second,
		LogFormat:     "text",
		LogLevel:      "error",
	})
	require.NoError(t, err)

	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "job-123", results[0]["jobId"])
	assert.Equal(t, []any{map[string]any{"text": "done"}}, results[0]["outputs"])

	submitted := recorder.decoded(t)
	assert.NotEmpty(t, submitted["execution_id"])
	assert.Equal(t, "websocket", submitted["callback_type"])
	assert.Equal(t, "text", submitted["output_format"])

	graph, ok := submitted["workflow_json"].(map[string]any)
	require.True(t, ok)
	sampler := graph["3"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, float64(42), sampler["seed"], "supplied value should land in the sampler node")
	assert.Equal(t, float64(20), sampler["steps"], "untouched graph values must survive composition")
	latent := graph["5"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, float64(2), latent["batch_size"], "batch size should override the reserved parameter")
}

// TestCallbackLifecycle covers fire-and-forget: the run finishes on the
// submission acknowledgment without touching the push channel.
func TestCallbackLifecycle(t *testing.T) {
	server, recorder := stubGateway(t, "job-456", `{}`)

	out, err := runApp(t, app.Config{
		TemplatesPath: writeTemplateRepo(t),
		GatewayURL:    server.URL,
		Template:      "basic-image-generation",
		Values:        map[string]string{"seed": "7"},
		Mode:          app.ModeCallback,
		CallbackURL:   "http://127.0.0.1:9000/done",
		OutputFormat:  "text",
		OutputDir:     t.TempDir(),
		Timeout:       5 * time.Second,
		LogFormat:     "text",
		LogLevel:      "error",
	})
	require.NoError(t, err)

	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "job-456", results[0]["jobId"])
	assert.Equal(t, "submitted", results[0]["status"])
	assert.Nil(t, results[0]["outputs"])

	submitted := recorder.decoded(t)
	assert.Equal(t, "webhook", submitted["callback_type"])
	assert.Equal(t, "http://127.0.0.1:9000/done", submitted["callback_url"])
}

// TestBinaryLifecycle checks that a binary record is decoded and written
// under the output directory.
func TestBinaryLifecycle(t *testing.T) {
	// "aGVsbG8=" is base64 for "hello".
	server, _ := stubGateway(t, "job-789",
		`{"format": "multiple", "results": [{"format": "binary", "data": "aGVsbG8=", "filename": "out.png", "mime_type": "image/png"}]}`)

	outputDir := t.TempDir()
	out, err := runApp(t, app.Config{
		TemplatesPath: writeTemplateRepo(t),
		GatewayURL:    server.URL,
		Template:      "basic-image-generation",
		Values:        map[string]string{"seed": "1"},
		OutputDir:     outputDir,
		Timeout:       5 * time.Second,
		LogFormat:     "text",
		LogLevel:      "error",
	})
	require.NoError(t, err)

	results := decodeResults(t, out)
	require.Len(t, results, 1)
	outputs, ok := results[0]["outputs"].([]any)
	require.True(t, ok)
	require.Len(t, outputs, 1)

	prepared := outputs[0].(map[string]any)
	assert.Equal(t, "out.png", prepared["filename"])
	assert.Equal(t, "image/png", prepared["mimeType"])

	written, err := os.ReadFile(filepath.Join(outputDir, "out.png"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(written))
}
