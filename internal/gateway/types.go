package gateway

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/comfygate/comfygate/internal/workflow"
)

// CallbackType selects how the gateway delivers a job's result.
type CallbackType string

const (
	// CallbackWebSocket makes the client await the result on a push channel.
	CallbackWebSocket CallbackType = "websocket"
	// CallbackWebhook makes the gateway POST the result to CallbackURL;
	// the client fires and forgets.
	CallbackWebhook CallbackType = "webhook"
)

// OutputFormat is the result encoding requested from the gateway.
type OutputFormat string

const (
	FormatBinary   OutputFormat = "binary"
	FormatFilePath OutputFormat = "filePath"
	FormatText     OutputFormat = "text"

	// formatMultiple tags the batch envelope on the wire.
	formatMultiple = "multiple"
)

// SubmitRequest is the body of POST /execute.
type SubmitRequest struct {
	ExecutionID  string            `json:"execution_id"`
	CallbackType CallbackType      `json:"callback_type"`
	OutputFormat OutputFormat      `json:"output_format"`
	WorkflowJSON workflow.Document `json:"workflow_json"`
	CallbackURL  string            `json:"callback_url,omitempty"`
}

// submitResponse is the success body of POST /execute.
type submitResponse struct {
	JobID string `json:"job_id"`
}

// Acknowledgment is the lightweight record returned for fire-and-forget
// submissions.
type Acknowledgment struct {
	Status string `json:"status"`
	JobID  string `json:"jobId"`
}

// Record is one result record from the gateway. Raw always holds the
// original decoded record so downstream consumers can surface records with
// formats this client does not recognize.
type Record struct {
	Format   string
	Data     string
	Filename string
	MimeType string
	Kind     string
	Raw      map[string]any
}

// Payload is a parsed terminal result: one record, or a batch of them in
// delivery order.
type Payload struct {
	Batch   bool
	Records []Record
}

// ParsePayload decodes a terminal result message. A single record arrives
// as a bare object; a batch arrives as {"format": "multiple", "results":
// [...]}.
func ParsePayload(raw []byte) (*Payload, error) {
	var top map[string]any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("result payload is not a JSON object: %w", err)
	}

	if format, _ := top["format"].(string); format == formatMultiple {
		rawResults, ok := top["results"].([]any)
		if !ok {
			return nil, fmt.Errorf("batch result payload has no results array")
		}
		payload := &Payload{Batch: true}
		for i, rawRecord := range rawResults {
			record, ok := rawRecord.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("batch result %d is not an object", i)
			}
			payload.Records = append(payload.Records, decodeRecord(record))
		}
		return payload, nil
	}

	return &Payload{Records: []Record{decodeRecord(top)}}, nil
}

// decodeRecord extracts the known string fields of a record, keeping the
// original object alongside.
func decodeRecord(raw map[string]any) Record {
	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	return Record{
		Format:   str("format"),
		Data:     str("data"),
		Filename: str("filename"),
		MimeType: str("mime_type"),
		Kind:     str("type"),
		Raw:      raw,
	}
}
