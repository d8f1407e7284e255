package workflow

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Document is a graph document: node identifier -> node record. A node
// record is decoded JSON, conventionally `{"inputs": {...}, "class_type": ...}`.
type Document map[string]any

// ParseDocument decodes raw JSON into a Document. The top level must be a
// JSON object; anything else is a malformed graph document.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("graph document is not a JSON object: %w", err)
	}
	return doc, nil
}

// Encode serializes the document. Map keys are emitted in sorted order, so
// two structurally equal documents always encode to identical bytes.
func (d Document) Encode() ([]byte, error) {
	out, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph document: %w", err)
	}
	return out, nil
}

// DeepCopy returns a structurally independent copy of the document. Mutating
// the copy never touches the original, which is what keeps loaded templates
// immutable for the process lifetime.
func (d Document) DeepCopy() (Document, error) {
	raw, err := d.Encode()
	if err != nil {
		return nil, err
	}
	return ParseDocument(raw)
}

// Node returns the record for the given node identifier as an object, or
// false when the node is absent or not an object.
func (d Document) Node(id string) (map[string]any, bool) {
	record, ok := d[id].(map[string]any)
	return record, ok
}
