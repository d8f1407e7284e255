// Package normalizer converts the gateway's heterogeneous result payloads
// into the flat output items the host consumes. Normalization never fails
// as a whole: a record with an unknown or missing format becomes an
// item-level error entry, so a batch of N records always yields N items.
package normalizer

import (
	"encoding/base64"
	"fmt"

	"github.com/comfygate/comfygate/internal/gateway"
)

// defaultBinaryMimeType is assumed for binary records that do not name one.
const defaultBinaryMimeType = "image/png"

// BinaryAttachment is decoded binary output, ready for the host's binary
// preparation hook.
type BinaryAttachment struct {
	Data     []byte
	Filename string
	MimeType string
}

// OutputItem is one normalized result. Exactly one of the two shapes is
// populated: structured Fields for text/filePath/error items, or Binary for
// binary items.
type OutputItem struct {
	Fields map[string]any
	Binary *BinaryAttachment
}

// Normalize flattens a result payload into output items, one per record,
// preserving record order.
func Normalize(payload *gateway.Payload) []OutputItem {
	items := make([]OutputItem, 0, len(payload.Records))
	for _, record := range payload.Records {
		items = append(items, normalizeRecord(record))
	}
	return items
}

func normalizeRecord(record gateway.Record) OutputItem {
	switch record.Format {
	case string(gateway.FormatBinary):
		data, err := base64.StdEncoding.DecodeString(record.Data)
		if err != nil {
			return errorItem(fmt.Sprintf("invalid base64 payload: %v", err), record)
		}
		mimeType := record.MimeType
		if mimeType == "" {
			mimeType = defaultBinaryMimeType
		}
		return OutputItem{Binary: &BinaryAttachment{
			Data:     data,
			Filename: record.Filename,
			MimeType: mimeType,
		}}

	case string(gateway.FormatFilePath):
		return OutputItem{Fields: map[string]any{
			"filePath": record.Data,
			"filename": record.Filename,
			"type":     record.Kind,
		}}

	case string(gateway.FormatText):
		return OutputItem{Fields: map[string]any{
			"text": record.Data,
		}}

	default:
		return errorItem("unexpected result format", record)
	}
}

// errorItem surfaces a malformed record as data instead of a failure, with
// the original record attached for debugging.
func errorItem(message string, record gateway.Record) OutputItem {
	return OutputItem{Fields: map[string]any{
		"error":     message,
		"rawResult": record.Raw,
	}}
}
