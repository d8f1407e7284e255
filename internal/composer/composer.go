package composer

import (
	"fmt"
	"sort"

	"github.com/comfygate/comfygate/internal/schema"
	"github.com/comfygate/comfygate/internal/workflow"
)

// BatchSizeParameter is the reserved parameter name whose mapped field
// always receives the job's batch size, regardless of any caller value.
const BatchSizeParameter = "batch_size"

// unsetSentinel is the type behind Unset.
type unsetSentinel struct{}

// Unset marks a parameter the caller deliberately left without a value.
// Compose treats it exactly like an absent map entry: the template's own
// value stays in place. It exists so that an explicit JSON null can still
// be written through a mapping (a nil value is a real value, Unset is not).
var Unset any = unsetSentinel{}

// InvalidMappingError reports a mapping whose path cannot be written into
// the target node, for example because an intermediate field already holds
// a scalar.
type InvalidMappingError struct {
	Param  string
	NodeID string
	Path   string
}

func (e *InvalidMappingError) Error() string {
	return fmt.Sprintf("invalid mapping for parameter %q: path %q is not writable under node %q", e.Param, e.Path, e.NodeID)
}

// Compose returns a deep copy of graph with every mapped, non-unset value
// written at its declared location.
//
// Mappings whose node is absent from the graph are skipped without error;
// this tolerance for dangling node references is deliberate, documented
// behavior. The reserved batch-size parameter always receives batchSize at
// its mapped field, even when values carries an unrelated entry under the
// same name.
func Compose(graph workflow.Document, mappings map[string]schema.Mapping, values map[string]any, batchSize int) (workflow.Document, error) {
	composed, err := graph.DeepCopy()
	if err != nil {
		return nil, err
	}

	// Mappings are applied in sorted parameter order so the result never
	// depends on map iteration order.
	params := make([]string, 0, len(mappings))
	for param := range mappings {
		params = append(params, param)
	}
	sort.Strings(params)

	for _, param := range params {
		mapping := mappings[param]

		node, ok := composed.Node(mapping.NodeID)
		if !ok {
			// Dangling node reference: skip, do not fail.
			continue
		}

		segments, err := mapping.Segments()
		if err != nil {
			return nil, &InvalidMappingError{Param: param, NodeID: mapping.NodeID, Path: mapping.Path}
		}

		if param == BatchSizeParameter && segments[len(segments)-1] == BatchSizeParameter {
			if err := writeAt(node, segments, float64(batchSize)); err != nil {
				return nil, &InvalidMappingError{Param: param, NodeID: mapping.NodeID, Path: mapping.Path}
			}
			continue
		}

		value, ok := values[param]
		if !ok || value == Unset {
			// No caller value: the template's own value stays untouched.
			continue
		}

		if err := writeAt(node, segments, value); err != nil {
			return nil, &InvalidMappingError{Param: param, NodeID: mapping.NodeID, Path: mapping.Path}
		}
	}

	return composed, nil
}

// writeAt writes value at the dot-path segments under record, creating
// intermediate objects as needed.
func writeAt(record map[string]any, segments []string, value any) error {
	for _, segment := range segments[:len(segments)-1] {
		child, exists := record[segment]
		if !exists {
			next := make(map[string]any)
			record[segment] = next
			record = next
			continue
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q is not an object", segment)
		}
		record = childMap
	}
	record[segments[len(segments)-1]] = value
	return nil
}
