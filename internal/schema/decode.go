package schema

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/comfygate/comfygate/internal/ctxlog"
)

// documentSchema is the HCL schema for the top level of a parameter schema
// document.
var documentSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "parameter", LabelNames: []string{"name"}},
	},
}

// parameterBodySchema is the HCL schema for the body of a `parameter` block.
// `type` is required, but we check for its existence manually to provide a
// better error message.
var parameterBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "description"},
		{Name: "default"},
		{Name: "options"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "mapping"},
	},
}

// mappingBody mirrors the `mapping` block.
type mappingBody struct {
	NodeID string `hcl:"node_id"`
	Path   string `hcl:"path"`
}

// DecodeDocument parses an HCL parameter schema document. Parameter order in
// the file is preserved; duplicate parameter names, unknown type keywords,
// defaults that do not conform to the declared type, and malformed mapping
// paths are all rejected here, at load time.
func DecodeDocument(ctx context.Context, filename string, src []byte) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	content, contentDiags := file.Body.Content(documentSchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	doc := &Document{}
	seen := make(map[string]bool)

	for _, block := range content.Blocks {
		// The schema guarantees us one label.
		name := block.Labels[0]

		if seen[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate parameter definition",
				Detail:   fmt.Sprintf("A parameter named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = true

		def, defDiags := decodeParameter(name, block)
		diags = append(diags, defDiags...)
		if defDiags.HasErrors() {
			continue
		}

		doc.Parameters = append(doc.Parameters, def)
	}

	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid parameter schema %s: %w", filename, diags)
	}

	logger.Debug("Parameter schema decoded.", "file", filename, "parameters", len(doc.Parameters))
	return doc, nil
}

// decodeParameter decodes the body of a single `parameter` block into a
// ParameterDefinition.
func decodeParameter(name string, block *hcl.Block) (ParameterDefinition, hcl.Diagnostics) {
	def := ParameterDefinition{Name: name}

	body, diags := block.Body.Content(parameterBodySchema)
	if diags.HasErrors() {
		return def, diags
	}

	// Manually check for the required 'type' attribute for a better error.
	typeAttr, exists := body.Attributes["type"]
	if !exists {
		missingItemRange := block.Body.MissingItemRange()
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing 'type' attribute",
			Detail:   "The 'type' attribute is required for all parameter blocks.",
			Subject:  &missingItemRange,
		})
		return def, diags
	}

	ctyType, typeDiags := typeKeywordToCtyType(typeAttr.Expr)
	diags = append(diags, typeDiags...)
	if typeDiags.HasErrors() {
		return def, diags
	}
	def.Type = ctyType

	if descAttr, exists := body.Attributes["description"]; exists {
		diags = append(diags, gohcl.DecodeExpression(descAttr.Expr, nil, &def.Description)...)
	}

	if optionsAttr, exists := body.Attributes["options"]; exists {
		diags = append(diags, gohcl.DecodeExpression(optionsAttr.Expr, nil, &def.Options)...)
		if len(def.Options) > 0 && !ctyType.Equals(cty.String) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid 'options' attribute",
				Detail:   fmt.Sprintf("Parameter '%s' declares options but its type is '%s'; enumerations require type string.", name, ctyType.FriendlyName()),
				Subject:  optionsAttr.Expr.Range().Ptr(),
			})
		}
	}

	if defaultAttr, exists := body.Attributes["default"]; exists {
		// A nil eval context is used because defaults must be literal values.
		val, valDiags := defaultAttr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() {
			converted, err := convert.Convert(val, ctyType)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value type",
					Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its type, '%s'.", name, ctyType.FriendlyName()),
					Subject:  defaultAttr.Expr.Range().Ptr(),
				})
			} else {
				def.Default = &converted
			}
		}
	}

	for _, inner := range body.Blocks {
		if def.Mapping != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate mapping block",
				Detail:   fmt.Sprintf("Parameter '%s' may declare at most one mapping.", name),
				Subject:  &inner.DefRange,
			})
			continue
		}

		var mb mappingBody
		bodyDiags := gohcl.DecodeBody(inner.Body, nil, &mb)
		diags = append(diags, bodyDiags...)
		if bodyDiags.HasErrors() {
			continue
		}

		mapping := Mapping{NodeID: mb.NodeID, Path: mb.Path}
		if _, err := mapping.Segments(); err != nil || mb.NodeID == "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid mapping",
				Detail:   fmt.Sprintf("Parameter '%s' has a mapping with an empty node_id or a malformed path '%s'.", name, mb.Path),
				Subject:  &inner.DefRange,
			})
			continue
		}
		def.Mapping = &mapping
	}

	return def, diags
}

// typeKeywordToCtyType converts an HCL expression that represents a type
// keyword (e.g. `string`) into its corresponding cty.Type.
func typeKeywordToCtyType(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	// We expect a simple identifier like `string`, not a complex expression.
	// AbsTraversalForExpr is the right tool to validate this structure.
	traversal, hclDiags := hcl.AbsTraversalForExpr(expr)
	if hclDiags.HasErrors() || len(traversal) != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "The 'type' attribute must be a simple type keyword like 'string', 'number', or 'bool', not a complex expression.",
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}

	switch keyword := traversal.RootName(); keyword {
	case "string":
		return cty.String, diags
	case "number":
		return cty.Number, diags
	case "bool", "boolean":
		return cty.Bool, diags
	case "any":
		return cty.DynamicPseudoType, diags
	default:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown type keyword",
			Detail:   fmt.Sprintf("'%s' is not a supported parameter type.", keyword),
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}
}
