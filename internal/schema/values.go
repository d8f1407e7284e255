package schema

import (
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Coerce validates a caller-supplied value against the declared type and
// returns it as a plain Go value suitable for writing into a graph
// document. A "number" parameter fed the string "42" comes back as a
// number; fed "forty-two" it is an error, never a silent string write.
func (def ParameterDefinition) Coerce(raw any) (any, error) {
	val, err := goToCty(raw)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", def.Name, err)
	}

	converted, err := convert.Convert(val, def.Type)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: value %v is not a valid %s: %w",
			def.Name, raw, def.Type.FriendlyName(), err)
	}

	if len(def.Options) > 0 {
		choice := converted.AsString()
		if !slices.Contains(def.Options, choice) {
			return nil, fmt.Errorf("parameter %q: %q is not one of %v", def.Name, choice, def.Options)
		}
	}

	return ctyToGo(converted)
}

// DefaultValue returns the declared default as a plain Go value. The second
// return is false when the parameter declares no default.
func (def ParameterDefinition) DefaultValue() (any, bool) {
	if def.Default == nil {
		return nil, false
	}
	out, err := ctyToGo(*def.Default)
	if err != nil {
		// Defaults are validated against the declared type at decode time,
		// so they always convert.
		return nil, false
	}
	return out, true
}

// ctyToGo converts a cty.Value to a plain Go value.
func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// goToCty converts a plain Go value to a cty.Value.
func goToCty(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	switch v := data.(type) {
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case map[string]any:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value)
		for key, val := range v {
			converted, err := goToCty(val)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = converted
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(v))
		for _, val := range v {
			converted, err := goToCty(val)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, converted)
		}
		return cty.TupleVal(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", data)
	}
}
