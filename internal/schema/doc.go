// Package schema defines the parameter schema document that accompanies
// each workflow template, and the decoding of that document from HCL.
//
// A schema document declares the parameters a caller may supply when
// composing a template, as an ordered list of `parameter` blocks:
//
//	parameter "seed" {
//	  type    = number
//	  default = 0
//
//	  mapping {
//	    node_id = "3"
//	    path    = "inputs.seed"
//	  }
//	}
//
// By defining a typed contract per parameter, the system can validate and
// coerce caller-supplied values before they are ever written into a graph,
// apply declared defaults for values the caller omitted, and render the
// parameter list for discovery tooling. A parameter without a mapping block
// is legal: it is inert and never touches the graph.
package schema
