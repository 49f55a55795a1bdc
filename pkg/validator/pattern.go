package validator

import "github.com/hlvm-dev/hql/pkg/ir"

// boundName is one identifier a pattern binds, with the position to
// attribute a duplicate-declaration or TDZ error to.
type boundName struct {
	name string
	node ir.Node
}

// flattenPattern walks a binding target — Identifier, ArrayPattern,
// ObjectPattern, RestElement, or AssignmentPattern — down to every name
// it binds (spec §4.8: "patterns are flattened to all bound identifier
// names (array/object/rest/assignment)").
func flattenPattern(n ir.Node) []boundName {
	switch v := n.(type) {
	case *ir.Identifier:
		return []boundName{{name: v.Name, node: v}}
	case *ir.ArrayPattern:
		var out []boundName
		for _, el := range v.Elements {
			if el == nil {
				continue
			}
			out = append(out, flattenPattern(el)...)
		}
		return out
	case *ir.ObjectPattern:
		var out []boundName
		for _, p := range v.Properties {
			out = append(out, flattenPattern(p.Value)...)
		}
		return out
	case *ir.RestElement:
		return flattenPattern(v.Argument)
	case *ir.AssignmentPattern:
		return flattenPattern(v.Left)
	default:
		return nil
	}
}

func flattenPatterns(nodes []ir.Node) []boundName {
	var out []boundName
	for _, n := range nodes {
		out = append(out, flattenPattern(n)...)
	}
	return out
}
