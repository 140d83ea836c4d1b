package batch

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
)

// decodeNode converts a YAML node into the same shape ParseJSON decodes
// into. Scalars other than null are kept as their literal source text.
func decodeNode(node ast.Node) (any, error) {
	switch n := node.(type) {
	case nil, *ast.NullNode:
		return nil, nil

	case *ast.StringNode:
		return n.Value, nil

	case *ast.LiteralNode:
		return n.Value.Value, nil

	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		return n.GetToken().Value, nil

	case *ast.TagNode:
		return decodeNode(n.Value)

	case *ast.AnchorNode:
		return decodeNode(n.Value)

	case *ast.SequenceNode:
		list := make([]any, len(n.Values))
		for i, value := range n.Values {
			v, err := decodeNode(value)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil

	case *ast.MappingValueNode:
		m := map[string]any{}
		if err := decodeMappingValue(m, n); err != nil {
			return nil, err
		}
		return m, nil

	case *ast.MappingNode:
		m := make(map[string]any, len(n.Values))
		for _, value := range n.Values {
			if err := decodeMappingValue(m, value); err != nil {
				return nil, err
			}
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported YAML node at %s: %s", n.GetPath(), n.Type())
	}
}

func decodeMappingValue(m map[string]any, n *ast.MappingValueNode) error {
	key, err := decodeNode(n.Key)
	if err != nil {
		return err
	}
	name, ok := key.(string)
	if !ok {
		return fmt.Errorf("unsupported mapping key at %s: %T", n.GetPath(), key)
	}
	if _, dup := m[name]; dup {
		return fmt.Errorf("duplicate key %q at %s", name, n.GetPath())
	}

	v, err := decodeNode(n.Value)
	if err != nil {
		return err
	}
	m[name] = v
	return nil
}
