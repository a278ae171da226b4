// Package document holds the in-memory tree a container is configured
// from. A document is loaded once from YAML (or JSON, which YAML
// subsumes) and is read-only afterwards: mappings keep their key order,
// sequences their element order, and scalars carry native Go values.
// The package is purely structural and knows nothing about directives.
package document

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xraph/strand/pkg/errors"
)

// Document is a loaded configuration tree
type Document struct {
	root *Node
}

// Load parses source bytes into a Document. Malformed input returns a
// parse error; empty input yields an empty mapping root.
func Load(data []byte) (*Document, error) {
	var yn yaml.Node
	if err := yaml.Unmarshal(data, &yn); err != nil {
		return nil, errors.ErrParse("malformed document", err)
	}

	if yn.Kind == 0 || len(yn.Content) == 0 {
		return &Document{root: &Node{kind: KindMapping}}, nil
	}

	root, err := convert(yn.Content[0], map[*yaml.Node]bool{})
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// LoadFile reads and parses the document at path
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrParse("cannot read document file '"+path+"'", err)
	}
	return Load(data)
}

// Root returns the root node of the document
func (d *Document) Root() *Node {
	return d.root
}

// Get resolves a dotted path against the tree. Mapping segments look up
// keys, sequence segments are decimal indexes. Lookup is structural
// only; directive keys receive no special treatment.
func (d *Document) Get(path string) (*Node, bool) {
	node := d.root
	if path == "" {
		return node, true
	}
	for _, segment := range strings.Split(path, ".") {
		switch node.kind {
		case KindMapping:
			next, ok := node.Lookup(segment)
			if !ok {
				return nil, false
			}
			node = next
		case KindSequence:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node.items) {
				return nil, false
			}
			node = node.items[index]
		default:
			return nil, false
		}
	}
	return node, true
}

// convert builds an immutable Node from a decoded yaml.Node. The seen
// set breaks recursive anchor/alias chains, which are invalid input.
func convert(yn *yaml.Node, seen map[*yaml.Node]bool) (*Node, error) {
	switch yn.Kind {
	case yaml.AliasNode:
		if seen[yn.Alias] {
			return nil, errors.ErrParseAt("recursive alias", yn.Line, yn.Column, nil)
		}
		return convert(yn.Alias, seen)

	case yaml.ScalarNode:
		value, err := scalarValue(yn)
		if err != nil {
			return nil, err
		}
		return &Node{kind: KindScalar, scalar: value, line: yn.Line, column: yn.Column}, nil

	case yaml.SequenceNode:
		seen[yn] = true
		defer delete(seen, yn)
		items := make([]*Node, 0, len(yn.Content))
		for _, child := range yn.Content {
			node, err := convert(child, seen)
			if err != nil {
				return nil, err
			}
			items = append(items, node)
		}
		return &Node{kind: KindSequence, items: items, line: yn.Line, column: yn.Column}, nil

	case yaml.MappingNode:
		seen[yn] = true
		defer delete(seen, yn)
		pairs := make([]Pair, 0, len(yn.Content)/2)
		keys := make(map[string]bool, len(yn.Content)/2)
		for i := 0; i+1 < len(yn.Content); i += 2 {
			keyNode := yn.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, errors.ErrParseAt("mapping key must be a scalar", keyNode.Line, keyNode.Column, nil)
			}
			key := keyNode.Value
			if keys[key] {
				return nil, errors.ErrParseAt("duplicate mapping key '"+key+"'", keyNode.Line, keyNode.Column, nil)
			}
			keys[key] = true

			value, err := convert(yn.Content[i+1], seen)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: key, Value: value})
		}
		return &Node{kind: KindMapping, pairs: pairs, line: yn.Line, column: yn.Column}, nil

	default:
		return nil, errors.ErrParseAt("unsupported node kind", yn.Line, yn.Column, nil)
	}
}

// scalarValue decodes a scalar yaml node into a native Go value,
// normalizing integers to int64.
func scalarValue(yn *yaml.Node) (interface{}, error) {
	var value interface{}
	if err := yn.Decode(&value); err != nil {
		return nil, errors.ErrParseAt("invalid scalar", yn.Line, yn.Column, err)
	}
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return value, nil
	}
}
