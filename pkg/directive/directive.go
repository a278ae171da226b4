// Package directive classifies document nodes. A mapping that carries at
// least one reserved $-key is a directive (service specification or
// reference); every other node is plain data and passes through to
// construction unchanged. Classification is purely structural and never
// consults the registry.
package directive

import (
	"strings"

	"github.com/xraph/strand/pkg/document"
	"github.com/xraph/strand/pkg/errors"
)

// Reserved directive keys. The $ sigil separates directives from
// ordinary data keys; a mapping without any of these keys is plain data.
const (
	KeyClass   = "$class"
	KeyMethod  = "$method"
	KeyArgs    = "$args"
	KeyRef     = "$ref"
	KeyPath    = "$path"
	KeyOn      = "$on"
	KeyWith    = "$with"
	KeyHandler = "$handler"
)

var reservedKeys = map[string]bool{
	KeyClass:   true,
	KeyMethod:  true,
	KeyArgs:    true,
	KeyRef:     true,
	KeyPath:    true,
	KeyOn:      true,
	KeyWith:    true,
	KeyHandler: true,
}

// IsReserved reports whether key is a directive key
func IsReserved(key string) bool {
	return reservedKeys[key]
}

// Kind classifies a node for the resolver
type Kind int

const (
	// KindPlain is data with no directive meaning
	KindPlain Kind = iota
	// KindReference substitutes another named service
	KindReference
	// KindSpec instructs the builder to construct an instance
	KindSpec
	// KindSequence is a list whose elements classify individually
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindReference:
		return "reference"
	case KindSpec:
		return "spec"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Classify determines how the resolver must treat a node. A reference
// mapping short-circuits: it is never inspected as a spec.
func Classify(node *document.Node) Kind {
	if node == nil {
		return KindPlain
	}
	switch node.Kind() {
	case document.KindSequence:
		return KindSequence
	case document.KindMapping:
		if node.Has(KeyRef) {
			return KindReference
		}
		for _, pair := range node.Pairs() {
			if reservedKeys[pair.Key] {
				return KindSpec
			}
		}
		return KindPlain
	default:
		return KindPlain
	}
}

// Reference is a parsed $ref directive
type Reference struct {
	// Target is the referenced service name
	Target string
	// Path optionally descends into the target's attributes
	Path []string
}

// AsReference parses a reference mapping. Only $path and $handler may
// accompany $ref; anything else conflicts.
func AsReference(node *document.Node) (*Reference, error) {
	target, ok := node.Lookup(KeyRef)
	if !ok {
		return nil, errors.ErrDirectiveConflict("node is not a reference")
	}
	name, ok := target.AsString()
	if !ok || name == "" {
		return nil, errors.ErrDirectiveConflict("$ref target must be a non-empty string")
	}

	ref := &Reference{Target: name}
	for _, pair := range node.Pairs() {
		switch pair.Key {
		case KeyRef, KeyHandler:
		case KeyPath:
			path, ok := pair.Value.AsString()
			if !ok || path == "" {
				return nil, errors.ErrDirectiveConflict("$path must be a non-empty string")
			}
			ref.Path = strings.Split(path, ".")
		default:
			return nil, errors.ErrDirectiveConflict("reference to '" + name + "' carries extra key '" + pair.Key + "'")
		}
	}
	return ref, nil
}

// Binding is one parsed $on entry: when Event fires on the decorated
// instance, the handler method of the helper described by Target runs.
type Binding struct {
	Event   string
	Handler string
	// Target is the helper node, a reference or inline spec
	Target *document.Node
}

// Spec is the derived service-specification view over a mapping node
type Spec struct {
	// Class is the registered target type name
	Class string
	// Method selects an explicit construction entry point; empty means
	// the conventional named-pairs constructor
	Method string
	// Args are the positional argument nodes, set only with Method
	Args []*document.Node
	// Named are the non-directive keys in document order, used for
	// conventional construction
	Named []document.Pair
	// On holds event bindings applied after construction
	On []Binding
	// With names capability sets composed onto the instance, in order
	With []string
}

// AsSpec parses a service-specification mapping, enforcing the shape
// rules: $args and bare named keys are mutually exclusive, and $method
// only makes sense with $args.
func AsSpec(node *document.Node) (*Spec, error) {
	if Classify(node) != KindSpec {
		return nil, errors.ErrDirectiveConflict("node is not a service specification")
	}

	spec := &Spec{}
	for _, pair := range node.Pairs() {
		switch pair.Key {
		case KeyClass:
			class, ok := pair.Value.AsString()
			if !ok || class == "" {
				return nil, errors.ErrDirectiveConflict("$class must be a non-empty string")
			}
			spec.Class = class

		case KeyMethod:
			method, ok := pair.Value.AsString()
			if !ok || method == "" {
				return nil, errors.ErrDirectiveConflict("$method must be a non-empty string")
			}
			spec.Method = method

		case KeyArgs:
			if !pair.Value.IsSequence() {
				return nil, errors.ErrDirectiveConflict("$args must be a sequence")
			}
			spec.Args = pair.Value.Items()

		case KeyOn:
			bindings, err := parseBindings(pair.Value)
			if err != nil {
				return nil, err
			}
			spec.On = bindings

		case KeyWith:
			names, err := parseWith(pair.Value)
			if err != nil {
				return nil, err
			}
			spec.With = names

		case KeyHandler:
			// Carried by inline binding targets; meaningless for the
			// construction itself.

		case KeyRef, KeyPath:
			return nil, errors.ErrDirectiveConflict("'" + pair.Key + "' is not valid in a service specification")

		default:
			spec.Named = append(spec.Named, pair)
		}
	}

	if spec.Class == "" {
		return nil, errors.ErrDirectiveConflict("service specification requires $class")
	}
	if spec.Args != nil && len(spec.Named) > 0 {
		return nil, errors.ErrDirectiveConflict("$args and named arguments are mutually exclusive")
	}
	if spec.Method != "" && spec.Args == nil {
		return nil, errors.ErrDirectiveConflict("$method requires $args")
	}
	if spec.Method == "" && spec.Args != nil {
		return nil, errors.ErrDirectiveConflict("$args requires $method")
	}
	return spec, nil
}

// parseBindings reads the $on mapping: event name to handler node. The
// handler node names its method with $handler and otherwise describes
// the helper as a reference or inline spec.
func parseBindings(node *document.Node) ([]Binding, error) {
	if !node.IsMapping() {
		return nil, errors.ErrDirectiveConflict("$on must be a mapping of event names")
	}
	bindings := make([]Binding, 0, node.Len())
	for _, pair := range node.Pairs() {
		target := pair.Value
		if !target.IsMapping() {
			return nil, errors.ErrDirectiveConflict("$on binding for '" + pair.Key + "' must be a mapping")
		}
		handlerNode, ok := target.Lookup(KeyHandler)
		if !ok {
			return nil, errors.ErrDirectiveConflict("$on binding for '" + pair.Key + "' requires $handler")
		}
		handler, ok := handlerNode.AsString()
		if !ok || handler == "" {
			return nil, errors.ErrDirectiveConflict("$handler must be a non-empty string")
		}
		bindings = append(bindings, Binding{Event: pair.Key, Handler: handler, Target: target})
	}
	return bindings, nil
}

// parseWith reads the $with capability list
func parseWith(node *document.Node) ([]string, error) {
	if !node.IsSequence() {
		return nil, errors.ErrDirectiveConflict("$with must be a sequence of capability names")
	}
	names := make([]string, 0, node.Len())
	for _, item := range node.Items() {
		name, ok := item.AsString()
		if !ok || name == "" {
			return nil, errors.ErrDirectiveConflict("$with entries must be non-empty strings")
		}
		names = append(names, name)
	}
	return names, nil
}
