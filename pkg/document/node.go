package document

// Kind identifies the structural kind of a node
type Kind int

const (
	// KindScalar is a string, number, bool, or null leaf
	KindScalar Kind = iota
	// KindMapping is an ordered key/value collection
	KindMapping
	// KindSequence is an ordered list
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Pair is one key/value entry of a mapping node
type Pair struct {
	Key   string
	Value *Node
}

// Node is one node of a loaded document tree. Nodes are immutable once
// the document is loaded; accessors return copies of internal slices.
type Node struct {
	kind   Kind
	scalar interface{}
	pairs  []Pair
	items  []*Node
	line   int
	column int
}

// NewScalar creates a standalone scalar node. The value must be a
// string, int64, float64, bool, or nil.
func NewScalar(value interface{}) *Node {
	return &Node{kind: KindScalar, scalar: value}
}

// NewMapping creates a standalone mapping node from ordered pairs
func NewMapping(pairs ...Pair) *Node {
	return &Node{kind: KindMapping, pairs: pairs}
}

// NewSequence creates a standalone sequence node
func NewSequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// Kind returns the structural kind of the node
func (n *Node) Kind() Kind {
	return n.kind
}

// IsMapping reports whether the node is a mapping
func (n *Node) IsMapping() bool {
	return n.kind == KindMapping
}

// IsSequence reports whether the node is a sequence
func (n *Node) IsSequence() bool {
	return n.kind == KindSequence
}

// IsScalar reports whether the node is a scalar
func (n *Node) IsScalar() bool {
	return n.kind == KindScalar
}

// Line returns the source line of the node, 0 for synthesized nodes
func (n *Node) Line() int {
	return n.line
}

// Column returns the source column of the node, 0 for synthesized nodes
func (n *Node) Column() int {
	return n.column
}

// Scalar returns the scalar value (string, int64, float64, bool, or nil)
func (n *Node) Scalar() interface{} {
	return n.scalar
}

// AsString returns the scalar as a string when it is one
func (n *Node) AsString() (string, bool) {
	if n.kind != KindScalar {
		return "", false
	}
	s, ok := n.scalar.(string)
	return s, ok
}

// AsInt returns the scalar as an int64 when it is one
func (n *Node) AsInt() (int64, bool) {
	if n.kind != KindScalar {
		return 0, false
	}
	i, ok := n.scalar.(int64)
	return i, ok
}

// AsBool returns the scalar as a bool when it is one
func (n *Node) AsBool() (bool, bool) {
	if n.kind != KindScalar {
		return false, false
	}
	b, ok := n.scalar.(bool)
	return b, ok
}

// Pairs returns the mapping entries in document order
func (n *Node) Pairs() []Pair {
	if n.kind != KindMapping {
		return nil
	}
	pairs := make([]Pair, len(n.pairs))
	copy(pairs, n.pairs)
	return pairs
}

// Items returns the sequence entries in document order
func (n *Node) Items() []*Node {
	if n.kind != KindSequence {
		return nil
	}
	items := make([]*Node, len(n.items))
	copy(items, n.items)
	return items
}

// Len returns the number of entries of a mapping or sequence
func (n *Node) Len() int {
	switch n.kind {
	case KindMapping:
		return len(n.pairs)
	case KindSequence:
		return len(n.items)
	default:
		return 0
	}
}

// Lookup returns the mapping value for key
func (n *Node) Lookup(key string) (*Node, bool) {
	if n.kind != KindMapping {
		return nil, false
	}
	for _, pair := range n.pairs {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return nil, false
}

// Has reports whether the mapping contains key
func (n *Node) Has(key string) bool {
	_, ok := n.Lookup(key)
	return ok
}
