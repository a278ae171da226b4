package container

import (
	"github.com/xraph/strand/pkg/directive"
	"github.com/xraph/strand/pkg/document"
)

// Graph is the static reference graph of a document's named services.
// It is built without a registry and without running any constructor,
// which is what lets New reject cycles before construction and lets
// tooling inspect documents standalone.
type Graph struct {
	names  []string
	edges  map[string][]string
	issues map[string][]string
}

// Analyze walks the document's named entries and collects reference
// edges and directive issues. Analysis is lenient: a malformed
// directive becomes an issue here and a hard error at Get time.
func Analyze(doc *document.Document) *Graph {
	g := &Graph{
		edges:  make(map[string][]string),
		issues: make(map[string][]string),
	}
	root := doc.Root()
	if !root.IsMapping() {
		return g
	}
	for _, pair := range root.Pairs() {
		name := pair.Key
		g.names = append(g.names, name)
		g.edges[name] = nil
		collect(pair.Value,
			func(target string) { g.edges[name] = append(g.edges[name], target) },
			func(issue string) { g.issues[name] = append(g.issues[name], issue) },
		)
	}
	return g
}

// Names returns the declared service names in document order
func (g *Graph) Names() []string {
	names := make([]string, len(g.names))
	copy(names, g.names)
	return names
}

// Edges returns the reference targets of name, in resolution order
func (g *Graph) Edges(name string) []string {
	edges := make([]string, len(g.edges[name]))
	copy(edges, g.edges[name])
	return edges
}

// Issues returns directive problems found per service name
func (g *Graph) Issues() map[string][]string {
	issues := make(map[string][]string, len(g.issues))
	for name, list := range g.issues {
		issues[name] = append([]string{}, list...)
	}
	return issues
}

// Unknown returns, per service, references to names the document does
// not declare.
func (g *Graph) Unknown() map[string][]string {
	declared := make(map[string]bool, len(g.names))
	for _, name := range g.names {
		declared[name] = true
	}
	unknown := make(map[string][]string)
	for _, name := range g.names {
		for _, target := range g.edges[name] {
			if !declared[target] {
				unknown[name] = append(unknown[name], target)
			}
		}
	}
	return unknown
}

// Cycle returns one dependency cycle as a path ending where it starts,
// or nil when the graph is acyclic. Edges to undeclared names are not
// cycles; they fail as not-found at Get time.
func (g *Graph) Cycle() []string {
	declared := make(map[string]bool, len(g.names))
	for _, name := range g.names {
		declared[name] = true
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.names))
	var path []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = visiting
		path = append(path, name)
		for _, target := range g.edges[name] {
			if !declared[target] {
				continue
			}
			switch state[target] {
			case visiting:
				start := 0
				for i, n := range path {
					if n == target {
						start = i
						break
					}
				}
				cycle = append(append([]string{}, path[start:]...), target)
				return true
			case unvisited:
				if visit(target) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return false
	}

	for _, name := range g.names {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return nil
}

// collect walks one service's node, reporting reference targets and
// directive issues. Traversal mirrors the resolver: spec arguments,
// binding targets, sequence items, and plain mapping values all count;
// a reference node itself is never recursed into.
func collect(node *document.Node, addRef func(string), addIssue func(string)) {
	switch directive.Classify(node) {
	case directive.KindReference:
		ref, err := directive.AsReference(node)
		if err != nil {
			addIssue(err.Error())
			return
		}
		addRef(ref.Target)

	case directive.KindSpec:
		spec, err := directive.AsSpec(node)
		if err != nil {
			addIssue(err.Error())
			for _, pair := range node.Pairs() {
				collect(pair.Value, addRef, addIssue)
			}
			return
		}
		for _, argNode := range spec.Args {
			collect(argNode, addRef, addIssue)
		}
		for _, pair := range spec.Named {
			collect(pair.Value, addRef, addIssue)
		}
		for _, binding := range spec.On {
			collect(binding.Target, addRef, addIssue)
		}

	case directive.KindSequence:
		for _, item := range node.Items() {
			collect(item, addRef, addIssue)
		}

	default:
		if node != nil && node.IsMapping() {
			for _, pair := range node.Pairs() {
				collect(pair.Value, addRef, addIssue)
			}
		}
	}
}
