package container

import (
	"time"

	"github.com/xraph/strand/pkg/directive"
	"github.com/xraph/strand/pkg/document"
	"github.com/xraph/strand/pkg/errors"
	"github.com/xraph/strand/pkg/logger"
)

// AttributeProvider is implemented by instances whose attributes a
// $path reference may descend into. Traversal is explicit; the
// container never reflects over instance fields.
type AttributeProvider interface {
	Attribute(name string) (interface{}, bool)
}

// resolution is the per-Get depth-first walk state. The active set and
// path belong to one resolution only; the cross-goroutine at-most-once
// guarantee lives in the container's entry map.
type resolution struct {
	active map[string]bool
	path   []string
}

func newResolution() *resolution {
	return &resolution{active: make(map[string]bool)}
}

// resolveNamed returns the instance for a top-level name, building and
// caching it when this call claims the construction.
func (c *Container) resolveNamed(name string, res *resolution) (interface{}, error) {
	node, ok := c.doc.Root().Lookup(name)
	if !ok {
		return nil, errors.ErrNotFound(name)
	}
	if res.active[name] {
		return nil, errors.ErrCyclicDependency(append(append([]string{}, res.path...), name))
	}

	e, owner := c.claim(name)
	if !owner {
		// Another Get is building this name; cycles between named
		// specs were rejected at New, so waiting cannot deadlock.
		<-e.done
		return e.instance, e.err
	}

	res.active[name] = true
	res.path = append(res.path, name)
	start := time.Now()

	instance, err := c.resolveNode(node, res)

	res.path = res.path[:len(res.path)-1]
	delete(res.active, name)
	c.release(name, e, instance, err)

	if err != nil {
		return nil, err
	}
	c.log.Debug("service built",
		logger.String("service", name),
		logger.Duration("build_time", time.Since(start)),
	)
	return instance, nil
}

// resolveNode turns any document node into a live value: references
// become shared instances, specs are built, sequences and plain
// mappings resolve element-wise, scalars pass through.
func (c *Container) resolveNode(node *document.Node, res *resolution) (interface{}, error) {
	switch directive.Classify(node) {
	case directive.KindReference:
		ref, err := directive.AsReference(node)
		if err != nil {
			return nil, err
		}
		return c.resolveReference(ref, res)

	case directive.KindSpec:
		spec, err := directive.AsSpec(node)
		if err != nil {
			return nil, err
		}
		return c.buildSpec(spec, res)

	case directive.KindSequence:
		items := node.Items()
		values := make([]interface{}, 0, len(items))
		for _, item := range items {
			value, err := c.resolveNode(item, res)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		return values, nil

	default:
		return c.resolvePlain(node, res)
	}
}

// resolvePlain passes plain data through. Mapping values still resolve
// element-wise so references nested inside literal structures work, but
// the mapping itself is never misread as a specification.
func (c *Container) resolvePlain(node *document.Node, res *resolution) (interface{}, error) {
	if node == nil {
		return nil, nil
	}
	if node.IsMapping() {
		value := make(map[string]interface{}, node.Len())
		for _, pair := range node.Pairs() {
			resolved, err := c.resolveNode(pair.Value, res)
			if err != nil {
				return nil, err
			}
			value[pair.Key] = resolved
		}
		return value, nil
	}
	return node.Scalar(), nil
}

// resolveReference resolves $ref to the shared named instance and
// applies the optional $path traversal.
func (c *Container) resolveReference(ref *directive.Reference, res *resolution) (interface{}, error) {
	instance, err := c.resolveNamed(ref.Target, res)
	if err != nil {
		return nil, err
	}
	for _, segment := range ref.Path {
		provider, ok := instance.(AttributeProvider)
		if !ok {
			return nil, errors.ErrConstruction(ref.Target,
				errors.New("instance does not expose attributes for $path segment '"+segment+"'"))
		}
		instance, ok = provider.Attribute(segment)
		if !ok {
			return nil, errors.ErrConstruction(ref.Target,
				errors.New("no attribute '"+segment+"' on referenced instance"))
		}
	}
	return instance, nil
}

// specClass extracts $class from a spec mapping without full parsing
func specClass(node *document.Node) string {
	if node == nil || !node.IsMapping() {
		return ""
	}
	classNode, ok := node.Lookup(directive.KeyClass)
	if !ok {
		return ""
	}
	class, _ := classNode.AsString()
	return class
}
