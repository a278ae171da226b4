// Package container implements the declarative service container: it
// owns a loaded document, interprets directive keys to construct
// objects through the target registry, resolves references as shared
// instances, and applies post-construction decoration. Construction of
// a named service happens at most once per container lifetime.
package container

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xraph/strand/pkg/capability"
	"github.com/xraph/strand/pkg/directive"
	"github.com/xraph/strand/pkg/document"
	"github.com/xraph/strand/pkg/errors"
	"github.com/xraph/strand/pkg/logger"
	"github.com/xraph/strand/pkg/registry"
)

// Options configures a container
type Options struct {
	// Name identifies the container in logs
	Name string
	// Registry maps $class names to constructible types
	Registry *registry.Registry
	// Capabilities holds the sets composable via $with
	Capabilities *capability.Registry
	// Logger defaults to a noop logger
	Logger logger.Logger
}

// Container is the public facade over document, cache, and builder
type Container struct {
	id       string
	name     string
	doc      *document.Document
	registry *registry.Registry
	caps     *capability.Registry
	log      logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// entry tracks one named service's construction. The goroutine that
// claims the entry builds the instance and closes done; other callers
// block on done and observe the same result.
type entry struct {
	done     chan struct{}
	instance interface{}
	err      error
}

// New creates a container over a loaded document. The document root
// must be a mapping of service names. Reference cycles between named
// specifications are rejected here, before any constructor can run.
func New(doc *document.Document, opts Options) (*Container, error) {
	if doc == nil {
		return nil, errors.ErrParse("container requires a document", nil)
	}
	if !doc.Root().IsMapping() {
		return nil, errors.ErrParse("document root must be a mapping of service names", nil)
	}

	if cycle := Analyze(doc).Cycle(); cycle != nil {
		return nil, errors.ErrCyclicDependency(cycle)
	}

	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}
	caps := opts.Capabilities
	if caps == nil {
		caps = capability.NewRegistry()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}
	name := opts.Name
	if name == "" {
		name = "strand"
	}

	c := &Container{
		id:       uuid.NewString(),
		name:     name,
		doc:      doc,
		registry: reg,
		caps:     caps,
		log:      log.Named(name),
		entries:  make(map[string]*entry),
	}

	c.log.Debug("container created",
		logger.String("container_id", c.id),
		logger.Int("declared_services", doc.Root().Len()),
	)
	return c, nil
}

// Get returns the service instance for name, constructing it on first
// request and returning the cached instance afterwards. Any failure in
// nested resolution aborts the whole call; nothing partial is cached.
func (c *Container) Get(name string) (interface{}, error) {
	start := time.Now()
	instance, err := c.resolveNamed(name, newResolution())
	if err != nil {
		c.log.Error("get failed",
			logger.String("service", name),
			logger.Error(err),
		)
		return nil, err
	}
	c.log.Debug("get served",
		logger.String("service", name),
		logger.Duration("elapsed", time.Since(start)),
	)
	return instance, nil
}

// MustGet returns the service instance for name and panics on error
func (c *Container) MustGet(name string) interface{} {
	instance, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return instance
}

// Has reports whether name is declared in the document
func (c *Container) Has(name string) bool {
	return c.doc.Root().Has(name)
}

// Names returns the declared service names in document order
func (c *Container) Names() []string {
	pairs := c.doc.Root().Pairs()
	names := make([]string, len(pairs))
	for i, pair := range pairs {
		names[i] = pair.Key
	}
	return names
}

// Cached reports whether name already has a built instance
func (c *Container) Cached(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok {
		return false
	}
	select {
	case <-e.done:
		return e.err == nil
	default:
		return false
	}
}

// ID returns the container's unique identifier
func (c *Container) ID() string {
	return c.id
}

// Invoke builds (or fetches) the named service and dispatches method on
// it, checking attached capabilities before the base target's methods.
func (c *Container) Invoke(name, method string, args []interface{}) (interface{}, error) {
	instance, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	call, err := c.methodOn(instance, c.classOf(name), method)
	if err != nil {
		return nil, err
	}
	return call(args)
}

// claim returns the entry for name and whether this caller owns its
// construction. Non-owners wait on entry.done.
func (c *Container) claim(name string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[name]; ok {
		return e, false
	}
	e := &entry{done: make(chan struct{})}
	c.entries[name] = e
	return e, true
}

// release publishes the construction result. Failed constructions are
// removed so the cache only ever accumulates successful instances.
func (c *Container) release(name string, e *entry, instance interface{}, err error) {
	if err != nil {
		c.mu.Lock()
		delete(c.entries, name)
		c.mu.Unlock()
		e.err = err
		close(e.done)
		return
	}
	e.instance = instance
	close(e.done)
}

// classOf returns the $class of the named specification, chasing
// top-level reference aliases. Empty when the name is absent or plain.
func (c *Container) classOf(name string) string {
	root := c.doc.Root()
	node, ok := root.Lookup(name)
	for hops := 0; ok && hops <= root.Len(); hops++ {
		if directive.Classify(node) != directive.KindReference {
			return specClass(node)
		}
		ref, err := directive.AsReference(node)
		if err != nil || len(ref.Path) > 0 {
			return ""
		}
		node, ok = root.Lookup(ref.Target)
	}
	return ""
}
