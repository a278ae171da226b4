// Package capability composes named behavior sets onto individual
// instances. Composition never touches the shared type: two instances
// built from the same target may carry different capability lists.
// Method resolution checks the attached list, later attachments first,
// before falling back to the base target's methods.
package capability

import (
	"sync"

	"github.com/xraph/strand/pkg/errors"
)

// Method is a capability-provided method implementation
type Method func(recv interface{}, args []interface{}) (interface{}, error)

// Capability is a named set of methods composable onto an instance
type Capability struct {
	Name    string
	Methods map[string]Method
}

// Holder is implemented by instances that accept capability
// composition, typically by embedding Mixin.
type Holder interface {
	AttachCapability(c Capability)
	// ResolveMethod returns the method provided by the attached
	// capabilities, later attachments winning over earlier ones.
	ResolveMethod(name string) (Method, bool)
}

// Mixin is an embeddable Holder implementation
type Mixin struct {
	mu       sync.RWMutex
	attached []Capability
}

// AttachCapability appends a capability to this instance's list
func (m *Mixin) AttachCapability(c Capability) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = append(m.attached, c)
}

// ResolveMethod scans attached capabilities, most recent first
func (m *Mixin) ResolveMethod(name string) (Method, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.attached) - 1; i >= 0; i-- {
		if method, ok := m.attached[i].Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

// Capabilities returns the attached capability names in order
func (m *Mixin) Capabilities() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.attached))
	for i, c := range m.attached {
		names[i] = c.Name
	}
	return names
}

// Registry holds the capability sets a document may compose via $with
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability
}

// NewRegistry creates an empty capability registry
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register adds a capability set. Duplicate names fail.
func (r *Registry) Register(c Capability) error {
	if c.Name == "" {
		return errors.ErrDirectiveConflict("capability name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[c.Name]; exists {
		return errors.ErrTargetExists(c.Name)
	}
	r.caps[c.Name] = c
	return nil
}

// MustRegister adds a capability set and panics on failure
func (r *Registry) MustRegister(c Capability) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Lookup returns the capability registered under name
func (r *Registry) Lookup(name string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, exists := r.caps[name]
	if !exists {
		return Capability{}, errors.ErrUnknownTarget(name)
	}
	return c, nil
}
