// Package registry is the seam between the container and the
// surrounding application: it maps target type names from the document
// to constructible Go types. Dispatch is a closed set of function
// values per target; nothing here reflects over types at runtime.
package registry

import (
	"strconv"
	"sync"

	"github.com/xraph/strand/pkg/errors"
)

// Constructor is the conventional named-pairs construction entry point
type Constructor func(args Args) (interface{}, error)

// Factory is an explicit positional construction entry point
type Factory func(args []interface{}) (interface{}, error)

// Method is an instance method made dispatchable by name, used for
// event handlers and capability-style invocation
type Method func(recv interface{}, args []interface{}) (interface{}, error)

// Coercion transforms a resolved argument whose shape does not match
// what construction expects. Returning the value unchanged is valid.
type Coercion func(value interface{}) (interface{}, error)

// Target describes one constructible type
type Target struct {
	// Name is the type name used by $class
	Name string
	// New is the conventional named-pairs constructor
	New Constructor
	// Methods are explicit entry points selectable via $method
	Methods map[string]Factory
	// InstanceMethods are dispatchable by name on built instances
	InstanceMethods map[string]Method
}

// Registry maps target type names to constructible types and holds the
// registered coercion hooks.
type Registry struct {
	mu            sync.RWMutex
	targets       map[string]Target
	coercions     map[string]Coercion
	slotCoercions map[string]map[string]Coercion
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		targets:       make(map[string]Target),
		coercions:     make(map[string]Coercion),
		slotCoercions: make(map[string]map[string]Coercion),
	}
}

// Register adds a target to the registry. Duplicate names fail.
func (r *Registry) Register(target Target) error {
	if target.Name == "" {
		return errors.ErrDirectiveConflict("target name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[target.Name]; exists {
		return errors.ErrTargetExists(target.Name)
	}
	r.targets[target.Name] = target
	return nil
}

// MustRegister adds a target and panics on failure, for package init
// style registration.
func (r *Registry) MustRegister(target Target) {
	if err := r.Register(target); err != nil {
		panic(err)
	}
}

// Lookup returns the target registered under name
func (r *Registry) Lookup(name string) (Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target, exists := r.targets[name]
	if !exists {
		return Target{}, errors.ErrUnknownTarget(name)
	}
	return target, nil
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.targets[name]
	return exists
}

// Names returns all registered target names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	return names
}

// RegisterCoercion installs a hook applied to every argument handed to
// the named target's construction.
func (r *Registry) RegisterCoercion(target string, hook Coercion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coercions[target] = hook
}

// RegisterSlotCoercion installs a hook for one argument slot of the
// named target. Named arguments use the key as slot; positional ones
// use the decimal index.
func (r *Registry) RegisterSlotCoercion(target, slot string, hook Coercion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slotCoercions[target] == nil {
		r.slotCoercions[target] = make(map[string]Coercion)
	}
	r.slotCoercions[target][slot] = hook
}

// Coerce runs the registered hooks for a target/slot over value. The
// slot hook runs before the target-wide hook; with no matching hook the
// value passes through untouched.
func (r *Registry) Coerce(target, slot string, value interface{}) (interface{}, error) {
	r.mu.RLock()
	slotHook := r.slotCoercions[target][slot]
	targetHook := r.coercions[target]
	r.mu.RUnlock()

	var err error
	if slotHook != nil {
		if value, err = slotHook(value); err != nil {
			return nil, errors.ErrConstruction(target, err).WithContext("slot", slot)
		}
	}
	if targetHook != nil {
		if value, err = targetHook(value); err != nil {
			return nil, errors.ErrConstruction(target, err).WithContext("slot", slot)
		}
	}
	return value, nil
}

// PositionalSlot renders a positional index as a slot name
func PositionalSlot(index int) string {
	return strconv.Itoa(index)
}
