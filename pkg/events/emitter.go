// Package events provides the in-process event surface the container's
// $on decoration binds against. Instances that want event bindings
// embed SyncEmitter (or implement Emitter themselves); handlers run
// synchronously in registration order when the instance emits.
package events

import "sync"

// Handler is a callback invoked with the emitted payload
type Handler func(payload interface{})

// Emitter is implemented by instances that accept event bindings
type Emitter interface {
	// On registers a handler for a named event. Registration never
	// invokes the handler.
	On(event string, handler Handler)
	// Emit invokes the handlers registered for event, in order
	Emit(event string, payload interface{})
}

// SyncEmitter is an embeddable synchronous Emitter implementation
type SyncEmitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// On registers a handler for event
func (e *SyncEmitter) On(event string, handler Handler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = make(map[string][]Handler)
	}
	e.handlers[event] = append(e.handlers[event], handler)
}

// Emit invokes the handlers for event in registration order
func (e *SyncEmitter) Emit(event string, payload interface{}) {
	e.mu.RLock()
	registered := e.handlers[event]
	handlers := make([]Handler, len(registered))
	copy(handlers, registered)
	e.mu.RUnlock()

	for _, handler := range handlers {
		handler(payload)
	}
}

// HandlerCount returns the number of handlers bound to event
func (e *SyncEmitter) HandlerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[event])
}
