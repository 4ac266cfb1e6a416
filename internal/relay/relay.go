// Package relay forwards composition and call events to a socket.io
// server so an external dashboard can follow what composed types do.
package relay

import (
	"github.com/vk/amalgam/internal/composer"
)

// Event names emitted by the bundle.
const (
	EventComposed = "type:composed"
	EventCalled   = "method:called"
	EventFailed   = "method:failed"
)

// Emitter sends one named event.
type Emitter interface {
	Emit(event string, payload map[string]any)
}

// Bundle returns a plugin bundle that emits an event for every assembled
// type, completed call and failure. It never alters what it observes.
func Bundle(e Emitter) composer.Bundle {
	return composer.Bundle{
		Name: "relay",
		AfterAssembly: func(t *composer.Type) *composer.Type {
			e.Emit(EventComposed, map[string]any{
				"type":       t.Name(),
				"methods":    t.Methods(),
				"properties": t.Properties(),
			})
			return t
		},
		AfterCall: func(method string, result any) any {
			e.Emit(EventCalled, map[string]any{"method": method, "result": result})
			return result
		},
		OnError: func(err error) {
			e.Emit(EventFailed, map[string]any{"error": err.Error()})
		},
	}
}
