package dependency

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strconv"
	"sync"
)

// Token identifies a registered dependency.
type Token string

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("dependency: not found")

// NotFoundError is returned when a token has no registration.
type NotFoundError struct{ Token Token }

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	// Example: dependency: "logger" not found
	return "dependency: " + strconv.Quote(string(e.Token)) + " not found"
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Rule describes how a token is turned into a value. Rules are built with
// Value, Type, Constructor or Factory.
type Rule struct {
	kind  string
	value any
	typ   reflect.Type
	ctor  func() any
	fn    func(deps ...any) (any, error)
	deps  []Token
}

// Value registers v as-is. Lookups return v itself, never a copy.
func Value(v any) Rule { return Rule{kind: "value", value: v} }

// Type registers a fresh *T for the given type, allocated with reflect.New.
func Type(t reflect.Type) Rule { return Rule{kind: "type", typ: t} }

// Constructor registers the value returned by ctor.
func Constructor(ctor func() any) Rule { return Rule{kind: "constructor", ctor: ctor} }

// Factory registers the value fn returns when called with the resolved
// values of deps, in order.
func Factory(fn func(deps ...any) (any, error), deps ...Token) Rule {
	return Rule{kind: "factory", fn: fn, deps: deps}
}

// Registry maps tokens to resolved values.
type Registry struct {
	mu    sync.RWMutex
	items map[Token]any
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{items: make(map[Token]any)}
}

// Register resolves rule immediately and stores the result under token,
// replacing any previous registration.
func (r *Registry) Register(token Token, rule Rule) error {
	val, err := r.resolve(token, rule)
	if err != nil {
		return err
	}

	r.mu.Lock()
	_, replaced := r.items[token]
	r.items[token] = val
	r.mu.Unlock()

	slog.Debug("Registered dependency.", "token", token, "rule", rule.kind, "replaced", replaced)
	return nil
}

func (r *Registry) resolve(token Token, rule Rule) (any, error) {
	switch rule.kind {
	case "value":
		return rule.value, nil
	case "type":
		if rule.typ == nil {
			return nil, fmt.Errorf("dependency %q: nil type", token)
		}
		return reflect.New(rule.typ).Interface(), nil
	case "constructor":
		if rule.ctor == nil {
			return nil, fmt.Errorf("dependency %q: nil constructor", token)
		}
		return rule.ctor(), nil
	case "factory":
		if rule.fn == nil {
			return nil, fmt.Errorf("dependency %q: nil factory", token)
		}
		args := make([]any, 0, len(rule.deps))
		for _, dep := range rule.deps {
			v, err := r.Get(dep)
			if err != nil {
				return nil, fmt.Errorf("dependency %q: %w", token, err)
			}
			args = append(args, v)
		}
		v, err := rule.fn(args...)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: factory failed: %w", token, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("dependency %q: empty rule", token)
	}
}

// Get returns the value registered under token.
func (r *Registry) Get(token Token) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[token]
	if !ok {
		return nil, &NotFoundError{Token: token}
	}
	return v, nil
}

// Has reports whether token is registered.
func (r *Registry) Has(token Token) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[token]
	return ok
}

// MustGet returns the value or panics with a *NotFoundError.
// Useful in examples/tests where missing tokens should fail fast.
func (r *Registry) MustGet(token Token) any {
	v, err := r.Get(token)
	if err != nil {
		panic(err)
	}
	return v
}

// Tokens returns the registered tokens in sorted order.
func (r *Registry) Tokens() []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Token, 0, len(r.items))
	for t := range r.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
