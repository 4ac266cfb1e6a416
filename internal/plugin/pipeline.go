// Package plugin keeps an ordered list of hook bundles and folds values
// through them.
//
// The package is agnostic of what a bundle looks like: callers pick the
// hook they care about from each bundle with a small selector function. A
// fold is a plain left fold in registration order; bundles that do not
// define the selected hook leave the accumulator untouched.
package plugin

import "sync"

// Pipeline is an append-only, ordered list of bundles.
type Pipeline[B any] struct {
	mu      sync.RWMutex
	bundles []B
}

// New creates an empty Pipeline.
func New[B any]() *Pipeline[B] {
	return &Pipeline[B]{}
}

// Register appends b. Bundles cannot be removed.
func (p *Pipeline[B]) Register(b B) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bundles = append(p.bundles, b)
}

// Len returns the number of registered bundles.
func (p *Pipeline[B]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.bundles)
}

// Bundles returns a snapshot of the registered bundles in order.
func (p *Pipeline[B]) Bundles() []B {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]B, len(p.bundles))
	copy(out, p.bundles)
	return out
}

// Fold threads init through the hook pick selects from every bundle, in
// registration order. pick returns nil for bundles without the hook.
// With no bundles, Fold returns init unchanged.
func Fold[B, T any](p *Pipeline[B], init T, pick func(B) func(T) T) T {
	acc := init
	for _, b := range p.Bundles() {
		if hook := pick(b); hook != nil {
			acc = hook(acc)
		}
	}
	return acc
}

// Each calls visit for every bundle in registration order. It is used for
// observational hooks that produce no value.
func Each[B any](p *Pipeline[B], visit func(B)) {
	for _, b := range p.Bundles() {
		visit(b)
	}
}
