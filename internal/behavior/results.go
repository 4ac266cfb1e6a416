package behavior

import "sync"

// Receiver is the instance a bound method runs on.
type Receiver interface {
	Results() *Results
}

// Results holds the captured result of the most recent call to each
// method of one instance, plus the settlements still in flight.
type Results struct {
	mu      sync.RWMutex
	slots   map[string]any
	pending sync.WaitGroup
}

// NewResults creates an empty result store.
func NewResults() *Results {
	return &Results{slots: make(map[string]any)}
}

// Get returns the captured result for name.
func (r *Results) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.slots[name]
	return v, ok
}

// Wait blocks until every pending result has settled and been captured.
func (r *Results) Wait() { r.pending.Wait() }

func (r *Results) store(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[name] = v
}
