// Package property installs get/set accessor pairs on composed instances.
// Each accessor owns a private backing value; writes are checked against
// the contract registered under the property's name before they land.
package property

import (
	"sync"

	"github.com/vk/amalgam/internal/contract"
)

// Accessor is one property's get/set pair.
type Accessor struct {
	name      string
	contracts contract.Set

	mu    sync.RWMutex
	value any
	set   bool
}

// Name returns the property name.
func (a *Accessor) Name() string { return a.name }

// Get returns the current value; ok is false before the first write.
func (a *Accessor) Get() (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value, a.set
}

// Set validates v and stores it. A rejected value leaves the previous one
// in place.
func (a *Accessor) Set(v any) error {
	if err := a.contracts.Validate(a.name, []any{v}); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = v
	a.set = true
	return nil
}

// Table is the per-instance set of accessors, in definition order.
type Table struct {
	order     []string
	accessors map[string]*Accessor
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{accessors: make(map[string]*Accessor)}
}

// Define installs a fresh accessor for name. Redefining a name replaces
// its accessor and resets the backing value.
func Define(t *Table, name string, contracts contract.Set) *Accessor {
	a := &Accessor{name: name, contracts: contracts}
	if _, exists := t.accessors[name]; !exists {
		t.order = append(t.order, name)
	}
	t.accessors[name] = a
	return a
}

// Lookup returns the accessor for name.
func (t *Table) Lookup(name string) (*Accessor, bool) {
	a, ok := t.accessors[name]
	return a, ok
}

// Names returns the property names in definition order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
