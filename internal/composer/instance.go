package composer

import (
	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/dependency"
	"github.com/vk/amalgam/internal/property"
)

// Instance is one value of a composed type.
type Instance struct {
	typ     *Type
	props   *property.Table
	deps    map[dependency.Token]any
	results *behavior.Results
}

var _ behavior.Receiver = (*Instance)(nil)

// Type returns the instance's type.
func (i *Instance) Type() *Type { return i.typ }

// Results returns the store of captured call results.
func (i *Instance) Results() *behavior.Results { return i.results }

// Call invokes the method installed under name and returns the instance.
// The method's own result is read back with Result.
func (i *Instance) Call(name string, args ...any) (*Instance, error) {
	e, ok := i.typ.table.Lookup(name)
	if !ok {
		return i, &UnknownMemberError{Type: i.typ.name, Name: name}
	}
	return i, e.Call(i, args)
}

// CallSymbol invokes the member installed for sym.
func (i *Instance) CallSymbol(sym Symbol, args ...any) (*Instance, error) {
	return i.Call(sym.Key(), args...)
}

// Result returns the captured result of the last completed call to name.
func (i *Instance) Result(name string) (any, bool) { return i.results.Get(name) }

// Wait blocks until results of pending calls have been captured.
func (i *Instance) Wait() { i.results.Wait() }

// Dependency returns the value resolved for token when the instance was
// created.
func (i *Instance) Dependency(token dependency.Token) (any, bool) {
	v, ok := i.deps[token]
	return v, ok
}

// Get reads a property, falling back to a dependency of the same name.
// An unset property reads as nil.
func (i *Instance) Get(name string) (any, error) {
	if a, ok := i.props.Lookup(name); ok {
		v, _ := a.Get()
		return v, nil
	}
	if v, ok := i.deps[dependency.Token(name)]; ok {
		return v, nil
	}
	return nil, &UnknownMemberError{Type: i.typ.name, Name: name}
}

// Set writes a property after checking it against the property's
// contract.
func (i *Instance) Set(name string, v any) error {
	a, ok := i.props.Lookup(name)
	if !ok {
		return &UnknownMemberError{Type: i.typ.name, Name: name}
	}
	return a.Set(v)
}

// Chain starts a call chain that stops at the first error.
func (i *Instance) Chain() *Chain { return &Chain{inst: i} }

// Chain sequences calls on one instance.
//
//	err := inst.Chain().Call("greet", "Alice").Call("sayGoodbye", "Bob").Err()
type Chain struct {
	inst *Instance
	err  error
}

// Call calls name unless an earlier step failed.
func (c *Chain) Call(name string, args ...any) *Chain {
	if c.err == nil {
		_, c.err = c.inst.Call(name, args...)
	}
	return c
}

// CallSymbol calls the member installed for sym unless an earlier step
// failed.
func (c *Chain) CallSymbol(sym Symbol, args ...any) *Chain {
	if c.err == nil {
		_, c.err = c.inst.CallSymbol(sym, args...)
	}
	return c
}

// Set writes a property unless an earlier step failed.
func (c *Chain) Set(name string, v any) *Chain {
	if c.err == nil {
		c.err = c.inst.Set(name, v)
	}
	return c
}

// Err returns the first error in the chain.
func (c *Chain) Err() error { return c.err }

// Instance returns the chained instance.
func (c *Chain) Instance() *Instance { return c.inst }
