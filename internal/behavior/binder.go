package behavior

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/vk/amalgam/internal/contract"
)

// Policy decides what happens when a name is bound twice.
type Policy int

const (
	// Override replaces the existing entry. It is the zero value.
	Override Policy = iota
	// Fail rejects the second binding with a *DuplicateNameError.
	Fail
	// Rename installs the second binding under a fresh alternate name.
	Rename
)

// String returns the policy keyword used in manifests.
func (p Policy) String() string {
	switch p {
	case Override:
		return "override"
	case Fail:
		return "fail"
	case Rename:
		return "rename"
	default:
		return "Policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParsePolicy converts a manifest keyword to a Policy. "error" is accepted
// as an alias of "fail".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "override":
		return Override, nil
	case "fail", "error":
		return Fail, nil
	case "rename":
		return Rename, nil
	default:
		return Override, fmt.Errorf("behavior: unknown conflict policy %q", s)
	}
}

// Method is the raw callable a Binder wraps.
type Method func(recv Receiver, args []any) (any, error)

// Hooks are the call-time extension points a bound method folds through.
type Hooks interface {
	BeforeCall(method string, args []any) []any
	AfterCall(method string, result any) any
	OnError(err error)
}

// NopHooks passes arguments and results through untouched.
type NopHooks struct{}

func (NopHooks) BeforeCall(_ string, args []any) []any { return args }
func (NopHooks) AfterCall(_ string, result any) any    { return result }
func (NopHooks) OnError(error)                         {}

// renameSeq feeds alternate names for the Rename policy. It is process
// wide so two tables never hand out the same suffix in the same order.
var renameSeq atomic.Uint64

// Binder installs callables into a Table.
type Binder struct {
	Hooks     Hooks
	Contracts contract.Set
	Policy    Policy
	Logger    *slog.Logger
}

// Bind installs fn under name and returns the name actually used.
func (b Binder) Bind(t *Table, name string, fn Method) (string, error) {
	if fn == nil {
		return "", fmt.Errorf("behavior: nil callable for %q", name)
	}
	if t.Frozen() {
		return "", ErrFrozen
	}

	installed := name
	if t.Has(name) {
		switch b.Policy {
		case Fail:
			return "", &DuplicateNameError{Name: name}
		case Rename:
			installed = alternateName(t, name)
			b.logger().Debug("Renamed conflicting method.", "method", name, "installed_as", installed)
		default:
			b.logger().Debug("Overriding existing method.", "method", name)
		}
	}

	entry := &Entry{Name: installed, Requested: name}
	entry.Call = b.wrap(installed, name, fn)
	if err := t.put(entry); err != nil {
		return "", err
	}
	return installed, nil
}

func alternateName(t *Table, name string) string {
	for {
		candidate := name + "_" + strconv.FormatUint(renameSeq.Add(1), 10)
		if !t.Has(candidate) {
			return candidate
		}
	}
}

// wrap builds the guarded wrapper. Hooks and captured results use the
// installed name; the contract is looked up by the requested name so a
// renamed duplicate stays guarded.
func (b Binder) wrap(installed, requested string, fn Method) Bound {
	hooks := b.hooks()
	contracts := b.Contracts
	logger := b.logger()

	return func(recv Receiver, args []any) error {
		fail := func(err error) error {
			logger.Debug("Bound method failed.", "method", installed, "error", err)
			hooks.OnError(err)
			return err
		}

		if err := guarded(installed, func() { args = hooks.BeforeCall(installed, args) }); err != nil {
			return fail(err)
		}
		var verr error
		if err := guarded(installed, func() { verr = contracts.Validate(requested, args) }); err != nil {
			return fail(err)
		}
		if verr != nil {
			return fail(verr)
		}

		raw, err := invoke(installed, fn, recv, args)
		if err != nil {
			return fail(err)
		}

		results := recv.Results()
		if p, ok := raw.(*Pending); ok {
			results.pending.Add(1)
			go func() {
				defer results.pending.Done()
				defer func() {
					if r := recover(); r != nil {
						logger.Error("Error hook panicked after settlement.", "method", installed, "panic", r)
					}
				}()
				v, err := p.Await()
				if err == nil {
					err = guarded(installed, func() { v = hooks.AfterCall(installed, v) })
				}
				if err != nil {
					_ = fail(err)
					return
				}
				results.store(installed, v)
			}()
			return nil
		}

		var out any
		if err := guarded(installed, func() { out = hooks.AfterCall(installed, raw) }); err != nil {
			return fail(err)
		}
		results.store(installed, out)
		return nil
	}
}

// PanicError carries a panic recovered from a bound callable.
type PanicError struct {
	Method string
	Value  any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("behavior: method %q panicked: %v", e.Method, e.Value)
}

func invoke(name string, fn Method, recv Receiver, args []any) (res any, err error) {
	if perr := guarded(name, func() { res, err = fn(recv, args) }); perr != nil {
		return nil, perr
	}
	return res, err
}

// guarded runs fn and turns a panic into a *PanicError for method name.
func guarded(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Method: name, Value: r}
		}
	}()
	fn()
	return nil
}

func (b Binder) hooks() Hooks {
	if b.Hooks == nil {
		return NopHooks{}
	}
	return b.Hooks
}

func (b Binder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
