package composer

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/google/uuid"
	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/contract"
	"github.com/vk/amalgam/internal/dependency"
)

// Options configures one Compose call. The zero value composes with the
// Override policy and no contracts, capabilities or dependencies.
type Options struct {
	// Implements lists capabilities whose members the type must have.
	Implements []Capability
	// Contracts guard method arguments and property writes by name.
	Contracts contract.Set
	// Dependencies are resolved from the registry on every New.
	Dependencies []dependency.Token
	// Conflict decides what happens when a name is bound twice.
	Conflict behavior.Policy
	// Mixins are merged before the element list.
	Mixins []*Source
	// Metadata is attached to the type read-only.
	Metadata map[string]any
	// Generics are stored on the type and never interpreted.
	Generics map[string]Generic
	// Decorators wrap the raw callable bound under a name.
	Decorators map[string]Decorator
}

// Decorator wraps the callable requested under name.
type Decorator func(name string, next Func) Func

// Capability is a named set of member names a type can be required to
// implement. Only names are checked.
type Capability struct {
	Name    string
	Members []string
}

// NewCapability creates a capability from member names.
func NewCapability(name string, members ...string) Capability {
	return Capability{Name: name, Members: members}
}

// CapabilityOf describes the members of a source.
func CapabilityOf(s *Source) Capability {
	return Capability{Name: s.Name(), Members: s.MemberNames()}
}

// CapabilityFromInterface describes a Go interface given as a nil pointer
// to it, such as (*fmt.Stringer)(nil). Method names have their first
// letter lowered to match composed member names.
func CapabilityFromInterface(ptr any) (Capability, error) {
	t := reflect.TypeOf(ptr)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Interface {
		return Capability{}, fmt.Errorf("composer: %T is not a pointer to an interface", ptr)
	}
	it := t.Elem()
	c := Capability{Name: it.Name()}
	for i := 0; i < it.NumMethod(); i++ {
		c.Members = append(c.Members, memberName(it.Method(i).Name))
	}
	return c, nil
}

// Generic is an opaque type-parameter token.
type Generic struct {
	Label string
	ID    uuid.UUID
}

// NewGeneric creates a fresh generic token.
func NewGeneric(label string) Generic {
	return Generic{Label: label, ID: uuid.New()}
}

// String implements fmt.Stringer.
func (g Generic) String() string { return g.Label + "<" + g.ID.String() + ">" }

func cloneGenerics(in map[string]Generic) map[string]Generic {
	if in == nil {
		return map[string]Generic{}
	}
	return maps.Clone(in)
}
