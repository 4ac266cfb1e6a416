package composer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/contract"
	"github.com/vk/amalgam/internal/dependency"
	"github.com/vk/amalgam/internal/property"
)

// Type is a composed type. Its behavior table is frozen and shared by all
// of its instances.
type Type struct {
	name       string
	table      *behavior.Table
	props      []string
	contracts  contract.Set
	deps       []dependency.Token
	registry   *dependency.Registry
	metadata   map[string]any
	generics   map[string]Generic
	implements []Capability
}

// Name returns the type name given to Compose.
func (t *Type) Name() string { return t.name }

// New creates an instance with fresh properties, an empty result store and
// its declared dependencies resolved from the registry.
func (t *Type) New() (*Instance, error) {
	inst := &Instance{
		typ:     t,
		props:   property.NewTable(),
		deps:    make(map[dependency.Token]any, len(t.deps)),
		results: behavior.NewResults(),
	}
	for _, name := range t.props {
		property.Define(inst.props, name, t.contracts)
	}
	for _, token := range t.deps {
		v, err := t.registry.Get(token)
		if err != nil {
			return nil, fmt.Errorf("new %s: %w", t.name, err)
		}
		inst.deps[token] = v
	}
	return inst, nil
}

// MustNew is like New but panics on error.
func (t *Type) MustNew() *Instance {
	inst, err := t.New()
	if err != nil {
		panic(err)
	}
	return inst
}

// Methods returns the installed method names in installation order.
func (t *Type) Methods() []string { return t.table.Names() }

// HasMethod reports whether name is installed.
func (t *Type) HasMethod(name string) bool { return t.table.Has(name) }

// Properties returns the declared property names.
func (t *Type) Properties() []string { return slices.Clone(t.props) }

// Dependencies returns the declared dependency tokens.
func (t *Type) Dependencies() []dependency.Token { return slices.Clone(t.deps) }

// Metadata returns a copy of the type's metadata.
func (t *Type) Metadata() map[string]any { return maps.Clone(t.metadata) }

// MetadataValue returns one metadata entry.
func (t *Type) MetadataValue(key string) (any, bool) {
	v, ok := t.metadata[key]
	return v, ok
}

// Generics returns a copy of the type's generic tokens.
func (t *Type) Generics() map[string]Generic { return maps.Clone(t.generics) }

// Implements reports whether every member of c is installed.
func (t *Type) Implements(c Capability) bool {
	for _, m := range c.Members {
		if !t.table.Has(m) {
			return false
		}
	}
	return true
}

// Capabilities returns the capabilities the type was required to
// implement.
func (t *Type) Capabilities() []Capability { return slices.Clone(t.implements) }
