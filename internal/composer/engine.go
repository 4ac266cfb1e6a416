package composer

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/dependency"
	"github.com/vk/amalgam/internal/plugin"
	"github.com/vk/amalgam/internal/textfunc"
)

// Compiler turns textual callables into methods.
type Compiler interface {
	Compile(src string) (name string, fn behavior.Method, err error)
}

// Engine composes types. An Engine owns a plugin pipeline and a dependency
// registry; every type it composes shares both.
type Engine struct {
	pipeline *plugin.Pipeline[Bundle]
	registry *dependency.Registry
	compiler Compiler
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPipeline makes the engine run the hooks of an existing pipeline.
func WithPipeline(p *plugin.Pipeline[Bundle]) EngineOption {
	return func(e *Engine) { e.pipeline = p }
}

// WithRegistry makes the engine resolve dependencies from r.
func WithRegistry(r *dependency.Registry) EngineOption {
	return func(e *Engine) { e.registry = r }
}

// WithCompiler replaces the compiler used for Text elements. A nil
// compiler makes Text elements an error.
func WithCompiler(c Compiler) EngineOption {
	return func(e *Engine) { e.compiler = c }
}

// WithLogger sets the logger for composition and call diagnostics.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine with an empty pipeline and registry.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		pipeline: plugin.New[Bundle](),
		registry: dependency.New(),
		compiler: textfunc.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pipeline == nil {
		panic("composer: nil pipeline")
	}
	if e.registry == nil {
		panic("composer: nil registry")
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Use appends a bundle to the engine's pipeline. It affects types composed
// afterwards as well as calls on existing instances.
func (e *Engine) Use(b Bundle) {
	e.pipeline.Register(b)
	e.logger.Debug("Registered plugin bundle.", "bundle", b.Name, "bundles", e.pipeline.Len())
}

// Provide registers a dependency rule with the engine's registry.
func (e *Engine) Provide(token dependency.Token, rule dependency.Rule) error {
	return e.registry.Register(token, rule)
}

// Registry returns the engine's dependency registry.
func (e *Engine) Registry() *dependency.Registry { return e.registry }

// Pipeline returns the engine's plugin pipeline.
func (e *Engine) Pipeline() *plugin.Pipeline[Bundle] { return e.pipeline }

// Compose assembles a new type from elements.
//
// Before-assembly hooks may rewrite the element list; mixins are merged
// first, then each element in order. The behavior table is frozen once
// attached, required capabilities are checked against it, and finally the
// after-assembly hooks may replace the type. A failure at any step
// discards the partial type.
func (e *Engine) Compose(name string, elements []Element, opts Options) (*Type, error) {
	logger := e.logger.With("type", name)
	logger.Debug("Composing type.", "elements", len(elements), "mixins", len(opts.Mixins), "conflict", opts.Conflict)

	elements = beforeAssembly(e.pipeline, slices.Clone(elements))

	contracts := maps.Clone(opts.Contracts)
	a := &assembly{
		compiler:   e.compiler,
		decorators: opts.Decorators,
		table:      behavior.NewTable(),
		logger:     logger,
		binder: behavior.Binder{
			Hooks:     bundleHooks{pipeline: e.pipeline},
			Contracts: contracts,
			Policy:    opts.Conflict,
			Logger:    logger,
		},
	}

	for _, m := range opts.Mixins {
		if m == nil {
			return nil, fmt.Errorf("compose %q: nil mixin", name)
		}
		if err := a.source(m); err != nil {
			return nil, fmt.Errorf("compose %q: mixin %s: %w", name, m.Name(), err)
		}
	}
	for i, el := range elements {
		if err := a.element(i, el); err != nil {
			return nil, fmt.Errorf("compose %q: element %d: %w", name, i, err)
		}
	}

	a.table.Freeze()
	t := &Type{
		name:       name,
		table:      a.table,
		props:      a.props,
		contracts:  contracts,
		deps:       slices.Clone(opts.Dependencies),
		registry:   e.registry,
		metadata:   maps.Clone(opts.Metadata),
		generics:   cloneGenerics(opts.Generics),
		implements: slices.Clone(opts.Implements),
	}
	if t.metadata == nil {
		t.metadata = map[string]any{}
	}

	for _, c := range t.implements {
		for _, member := range c.Members {
			if !t.table.Has(member) {
				return nil, &MissingCapabilityError{Type: name, Capability: c.Name, Member: member}
			}
		}
	}

	t = afterAssembly(e.pipeline, t)
	if t == nil {
		return nil, fmt.Errorf("compose %q: after-assembly hook returned no type", name)
	}
	logger.Debug("Composed type.", "methods", t.table.Len(), "properties", len(t.props))
	return t, nil
}

// ComposeMany merges the members of every source under the Override
// policy and requires each source's members as a capability.
func (e *Engine) ComposeMany(sources ...*Source) (*Type, error) {
	var (
		elements []Element
		caps     []Capability
	)
	for _, s := range sources {
		if s == nil {
			return nil, errors.New("compose many: nil source")
		}
		for _, m := range s.members {
			elements = append(elements, Named{Name: m.Name, Fn: m.Fn})
		}
		caps = append(caps, CapabilityOf(s))
	}
	return e.Compose("ComposedType", elements, Options{Implements: caps, Conflict: behavior.Override})
}

// MixinMany composes a type whose only behavior comes from sources used
// as mixins, merged under the Override policy.
func (e *Engine) MixinMany(sources ...*Source) (*Type, error) {
	return e.Compose("MixedType", nil, Options{Mixins: sources, Conflict: behavior.Override})
}

// assembly is the state of one Compose call.
type assembly struct {
	compiler   Compiler
	decorators map[string]Decorator
	binder     behavior.Binder
	table      *behavior.Table
	props      []string
	logger     *slog.Logger
}

func (a *assembly) element(i int, el Element) error {
	switch el := el.(type) {
	case nil:
		return errors.New("nil element")
	case *Source:
		if el == nil {
			return errors.New("nil source")
		}
		return a.source(el)
	case Callable:
		name := funcName(el.Fn)
		if name == "" {
			name = fmt.Sprintf("function%d", i+1)
		}
		return a.bind(name, el.Fn)
	case Named:
		if el.Name == "" {
			return errors.New("named callable without a name")
		}
		return a.bind(el.Name, el.Fn)
	case Text:
		if a.compiler == nil {
			return errors.New("no compiler for textual callable")
		}
		name, m, err := a.compiler.Compile(el.Source)
		if err != nil {
			return err
		}
		return a.bind(name, fromMethod(m))
	case Symbol:
		// A symbol keeps its key under Rename; the later binding replaces it.
		if a.table.Has(el.Key()) && a.binder.Policy == behavior.Fail {
			return &behavior.DuplicateNameError{Name: el.Key()}
		}
		return a.table.Put(el.Key(), func(behavior.Receiver, []any) error { return nil })
	case Property:
		if el.Name == "" {
			return errors.New("property without a name")
		}
		if !slices.Contains(a.props, el.Name) {
			a.props = append(a.props, el.Name)
		}
		return nil
	default:
		return fmt.Errorf("unsupported element %T", el)
	}
}

func (a *assembly) source(s *Source) error {
	for _, m := range s.members {
		if err := a.bind(m.Name, m.Fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembly) bind(name string, fn any) error {
	f, err := Adapt(fn)
	if err != nil {
		return fmt.Errorf("member %q: %w", name, err)
	}
	if d := a.decorators[name]; d != nil {
		if f = d(name, f); f == nil {
			return fmt.Errorf("member %q: decorator returned nil", name)
		}
	}
	installed, err := a.binder.Bind(a.table, name, f.method())
	if err != nil {
		return err
	}
	a.logger.Debug("Bound method.", "method", name, "installed_as", installed)
	return nil
}
