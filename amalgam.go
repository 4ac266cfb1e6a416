// Package amalgam composes types at runtime from behavior sources,
// standalone callables and textual callables.
//
// The package-level functions use a process-wide default engine. Programs
// that need isolation create their own with NewEngine.
package amalgam

import (
	"sync"

	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/composer"
	"github.com/vk/amalgam/internal/contract"
	"github.com/vk/amalgam/internal/dependency"
)

type (
	Engine       = composer.Engine
	EngineOption = composer.EngineOption
	Type         = composer.Type
	Instance     = composer.Instance
	Chain        = composer.Chain
	Options      = composer.Options
	Bundle       = composer.Bundle
	Func         = composer.Func
	Decorator    = composer.Decorator
	Capability   = composer.Capability
	Generic      = composer.Generic

	Element  = composer.Element
	Source   = composer.Source
	Member   = composer.Member
	Callable = composer.Callable
	Named    = composer.Named
	Text     = composer.Text
	Symbol   = composer.Symbol
	Property = composer.Property

	Policy   = behavior.Policy
	Pending  = behavior.Pending
	Contract = contract.Contract
	Kind     = contract.Kind
	Token    = dependency.Token
	Rule     = dependency.Rule

	DuplicateNameError     = behavior.DuplicateNameError
	MissingCapabilityError = composer.MissingCapabilityError
	ValidationError        = contract.ValidationError
	NotFoundError          = dependency.NotFoundError
)

// Conflict policies.
const (
	Override = behavior.Override
	Fail     = behavior.Fail
	Rename   = behavior.Rename
)

// Contract kinds.
const (
	Any    = contract.Any
	String = contract.String
	Number = contract.Number
	Bool   = contract.Bool
	Object = contract.Object
	Fn     = contract.Func
)

// Sentinel errors for errors.Is.
var (
	ErrDuplicateName     = behavior.ErrDuplicateName
	ErrMissingCapability = composer.ErrMissingCapability
	ErrValidation        = contract.ErrValidation
	ErrNotFound          = dependency.ErrNotFound
	ErrUnknownMember     = composer.ErrUnknownMember
)

// Predeclared symbols.
var (
	SymbolIterator      = composer.SymbolIterator
	SymbolAsyncIterator = composer.SymbolAsyncIterator
)

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine used by the package-level
// functions.
func Default() *Engine {
	defaultOnce.Do(func() { defaultEngine = composer.New() })
	return defaultEngine
}

// NewEngine creates an engine with its own plugin pipeline and registry.
func NewEngine(opts ...EngineOption) *Engine { return composer.New(opts...) }

// Use registers a plugin bundle with the default engine.
func Use(b Bundle) { Default().Use(b) }

// Provide registers a dependency with the default engine.
func Provide(token Token, rule Rule) error { return Default().Provide(token, rule) }

// Compose composes a type on the default engine.
func Compose(name string, elements []Element, opts Options) (*Type, error) {
	return Default().Compose(name, elements, opts)
}

// ComposeMany merges sources into one type on the default engine.
func ComposeMany(sources ...*Source) (*Type, error) { return Default().ComposeMany(sources...) }

// MixinMany mixes sources into one type on the default engine.
func MixinMany(sources ...*Source) (*Type, error) { return Default().MixinMany(sources...) }

// Engine options, sources and helpers re-exported from the composer.
var (
	WithPipeline            = composer.WithPipeline
	WithRegistry            = composer.WithRegistry
	WithCompiler            = composer.WithCompiler
	WithLogger              = composer.WithLogger
	NewSource               = composer.NewSource
	SourceOf                = composer.SourceOf
	MustSourceOf            = composer.MustSourceOf
	Elements                = composer.Elements
	Adapt                   = composer.Adapt
	NewSymbol               = composer.NewSymbol
	NewCapability           = composer.NewCapability
	CapabilityOf            = composer.CapabilityOf
	CapabilityFromInterface = composer.CapabilityFromInterface
	NewGeneric              = composer.NewGeneric
	ParsePolicy             = behavior.ParsePolicy
	NewPending              = behavior.NewPending
	Async                   = behavior.Go
)

// Dependency rules.
var (
	Value       = dependency.Value
	TypeOf      = dependency.Type
	Constructor = dependency.Constructor
	Factory     = dependency.Factory
)
