package composer

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/vk/amalgam/internal/textfunc"
)

// Element is one input to Compose. The variants are *Source, Callable,
// Named, Text, Symbol and Property.
type Element interface {
	element()
}

// Member is one named callable of a behavior source. Fn is anything Adapt
// accepts.
type Member struct {
	Name string
	Fn   any
}

// Source is a behavior source: an ordered list of named callables whose
// members are merged into the composed type one by one.
type Source struct {
	name    string
	members []Member
}

// NewSource creates a source from an explicit member list.
func NewSource(name string, members ...Member) *Source {
	s := &Source{name: name, members: make([]Member, len(members))}
	copy(s.members, members)
	return s
}

// SourceOf builds a source from the exported method set of v. Members are
// named after the methods with the first letter lowered and are listed in
// the method set's order.
func SourceOf(v any) (*Source, error) {
	if v == nil {
		return nil, fmt.Errorf("composer: nil source")
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	if rt.NumMethod() == 0 {
		return nil, fmt.Errorf("composer: %s has no exported methods", rt)
	}

	s := &Source{name: typeName(rt)}
	for i := 0; i < rt.NumMethod(); i++ {
		s.members = append(s.members, Member{
			Name: memberName(rt.Method(i).Name),
			Fn:   rv.Method(i).Interface(),
		})
	}
	return s, nil
}

// MustSourceOf is like SourceOf but panics on error.
func MustSourceOf(v any) *Source {
	s, err := SourceOf(v)
	if err != nil {
		panic(err)
	}
	return s
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Name returns the source's name.
func (s *Source) Name() string { return s.name }

// Members returns a copy of the member list.
func (s *Source) Members() []Member {
	out := make([]Member, len(s.members))
	copy(out, s.members)
	return out
}

// MemberNames returns the member names in order.
func (s *Source) MemberNames() []string {
	out := make([]string, len(s.members))
	for i, m := range s.members {
		out[i] = m.Name
	}
	return out
}

func (*Source) element() {}

// Callable is a standalone callable. Its member name is the Go function's
// name with the first letter lowered; anonymous funcs are named
// function<n> after their 1-based position in the element list.
type Callable struct {
	Fn any
}

func (Callable) element() {}

// Named is a callable with an explicit member name.
type Named struct {
	Name string
	Fn   any
}

func (Named) element() {}

// Text is a callable given as source text. It is compiled by the engine's
// Compiler and installed under the name the text declares.
type Text struct {
	Source string
}

func (Text) element() {}

// Property declares a per-instance property with a get/set accessor pair.
type Property struct {
	Name string
}

func (Property) element() {}

// symbolSeq numbers user symbols after the predeclared ones.
var symbolSeq atomic.Uint64

// Symbol is a symbolic marker. Two symbols are equal only if one was
// copied from the other.
type Symbol struct {
	desc string
	id   uint64
}

// Predeclared symbols that mark a type as iterable.
var (
	SymbolIterator      = Symbol{desc: "iterator", id: 1}
	SymbolAsyncIterator = Symbol{desc: "asyncIterator", id: 2}
)

// NewSymbol creates a symbol distinct from every other.
func NewSymbol(desc string) Symbol {
	return Symbol{desc: desc, id: symbolSeq.Add(1) + 2}
}

// Description returns the label the symbol was created with.
func (s Symbol) Description() string { return s.desc }

// Key returns the behavior table name the symbol is installed under.
func (s Symbol) Key() string {
	return fmt.Sprintf("Symbol(%s)#%d", s.desc, s.id)
}

// String implements fmt.Stringer.
func (s Symbol) String() string { return "Symbol(" + s.desc + ")" }

func (Symbol) element() {}

// Elements classifies raw Go values into elements. Elements are passed
// through; funcs become Callable; strings become Text when they open with
// a function block and Property otherwise; any other value with exported
// methods becomes a Source.
func Elements(vals ...any) ([]Element, error) {
	out := make([]Element, 0, len(vals))
	for i, v := range vals {
		el, err := classify(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, el)
	}
	return out, nil
}

func classify(v any) (Element, error) {
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("composer: nil element")
	case Element:
		return v, nil
	case string:
		if textfunc.LooksLikeSource(v) {
			return Text{Source: v}, nil
		}
		return Property{Name: v}, nil
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return Callable{Fn: v}, nil
	}
	return SourceOf(v)
}
