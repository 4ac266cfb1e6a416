package composer

import (
	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/plugin"
)

// Bundle is a set of optional hooks. Transforming hooks run in
// registration order, each receiving the previous one's output.
type Bundle struct {
	Name string

	BeforeAssembly func(elements []Element) []Element
	AfterAssembly  func(t *Type) *Type
	BeforeCall     func(method string, args []any) []any
	AfterCall      func(method string, result any) any
	OnError        func(err error)
}

// bundleHooks runs a pipeline's call-time hooks for bound methods.
type bundleHooks struct {
	pipeline *plugin.Pipeline[Bundle]
}

var _ behavior.Hooks = bundleHooks{}

func (h bundleHooks) BeforeCall(method string, args []any) []any {
	return plugin.Fold(h.pipeline, args, func(b Bundle) func([]any) []any {
		if b.BeforeCall == nil {
			return nil
		}
		return func(in []any) []any { return b.BeforeCall(method, in) }
	})
}

func (h bundleHooks) AfterCall(method string, result any) any {
	return plugin.Fold(h.pipeline, result, func(b Bundle) func(any) any {
		if b.AfterCall == nil {
			return nil
		}
		return func(in any) any { return b.AfterCall(method, in) }
	})
}

func (h bundleHooks) OnError(err error) {
	plugin.Each(h.pipeline, func(b Bundle) {
		if b.OnError != nil {
			b.OnError(err)
		}
	})
}

func beforeAssembly(p *plugin.Pipeline[Bundle], elements []Element) []Element {
	return plugin.Fold(p, elements, func(b Bundle) func([]Element) []Element {
		return b.BeforeAssembly
	})
}

func afterAssembly(p *plugin.Pipeline[Bundle], t *Type) *Type {
	return plugin.Fold(p, t, func(b Bundle) func(*Type) *Type {
		return b.AfterAssembly
	})
}
