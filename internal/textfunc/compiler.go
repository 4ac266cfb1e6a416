// Package textfunc compiles callables from source text.
//
// Source text is HCL using the user-function block syntax:
//
//	function "greet" {
//	  params = [name]
//	  result = "Hello, ${name}!"
//	}
//
// Function bodies may call the cty standard library functions registered
// in Stdlib and any other function defined in the same text.
package textfunc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/userfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// BlockType is the block name function definitions use.
const BlockType = "function"

// Stdlib is the set of functions every compiled body can call.
var Stdlib = map[string]function.Function{
	"upper":     stdlib.UpperFunc,
	"lower":     stdlib.LowerFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"concat":    stdlib.ConcatFunc,
	"length":    stdlib.LengthFunc,
	"strlen":    stdlib.StrlenFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"abs":       stdlib.AbsoluteFunc,
	"max":       stdlib.MaxFunc,
	"min":       stdlib.MinFunc,
}

// CompileError reports HCL diagnostics raised while compiling text.
type CompileError struct {
	Filename string
	Diags    hcl.Diagnostics
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return "textfunc: compile " + e.Filename + ": " + e.Diags.Error()
}

// Compiler turns source text into callables.
type Compiler struct {
	// Functions are made available to compiled bodies in addition to
	// Stdlib. Entries here shadow Stdlib entries of the same name.
	Functions map[string]function.Function
}

// New creates a Compiler with only the standard functions available.
func New() *Compiler { return &Compiler{} }

// Compile compiles text that defines exactly one function and returns its
// name and a callable for it.
func (c *Compiler) Compile(src string) (string, behavior.Method, error) {
	file, diags := hclsyntax.ParseConfig([]byte(src), "<text>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return "", nil, &CompileError{Filename: "<text>", Diags: diags}
	}

	funcs, remain, err := c.DecodeBody(file.Body, "<text>")
	if err != nil {
		return "", nil, err
	}
	attrs, diags := remain.JustAttributes()
	if diags.HasErrors() || len(attrs) > 0 {
		return "", nil, fmt.Errorf("textfunc: text may only contain %s blocks", BlockType)
	}
	if len(funcs) != 1 {
		return "", nil, fmt.Errorf("textfunc: text must define exactly one function, found %d", len(funcs))
	}

	name := Names(funcs)[0]
	return name, Method(name, funcs[name]), nil
}

// DecodeBody extracts every function block from body. The returned body
// holds whatever else the file declared.
func (c *Compiler) DecodeBody(body hcl.Body, filename string) (map[string]function.Function, hcl.Body, error) {
	var evalCtx *hcl.EvalContext
	funcs, remain, diags := userfunc.DecodeUserFunctions(body, BlockType, func() *hcl.EvalContext {
		return evalCtx
	})
	if diags.HasErrors() {
		return nil, nil, &CompileError{Filename: filename, Diags: diags}
	}

	available := make(map[string]function.Function, len(Stdlib)+len(c.Functions)+len(funcs))
	for name, fn := range Stdlib {
		available[name] = fn
	}
	for name, fn := range c.Functions {
		available[name] = fn
	}
	for name, fn := range funcs {
		available[name] = fn
	}
	evalCtx = &hcl.EvalContext{Functions: available}

	return funcs, remain, nil
}

// Method adapts a cty function to the bound-method calling convention.
// Arguments are converted with ctyconv and the result is converted back to
// a native Go value.
func Method(name string, fn function.Function) behavior.Method {
	return func(_ behavior.Receiver, args []any) (any, error) {
		vals := make([]cty.Value, 0, len(args))
		for i, arg := range args {
			v, err := ctyconv.FromNative(arg)
			if err != nil {
				return nil, fmt.Errorf("textfunc: %s: argument %d: %w", name, i, err)
			}
			vals = append(vals, v)
		}
		out, err := fn.Call(vals)
		if err != nil {
			return nil, fmt.Errorf("textfunc: %s: %w", name, err)
		}
		return ctyconv.ToNative(out)
	}
}

// Names returns the sorted names of funcs.
func Names(funcs map[string]function.Function) []string {
	out := make([]string, 0, len(funcs))
	for name := range funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LooksLikeSource reports whether s is function text rather than a bare
// identifier.
func LooksLikeSource(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), BlockType+" ")
}
