package contract

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/amalgam/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// checkFunctions are the functions available inside a check expression.
var checkFunctions = map[string]function.Function{
	"length": stdlib.LengthFunc,
	"strlen": stdlib.StrlenFunc,
	"upper":  stdlib.UpperFunc,
	"lower":  stdlib.LowerFunc,
	"abs":    stdlib.AbsoluteFunc,
	"max":    stdlib.MaxFunc,
	"min":    stdlib.MinFunc,
}

type contractFile struct {
	Contracts []*contractBlock `hcl:"contract,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type contractBlock struct {
	Name  string         `hcl:"name,label"`
	Type  hcl.Expression `hcl:"type"`
	Check hcl.Expression `hcl:"check,optional"`
}

// ParseType parses an HCL type expression such as `string` or
// `list(number)` into a Contract.
func ParseType(expr string) (Contract, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(expr), "contract.hcl", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return Contract{}, fmt.Errorf("contract: parse type %q: %w", expr, diags)
	}
	return typeExprToContract(parsed)
}

// Decode reads every `contract "<name>" { ... }` block in src. Other
// blocks and attributes are ignored so contracts can share a file with
// other declarations.
func Decode(src []byte, filename string) (Set, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("contract: parse %s: %w", filename, diags)
	}
	return DecodeBody(file.Body)
}

// DecodeBody reads contract blocks from an already parsed body.
func DecodeBody(body hcl.Body) (Set, error) {
	var cf contractFile
	if diags := gohcl.DecodeBody(body, nil, &cf); diags.HasErrors() {
		return nil, fmt.Errorf("contract: decode: %w", diags)
	}

	set := make(Set, len(cf.Contracts))
	for _, block := range cf.Contracts {
		if _, dup := set[block.Name]; dup {
			return nil, fmt.Errorf("contract: %q declared more than once", block.Name)
		}
		c, err := typeExprToContract(block.Type)
		if err != nil {
			return nil, fmt.Errorf("contract %q: %w", block.Name, err)
		}
		if isExprDefined(block.Check) {
			c.Check = checkFromExpr(block.Check)
		}
		set[block.Name] = c
	}
	return set, nil
}

// typeExprToContract converts an HCL type expression into a Contract.
func typeExprToContract(expr hcl.Expression) (Contract, error) {
	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if v.Name != "list" {
			return Contract{}, fmt.Errorf("unknown type constructor function %q", v.Name)
		}
		if len(v.Args) != 1 {
			return Contract{}, fmt.Errorf("type constructor list requires exactly one argument, got %d", len(v.Args))
		}
		inner, err := typeExprToContract(v.Args[0])
		if err != nil {
			return Contract{}, err
		}
		if inner.Array {
			return Contract{}, fmt.Errorf("nested list types are not supported")
		}
		return Contract{Kind: inner.Kind, Array: true}, nil

	case *hclsyntax.ScopeTraversalExpr:
		// Primitive keywords like `string` or `number`.
		if len(v.Traversal) != 1 {
			return Contract{}, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch name := v.Traversal.RootName(); name {
		case "string":
			return Contract{Kind: String}, nil
		case "number":
			return Contract{Kind: Number}, nil
		case "bool", "boolean":
			return Contract{Kind: Bool}, nil
		case "object":
			return Contract{Kind: Object}, nil
		case "function":
			return Contract{Kind: Func}, nil
		case "any":
			return Contract{Kind: Any}, nil
		default:
			return Contract{}, fmt.Errorf("unknown primitive type %q", name)
		}

	default:
		return Contract{}, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// checkFromExpr turns a boolean HCL expression over `value` into a
// predicate. Values that cannot be represented in cty, or expressions
// that fail, panic or do not yield true, are rejected.
func checkFromExpr(expr hcl.Expression) func(any) bool {
	return func(v any) (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		cv, err := ctyconv.FromNative(v)
		if err != nil {
			return false
		}
		out, diags := expr.Value(&hcl.EvalContext{
			Variables: map[string]cty.Value{"value": cv},
			Functions: checkFunctions,
		})
		if diags.HasErrors() || out.IsNull() || !out.IsKnown() || out.Type() != cty.Bool {
			return false
		}
		return out.True()
	}
}

// isExprDefined reports whether an optional attribute was present in the
// source. The decoder fills omitted optional attributes with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
