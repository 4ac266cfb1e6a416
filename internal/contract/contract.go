package contract

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// Kind is the primitive kind a contract requires.
type Kind int

const (
	Any Kind = iota
	String
	Number
	Bool
	Object
	Func
)

var kindNames = map[Kind]string{
	Any:    "any",
	String: "string",
	Number: "number",
	Bool:   "bool",
	Object: "object",
	Func:   "function",
}

// String returns the HCL keyword for k.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Contract is the declared shape for one name.
type Contract struct {
	Kind Kind
	// Array requires each argument to be a slice or array whose every
	// element matches Kind.
	Array bool
	// Check, when set, must also accept the argument.
	Check func(v any) bool
}

// Set maps method or property names to their contracts.
type Set map[string]Contract

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("contract: validation failed")

// ValidationError reports the first argument that broke a contract.
type ValidationError struct {
	Name     string
	Position int
	Value    any
	Reason   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	// Example: contract: invalid type for argument 0 of "greet": want string, got int
	return fmt.Sprintf("contract: invalid type for argument %d of %q: %s", e.Position, e.Name, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validate checks args against the contract registered for name. It is a
// no-op when the set has no entry for name.
func (s Set) Validate(name string, args []any) error {
	c, ok := s[name]
	if !ok {
		return nil
	}
	for i, arg := range args {
		if reason := c.violation(arg); reason != "" {
			return &ValidationError{Name: name, Position: i, Value: arg, Reason: reason}
		}
	}
	return nil
}

// Accepts reports whether a single value satisfies the contract.
func (c Contract) Accepts(v any) bool { return c.violation(v) == "" }

func (c Contract) violation(v any) string {
	if c.Array {
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return fmt.Sprintf("want list(%s), got %s", c.Kind, describe(v))
		}
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			if !Matches(c.Kind, elem) {
				return fmt.Sprintf("element %d: want %s, got %s", i, c.Kind, describe(elem))
			}
		}
	} else if !Matches(c.Kind, v) {
		return fmt.Sprintf("want %s, got %s", c.Kind, describe(v))
	}
	if c.Check != nil && !c.Check(v) {
		return "rejected by check"
	}
	return ""
}

// Matches reports whether v is of kind k. A nil value only matches Any.
func Matches(k Kind, v any) bool {
	if k == Any {
		return true
	}
	if v == nil {
		return false
	}
	return kindOf(reflect.TypeOf(v)) == k
}

func kindOf(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.String:
		return String
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.Func:
		return Func
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array, reflect.Pointer, reflect.Interface:
		return Object
	default:
		return Any
	}
}

func describe(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
