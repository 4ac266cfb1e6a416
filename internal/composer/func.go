package composer

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vk/amalgam/internal/behavior"
)

// Func is the calling convention of composed methods: the instance the
// method was called on plus its positional arguments.
type Func func(self *Instance, args ...any) (any, error)

var (
	instanceType = reflect.TypeOf((*Instance)(nil))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	anonFunc     = regexp.MustCompile(`^(func)?\d+$`)
)

// Adapt turns an arbitrary Go func into a Func.
//
// A leading *Instance parameter receives the instance. The remaining
// parameters are filled from the call arguments: missing arguments become
// zero values, extra arguments are ignored unless the func is variadic,
// and numeric arguments are converted between numeric kinds. Supported
// result shapes are (), (T), (error) and (T, error).
func Adapt(fn any) (Func, error) {
	switch f := fn.(type) {
	case nil:
		return nil, fmt.Errorf("composer: nil callable")
	case Func:
		return f, nil
	case func(*Instance, ...any) (any, error):
		return f, nil
	}

	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("composer: %T is not a func", fn)
	}
	if fv.IsNil() {
		return nil, fmt.Errorf("composer: nil callable")
	}
	ft := fv.Type()

	switch ft.NumOut() {
	case 0:
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("composer: %s: second result must be error", ft)
		}
	default:
		return nil, fmt.Errorf("composer: %s: too many results", ft)
	}

	offset := 0
	if ft.NumIn() > 0 && ft.In(0) == instanceType {
		offset = 1
	}

	return func(self *Instance, args ...any) (any, error) {
		in, err := buildArgs(ft, offset, args)
		if err != nil {
			return nil, err
		}
		if offset == 1 {
			in = append([]reflect.Value{reflect.ValueOf(self)}, in...)
		}
		return unpackResults(ft, fv.Call(in))
	}, nil
}

func buildArgs(ft reflect.Type, offset int, args []any) ([]reflect.Value, error) {
	fixed := ft.NumIn() - offset
	if ft.IsVariadic() {
		fixed--
	}

	in := make([]reflect.Value, 0, ft.NumIn())
	for i := 0; i < fixed; i++ {
		target := ft.In(offset + i)
		if i >= len(args) {
			in = append(in, reflect.Zero(target))
			continue
		}
		v, err := convertArg(args[i], target)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}

	if ft.IsVariadic() {
		elem := ft.In(ft.NumIn() - 1).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := convertArg(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, v)
		}
	}
	return in, nil
}

func convertArg(arg any, target reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(target), nil
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(target) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(target.Kind()) {
		out, ok := convertNumber(v, target)
		if !ok {
			return reflect.Value{}, fmt.Errorf("cannot use %v (%T) as %s", arg, arg, target)
		}
		return out, nil
	}
	if v.Kind() == target.Kind() && v.Type().ConvertibleTo(target) {
		return v.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, target)
}

// convertNumber converts between numeric kinds, refusing values the target
// cannot hold exactly: fractions for integers, out-of-range magnitudes and
// negatives for unsigned targets.
func convertNumber(v reflect.Value, target reflect.Type) (reflect.Value, bool) {
	out := reflect.New(target).Elem()
	switch {
	case isFloat(v.Kind()):
		f := v.Float()
		switch {
		case isFloat(target.Kind()):
			if out.OverflowFloat(f) {
				return out, false
			}
			out.SetFloat(f)
		case isSigned(target.Kind()):
			if f != math.Trunc(f) || f < math.MinInt64 || f >= -math.MinInt64 || out.OverflowInt(int64(f)) {
				return out, false
			}
			out.SetInt(int64(f))
		default:
			if f != math.Trunc(f) || f < 0 || f >= 1<<64 || out.OverflowUint(uint64(f)) {
				return out, false
			}
			out.SetUint(uint64(f))
		}
	case isSigned(v.Kind()):
		i := v.Int()
		switch {
		case isFloat(target.Kind()):
			out.SetFloat(float64(i))
		case isSigned(target.Kind()):
			if out.OverflowInt(i) {
				return out, false
			}
			out.SetInt(i)
		default:
			if i < 0 || out.OverflowUint(uint64(i)) {
				return out, false
			}
			out.SetUint(uint64(i))
		}
	default:
		u := v.Uint()
		switch {
		case isFloat(target.Kind()):
			out.SetFloat(float64(u))
		case isSigned(target.Kind()):
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return out, false
			}
			out.SetInt(int64(u))
		default:
			if out.OverflowUint(u) {
				return out, false
			}
			out.SetUint(u)
		}
	}
	return out, true
}

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func unpackResults(ft reflect.Type, out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if ft.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		err, _ := out[1].Interface().(error)
		if err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

// method converts f to the binder's calling convention.
func (f Func) method() behavior.Method {
	return func(recv behavior.Receiver, args []any) (any, error) {
		self, _ := recv.(*Instance)
		return f(self, args...)
	}
}

// fromMethod converts a binder method back into a Func.
func fromMethod(m behavior.Method) Func {
	return func(self *Instance, args ...any) (any, error) {
		return m(self, args)
	}
}

// funcName derives a member name from a func's symbol. Anonymous closures
// have no usable name and yield "".
func funcName(fn any) string {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(fv.Pointer())
	if rf == nil {
		return ""
	}
	name := rf.Name()
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || anonFunc.MatchString(name) {
		return ""
	}
	return memberName(name)
}

// memberName lowers the first letter of a Go identifier, so the exported
// method Greet is composed as "greet".
func memberName(goName string) string {
	r, size := utf8.DecodeRuneInString(goName)
	if r == utf8.RuneError {
		return goName
	}
	return string(unicode.ToLower(r)) + goName[size:]
}
