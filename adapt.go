package deepcall

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()

	argHooks = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		wholeFloatHook,
	)
)

// wholeFloatHook refuses to truncate a float into an integer type; weak
// decoding would otherwise turn 2.9 into 2.
var wholeFloatHook mapstructure.DecodeHookFuncType = func(from, to reflect.Type, data any) (any, error) {
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
	default:
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("cannot use %v as %s without losing its fractional part", f, to)
	}
	return data, nil
}

// Func adapts an ordinary Go func into a Method.
//
// A leading context.Context parameter receives the call context. Each
// positional argument is passed as is when assignable, otherwise it is
// decoded into the parameter type with weakly typed mapstructure rules, so
// "2" and 2.0 both reach an int parameter and "1s" reaches a time.Duration.
// A float with a fractional part is an error for an integer parameter.
// Missing arguments become zero values and surplus arguments are dropped; a
// variadic parameter collects the tail.
//
// fn may return nothing, a value, an error, or a value and an error. Func
// panics for anything else.
func Func(fn any) Method {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("deepcall: Func expects a func, got %T", fn))
	}
	t := v.Type()
	checkResults(t)

	offset := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		offset = 1
	}

	return func(ctx context.Context, args ...any) (any, error) {
		in := make([]reflect.Value, 0, t.NumIn()+len(args))
		if offset == 1 {
			in = append(in, reflect.ValueOf(&ctx).Elem())
		}

		fixed := t.NumIn() - offset
		if t.IsVariadic() {
			fixed--
		}
		for i := 0; i < fixed; i++ {
			pt := t.In(offset + i)
			if i >= len(args) {
				in = append(in, reflect.Zero(pt))
				continue
			}
			arg, err := decodeArg(args[i], pt)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, arg)
		}
		if t.IsVariadic() {
			elem := t.In(t.NumIn() - 1).Elem()
			for i := fixed; i < len(args); i++ {
				arg, err := decodeArg(args[i], elem)
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", i, err)
				}
				in = append(in, arg)
			}
		}

		return unpackResults(v.Call(in))
	}
}

func checkResults(t reflect.Type) {
	switch t.NumOut() {
	case 0, 1:
		return
	case 2:
		if t.Out(1) == errorType {
			return
		}
	}
	panic(fmt.Sprintf("deepcall: unsupported return signature %s", t))
}

func unpackResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
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

func decodeArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(pt), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}

	target := reflect.New(pt)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       argHooks,
		Result:           target.Interface(),
	})
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrArgumentDecode, err)
	}
	if err := decoder.Decode(arg); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrArgumentDecode, err)
	}
	return target.Elem(), nil
}
