package cli

import (
	"encoding"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"tagged-serde/diagnostic"
	"tagged-serde/internal/common"
	"tagged-serde/node"
	"tagged-serde/primitive"
)

// value adapts a reflected field to pflag.Value. Slice fields collect one
// element per occurrence; the first occurrence replaces the default.
type value struct {
	rv      reflect.Value
	changed bool
}

func newValue(rv reflect.Value) (*value, error) {
	if !supported(rv.Type()) {
		return nil, diagnostic.Configuration("type %s cannot be read from the command line", common.TypeName(rv.Type()))
	}

	return &value{rv: rv}, nil
}

func supported(t reflect.Type) bool {
	switch node.Dispatch(t) {
	case node.DispatcherPrimitive, node.DispatcherTime, node.DispatcherDuration, node.DispatcherEnumeration:
		return true
	case node.DispatcherText:
		return reflect.PointerTo(t).Implements(textUnmarshaler)
	case node.DispatcherOptional, node.DispatcherSlice:
		return scalar(t.Elem()) && supported(t.Elem())
	}

	return false
}

func scalar(t reflect.Type) bool {
	switch node.Dispatch(t) {
	case node.DispatcherOptional, node.DispatcherSlice:
		return false
	}

	return true
}

var textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()

func (v *value) String() string {
	return format(v.rv)
}

func (v *value) Set(s string) error {
	t := v.rv.Type()

	if node.Dispatch(t) != node.DispatcherSlice {
		parsed, err := parse(t, s)
		if err != nil {
			return err
		}

		v.rv.Set(parsed)

		return nil
	}

	elem, err := parse(t.Elem(), s)
	if err != nil {
		return err
	}

	if !v.changed {
		v.rv.Set(reflect.MakeSlice(t, 0, 1))
	}

	v.changed = true
	v.rv.Set(reflect.Append(v.rv, elem))

	return nil
}

// Type names the value in usage text. pflag hides the name of "bool".
func (v *value) Type() string {
	return typeName(v.rv.Type())
}

func typeName(t reflect.Type) string {
	switch node.Dispatch(t) {
	case node.DispatcherEnumeration:
		set, _ := primitive.LookupEnum(t)
		return strings.Join(set.Names(), "|")
	case node.DispatcherTime:
		return "timestamp"
	case node.DispatcherDuration:
		return "duration"
	case node.DispatcherText:
		return "string"
	case node.DispatcherOptional:
		return typeName(t.Elem())
	case node.DispatcherSlice:
		return typeName(t.Elem()) + "s"
	}

	return t.Kind().String()
}

// parse reads one command-line word as a value of type t.
func parse(t reflect.Type, s string) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	switch node.Dispatch(t) {
	case node.DispatcherOptional:
		elem, err := parse(t.Elem(), s)
		if err != nil {
			return out, err
		}

		p := reflect.New(t.Elem())
		p.Elem().Set(elem)

		return p, nil
	case node.DispatcherTime:
		ts, err := primitive.ParseTimestamp(s)
		if err != nil {
			return out, err
		}

		out.Set(reflect.ValueOf(ts))

		return out, nil
	case node.DispatcherDuration:
		d, err := time.ParseDuration(s)
		if err != nil {
			return out, diagnostic.FormatViolation("invalid duration `%s`", s)
		}

		out.SetInt(int64(d))

		return out, nil
	case node.DispatcherEnumeration:
		set, _ := primitive.LookupEnum(t)

		ev, ok := set.Value(s)
		if !ok {
			return out, diagnostic.FormatViolation("%s", set.Invalid(s))
		}

		out.Set(ev)

		return out, nil
	case node.DispatcherText:
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return out, diagnostic.Wrap(err)
		}

		return p.Elem(), nil
	}

	var err error

	switch t.Kind() {
	case reflect.Bool:
		var b bool
		b, err = strconv.ParseBool(s)
		out.SetBool(b)
	case reflect.String:
		out.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		i, err = strconv.ParseInt(s, 0, t.Bits())
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		u, err = strconv.ParseUint(s, 0, t.Bits())
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = strconv.ParseFloat(s, t.Bits())
		out.SetFloat(f)
	default:
		return out, diagnostic.Configuration("type %s cannot be read from the command line", common.TypeName(t))
	}

	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}

		return out, diagnostic.FormatViolation("invalid %s `%s`: %v", t.Kind(), s, err)
	}

	return out, nil
}

// format renders a value the way parse reads it. Zero times, nil pointers
// and empty slices render empty.
func format(rv reflect.Value) string {
	if !rv.IsValid() {
		return ""
	}

	t := rv.Type()

	switch node.Dispatch(t) {
	case node.DispatcherOptional:
		if rv.IsNil() {
			return ""
		}

		return format(rv.Elem())
	case node.DispatcherSlice:
		if rv.Len() == 0 {
			return ""
		}

		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = format(rv.Index(i))
		}

		return "[" + strings.Join(parts, ",") + "]"
	case node.DispatcherTime:
		ts := rv.Interface().(time.Time)
		if ts.IsZero() {
			return ""
		}

		return primitive.FormatTimestamp(ts)
	case node.DispatcherDuration:
		return time.Duration(rv.Int()).String()
	case node.DispatcherEnumeration:
		set, _ := primitive.LookupEnum(t)
		if name, ok := set.Name(rv); ok {
			return name
		}
	case node.DispatcherText:
		m, ok := rv.Interface().(encoding.TextMarshaler)
		if !ok {
			return ""
		}

		text, err := m.MarshalText()
		if err != nil {
			return ""
		}

		return string(text)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())
	}

	return ""
}
