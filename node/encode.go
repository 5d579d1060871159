package node

import (
	"encoding"
	"encoding/base64"
	"reflect"
	"slices"
	"strings"
	"time"

	"tagged-serde/diagnostic"
	"tagged-serde/options"
	"tagged-serde/primitive"
	"tagged-serde/tag"
	"tagged-serde/tree"
	"tagged-serde/variant"
)

type encoder struct {
	f *Format
	o options.Options
}

// Encode converts v into a document node of format f.
func Encode(f *Format, v any, opts ...options.Options) (*tree.Node, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		if f.Null {
			return tree.Null(), nil
		}

		return nil, diagnostic.Configuration("%s cannot represent a nil value", f.Name)
	}

	if !Serializable(f, rv.Type()) {
		return nil, diagnostic.Configuration("type %s cannot be serialized to %s", typeStr(rv.Type()), f.Name)
	}

	e := encoder{f: f, o: options.Resolve(opts...)}

	return e.value(addressable(rv), 0)
}

func (e *encoder) value(rv reflect.Value, depth int) (*tree.Node, error) {
	if depth > e.o.MaxDepth {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", e.o.MaxDepth)
	}

	t := rv.Type()

	switch Dispatch(t) {
	case DispatcherPrimitive:
		return e.primitive(rv)
	case DispatcherBytes:
		return e.bytes(rv), nil
	case DispatcherTime:
		return e.time(rv.Interface().(time.Time)), nil
	case DispatcherDuration:
		return tree.String(time.Duration(rv.Int()).String()), nil
	case DispatcherEnumeration:
		return e.enum(rv)
	case DispatcherText:
		return e.text(rv)
	case DispatcherVariant:
		held := rv.Interface().(variant.Reader).Value()
		if held == nil {
			if e.f.Null {
				return tree.Null(), nil
			}

			return nil, diagnostic.Configuration("variant %s holds no alternative", typeStr(t))
		}

		return e.value(addressable(reflect.ValueOf(held)), depth+1)
	case DispatcherTuple:
		return e.tuple(rv, depth)
	case DispatcherOptional:
		if rv.IsNil() {
			return e.absent(t.Elem(), depth)
		}

		return e.value(rv.Elem(), depth+1)
	case DispatcherArray, DispatcherSlice:
		return e.sequence(rv, depth)
	case DispatcherMap:
		return e.mapping(rv, depth)
	case DispatcherStruct:
		return e.record(rv, depth)
	case DispatcherInterface:
		if rv.IsNil() {
			return e.absent(nil, depth)
		}

		dyn := rv.Elem()
		if !Serializable(e.f, dyn.Type()) {
			return nil, diagnostic.Configuration("type %s cannot be serialized to %s", typeStr(dyn.Type()), e.f.Name)
		}

		return e.value(addressable(dyn), depth+1)
	}

	return nil, diagnostic.Configuration("type %s cannot be serialized to %s", typeStr(t), e.f.Name)
}

// absent writes a missing value: null, or the zero value of t for formats
// without null.
func (e *encoder) absent(t reflect.Type, depth int) (*tree.Node, error) {
	if e.f.Null {
		return tree.Null(), nil
	}

	if t == nil {
		return nil, diagnostic.Configuration("%s cannot represent a nil value", e.f.Name)
	}

	return e.value(reflect.New(t).Elem(), depth+1)
}

func (e *encoder) primitive(rv reflect.Value) (*tree.Node, error) {
	k := primitive.FromReflectType(rv.Type())

	switch {
	case k == primitive.KindBool:
		return tree.Bool(rv.Bool()), nil
	case k == primitive.KindString:
		return tree.String(rv.String()), nil
	case k.IsSigned():
		return tree.Int(rv.Int()), nil
	case k.IsUnsigned():
		return tree.Uint(rv.Uint()), nil
	case k.IsFloat():
		return tree.Float(rv.Float()), nil
	}

	return nil, diagnostic.Configuration("type %s cannot be serialized to %s", typeStr(rv.Type()), e.f.Name)
}

func (e *encoder) bytes(rv reflect.Value) *tree.Node {
	b := rv.Bytes()
	if e.f.NativeBytes {
		return tree.Bytes(slices.Clone(b))
	}

	return tree.String(base64.StdEncoding.EncodeToString(b))
}

func (e *encoder) time(t time.Time) *tree.Node {
	if e.f.NativeTime {
		return tree.Time(t.UTC().Truncate(time.Second))
	}

	return tree.String(primitive.FormatTimestamp(t))
}

func (e *encoder) enum(rv reflect.Value) (*tree.Node, error) {
	set, _ := primitive.LookupEnum(rv.Type())

	name, ok := set.Name(rv)
	if !ok {
		return nil, diagnostic.FormatViolation("%s", set.Outside(rv))
	}

	return tree.String(name), nil
}

func (e *encoder) text(rv reflect.Value) (*tree.Node, error) {
	var m encoding.TextMarshaler

	if rv.Type().Implements(textMarshaler) {
		m = rv.Interface().(encoding.TextMarshaler)
	} else {
		m = addressable(rv).Addr().Interface().(encoding.TextMarshaler)
	}

	b, err := m.MarshalText()
	if err != nil {
		return nil, diagnostic.Wrap(err)
	}

	return tree.String(string(b)), nil
}

func (e *encoder) sequence(rv reflect.Value, depth int) (*tree.Node, error) {
	arr := tree.Array()

	for i := range rv.Len() {
		child, err := e.value(rv.Index(i), depth+1)
		if err != nil {
			return nil, diagnostic.WithIndex(err, i)
		}

		arr.Append(child)
	}

	return arr, nil
}

// mapping writes map entries sorted by key.
func (e *encoder) mapping(rv reflect.Value, depth int) (*tree.Node, error) {
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})

	obj := tree.Object()

	for _, k := range keys {
		child, err := e.value(addressable(rv.MapIndex(k)), depth+1)
		if err != nil {
			return nil, diagnostic.WithKey(err, k.String())
		}

		obj.Set(k.String(), child)
	}

	return obj, nil
}

func (e *encoder) record(rv reflect.Value, depth int) (*tree.Node, error) {
	obj := tree.Object()

	for _, m := range Members(e.f, rv) {
		if err := e.member(obj, m, depth); err != nil {
			return nil, err
		}
	}

	return obj, nil
}

// member attaches m to obj under its key, applying the omitempty and
// noserde directives. Inert and incapable members are skipped.
func (e *encoder) member(obj *tree.Node, m Member, depth int) error {
	if m.Info.Inert() || !m.Value.IsValid() || !Serializable(e.f, m.Value.Type()) {
		return nil
	}

	if m.Info.OmitEmpty && IsEmpty(m.Value) {
		return nil
	}

	child, err := e.field(m, depth)
	if err != nil {
		return diagnostic.WithKey(err, m.Info.Key)
	}

	obj.Set(m.Info.Key, child)

	return nil
}

func (e *encoder) field(m Member, depth int) (*tree.Node, error) {
	if !m.Info.NoSerde {
		return e.value(m.Value, depth+1)
	}

	if m.Value.Kind() != reflect.String {
		return nil, diagnostic.Configuration("noserde requires a string field, got %s", typeStr(m.Value.Type()))
	}

	n, err := e.f.Read([]byte(m.Value.String()), e.o)
	if err != nil {
		return nil, diagnostic.FormatViolation("invalid embedded %s document: %v", e.f.Name, err)
	}

	return n, nil
}

// tuple writes a keyed record, or a sequence of every capable slot when
// all keyed slots are positional.
func (e *encoder) tuple(rv reflect.Value, depth int) (*tree.Node, error) {
	members := Members(e.f, rv)

	if tupleInfo(members).IsObj() {
		obj := tree.Object()

		for _, m := range members {
			if err := e.member(obj, m, depth); err != nil {
				return nil, err
			}
		}

		return obj, nil
	}

	arr := tree.Array()

	for _, m := range members {
		if !m.Value.IsValid() || !Serializable(e.f, m.Value.Type()) {
			continue
		}

		child, err := e.field(m, depth)
		if err != nil {
			return nil, diagnostic.WithIndex(err, arr.Len())
		}

		arr.Append(child)
	}

	return arr, nil
}

func tupleInfo(members []Member) tag.TupleInfo {
	slots := make([]tag.Info, len(members))
	for i, m := range members {
		slots[i] = m.Info
	}

	return tag.TupleInfo{Slots: slots}
}
