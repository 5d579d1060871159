package proto

import (
	"math"
	"reflect"

	"google.golang.org/protobuf/encoding/protowire"

	"tagged-serde/diagnostic"
	"tagged-serde/internal/common"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/primitive"
)

// Marshal encodes the record v, a struct, a pointer to one or a tag.Tuple.
// Nil pointers and fields without a field number are not written.
func Marshal(v any, opts ...options.Options) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	if !rv.IsValid() || !isMessage(rv.Type()) || !Capable(rv.Type()) {
		return nil, diagnostic.Configuration("proto messages must be keyed records, got %T", v)
	}

	m := marshaler{o: options.Resolve(opts...)}

	return m.message(nil, addressable(rv), 0)
}

type marshaler struct {
	o options.Options
}

func (m *marshaler) message(b []byte, rv reflect.Value, depth int) ([]byte, error) {
	if depth > m.o.MaxDepth {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", m.o.MaxDepth)
	}

	for _, f := range fields(rv) {
		if f.Info.OmitEmpty && node.IsEmpty(f.Value) {
			continue
		}

		var err error

		b, err = m.field(b, f.num, f.Value, depth)
		if err != nil {
			return nil, diagnostic.WithKey(err, f.Info.Key)
		}
	}

	return b, nil
}

func (m *marshaler) field(b []byte, num protowire.Number, rv reflect.Value, depth int) ([]byte, error) {
	switch node.Dispatch(rv.Type()) {
	case node.DispatcherOptional:
		if rv.IsNil() {
			return b, nil
		}

		return m.field(b, num, rv.Elem(), depth)
	case node.DispatcherSlice, node.DispatcherArray:
		for i := range rv.Len() {
			var err error

			b, err = m.field(b, num, rv.Index(i), depth)
			if err != nil {
				return nil, diagnostic.WithIndex(err, i)
			}
		}

		return b, nil
	case node.DispatcherStruct, node.DispatcherTuple:
		sub, err := m.message(nil, addressable(rv), depth+1)
		if err != nil {
			return nil, err
		}

		b = protowire.AppendTag(b, num, protowire.BytesType)

		return protowire.AppendBytes(b, sub), nil
	case node.DispatcherEnumeration:
		set, _ := primitive.LookupEnum(rv.Type())
		if _, ok := set.Name(rv); !ok {
			return nil, diagnostic.FormatViolation("%s", set.Outside(rv))
		}

		return appendVarint(b, num, rv), nil
	case node.DispatcherDuration:
		b = protowire.AppendTag(b, num, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(rv.Int())), nil
	case node.DispatcherBytes:
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendBytes(b, rv.Bytes()), nil
	}

	k := primitive.FromReflectType(rv.Type())

	switch {
	case k == primitive.KindString:
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendString(b, rv.String()), nil
	case k == primitive.KindFloat32:
		b = protowire.AppendTag(b, num, protowire.Fixed32Type)
		return protowire.AppendFixed32(b, math.Float32bits(float32(rv.Float()))), nil
	case k == primitive.KindFloat64:
		b = protowire.AppendTag(b, num, protowire.Fixed64Type)
		return protowire.AppendFixed64(b, math.Float64bits(rv.Float())), nil
	case k == primitive.KindBool, k.IsInteger():
		return appendVarint(b, num, rv), nil
	}

	return nil, diagnostic.Configuration("type %s has no protobuf wire mapping", common.TypeName(rv.Type()))
}

func appendVarint(b []byte, num protowire.Number, rv reflect.Value) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)

	switch rv.Kind() {
	case reflect.Bool:
		return protowire.AppendVarint(b, protowire.EncodeBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return protowire.AppendVarint(b, uint64(rv.Int()))
	default:
		return protowire.AppendVarint(b, rv.Uint())
	}
}

func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}

	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)

	return cp
}
