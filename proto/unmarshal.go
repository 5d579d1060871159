package proto

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"slices"
	"time"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"tagged-serde/diagnostic"
	"tagged-serde/internal/common"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/primitive"
)

// Parse decodes a message into a new T.
func Parse[T any](data []byte, opts ...options.Options) (T, error) {
	var v T

	err := Unmarshal(data, &v, opts...)

	return v, err
}

// ParseFile decodes the message stored at path.
func ParseFile[T any](path string, opts ...options.Options) (T, error) {
	var v T

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read %s: %w", path, err)
	}

	err = Unmarshal(data, &v, opts...)

	return v, err
}

// Unmarshal decodes data into the record ptr points to. Unknown fields are
// skipped and, as in protobuf, the last occurrence of a scalar field wins.
// A missing field is an error unless it is skipmissing; missing pointers,
// slices and byte strings become nil instead.
//
// On error *ptr is left unchanged.
func Unmarshal(data []byte, ptr any, opts ...options.Options) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return diagnostic.Configuration("decode target must be a non-nil pointer, got %T", ptr)
	}

	t := rv.Type().Elem()
	if !isMessage(t) || !Capable(t) {
		return diagnostic.Configuration("proto messages must be keyed records, got %s", common.TypeName(t))
	}

	u := unmarshaler{o: options.Resolve(opts...)}

	staged := reflect.New(t).Elem()
	staged.Set(rv.Elem())

	commit, err := u.message(data, staged, 0)
	if err != nil {
		return err
	}

	commit()
	rv.Elem().Set(staged)

	return nil
}

type unmarshaler struct {
	o options.Options
}

// value is one occurrence of a field on the wire.
type value struct {
	typ protowire.Type
	v   uint64
	b   []byte
}

// scan splits a message into the occurrences of each field number.
func scan(data []byte) (map[protowire.Number][]value, error) {
	out := make(map[protowire.Number][]value)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, wireError(n)
		}

		data = data[n:]

		var val value

		switch typ {
		case protowire.VarintType:
			val.v, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(data)
			val.v = uint64(v)
		case protowire.Fixed64Type:
			val.v, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			val.b, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}

		if n < 0 {
			return nil, wireError(n)
		}

		data = data[n:]

		if typ == protowire.StartGroupType {
			continue
		}

		val.typ = typ
		out[num] = append(out[num], val)
	}

	return out, nil
}

func wireError(n int) error {
	return diagnostic.FormatViolation("invalid protobuf wire data: %v", protowire.ParseError(n))
}

// message decodes data into rv. Tuple slots point at caller variables, so
// their assignment is deferred to the returned commit function.
func (u *unmarshaler) message(data []byte, rv reflect.Value, depth int) (func(), error) {
	if depth > u.o.MaxDepth {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", u.o.MaxDepth)
	}

	wire, err := scan(data)
	if err != nil {
		return nil, err
	}

	var commits []func()

	for _, f := range fields(rv) {
		if !f.Value.CanSet() {
			return nil, diagnostic.WithKey(diagnostic.Configuration("member %s is not settable", f.Name), f.Info.Key)
		}

		dst := reflect.New(f.Value.Type()).Elem()
		dst.Set(f.Value)

		present, err := u.field(wire[f.num], dst, depth)
		if err != nil {
			return nil, diagnostic.WithKey(err, f.Info.Key)
		}

		if !present {
			if f.Info.SkipMissing {
				continue
			}

			switch node.Dispatch(dst.Type()) {
			case node.DispatcherOptional, node.DispatcherSlice, node.DispatcherBytes:
				dst.Set(reflect.Zero(dst.Type()))
			default:
				return nil, diagnostic.WithKey(diagnostic.MissingField(), f.Info.Key)
			}
		}

		target := f.Value
		commits = append(commits, func() { target.Set(dst) })
	}

	return func() {
		for _, c := range commits {
			c()
		}
	}, nil
}

// field decodes the occurrences of one field into dst and reports whether
// there were any.
func (u *unmarshaler) field(occ []value, dst reflect.Value, depth int) (bool, error) {
	t := dst.Type()

	switch node.Dispatch(t) {
	case node.DispatcherOptional:
		if len(occ) == 0 {
			return false, nil
		}

		elem := reflect.New(t.Elem())
		if _, err := u.field(occ, elem.Elem(), depth); err != nil {
			return true, err
		}

		dst.Set(elem)

		return true, nil
	case node.DispatcherSlice:
		items, err := u.repeated(occ, t.Elem(), depth)
		if err != nil || len(occ) == 0 {
			return false, err
		}

		out := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			out.Index(i).Set(item)
		}

		dst.Set(out)

		return true, nil
	case node.DispatcherArray:
		if len(occ) == 0 {
			return false, nil
		}

		items, err := u.repeated(occ, t.Elem(), depth)
		if err != nil {
			return true, err
		}

		if len(items) != t.Len() {
			return true, diagnostic.SizeMismatch(t.Len(), len(items))
		}

		for i, item := range items {
			dst.Index(i).Set(item)
		}

		return true, nil
	}

	if len(occ) == 0 {
		return false, nil
	}

	if isMessage(t) {
		// submessages merge in order of appearance
		for _, o := range occ {
			if err := u.submessage(o, dst, depth); err != nil {
				return true, err
			}
		}

		return true, nil
	}

	return true, u.scalar(occ[len(occ)-1], dst)
}

func (u *unmarshaler) submessage(o value, dst reflect.Value, depth int) error {
	if o.typ != protowire.BytesType {
		return diagnostic.TypeMismatch(wireName(protowire.BytesType), wireName(o.typ))
	}

	commit, err := u.message(o.b, dst, depth+1)
	if err != nil {
		return err
	}

	commit()

	return nil
}

// repeated decodes every element of a repeated field. Packed scalar
// encodings are accepted next to one value per occurrence.
func (u *unmarshaler) repeated(occ []value, elem reflect.Type, depth int) ([]reflect.Value, error) {
	var items []reflect.Value

	want := wireType(elem)

	for _, o := range occ {
		if o.typ == protowire.BytesType && want != protowire.BytesType {
			packed, err := unpack(o.b, want)
			if err != nil {
				return nil, diagnostic.WithIndex(err, len(items))
			}

			for _, p := range packed {
				item := reflect.New(elem).Elem()
				if err := u.scalar(p, item); err != nil {
					return nil, diagnostic.WithIndex(err, len(items))
				}

				items = append(items, item)
			}

			continue
		}

		item := reflect.New(elem).Elem()

		var err error
		if isMessage(elem) {
			err = u.submessage(o, item, depth)
		} else {
			err = u.scalar(o, item)
		}

		if err != nil {
			return nil, diagnostic.WithIndex(err, len(items))
		}

		items = append(items, item)
	}

	return items, nil
}

func unpack(b []byte, typ protowire.Type) ([]value, error) {
	var out []value

	for len(b) > 0 {
		val := value{typ: typ}

		var n int

		switch typ {
		case protowire.VarintType:
			val.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			val.v = uint64(v)
		case protowire.Fixed64Type:
			val.v, n = protowire.ConsumeFixed64(b)
		default:
			return nil, diagnostic.FormatViolation("%s values cannot be packed", wireName(typ))
		}

		if n < 0 {
			return nil, wireError(n)
		}

		b = b[n:]
		out = append(out, val)
	}

	return out, nil
}

// scalar decodes one non-message value into dst.
func (u *unmarshaler) scalar(o value, dst reflect.Value) error {
	t := dst.Type()

	if want := wireType(t); o.typ != want {
		return diagnostic.TypeMismatch(wireName(want), wireName(o.typ))
	}

	switch node.Dispatch(t) {
	case node.DispatcherBytes:
		dst.SetBytes(slices.Clone(o.b))
		return nil
	case node.DispatcherDuration:
		dst.SetInt(int64(time.Duration(o.v)))
		return nil
	case node.DispatcherEnumeration:
		v := reflect.New(t).Elem()
		if err := setInteger(v, o.v); err != nil {
			return err
		}

		set, _ := primitive.LookupEnum(t)
		if _, ok := set.Name(v); !ok {
			return diagnostic.FormatViolation("value %d is not a member of %s", o.v, common.TypeName(t))
		}

		dst.Set(v)

		return nil
	}

	switch k := primitive.FromReflectType(t); {
	case k == primitive.KindString:
		if !utf8.Valid(o.b) {
			return diagnostic.FormatViolation("string field contains invalid UTF-8")
		}

		dst.SetString(string(o.b))
	case k == primitive.KindBool:
		dst.SetBool(protowire.DecodeBool(o.v))
	case k == primitive.KindFloat32:
		dst.SetFloat(float64(math.Float32frombits(uint32(o.v))))
	case k == primitive.KindFloat64:
		dst.SetFloat(math.Float64frombits(o.v))
	default:
		return setInteger(dst, o.v)
	}

	return nil
}

func setInteger(dst reflect.Value, v uint64) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := int64(v)
		if dst.OverflowInt(i) {
			return diagnostic.FormatViolation("value %d overflows %s", i, common.TypeName(dst.Type()))
		}

		dst.SetInt(i)
	default:
		if dst.OverflowUint(v) {
			return diagnostic.FormatViolation("value %d overflows %s", v, common.TypeName(dst.Type()))
		}

		dst.SetUint(v)
	}

	return nil
}

// wireType is the wire type a non-repeated value of type t is written with.
func wireType(t reflect.Type) protowire.Type {
	switch node.Dispatch(t) {
	case node.DispatcherBytes, node.DispatcherStruct, node.DispatcherTuple:
		return protowire.BytesType
	case node.DispatcherEnumeration, node.DispatcherDuration:
		return protowire.VarintType
	}

	switch primitive.FromReflectType(t) {
	case primitive.KindString:
		return protowire.BytesType
	case primitive.KindFloat32:
		return protowire.Fixed32Type
	case primitive.KindFloat64:
		return protowire.Fixed64Type
	default:
		return protowire.VarintType
	}
}

func wireName(t protowire.Type) string {
	switch t {
	case protowire.VarintType:
		return "varint"
	case protowire.Fixed32Type:
		return "fixed32"
	case protowire.Fixed64Type:
		return "fixed64"
	case protowire.BytesType:
		return "bytes"
	case protowire.StartGroupType, protowire.EndGroupType:
		return "group"
	default:
		return fmt.Sprintf("wire type %d", t)
	}
}
