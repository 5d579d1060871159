package node

import (
	"encoding"
	"encoding/base64"
	"errors"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"tagged-serde/diagnostic"
	"tagged-serde/options"
	"tagged-serde/primitive"
	"tagged-serde/tree"
	"tagged-serde/variant"
)

type decoder struct {
	f *Format
	o options.Options

	// tuple slots point outside the staged value; their writes wait here
	// until the whole document converted
	commits []func()
}

// Decode converts n into the value ptr points to.
//
// The conversion runs on a copy of the destination, which is committed
// only when every member succeeded: on error *ptr is left as it was.
// Members marked skipmissing keep their current value when absent.
func Decode(f *Format, n *tree.Node, ptr any, opts ...options.Options) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return diagnostic.Configuration("decode target must be a non-nil pointer, got %T", ptr)
	}

	t := rv.Type().Elem()
	if !Deserializable(f, t) {
		return diagnostic.Configuration("type %s cannot be deserialized from %s", typeStr(t), f.Name)
	}

	d := decoder{f: f, o: options.Resolve(opts...)}

	staged := reflect.New(t).Elem()
	staged.Set(rv.Elem())

	if err := d.value(n, staged, 0); err != nil {
		return err
	}

	rv.Elem().Set(staged)

	for _, commit := range d.commits {
		commit()
	}

	return nil
}

func (d *decoder) value(n *tree.Node, rv reflect.Value, depth int) error {
	if depth > d.o.MaxDepth {
		return diagnostic.FormatViolation("maximum nesting depth %d exceeded", d.o.MaxDepth)
	}

	t := rv.Type()

	switch Dispatch(t) {
	case DispatcherPrimitive:
		return d.primitive(n, rv)
	case DispatcherBytes:
		return d.bytes(n, rv)
	case DispatcherTime:
		ts, err := d.time(n)
		if err != nil {
			return err
		}

		rv.Set(reflect.ValueOf(ts))

		return nil
	case DispatcherDuration:
		s, ok := n.Text()
		if !ok {
			return diagnostic.TypeMismatch(primitive.KindDuration.Expected(), n.Kind().String())
		}

		dur, err := time.ParseDuration(s)
		if err != nil {
			return diagnostic.FormatViolation("invalid duration `%s`", s)
		}

		rv.SetInt(int64(dur))

		return nil
	case DispatcherEnumeration:
		return d.enum(n, rv)
	case DispatcherText:
		s, ok := n.Text()
		if !ok {
			return diagnostic.TypeMismatch("string", n.Kind().String())
		}

		fresh := reflect.New(t)
		if err := fresh.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return diagnostic.FormatViolation("invalid %s `%s`: %v", typeStr(t), s, err)
		}

		rv.Set(fresh.Elem())

		return nil
	case DispatcherVariant:
		return d.variant(n, rv, depth)
	case DispatcherTuple:
		return d.tuple(n, rv, depth)
	case DispatcherOptional:
		if n.Kind() == tree.KindNull {
			rv.Set(reflect.Zero(t))
			return nil
		}

		elem := reflect.New(t.Elem())
		if err := d.value(n, elem.Elem(), depth+1); err != nil {
			return err
		}

		rv.Set(elem)

		return nil
	case DispatcherArray:
		return d.array(n, rv, depth)
	case DispatcherSlice:
		return d.slice(n, rv, depth)
	case DispatcherMap:
		return d.mapping(n, rv, depth)
	case DispatcherStruct:
		return d.record(n, rv, depth)
	}

	return diagnostic.Configuration("type %s cannot be deserialized from %s", typeStr(t), d.f.Name)
}

func (d *decoder) primitive(n *tree.Node, rv reflect.Value) error {
	k := primitive.FromReflectType(rv.Type())
	if !k.Accepts(n.Kind()) {
		return diagnostic.TypeMismatch(k.Expected(), n.Kind().String())
	}

	switch {
	case k == primitive.KindBool:
		b, _ := n.Bool()
		rv.SetBool(b)
	case k == primitive.KindString:
		s, _ := n.Text()
		rv.SetString(s)
	case k.IsSigned():
		i, ok := n.Int()
		if !ok {
			u, _ := n.Uint()
			if u > math.MaxInt64 {
				return diagnostic.FormatViolation("value %d overflows %s", u, typeStr(rv.Type()))
			}

			i = int64(u)
		}

		if rv.OverflowInt(i) {
			return diagnostic.FormatViolation("value %d overflows %s", i, typeStr(rv.Type()))
		}

		rv.SetInt(i)
	case k.IsUnsigned():
		u, ok := n.Uint()
		if !ok {
			i, _ := n.Int()
			if i < 0 {
				return diagnostic.TypeMismatch(k.Expected(), n.Kind().String())
			}

			u = uint64(i)
		}

		if rv.OverflowUint(u) {
			return diagnostic.FormatViolation("value %d overflows %s", u, typeStr(rv.Type()))
		}

		rv.SetUint(u)
	case k.IsFloat():
		f, _ := n.Float()
		if rv.OverflowFloat(f) {
			return diagnostic.FormatViolation("value %g overflows %s", f, typeStr(rv.Type()))
		}

		rv.SetFloat(f)
	}

	return nil
}

func (d *decoder) bytes(n *tree.Node, rv reflect.Value) error {
	if b, ok := n.Bytes(); ok {
		rv.SetBytes(slices.Clone(b))
		return nil
	}

	s, ok := n.Text()
	if !ok {
		return diagnostic.TypeMismatch(primitive.KindBytes.Expected(), n.Kind().String())
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return diagnostic.FormatViolation("invalid base64 data: %v", err)
	}

	rv.SetBytes(b)

	return nil
}

func (d *decoder) time(n *tree.Node) (time.Time, error) {
	switch n.Kind() {
	case tree.KindTime:
		t, _ := n.Time()
		return t.UTC().Truncate(time.Second), nil
	case tree.KindString:
		s, _ := n.Text()
		return primitive.ParseTimestamp(s)
	default:
		return time.Time{}, diagnostic.TypeMismatch(primitive.KindTime.Expected(), n.Kind().String())
	}
}

func (d *decoder) enum(n *tree.Node, rv reflect.Value) error {
	s, ok := n.Text()
	if !ok {
		return diagnostic.TypeMismatch(primitive.KindSymbol.Expected(), n.Kind().String())
	}

	set, _ := primitive.LookupEnum(rv.Type())

	v, ok := set.Value(s)
	if !ok {
		return diagnostic.FormatViolation("%s", set.Invalid(s))
	}

	rv.Set(v)

	return nil
}

// variant tries every alternative in declaration order on a fresh value
// and commits the first that converts. The first match wins even when a
// later alternative would also fit.
func (d *decoder) variant(n *tree.Node, rv reflect.Value, depth int) error {
	var expected []string

	for _, alt := range alternatives(rv.Type()) {
		candidate := reflect.New(alt).Elem()
		pending := len(d.commits)

		err := d.value(n, candidate, depth+1)
		if err == nil {
			return rv.Addr().Interface().(variant.Setter).Set(candidate.Interface())
		}

		d.commits = d.commits[:pending]

		var de *diagnostic.Error
		if errors.As(err, &de) && de.Code == diagnostic.CodeTypeMismatch && len(de.Path) == 0 {
			expected = append(expected, de.Expected)
		}
	}

	want := "variant"
	if len(expected) > 0 {
		want = strings.Join(expected, "|")
	}

	return diagnostic.TypeMismatch(want, n.Kind().String())
}

func (d *decoder) array(n *tree.Node, rv reflect.Value, depth int) error {
	if n.Kind() != tree.KindArray {
		return diagnostic.TypeMismatch(tree.KindArray.String(), n.Kind().String())
	}

	if n.Len() != rv.Len() {
		return diagnostic.SizeMismatch(rv.Len(), n.Len())
	}

	for i, item := range n.Elements() {
		if err := d.value(item, rv.Index(i), depth+1); err != nil {
			return diagnostic.WithIndex(err, i)
		}
	}

	return nil
}

func (d *decoder) slice(n *tree.Node, rv reflect.Value, depth int) error {
	if n.Kind() != tree.KindArray {
		return diagnostic.TypeMismatch(tree.KindArray.String(), n.Kind().String())
	}

	out := reflect.MakeSlice(rv.Type(), n.Len(), n.Len())

	for i, item := range n.Elements() {
		if err := d.value(item, out.Index(i), depth+1); err != nil {
			return diagnostic.WithIndex(err, i)
		}
	}

	rv.Set(out)

	return nil
}

func (d *decoder) mapping(n *tree.Node, rv reflect.Value, depth int) error {
	if n.Kind() != tree.KindObject {
		return diagnostic.TypeMismatch(tree.KindObject.String(), n.Kind().String())
	}

	t := rv.Type()
	out := reflect.MakeMapWithSize(t, n.Len())

	for key, child := range n.Members() {
		elem := reflect.New(t.Elem()).Elem()
		if err := d.value(child, elem, depth+1); err != nil {
			return diagnostic.WithKey(err, key)
		}

		out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
	}

	rv.Set(out)

	return nil
}

func (d *decoder) record(n *tree.Node, rv reflect.Value, depth int) error {
	if n.Kind() != tree.KindObject {
		return diagnostic.TypeMismatch(tree.KindObject.String(), n.Kind().String())
	}

	for _, m := range Members(d.f, rv) {
		if _, err := d.member(n, m, m.Value, depth); err != nil {
			return err
		}
	}

	return nil
}

// member reads the member of obj stored under m's key into dst.
// It reports whether the key was present.
func (d *decoder) member(obj *tree.Node, m Member, dst reflect.Value, depth int) (bool, error) {
	if m.Info.Inert() || !m.Value.IsValid() || !Deserializable(d.f, m.Value.Type()) {
		return false, nil
	}

	child, ok := obj.Get(m.Info.Key)
	if !ok {
		if m.Info.SkipMissing {
			return false, nil
		}

		return false, diagnostic.WithKey(diagnostic.MissingField(), m.Info.Key)
	}

	if err := d.field(child, m, dst, depth); err != nil {
		return true, diagnostic.WithKey(err, m.Info.Key)
	}

	return true, nil
}

func (d *decoder) field(n *tree.Node, m Member, dst reflect.Value, depth int) error {
	if !dst.CanSet() {
		return diagnostic.Configuration("member %s is not settable", m.Name)
	}

	if !m.Info.NoSerde {
		return d.value(n, dst, depth+1)
	}

	if dst.Kind() != reflect.String {
		return diagnostic.Configuration("noserde requires a string field, got %s", typeStr(dst.Type()))
	}

	text, err := d.f.Write(n, options.Options{MaxDepth: d.o.MaxDepth})
	if err != nil {
		return err
	}

	dst.SetString(strings.TrimRight(string(text), "\n"))

	return nil
}

// tuple reads every slot into a staged copy. The slots point at caller
// variables, so they are assigned only once Decode as a whole succeeds.
func (d *decoder) tuple(n *tree.Node, rv reflect.Value, depth int) error {
	members := Members(d.f, rv)
	staged := make([]reflect.Value, len(members))

	stage := func(i int) reflect.Value {
		v := reflect.New(members[i].Value.Type()).Elem()
		v.Set(members[i].Value)
		staged[i] = v

		return v
	}

	if tupleInfo(members).IsObj() {
		if n.Kind() != tree.KindObject {
			return diagnostic.TypeMismatch(tree.KindObject.String(), n.Kind().String())
		}

		for i, m := range members {
			if m.Info.Inert() || !m.Value.IsValid() || !Deserializable(d.f, m.Value.Type()) {
				continue
			}

			if !m.Value.CanSet() {
				return diagnostic.WithKey(diagnostic.Configuration("tuple slot %s is not settable", m.Name), m.Info.Key)
			}

			if _, err := d.member(n, m, stage(i), depth); err != nil {
				return err
			}
		}
	} else {
		if n.Kind() != tree.KindArray {
			return diagnostic.TypeMismatch(tree.KindArray.String(), n.Kind().String())
		}

		var slots []int
		for i, m := range members {
			if m.Value.IsValid() && Deserializable(d.f, m.Value.Type()) {
				slots = append(slots, i)
			}
		}

		if len(slots) != n.Len() {
			return diagnostic.SizeMismatch(len(slots), n.Len())
		}

		for pos, i := range slots {
			if !members[i].Value.CanSet() {
				return diagnostic.WithIndex(diagnostic.Configuration("tuple slot %s is not settable", members[i].Name), pos)
			}

			if err := d.field(n.Index(pos), members[i], stage(i), depth); err != nil {
				return diagnostic.WithIndex(err, pos)
			}
		}
	}

	d.commits = append(d.commits, func() {
		for i, v := range staged {
			if v.IsValid() {
				members[i].Value.Set(v)
			}
		}
	})

	return nil
}
