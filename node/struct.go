package node

import (
	"reflect"
	"slices"
	"strconv"
	"sync"

	"tagged-serde/tag"
)

// Member is one field of a struct or one slot of a tuple, resolved for a format.
type Member struct {
	// Name is the Go field name, or the slot position of a tuple.
	Name string
	// Raw is the directive string the Info was parsed from.
	Raw  string
	Info tag.Info
	// Value is the member value. It is settable when the container is
	// addressable, and invalid for nil tuple slots.
	Value reflect.Value
}

type fieldDesc struct {
	index   []int
	name    string
	raw     string
	wrapped bool
}

var fieldCache sync.Map // reflect.Type -> []fieldDesc

func structFields(t reflect.Type) []fieldDesc {
	if v, ok := fieldCache.Load(t); ok {
		return v.([]fieldDesc)
	}

	fields := collectFields(t, nil, nil)
	fieldCache.Store(t, fields)

	return fields
}

// collectFields lists exported fields in declaration order. Untagged
// embedded structs are flattened into their parent.
func collectFields(t reflect.Type, prefix []int, out []fieldDesc) []fieldDesc {
	for i := range t.NumField() {
		sf := t.Field(i)
		index := append(slices.Clone(prefix), i)
		_, wrapped := tag.ValueType(sf.Type)

		if sf.Anonymous && sf.Tag == "" && !wrapped && sf.Type.Kind() == reflect.Struct {
			out = collectFields(sf.Type, index, out)
			continue
		}

		if !sf.IsExported() {
			continue
		}

		out = append(out, fieldDesc{index: index, name: sf.Name, raw: string(sf.Tag), wrapped: wrapped})
	}

	return out
}

// keyed reports whether any field of struct type t takes part in format f.
func keyed(f *Format, t reflect.Type) bool {
	if t.NumField() == 0 {
		return true
	}

	for _, fd := range structFields(t) {
		if fd.wrapped || !f.Info(fd.raw).Inert() {
			return true
		}
	}

	return false
}

// Members lists the fields of the struct rv, or the slots of a tag.Tuple,
// in declaration order. Inert members are included; callers filter them.
//
// A field of type tag.Tag[T] contributes its held value, under the
// directives of the wrapper when it has any and of the struct field otherwise.
func Members(f *Format, rv reflect.Value) []Member {
	if rv.Type() == tupleType {
		return tupleMembers(f, rv.Interface().(tag.Tuple))
	}

	fields := structFields(rv.Type())
	out := make([]Member, 0, len(fields))

	for _, fd := range fields {
		fv := rv.FieldByIndex(fd.index)
		raw := fd.raw

		if fd.wrapped {
			if fv.CanAddr() {
				w := fv.Addr().Interface().(tag.Field)
				if r := w.Raw(); r != "" {
					raw = r
				}

				fv = reflect.ValueOf(w.Addr()).Elem()
			} else {
				fv = fv.FieldByName("Value")
			}
		}

		out = append(out, Member{Name: fd.name, Raw: raw, Info: f.Info(raw), Value: fv})
	}

	return out
}

func tupleMembers(f *Format, tup tag.Tuple) []Member {
	out := make([]Member, len(tup))

	for i, slot := range tup {
		m := Member{Name: strconv.Itoa(i)}

		if field, ok := slot.(tag.Field); ok {
			m.Raw = field.Raw()
			m.Value = reflect.ValueOf(field.Addr()).Elem()
		} else if rv := reflect.ValueOf(slot); rv.Kind() == reflect.Pointer && !rv.IsNil() {
			m.Value = rv.Elem()
		} else {
			m.Value = rv
		}

		m.Info = f.Info(m.Raw)
		out[i] = m
	}

	return out
}
