package node

import (
	"reflect"

	"tagged-serde/internal/common"
)

func typeStr(t reflect.Type) string {
	return common.TypeName(t)
}

// addressable returns rv itself when it is addressable and an addressable
// copy otherwise, so that pointer-receiver methods can be reached.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}

	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)

	return cp
}

// IsEmpty reports whether v is in the empty state omitempty suppresses:
// a nil pointer or interface, a zero number, false, or a zero length.
// Structs, including time.Time and variants, are never empty.
func IsEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	default:
		return false
	}
}
