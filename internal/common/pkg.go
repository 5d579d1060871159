package common

import (
	"path"
	"reflect"
	"strconv"
)

// UnknownStr is printed for enum values outside their defined range.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// TypeName renders t for messages, qualifying named types by package alias.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeName(t.Elem())
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	default:
		if t.Name() == "" || t.PkgPath() == "" {
			return t.String()
		}

		return PkgAlias(t.PkgPath()) + "." + t.Name()
	}
}
