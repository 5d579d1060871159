package node

import (
	"reflect"
	"sync"
)

var capCache sync.Map // capKey -> bool

// Serializable reports whether values of type t can be written in format f.
// It is decided from the type alone; members failing it are skipped.
func Serializable(f *Format, t reflect.Type) bool {
	var d dealer
	return capable(&d, capKey{format: f, typ: t})
}

// Deserializable reports whether values of type t can be read from format f.
// Unlike Serializable it rejects plain interfaces and types that can only
// marshal themselves to text.
func Deserializable(f *Format, t reflect.Type) bool {
	var d dealer
	return capable(&d, capKey{format: f, typ: t, decode: true})
}

func capable(d *dealer, k capKey) bool {
	if v, ok := capCache.Load(k); ok {
		return v.(bool)
	}

	if !d.enter(k) {
		return true
	}

	ok := decide(d, k)
	d.leave(k)

	if len(d.open) == 0 {
		capCache.Store(k, ok)
	}

	return ok
}

func decide(d *dealer, k capKey) bool {
	t := k.typ
	sub := func(t reflect.Type) bool {
		return capable(d, capKey{format: k.format, typ: t, decode: k.decode})
	}

	switch Dispatch(t) {
	default:
		return false
	case DispatcherPrimitive, DispatcherBytes, DispatcherTime, DispatcherDuration,
		DispatcherEnumeration, DispatcherTuple:
		return true
	case DispatcherText:
		if k.decode {
			return reflect.PointerTo(t).Implements(textUnmarshaler)
		}

		return canMarshalText(t)
	case DispatcherVariant:
		for _, alt := range alternatives(t) {
			if !sub(alt) {
				return false
			}
		}

		return true
	case DispatcherOptional, DispatcherArray, DispatcherSlice:
		return sub(t.Elem())
	case DispatcherMap:
		return t.Key().Kind() == reflect.String && sub(t.Elem())
	case DispatcherStruct:
		return keyed(k.format, t)
	case DispatcherInterface:
		return !k.decode
	}
}
