package node

import (
	"encoding"
	"reflect"
	"time"

	"tagged-serde/primitive"
	"tagged-serde/tag"
	"tagged-serde/variant"
)

var (
	timeType        = reflect.TypeFor[time.Time]()
	durationType    = reflect.TypeFor[time.Duration]()
	tupleType       = reflect.TypeFor[tag.Tuple]()
	readerType      = reflect.TypeFor[variant.Reader]()
	setterType      = reflect.TypeFor[variant.Setter]()
	textMarshaler   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Dispatch selects the conversion case of t. Cases are checked from the
// most specific shape to the most general one, so a named slice that
// implements encoding.TextMarshaler is text and a registered int type is
// an enumeration.
func Dispatch(t reflect.Type) DispatcherEnum {
	if t == nil {
		return DispatcherUnknown
	}

	switch {
	case isVariant(t):
		return DispatcherVariant
	case t == timeType:
		return DispatcherTime
	case t == durationType:
		return DispatcherDuration
	case t == tupleType:
		return DispatcherTuple
	}

	if _, ok := primitive.LookupEnum(t); ok {
		return DispatcherEnumeration
	}

	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer && isText(t) {
		return DispatcherText
	}

	switch t.Kind() {
	case reflect.Pointer:
		return DispatcherOptional
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return DispatcherBytes
		}

		return DispatcherSlice
	case reflect.Array:
		return DispatcherArray
	case reflect.Map:
		return DispatcherMap
	case reflect.Struct:
		return DispatcherStruct
	case reflect.Interface:
		return DispatcherInterface
	}

	if primitive.FromReflectType(t) != 0 {
		return DispatcherPrimitive
	}

	return DispatcherUnknown
}

func isVariant(t reflect.Type) bool {
	return t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer &&
		t.Implements(readerType) && reflect.PointerTo(t).Implements(setterType)
}

func isText(t reflect.Type) bool {
	return canMarshalText(t) || reflect.PointerTo(t).Implements(textUnmarshaler)
}

func canMarshalText(t reflect.Type) bool {
	return t.Implements(textMarshaler) || reflect.PointerTo(t).Implements(textMarshaler)
}

// alternatives returns the alternative types of variant type t.
func alternatives(t reflect.Type) []reflect.Type {
	return reflect.Zero(t).Interface().(variant.Reader).Alternatives()
}
