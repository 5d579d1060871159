// Package proto maps tagged records to and from the protobuf wire format
// without generated code or descriptors. The `proto` tag key carries the
// field number:
//
//	type User struct {
//		ID    int64    `proto:"1"`
//		Name  string   `proto:"2"`
//		Email *string  `proto:"3"`
//		Roles []string `proto:"4,skipmissing"`
//	}
//
// Integers, bools and enums are varints (signed values sign-extended as
// protobuf int64 and int32 are), float32 is fixed32, float64 is fixed64,
// and strings, byte slices and nested records are length-delimited.
// Slices and arrays are repeated fields.
package proto

import (
	"reflect"

	"google.golang.org/protobuf/encoding/protowire"

	"tagged-serde/node"
	"tagged-serde/tag"
)

// Format is used to resolve member directives. Protobuf has no document
// tree, so it carries no reader or writer.
var Format = &node.Format{
	Name:       "proto",
	Namespaces: []string{"proto"},
}

// Capable reports whether values of type t can be carried in a message
// field. Time, maps, variants and interfaces have no wire mapping.
func Capable(t reflect.Type) bool {
	switch node.Dispatch(t) {
	case node.DispatcherPrimitive, node.DispatcherBytes, node.DispatcherDuration, node.DispatcherTuple:
		return true
	case node.DispatcherEnumeration:
		return isInteger(t)
	case node.DispatcherOptional:
		return scalarOrMessage(t.Elem()) && Capable(t.Elem())
	case node.DispatcherSlice, node.DispatcherArray:
		return scalarOrMessage(t.Elem()) && Capable(t.Elem())
	case node.DispatcherStruct:
		return node.Serializable(Format, t)
	}

	return false
}

// scalarOrMessage rejects element types that would need a nested
// repeated or optional wrapper.
func scalarOrMessage(t reflect.Type) bool {
	switch node.Dispatch(t) {
	case node.DispatcherOptional, node.DispatcherSlice, node.DispatcherArray:
		return false
	}

	return true
}

func isMessage(t reflect.Type) bool {
	d := node.Dispatch(t)
	return d == node.DispatcherStruct || d == node.DispatcherTuple
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// field is one member resolved to a wire field number.
type field struct {
	node.Member
	num protowire.Number
}

func fields(rv reflect.Value) []field {
	var out []field

	for _, m := range node.Members(Format, rv) {
		if m.Info.Inert() || !m.Value.IsValid() || !Capable(m.Value.Type()) {
			continue
		}

		num := tag.FieldNumber(m.Info)
		if num <= 0 || num > int64(protowire.MaxValidNumber) {
			continue
		}

		out = append(out, field{Member: m, num: protowire.Number(num)})
	}

	return out
}
