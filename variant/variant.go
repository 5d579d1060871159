// Package variant provides closed sum types. A variant is written as the
// alternative it holds, without any discriminant, and read back by trying
// each alternative in declaration order.
package variant

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotAlternative is returned by Set for values outside the alternative set.
var ErrNotAlternative = errors.New("value is not an alternative of the variant")

// Reader is implemented by variant values.
type Reader interface {
	// Alternatives lists the alternative types in declaration order.
	Alternatives() []reflect.Type
	// Value returns the held alternative, nil when empty.
	Value() any
}

// Setter is implemented by variant pointers.
type Setter interface {
	Set(v any) error
}

// Of2 holds one of A or B.
type Of2[A, B any] struct{ v any }

func (o Of2[A, B]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
}

func (o Of2[A, B]) Value() any { return o.v }

func (o *Of2[A, B]) Set(v any) error { return set(&o.v, v, o.Alternatives()) }

// Index returns the position of the held alternative, -1 when empty.
func (o Of2[A, B]) Index() int { return index(o.v, o.Alternatives()) }

// Of3 holds one of A, B or C.
type Of3[A, B, C any] struct{ v any }

func (o Of3[A, B, C]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()}
}

func (o Of3[A, B, C]) Value() any { return o.v }

func (o *Of3[A, B, C]) Set(v any) error { return set(&o.v, v, o.Alternatives()) }

func (o Of3[A, B, C]) Index() int { return index(o.v, o.Alternatives()) }

// Of4 holds one of A, B, C or D.
type Of4[A, B, C, D any] struct{ v any }

func (o Of4[A, B, C, D]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D]()}
}

func (o Of4[A, B, C, D]) Value() any { return o.v }

func (o *Of4[A, B, C, D]) Set(v any) error { return set(&o.v, v, o.Alternatives()) }

func (o Of4[A, B, C, D]) Index() int { return index(o.v, o.Alternatives()) }

// Get returns the held alternative when it has type T.
func Get[T any](r Reader) (T, bool) {
	v, ok := r.Value().(T)
	return v, ok
}

// Must sets v on s and panics when v is not an alternative.
func Must[S Setter](s S, v any) S {
	if err := s.Set(v); err != nil {
		panic(err)
	}

	return s
}

func set(dst *any, v any, alts []reflect.Type) error {
	if v == nil {
		*dst = nil
		return nil
	}

	if index(v, alts) < 0 {
		return fmt.Errorf("%w: %T", ErrNotAlternative, v)
	}

	*dst = v

	return nil
}

func index(v any, alts []reflect.Type) int {
	if v == nil {
		return -1
	}

	t := reflect.TypeOf(v)
	for i, alt := range alts {
		if alt == t {
			return i
		}
	}

	return -1
}
