package tag

import "reflect"

// Field is a value carrying its own directive string. *Tag[T] implements it.
type Field interface {
	// Raw returns the directive string.
	Raw() string
	// Addr returns a pointer to the held value.
	Addr() any
}

// Tag pairs a directive string with a value. It is used for tuple slots and
// for struct fields whose directives are chosen at construction time; a zero
// Tag falls back to the directives of the enclosing struct field.
type Tag[T any] struct {
	raw   string
	Value T
}

// New returns a Tag holding value under the directives raw.
func New[T any](raw string, value T) *Tag[T] {
	return &Tag[T]{raw: raw, Value: value}
}

func (t *Tag[T]) Raw() string { return t.raw }

func (t *Tag[T]) Addr() any { return &t.Value }

func (t *Tag[T]) Get() T { return t.Value }

func (t *Tag[T]) Set(v T) { t.Value = v }

// Info parses the directives of namespace ns.
func (t *Tag[T]) Info(ns string) Info { return Parse(t.raw, ns) }

var fieldType = reflect.TypeFor[Field]()

// ValueType reports the held value type when t is a Tag instantiation.
func ValueType(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || !reflect.PointerTo(t).Implements(fieldType) {
		return nil, false
	}

	f, ok := t.FieldByName("Value")
	if !ok {
		return nil, false
	}

	return f.Type, true
}

// Tuple is an ordered record assembled at run time.
// A slot is either a Field, a pointer to an untagged variable, or a plain
// value (written, never read back).
type Tuple []any

// Raws returns the directive string of every slot, empty for untagged ones.
func (t Tuple) Raws() []string {
	raws := make([]string, len(t))
	for i, slot := range t {
		if f, ok := slot.(Field); ok {
			raws[i] = f.Raw()
		}
	}

	return raws
}

// Info parses the tuple directives for namespace ns.
func (t Tuple) Info(ns string) TupleInfo {
	return ParseTuple(t.Raws(), ns)
}
