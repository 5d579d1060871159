package primitive

import (
	"fmt"
	"reflect"
	"strings"
	"strconv"
	"sync"

	"tagged-serde/internal/common"
	"tagged-serde/internal/match"
)

// Symbolic is a closed set of named constants.
type Symbolic interface {
	comparable
	fmt.Stringer
}

// EnumSet is the registered value set of one enumeration type.
type EnumSet struct {
	typ     reflect.Type
	names   []string
	byName  map[string]reflect.Value
	byValue map[any]string
}

var enums sync.Map // reflect.Type -> *EnumSet

// RegisterEnum declares values as the complete set of E. Values are written
// and read by their String form. Register before the first conversion of E;
// capability answers are cached per type.
//
// It panics on duplicate names.
func RegisterEnum[E Symbolic](values ...E) {
	t := reflect.TypeFor[E]()

	set := &EnumSet{
		typ:     t,
		names:   make([]string, 0, len(values)),
		byName:  make(map[string]reflect.Value, len(values)),
		byValue: make(map[any]string, len(values)),
	}

	for _, v := range values {
		name := v.String()
		if _, dup := set.byName[name]; dup {
			panic(fmt.Sprintf("enum %s: duplicate name %q", t, name))
		}

		set.names = append(set.names, name)
		set.byName[name] = reflect.ValueOf(v)
		set.byValue[v] = name
	}

	enums.Store(t, set)
}

// LookupEnum returns the set registered for t.
func LookupEnum(t reflect.Type) (*EnumSet, bool) {
	v, ok := enums.Load(t)
	if !ok {
		return nil, false
	}

	return v.(*EnumSet), true
}

// Names returns the symbol names in registration order.
func (s *EnumSet) Names() []string {
	return s.names
}

// Name returns the symbol name of v.
func (s *EnumSet) Name(v reflect.Value) (string, bool) {
	name, ok := s.byValue[v.Interface()]
	return name, ok
}

// Value returns the constant named name. Matching is exact.
func (s *EnumSet) Value(name string) (reflect.Value, bool) {
	v, ok := s.byName[name]
	return v, ok
}

// Invalid describes a name outside the set.
func (s *EnumSet) Invalid(name string) string {
	msg := fmt.Sprintf("invalid value `%s`, expected one of {%s}", name, strings.Join(s.names, ","))

	if hint, ok := match.Suggest(name, s.names); ok {
		msg += fmt.Sprintf("; did you mean `%s`?", hint)
	}

	return msg
}

// Outside describes a value of the set's type that is not registered.
// The value is shown by its underlying representation, not its String form.
func (s *EnumSet) Outside(v reflect.Value) string {
	var raw string

	switch {
	case v.CanInt():
		raw = strconv.FormatInt(v.Int(), 10)
	case v.CanUint():
		raw = strconv.FormatUint(v.Uint(), 10)
	case v.Kind() == reflect.String:
		raw = strconv.Quote(v.String())
	default:
		raw = fmt.Sprintf("%#v", v.Interface())
	}

	return fmt.Sprintf("value %s is not a member of %s", raw, common.TypeName(s.typ))
}
