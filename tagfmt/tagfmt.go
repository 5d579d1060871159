// Package tagfmt prints tagged records as compact, human-readable text.
//
//	type Person struct {
//		Name    string  `fmt:"name"`
//		Age     int     `fmt:"age"`
//		Address *string `fmt:"address"`
//	}
//
//	tagfmt.Sprint(Person{Name: "Sucipto", Age: 24})
//	// (name="Sucipto", age=24, address=null)
//
// Records and tuples print in parentheses, sequences in brackets and maps
// in braces. Members tagged in the `fmt` namespace print as key=value,
// untagged members print their value only, and `fmt:"-"` hides a member.
// Strings are quoted everywhere but at the top level.
package tagfmt

import (
	"cmp"
	"encoding"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/primitive"
	"tagged-serde/tag"
	"tagged-serde/variant"
)

// Format resolves the `fmt` directives of members.
var Format = &node.Format{
	Name:       "fmt",
	Namespaces: []string{"fmt"},
}

// Sprint renders v.
func Sprint(v any) string {
	var p printer

	p.value(reflect.ValueOf(v), 0)

	return p.b.String()
}

// Fprint writes the rendering of v to w.
func Fprint(w io.Writer, v any) (int, error) {
	return io.WriteString(w, Sprint(v))
}

// Of wraps v in a fmt.Stringer, for loggers and %s verbs.
func Of(v any) fmt.Stringer {
	return stringer{v}
}

type stringer struct{ v any }

func (s stringer) String() string { return Sprint(s.v) }

type printer struct {
	b strings.Builder
}

func (p *printer) value(rv reflect.Value, depth int) {
	if !rv.IsValid() {
		p.b.WriteString("null")
		return
	}

	if depth > options.DefaultMaxDepth {
		p.b.WriteString("...")
		return
	}

	nested := depth > 0
	t := rv.Type()

	switch node.Dispatch(t) {
	case node.DispatcherVariant:
		p.value(reflect.ValueOf(rv.Interface().(variant.Reader).Value()), depth)
	case node.DispatcherTime:
		p.b.WriteString(primitive.FormatTimestamp(rv.Interface().(time.Time)))
	case node.DispatcherDuration:
		p.b.WriteString(time.Duration(rv.Int()).String())
	case node.DispatcherTuple:
		p.record(node.Members(Format, rv), depth)
	case node.DispatcherEnumeration:
		set, _ := primitive.LookupEnum(t)
		if name, ok := set.Name(rv); ok {
			p.b.WriteString(name)
		} else {
			p.primitive(rv, nested)
		}
	case node.DispatcherText:
		if m, ok := rv.Interface().(encoding.TextMarshaler); ok {
			if text, err := m.MarshalText(); err == nil {
				p.str(string(text), nested)
				return
			}
		}

		p.b.WriteString(fmt.Sprint(rv.Interface()))
	case node.DispatcherOptional, node.DispatcherInterface:
		if rv.IsNil() {
			p.b.WriteString("null")
			return
		}

		p.value(rv.Elem(), depth)
	case node.DispatcherBytes, node.DispatcherSlice, node.DispatcherArray:
		p.b.WriteByte('[')

		for i := range rv.Len() {
			if i > 0 {
				p.b.WriteString(", ")
			}

			p.value(rv.Index(i), depth+1)
		}

		p.b.WriteByte(']')
	case node.DispatcherMap:
		p.mapping(rv, depth)
	case node.DispatcherStruct:
		if !rv.CanAddr() {
			cp := reflect.New(t).Elem()
			cp.Set(rv)
			rv = cp
		}

		p.record(node.Members(Format, rv), depth)
	default:
		p.primitive(rv, nested)
	}
}

func (p *printer) record(members []node.Member, depth int) {
	p.b.WriteByte('(')

	first := true

	for _, m := range members {
		if _, tagged := tag.Lookup(m.Raw, "fmt"); tagged && m.Info.Inert() {
			continue
		}

		if !first {
			p.b.WriteString(", ")
		}

		first = false

		if !m.Info.Inert() {
			p.b.WriteString(m.Info.Key)
			p.b.WriteByte('=')
		}

		p.value(m.Value, depth+1)
	}

	p.b.WriteByte(')')
}

// mapping prints entries ordered by their rendered keys.
func (p *printer) mapping(rv reflect.Value, depth int) {
	type entry struct{ k, v string }

	entries := make([]entry, 0, rv.Len())

	for it := rv.MapRange(); it.Next(); {
		var k, v printer

		k.value(it.Key(), depth+1)
		v.value(it.Value(), depth+1)
		entries = append(entries, entry{k.b.String(), v.b.String()})
	}

	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.k, b.k) })

	p.b.WriteByte('{')

	for i, e := range entries {
		if i > 0 {
			p.b.WriteString(", ")
		}

		p.b.WriteString(e.k)
		p.b.WriteString(": ")
		p.b.WriteString(e.v)
	}

	p.b.WriteByte('}')
}

func (p *printer) primitive(rv reflect.Value, nested bool) {
	switch rv.Kind() {
	case reflect.String:
		p.str(rv.String(), nested)
	case reflect.Bool:
		p.b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p.b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		p.b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		p.b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits()))
	default:
		p.b.WriteString(fmt.Sprint(rv.Interface()))
	}
}

func (p *printer) str(s string, nested bool) {
	if nested {
		s = strconv.Quote(s)
	}

	p.b.WriteString(s)
}
