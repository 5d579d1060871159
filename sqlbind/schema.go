// Package sqlbind maps tagged records to SQL tables. Each `sql` segment is
// a column definition whose first word is the column name:
//
//	type User struct {
//		ID   int64   `sql:"id integer primary key"`
//		Name string  `sql:"name varchar(32) not null"`
//		Age  *int    `sql:"age integer"`
//	}
//
// Statements use "?" placeholders. Values bind positionally in declaration
// order: times as unix seconds, durations as nanoseconds, enumerations by
// name and nil pointers as NULL.
package sqlbind

import (
	"reflect"
	"strings"
	"sync"

	"tagged-serde/diagnostic"
	"tagged-serde/internal/common"
	"tagged-serde/node"
	"tagged-serde/tag"
)

// Format lists the members of row records.
var Format = &node.Format{
	Name:       "sql",
	Namespaces: []string{"sql"},
}

// Column is one mapped member.
type Column struct {
	Name       string
	Definition string
	Type       reflect.Type
}

// Schema is the column layout of a row type.
type Schema struct {
	Type    reflect.Type
	Columns []Column
}

var schemaCache sync.Map // reflect.Type -> *Schema

// Table returns the schema of row type T.
func Table[T any]() (*Schema, error) {
	return schemaOf(reflect.TypeFor[T]())
}

func schemaOf(t reflect.Type) (*Schema, error) {
	if v, ok := schemaCache.Load(t); ok {
		return v.(*Schema), nil
	}

	if t.Kind() != reflect.Struct {
		return nil, diagnostic.Configuration("rows must be structs, got %s", common.TypeName(t))
	}

	s := &Schema{Type: t}

	for _, m := range columns(reflect.New(t).Elem()) {
		def, _ := tag.Lookup(m.Raw, "sql")
		name, _, _ := strings.Cut(def, " ")

		if !bindable(m.Value.Type()) {
			return nil, diagnostic.WithKey(diagnostic.Configuration("type %s has no SQL mapping", common.TypeName(m.Value.Type())), name)
		}

		s.Columns = append(s.Columns, Column{Name: name, Definition: def, Type: m.Value.Type()})
	}

	if len(s.Columns) == 0 {
		return nil, diagnostic.Configuration("type %s has no sql columns", common.TypeName(t))
	}

	schemaCache.Store(t, s)

	return s, nil
}

// columns lists the members of rv that carry a non-empty `sql` segment.
func columns(rv reflect.Value) []node.Member {
	var out []node.Member

	for _, m := range node.Members(Format, rv) {
		if def, ok := tag.Lookup(m.Raw, "sql"); !ok || def == "" || def == "-" {
			continue
		}

		out = append(out, m)
	}

	return out
}

func bindable(t reflect.Type) bool {
	switch node.Dispatch(t) {
	case node.DispatcherPrimitive, node.DispatcherBytes, node.DispatcherTime,
		node.DispatcherDuration, node.DispatcherEnumeration:
		return true
	case node.DispatcherText:
		return t.Implements(textMarshaler) && reflect.PointerTo(t).Implements(textUnmarshaler)
	case node.DispatcherOptional:
		return node.Dispatch(t.Elem()) != node.DispatcherOptional && bindable(t.Elem())
	}

	return false
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}

	return names
}

func (s *Schema) CreateTable(name string) string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = c.Definition
	}

	return "create table " + name + " (" + strings.Join(defs, ", ") + ")"
}

// Insert returns an insert statement for rows rows.
func (s *Schema) Insert(name string, rows int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(s.Columns)), ", ") + ")"

	groups := make([]string, max(rows, 1))
	for i := range groups {
		groups[i] = group
	}

	return "insert into " + name + " (" + strings.Join(s.Names(), ", ") + ") values " + strings.Join(groups, ", ")
}

func (s *Schema) SelectAll(name string) string {
	return "select " + strings.Join(s.Names(), ", ") + " from " + name
}
