package sqlbind

import (
	"database/sql"
	"encoding"
	"reflect"
	"slices"
	"time"

	"tagged-serde/diagnostic"
	"tagged-serde/internal/common"
	"tagged-serde/node"
	"tagged-serde/primitive"
)

var (
	textMarshaler   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Args returns the column values of the row v, a struct or a pointer to one.
func Args(v any) ([]any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return nil, diagnostic.Configuration("rows must be structs, got %T", v)
	}

	s, err := schemaOf(rv.Type())
	if err != nil {
		return nil, err
	}

	return s.args(rv)
}

func (s *Schema) args(rv reflect.Value) ([]any, error) {
	if !rv.CanAddr() {
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		rv = cp
	}

	members := columns(rv)
	out := make([]any, len(members))

	for i, m := range members {
		arg, err := bindValue(m.Value)
		if err != nil {
			return nil, diagnostic.WithKey(err, s.Columns[i].Name)
		}

		out[i] = arg
	}

	return out, nil
}

func bindValue(rv reflect.Value) (any, error) {
	t := rv.Type()

	switch node.Dispatch(t) {
	case node.DispatcherOptional:
		if rv.IsNil() {
			return nil, nil
		}

		return bindValue(rv.Elem())
	case node.DispatcherTime:
		return rv.Interface().(time.Time).Unix(), nil
	case node.DispatcherDuration:
		return rv.Int(), nil
	case node.DispatcherEnumeration:
		set, _ := primitive.LookupEnum(t)

		name, ok := set.Name(rv)
		if !ok {
			return nil, diagnostic.FormatViolation("%s", set.Outside(rv))
		}

		return name, nil
	case node.DispatcherText:
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, diagnostic.Wrap(err)
		}

		return string(text), nil
	case node.DispatcherBytes:
		return slices.Clone(rv.Bytes()), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}

	return nil, diagnostic.Configuration("type %s has no SQL mapping", common.TypeName(t))
}

// Scan reads the current row of rows into the struct ptr points to.
// Columns are matched by position. Errors carry the column ordinal.
//
// On error *ptr is left unchanged.
func Scan(rows *sql.Rows, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return diagnostic.Configuration("scan target must be a non-nil pointer, got %T", ptr)
	}

	s, err := schemaOf(rv.Type().Elem())
	if err != nil {
		return err
	}

	staged := reflect.New(s.Type)
	staged.Elem().Set(rv.Elem())

	if err := s.scan(rows, staged.Elem()); err != nil {
		return err
	}

	rv.Elem().Set(staged.Elem())

	return nil
}

func (s *Schema) scan(rows *sql.Rows, rv reflect.Value) error {
	cols, err := rows.Columns()
	if err != nil {
		return diagnostic.Wrap(err)
	}

	if len(cols) != len(s.Columns) {
		return diagnostic.SizeMismatch(len(s.Columns), len(cols))
	}

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))

	for i := range raw {
		dest[i] = &raw[i]
	}

	if err := rows.Scan(dest...); err != nil {
		return diagnostic.Wrap(err)
	}

	for i, m := range columns(rv) {
		if err := assign(m.Value, raw[i]); err != nil {
			return diagnostic.WithIndex(err, i)
		}
	}

	return nil
}

// assign converts the driver value src into dst.
func assign(dst reflect.Value, src any) error {
	t := dst.Type()

	if src == nil {
		switch node.Dispatch(t) {
		case node.DispatcherOptional, node.DispatcherBytes:
			dst.Set(reflect.Zero(t))
			return nil
		}

		return diagnostic.TypeMismatch(common.TypeName(t), "null")
	}

	mismatch := func() error {
		return diagnostic.TypeMismatch(common.TypeName(t), sqlType(src))
	}

	switch node.Dispatch(t) {
	case node.DispatcherOptional:
		elem := reflect.New(t.Elem())
		if err := assign(elem.Elem(), src); err != nil {
			return err
		}

		dst.Set(elem)

		return nil
	case node.DispatcherTime:
		switch v := src.(type) {
		case int64:
			dst.Set(reflect.ValueOf(time.Unix(v, 0).UTC()))
		case time.Time:
			dst.Set(reflect.ValueOf(v.UTC().Truncate(time.Second)))
		case string:
			ts, err := primitive.ParseTimestamp(v)
			if err != nil {
				return err
			}

			dst.Set(reflect.ValueOf(ts))
		default:
			return mismatch()
		}

		return nil
	case node.DispatcherDuration:
		n, ok := src.(int64)
		if !ok {
			return mismatch()
		}

		dst.SetInt(n)

		return nil
	case node.DispatcherEnumeration, node.DispatcherText, node.DispatcherBytes:
		text, ok := textOf(src)
		if !ok {
			return mismatch()
		}

		return assignText(dst, text)
	}

	switch t.Kind() {
	case reflect.String:
		text, ok := textOf(src)
		if !ok {
			return mismatch()
		}

		dst.SetString(string(text))
	case reflect.Bool:
		switch v := src.(type) {
		case bool:
			dst.SetBool(v)
		case int64:
			dst.SetBool(v != 0)
		default:
			return mismatch()
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := src.(int64)
		if !ok {
			return mismatch()
		}

		if dst.OverflowInt(n) {
			return diagnostic.FormatViolation("value %d overflows %s", n, common.TypeName(t))
		}

		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := src.(int64)
		if !ok {
			return mismatch()
		}

		if n < 0 || dst.OverflowUint(uint64(n)) {
			return diagnostic.FormatViolation("value %d overflows %s", n, common.TypeName(t))
		}

		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		switch v := src.(type) {
		case float64:
			dst.SetFloat(v)
		case int64:
			dst.SetFloat(float64(v))
		default:
			return mismatch()
		}
	default:
		return diagnostic.Configuration("type %s has no SQL mapping", common.TypeName(t))
	}

	return nil
}

func assignText(dst reflect.Value, text []byte) error {
	t := dst.Type()

	switch node.Dispatch(t) {
	case node.DispatcherEnumeration:
		set, _ := primitive.LookupEnum(t)

		v, ok := set.Value(string(text))
		if !ok {
			return diagnostic.FormatViolation("%s", set.Invalid(string(text)))
		}

		dst.Set(v)
	case node.DispatcherText:
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText(text); err != nil {
			return diagnostic.Wrap(err)
		}

		dst.Set(p.Elem())
	default:
		dst.SetBytes(slices.Clone(text))
	}

	return nil
}

func textOf(src any) ([]byte, bool) {
	switch v := src.(type) {
	case string:
		return []byte(v), true
	case []byte:
		return v, true
	}

	return nil, false
}

// sqlType names a driver value by its storage class.
func sqlType(src any) string {
	switch src.(type) {
	case int64:
		return "integer"
	case float64:
		return "real"
	case string:
		return "text"
	case []byte:
		return "blob"
	case bool:
		return "boolean"
	case time.Time:
		return "datetime"
	}

	return common.TypeName(reflect.TypeOf(src))
}
