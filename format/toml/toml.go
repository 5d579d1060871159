// Package toml reads and writes TOML documents through the tag dispatch
// engine, keyed by the `toml` tag namespace.
//
// TOML has no null: absent optionals are written as the zero value of
// their element type. Date-times are native. A document is always a table,
// so only records and string-keyed maps can be dumped at the top level.
package toml

import (
	"bytes"
	"encoding/base64"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"tagged-serde/diagnostic"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/tree"
)

var Format = &node.Format{
	Name:       "toml",
	Namespaces: []string{"toml"},
	NativeTime: true,
	Read:       Read,
	Write:      Write,
}

func Parse[T any](data []byte, opts ...options.Options) (T, error) {
	return node.Parse[T](Format, data, opts...)
}

func ParseInto(data []byte, ptr any, opts ...options.Options) error {
	return node.ParseInto(Format, data, ptr, opts...)
}

func ParseFile[T any](path string, opts ...options.Options) (T, error) {
	return node.ParseFile[T](Format, path, opts...)
}

func Dump(v any, opts ...options.Options) ([]byte, error) {
	return node.Dump(Format, v, opts...)
}

// Read parses a TOML document. Table members keep their document order.
func Read(data []byte, o options.Options) (*tree.Node, error) {
	o = options.Resolve(o)

	var doc map[string]any

	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, diagnostic.FormatViolation("invalid toml: %v", err)
	}

	r := reader{order: make(map[string]int), max: o.MaxDepth}
	for i, key := range md.Keys() {
		path := strings.Join(key, "\x00")
		if _, seen := r.order[path]; !seen {
			r.order[path] = i
		}
	}

	return r.value(doc, nil, 0)
}

type reader struct {
	order map[string]int
	max   int
}

func (r *reader) value(v any, path []string, depth int) (*tree.Node, error) {
	if depth > r.max {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", r.max)
	}

	switch v := v.(type) {
	case bool:
		return tree.Bool(v), nil
	case int64:
		return tree.Int(v), nil
	case float64:
		return tree.Float(v), nil
	case string:
		return tree.String(v), nil
	case time.Time:
		return tree.Time(v), nil
	case map[string]any:
		return r.table(v, path, depth)
	case []map[string]any:
		arr := tree.Array()
		for _, t := range v {
			child, err := r.table(t, path, depth+1)
			if err != nil {
				return nil, err
			}

			arr.Append(child)
		}

		return arr, nil
	case []any:
		arr := tree.Array()
		for _, item := range v {
			child, err := r.value(item, path, depth+1)
			if err != nil {
				return nil, err
			}

			arr.Append(child)
		}

		return arr, nil
	}

	return nil, diagnostic.FormatViolation("unsupported toml value %T", v)
}

// table converts m with its keys in the order they first appeared.
func (r *reader) table(m map[string]any, path []string, depth int) (*tree.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	pos := func(k string) int {
		if i, ok := r.order[strings.Join(append(slices.Clone(path), k), "\x00")]; ok {
			return i
		}

		return math.MaxInt
	}

	slices.SortFunc(keys, func(a, b string) int {
		if pa, pb := pos(a), pos(b); pa != pb {
			return pa - pb
		}

		return strings.Compare(a, b)
	})

	obj := tree.Object()

	for _, k := range keys {
		child, err := r.value(m[k], append(slices.Clone(path), k), depth+1)
		if err != nil {
			return nil, err
		}

		obj.Set(k, child)
	}

	return obj, nil
}

// Write prints n, which must be a table. Keys are written in the order
// of the encoder: plain values first, then sub-tables, each sorted.
func Write(n *tree.Node, o options.Options) ([]byte, error) {
	o = options.Resolve(o)

	if n.Kind() != tree.KindObject {
		return nil, diagnostic.TypeMismatch(tree.KindObject.String(), n.Kind().String())
	}

	doc, err := plain(n, 0, o.MaxDepth)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	enc := toml.NewEncoder(&buf)
	enc.Indent = strings.Repeat(" ", o.Indent)

	if err := enc.Encode(doc); err != nil {
		return nil, diagnostic.FormatViolation("toml: %v", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// plain converts n to the value shapes the encoder understands.
func plain(n *tree.Node, depth, limit int) (any, error) {
	if depth > limit {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
	}

	switch n.Kind() {
	case tree.KindBool:
		b, _ := n.Bool()
		return b, nil
	case tree.KindInt:
		i, _ := n.Int()
		return i, nil
	case tree.KindUint:
		u, _ := n.Uint()
		return nil, diagnostic.FormatViolation("value %d overflows the toml integer range", u)
	case tree.KindFloat:
		f, _ := n.Float()
		return f, nil
	case tree.KindString:
		s, _ := n.Text()
		return s, nil
	case tree.KindBytes:
		b, _ := n.Bytes()
		return base64.StdEncoding.EncodeToString(b), nil
	case tree.KindTime:
		t, _ := n.Time()
		return t.UTC(), nil
	case tree.KindArray:
		items := make([]any, 0, n.Len())
		for i, item := range n.Elements() {
			v, err := plain(item, depth+1, limit)
			if err != nil {
				return nil, diagnostic.WithIndex(err, i)
			}

			items = append(items, v)
		}

		return items, nil
	case tree.KindObject:
		m := make(map[string]any, n.Len())
		for k, child := range n.Members() {
			v, err := plain(child, depth+1, limit)
			if err != nil {
				return nil, diagnostic.WithKey(err, k)
			}

			m[k] = v
		}

		return m, nil
	}

	return nil, diagnostic.FormatViolation("toml cannot represent %s", n.Kind())
}
