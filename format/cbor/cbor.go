// Package cbor reads and writes CBOR (RFC 8949) through the tag dispatch
// engine. Fields are keyed by the `cbor` namespace, falling back to `json`.
//
// Output uses core deterministic encoding, so equal values always produce
// equal bytes and map keys come out sorted. Byte strings and date-times
// (tag 0) are native.
package cbor

import (
	"math/big"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"tagged-serde/diagnostic"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/tree"
)

var Format = &node.Format{
	Name:        "cbor",
	Namespaces:  []string{"cbor", "json"},
	Null:        true,
	NativeTime:  true,
	NativeBytes: true,
	Read:        Read,
	Write:       Write,
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

const (
	minNestedLevels = 4
	maxNestedLevels = 65535
)

// Read decodes exactly one CBOR data item. Map keys must be text strings;
// members are ordered by key.
func Read(data []byte, o options.Options) (*tree.Node, error) {
	o = options.Resolve(o)

	dm, err := cbor.DecOptions{
		DefaultMapType:  reflect.TypeFor[map[string]any](),
		MaxNestedLevels: min(max(o.MaxDepth+1, minNestedLevels), maxNestedLevels),
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		return nil, diagnostic.Configuration("cbor: %v", err)
	}

	var v any
	if err := dm.Unmarshal(data, &v); err != nil {
		return nil, diagnostic.FormatViolation("invalid cbor: %v", err)
	}

	return read(v, 0, o.MaxDepth)
}

func read(v any, depth, limit int) (*tree.Node, error) {
	if depth > limit {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
	}

	switch v := v.(type) {
	case nil:
		return tree.Null(), nil
	case bool:
		return tree.Bool(v), nil
	case int64:
		return tree.Int(v), nil
	case uint64:
		return tree.Uint(v), nil
	case big.Int:
		return bigInt(&v)
	case *big.Int:
		return bigInt(v)
	case float64:
		return tree.Float(v), nil
	case string:
		return tree.String(v), nil
	case []byte:
		return tree.Bytes(v), nil
	case time.Time:
		return tree.Time(v), nil
	case []any:
		arr := tree.Array()
		for i, item := range v {
			child, err := read(item, depth+1, limit)
			if err != nil {
				return nil, diagnostic.WithIndex(err, i)
			}

			arr.Append(child)
		}

		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}

		slices.SortFunc(keys, strings.Compare)

		obj := tree.Object()
		for _, k := range keys {
			child, err := read(v[k], depth+1, limit)
			if err != nil {
				return nil, diagnostic.WithKey(err, k)
			}

			obj.Set(k, child)
		}

		return obj, nil
	case cbor.Tag:
		return nil, diagnostic.FormatViolation("unsupported cbor tag %d", v.Number)
	}

	return nil, diagnostic.FormatViolation("unsupported cbor value %T", v)
}

func bigInt(b *big.Int) (*tree.Node, error) {
	switch {
	case b.IsInt64():
		return tree.Int(b.Int64()), nil
	case b.IsUint64():
		return tree.Uint(b.Uint64()), nil
	}

	return nil, diagnostic.FormatViolation("integer %s out of range", b)
}

var encMode = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339
	opts.TimeTag = cbor.EncTagRequired

	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}

	return em
}()

// Write encodes n. Indentation options do not apply to a binary format.
func Write(n *tree.Node, o options.Options) ([]byte, error) {
	o = options.Resolve(o)

	v, err := plain(n, 0, o.MaxDepth)
	if err != nil {
		return nil, err
	}

	out, err := encMode.Marshal(v)
	if err != nil {
		return nil, diagnostic.FormatViolation("cbor: %v", err)
	}

	return out, nil
}

func plain(n *tree.Node, depth, limit int) (any, error) {
	if depth > limit {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
	}

	switch n.Kind() {
	case tree.KindNull:
		return nil, nil
	case tree.KindBool:
		b, _ := n.Bool()
		return b, nil
	case tree.KindInt:
		i, _ := n.Int()
		return i, nil
	case tree.KindUint:
		u, _ := n.Uint()
		return u, nil
	case tree.KindFloat:
		f, _ := n.Float()
		return f, nil
	case tree.KindString:
		s, _ := n.Text()
		return s, nil
	case tree.KindBytes:
		b, _ := n.Bytes()
		return b, nil
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

	return nil, diagnostic.FormatViolation("cbor cannot represent %s", n.Kind())
}
