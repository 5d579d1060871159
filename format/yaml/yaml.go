// Package yaml reads and writes YAML documents through the tag dispatch
// engine. Fields are keyed by the `yaml` namespace, falling back to `json`
// so that structs tagged for JSON only work unchanged.
//
// Anchors, aliases and merge keys are resolved on input. Timestamps are
// native; a quoted date is plain text and goes through the canonical
// timestamp parser instead.
package yaml

import (
	"bytes"
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tagged-serde/diagnostic"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/primitive"
	"tagged-serde/tree"
	"tagged-serde/utils"
)

// DefaultIndent is used when the options carry no indentation.
const DefaultIndent = 2

var Format = &node.Format{
	Name:       "yaml",
	Namespaces: []string{"yaml", "json"},
	Null:       true,
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

// Read parses the first document of data. An empty input is null.
func Read(data []byte, o options.Options) (*tree.Node, error) {
	o = options.Resolve(o)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, diagnostic.FormatViolation("invalid yaml: %v", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return tree.Null(), nil
	}

	return read(doc.Content[0], 0, o.MaxDepth)
}

func read(y *yaml.Node, depth, limit int) (*tree.Node, error) {
	if depth > limit {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
	}

	switch y.Kind {
	case yaml.AliasNode:
		return read(y.Alias, depth+1, limit)
	case yaml.ScalarNode:
		return scalar(y)
	case yaml.SequenceNode:
		arr := tree.Array()
		for _, item := range y.Content {
			child, err := read(item, depth+1, limit)
			if err != nil {
				return nil, err
			}

			arr.Append(child)
		}

		return arr, nil
	case yaml.MappingNode:
		return mapping(y, depth, limit)
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return tree.Null(), nil
		}

		return read(y.Content[0], depth, limit)
	}

	return nil, diagnostic.FormatViolation("unsupported yaml node at line %d", y.Line)
}

// mapping converts a mapping. Keys given explicitly win over keys brought
// in by a merge, and earlier merge sources win over later ones.
func mapping(y *yaml.Node, depth, limit int) (*tree.Node, error) {
	obj := tree.Object()

	var merged []*yaml.Node

	for i := 0; i+1 < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]

		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merged = append(merged, v)
			continue
		}

		if k.Kind != yaml.ScalarNode {
			return nil, diagnostic.FormatViolation("unsupported non-scalar mapping key at line %d", k.Line)
		}

		child, err := read(v, depth+1, limit)
		if err != nil {
			return nil, err
		}

		obj.Set(k.Value, child)
	}

	for _, src := range merged {
		for src.Kind == yaml.AliasNode {
			src = src.Alias
		}

		sources := []*yaml.Node{src}
		if src.Kind == yaml.SequenceNode {
			sources = src.Content
		}

		for _, s := range sources {
			m, err := read(s, depth+1, limit)
			if err != nil {
				return nil, err
			}

			if m.Kind() != tree.KindObject {
				return nil, diagnostic.FormatViolation("merge source at line %d is not a mapping", s.Line)
			}

			for key, child := range m.Members() {
				if _, exists := obj.Get(key); !exists {
					obj.Set(key, child)
				}
			}
		}
	}

	return obj, nil
}

func scalar(y *yaml.Node) (*tree.Node, error) {
	bad := func(err error) (*tree.Node, error) {
		return nil, diagnostic.FormatViolation("invalid yaml %s `%s` at line %d: %v", y.ShortTag(), y.Value, y.Line, err)
	}

	switch y.ShortTag() {
	case "!!null":
		return tree.Null(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return bad(err)
		}

		return tree.Bool(b), nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err == nil {
			return tree.Int(i), nil
		}

		var u uint64
		if err := y.Decode(&u); err != nil {
			return bad(err)
		}

		return tree.Uint(u), nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return bad(err)
		}

		return tree.Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := y.Decode(&t); err != nil {
			return bad(err)
		}

		return tree.Time(t), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(y.Value), ""))
		if err != nil {
			return bad(err)
		}

		return tree.Bytes(b), nil
	default:
		return tree.String(y.Value), nil
	}
}

// Write prints n as a single YAML document.
func Write(n *tree.Node, o options.Options) ([]byte, error) {
	o = options.Resolve(o)

	y, err := build(n, 0, o.MaxDepth)
	if err != nil {
		return nil, err
	}

	indent := o.Indent
	if indent <= 0 {
		indent = DefaultIndent
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)

	if err := enc.Encode(y); err != nil {
		return nil, diagnostic.FormatViolation("yaml: %v", err)
	}

	if err := enc.Close(); err != nil {
		return nil, diagnostic.FormatViolation("yaml: %v", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func build(n *tree.Node, depth, limit int) (*yaml.Node, error) {
	if depth > limit {
		return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
	}

	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch n.Kind() {
	case tree.KindNull:
		return scalar("!!null", "null"), nil
	case tree.KindBool:
		b, _ := n.Bool()
		return scalar("!!bool", strconv.FormatBool(b)), nil
	case tree.KindInt:
		i, _ := n.Int()
		return scalar("!!int", strconv.FormatInt(i, 10)), nil
	case tree.KindUint:
		u, _ := n.Uint()
		return scalar("!!int", strconv.FormatUint(u, 10)), nil
	case tree.KindFloat:
		f, _ := n.Float()
		return scalar("!!float", formatFloat(f)), nil
	case tree.KindString:
		s, _ := n.Text()
		return scalar("!!str", s), nil
	case tree.KindBytes:
		b, _ := n.Bytes()
		return scalar("!!binary", base64.StdEncoding.EncodeToString(b)), nil
	case tree.KindTime:
		t, _ := n.Time()
		return scalar("!!timestamp", primitive.FormatTimestamp(t)), nil
	case tree.KindArray:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range n.Elements() {
			child, err := build(item, depth+1, limit)
			if err != nil {
				return nil, diagnostic.WithIndex(err, i)
			}

			seq.Content = append(seq.Content, child)
		}

		return seq, nil
	case tree.KindObject:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, child := range n.Members() {
			v, err := build(child, depth+1, limit)
			if err != nil {
				return nil, diagnostic.WithKey(err, k)
			}

			m.Content = append(m.Content, scalar("!!str", k), v)
		}

		return m, nil
	}

	return nil, diagnostic.FormatViolation("yaml cannot represent %s", n.Kind())
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}

	s, _ := utils.FormatFloat(f)

	return s
}
