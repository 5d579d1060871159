// Package json reads and writes JSON documents through the tag dispatch
// engine. Struct fields are keyed by the `json` tag namespace.
//
// Input may carry comments and trailing commas when
// options.FlagIgnoreComments is set. Numbers keep their exact integer
// value; a number with a fraction or an exponent is a float.
package json

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"tagged-serde/diagnostic"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/tree"
)

// Format describes JSON to the dispatch engine.
var Format = &node.Format{
	Name:       "json",
	Namespaces: []string{"json"},
	Null:       true,
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

// Read parses one JSON document. Anything but whitespace after it is an error.
func Read(data []byte, o options.Options) (*tree.Node, error) {
	o = options.Resolve(o)

	if o.Has(options.FlagIgnoreComments) {
		data = jsonc.ToJSON(data)
	}

	dec := stdjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	r := reader{dec: dec, max: o.MaxDepth}

	n, err := r.value(0)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, diagnostic.FormatViolation("invalid json: trailing data after document")
	}

	return n, nil
}

type reader struct {
	dec *stdjson.Decoder
	max int
}

func (r *reader) token() (stdjson.Token, error) {
	tok, err := r.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, diagnostic.FormatViolation("invalid json: unexpected end of input")
	}

	if err != nil {
		return nil, diagnostic.FormatViolation("invalid json: %v", err)
	}

	return tok, nil
}

func (r *reader) value(depth int) (*tree.Node, error) {
	tok, err := r.token()
	if err != nil {
		return nil, err
	}

	switch tok := tok.(type) {
	case nil:
		return tree.Null(), nil
	case bool:
		return tree.Bool(tok), nil
	case string:
		return tree.String(tok), nil
	case stdjson.Number:
		return number(tok)
	case stdjson.Delim:
		if depth >= r.max {
			return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", r.max)
		}

		if tok == '[' {
			return r.array(depth)
		}

		return r.object(depth)
	}

	return nil, diagnostic.FormatViolation("invalid json: unexpected token %v", tok)
}

func (r *reader) array(depth int) (*tree.Node, error) {
	arr := tree.Array()

	for r.dec.More() {
		item, err := r.value(depth + 1)
		if err != nil {
			return nil, err
		}

		arr.Append(item)
	}

	_, err := r.token()

	return arr, err
}

func (r *reader) object(depth int) (*tree.Node, error) {
	obj := tree.Object()

	for r.dec.More() {
		tok, err := r.token()
		if err != nil {
			return nil, err
		}

		key, _ := tok.(string)

		child, err := r.value(depth + 1)
		if err != nil {
			return nil, err
		}

		obj.Set(key, child)
	}

	_, err := r.token()

	return obj, err
}

func number(num stdjson.Number) (*tree.Node, error) {
	s := num.String()

	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return tree.Int(i), nil
		}

		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return tree.Uint(u), nil
		}

		return nil, diagnostic.FormatViolation("integer %s out of range", s)
	}

	f, err := num.Float64()
	if err != nil {
		return nil, diagnostic.FormatViolation("number %s out of range", s)
	}

	return tree.Float(f), nil
}
