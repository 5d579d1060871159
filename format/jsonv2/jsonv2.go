// Package jsonv2 is the second JSON backend, built on the streaming
// tokenizer of go-json-experiment. It shares the `json` tag namespace with
// package json and differs in strictness: duplicate object names and
// invalid UTF-8 are rejected, and comments are never accepted.
package jsonv2

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"tagged-serde/diagnostic"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/primitive"
	"tagged-serde/tree"
	"tagged-serde/utils"
)

var Format = &node.Format{
	Name:       "jsonv2",
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

func Read(data []byte, o options.Options) (*tree.Node, error) {
	o = options.Resolve(o)

	dec := jsontext.NewDecoder(bytes.NewReader(data))

	n, err := read(dec, 0, o.MaxDepth)
	if err != nil {
		return nil, err
	}

	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return nil, diagnostic.FormatViolation("invalid json: trailing data after document")
	}

	return n, nil
}

func read(dec *jsontext.Decoder, depth, limit int) (*tree.Node, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, diagnostic.FormatViolation("invalid json: %v", err)
	}

	switch tok.Kind() {
	case 'n':
		return tree.Null(), nil
	case 't', 'f':
		return tree.Bool(tok.Bool()), nil
	case '"':
		return tree.String(tok.String()), nil
	case '0':
		return number(tok.String())
	case '[':
		if depth >= limit {
			return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
		}

		arr := tree.Array()
		for dec.PeekKind() != ']' {
			item, err := read(dec, depth+1, limit)
			if err != nil {
				return nil, err
			}

			arr.Append(item)
		}

		_, err := dec.ReadToken()

		return arr, wrapSyntax(err)
	case '{':
		if depth >= limit {
			return nil, diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
		}

		obj := tree.Object()
		for dec.PeekKind() != '}' {
			tok, err := dec.ReadToken()
			if err != nil {
				return nil, wrapSyntax(err)
			}

			// the token is voided by the next read
			key := tok.String()

			child, err := read(dec, depth+1, limit)
			if err != nil {
				return nil, err
			}

			obj.Set(key, child)
		}

		_, err := dec.ReadToken()

		return obj, wrapSyntax(err)
	}

	return nil, diagnostic.FormatViolation("invalid json: unexpected %v", tok)
}

func wrapSyntax(err error) error {
	if err == nil {
		return nil
	}

	return diagnostic.FormatViolation("invalid json: %v", err)
}

func number(s string) (*tree.Node, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return tree.Int(i), nil
		}

		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return tree.Uint(u), nil
		}

		return nil, diagnostic.FormatViolation("integer %s out of range", s)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, diagnostic.FormatViolation("number %s out of range", s)
	}

	return tree.Float(f), nil
}

// Write prints n, indented by o.Indent spaces when it is positive.
func Write(n *tree.Node, o options.Options) ([]byte, error) {
	o = options.Resolve(o)

	var jopts []jsontext.Options
	if o.Indent > 0 {
		jopts = append(jopts,
			jsontext.Multiline(true),
			jsontext.SpaceAfterColon(true),
			jsontext.WithIndent(strings.Repeat(" ", o.Indent)),
		)
	}

	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jopts...)

	if err := write(enc, n, 0, o.MaxDepth); err != nil {
		return nil, err
	}

	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if o.Has(options.FlagEnsureASCII) {
		out = utils.EscapeNonASCII(out)
	}

	return out, nil
}

func write(enc *jsontext.Encoder, n *tree.Node, depth, limit int) error {
	if depth > limit {
		return diagnostic.FormatViolation("maximum nesting depth %d exceeded", limit)
	}

	var err error

	switch n.Kind() {
	case tree.KindNull:
		err = enc.WriteToken(jsontext.Null)
	case tree.KindBool:
		b, _ := n.Bool()
		err = enc.WriteToken(jsontext.Bool(b))
	case tree.KindInt:
		i, _ := n.Int()
		err = enc.WriteToken(jsontext.Int(i))
	case tree.KindUint:
		u, _ := n.Uint()
		err = enc.WriteToken(jsontext.Uint(u))
	case tree.KindFloat:
		f, _ := n.Float()

		s, ok := utils.FormatFloat(f)
		if !ok {
			return diagnostic.FormatViolation("json cannot represent %v", f)
		}

		err = enc.WriteValue(jsontext.Value(s))
	case tree.KindString:
		s, _ := n.Text()
		err = enc.WriteToken(jsontext.String(s))
	case tree.KindBytes:
		b, _ := n.Bytes()
		err = enc.WriteToken(jsontext.String(base64.StdEncoding.EncodeToString(b)))
	case tree.KindTime:
		t, _ := n.Time()
		err = enc.WriteToken(jsontext.String(primitive.FormatTimestamp(t)))
	case tree.KindArray:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return diagnostic.Wrap(err)
		}

		for _, item := range n.Elements() {
			if err := write(enc, item, depth+1, limit); err != nil {
				return err
			}
		}

		err = enc.WriteToken(jsontext.EndArray)
	case tree.KindObject:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return diagnostic.Wrap(err)
		}

		for key, child := range n.Members() {
			if err := enc.WriteToken(jsontext.String(key)); err != nil {
				return diagnostic.Wrap(err)
			}

			if err := write(enc, child, depth+1, limit); err != nil {
				return err
			}
		}

		err = enc.WriteToken(jsontext.EndObject)
	}

	if err != nil {
		return diagnostic.Wrap(err)
	}

	return nil
}
