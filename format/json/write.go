package json

import (
	"bytes"
	"encoding/base64"
	stdjson "encoding/json"
	"strconv"
	"strings"

	"tagged-serde/diagnostic"
	"tagged-serde/options"
	"tagged-serde/primitive"
	"tagged-serde/tree"
	"tagged-serde/utils"
)

// Write prints n as JSON: compact when o.Indent is zero, indented by
// o.Indent spaces per level otherwise.
func Write(n *tree.Node, o options.Options) ([]byte, error) {
	o = options.Resolve(o)

	w := writer{max: o.MaxDepth}
	w.enc = stdjson.NewEncoder(&w.scratch)
	w.enc.SetEscapeHTML(false)

	if err := w.value(n, 0); err != nil {
		return nil, err
	}

	out := w.buf.Bytes()

	if o.Indent > 0 {
		var indented bytes.Buffer
		if err := stdjson.Indent(&indented, out, "", strings.Repeat(" ", o.Indent)); err != nil {
			return nil, diagnostic.Wrap(err)
		}

		out = indented.Bytes()
	}

	if o.Has(options.FlagEnsureASCII) {
		out = utils.EscapeNonASCII(out)
	}

	return out, nil
}

type writer struct {
	buf     bytes.Buffer
	scratch bytes.Buffer
	enc     *stdjson.Encoder
	max     int
}

func (w *writer) value(n *tree.Node, depth int) error {
	if depth > w.max {
		return diagnostic.FormatViolation("maximum nesting depth %d exceeded", w.max)
	}

	switch n.Kind() {
	case tree.KindNull:
		w.buf.WriteString("null")
	case tree.KindBool:
		b, _ := n.Bool()
		w.buf.WriteString(strconv.FormatBool(b))
	case tree.KindInt:
		i, _ := n.Int()
		w.buf.WriteString(strconv.FormatInt(i, 10))
	case tree.KindUint:
		u, _ := n.Uint()
		w.buf.WriteString(strconv.FormatUint(u, 10))
	case tree.KindFloat:
		f, _ := n.Float()

		s, ok := utils.FormatFloat(f)
		if !ok {
			return diagnostic.FormatViolation("json cannot represent %v", f)
		}

		w.buf.WriteString(s)
	case tree.KindString:
		s, _ := n.Text()
		return w.text(s)
	case tree.KindBytes:
		b, _ := n.Bytes()
		return w.text(base64.StdEncoding.EncodeToString(b))
	case tree.KindTime:
		t, _ := n.Time()
		return w.text(primitive.FormatTimestamp(t))
	case tree.KindArray:
		w.buf.WriteByte('[')

		for i, item := range n.Elements() {
			if i > 0 {
				w.buf.WriteByte(',')
			}

			if err := w.value(item, depth+1); err != nil {
				return err
			}
		}

		w.buf.WriteByte(']')
	case tree.KindObject:
		w.buf.WriteByte('{')

		first := true
		for key, child := range n.Members() {
			if !first {
				w.buf.WriteByte(',')
			}

			first = false

			if err := w.text(key); err != nil {
				return err
			}

			w.buf.WriteByte(':')

			if err := w.value(child, depth+1); err != nil {
				return err
			}
		}

		w.buf.WriteByte('}')
	}

	return nil
}

func (w *writer) text(s string) error {
	w.scratch.Reset()

	if err := w.enc.Encode(s); err != nil {
		return diagnostic.Wrap(err)
	}

	w.buf.Write(bytes.TrimSuffix(w.scratch.Bytes(), []byte("\n")))

	return nil
}
