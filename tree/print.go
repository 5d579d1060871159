package tree

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// String renders n in a compact JSON-like notation for debugging.
// Bytes print as b64"...", times as RFC 3339 text without quotes.
func (n *Node) String() string {
	var b strings.Builder
	n.print(&b)

	return b.String()
}

func (n *Node) print(b *strings.Builder) {
	switch n.Kind() {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(n.b))
	case KindInt:
		b.WriteString(strconv.FormatInt(n.i, 10))
	case KindUint:
		b.WriteString(strconv.FormatUint(n.u, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(n.f, 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(n.s))
	case KindBytes:
		b.WriteString("b64")
		b.WriteString(strconv.Quote(base64.StdEncoding.EncodeToString(n.raw)))
	case KindTime:
		b.WriteString(n.t.Format(time.RFC3339Nano))
	case KindArray:
		b.WriteByte('[')

		for i, item := range n.items {
			if i > 0 {
				b.WriteByte(',')
			}

			item.print(b)
		}

		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')

		for i, k := range n.keys {
			if i > 0 {
				b.WriteByte(',')
			}

			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			n.members[k].print(b)
		}

		b.WriteByte('}')
	}
}
