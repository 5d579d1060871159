// Package tree is the format-neutral document model shared by the text and
// binary backends. Backends parse into a *Node and print from one; the
// dispatch engine never sees format syntax.
package tree

import (
	"iter"
	"math"
	"time"

	"tagged-serde/diagnostic"
)

// Kind is the kind of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint // only for values above math.MaxInt64
	KindFloat
	KindString
	KindBytes
	KindTime
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Node is one document value. Object members keep their insertion order.
type Node struct {
	kind Kind

	b   bool
	i   int64
	u   uint64
	f   float64
	s   string
	raw []byte
	t   time.Time

	items   []*Node
	keys    []string
	members map[string]*Node
}

func Null() *Node { return &Node{kind: KindNull} }

func Bool(b bool) *Node { return &Node{kind: KindBool, b: b} }

func Int(i int64) *Node { return &Node{kind: KindInt, i: i} }

// Uint stores u as KindInt when it fits, so that equal numbers have one
// representation regardless of the signedness of their source.
func Uint(u uint64) *Node {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}

	return &Node{kind: KindUint, u: u}
}

func Float(f float64) *Node { return &Node{kind: KindFloat, f: f} }

func String(s string) *Node { return &Node{kind: KindString, s: s} }

func Bytes(b []byte) *Node { return &Node{kind: KindBytes, raw: b} }

func Time(t time.Time) *Node { return &Node{kind: KindTime, t: t} }

// Array returns a sequence holding items.
func Array(items ...*Node) *Node { return &Node{kind: KindArray, items: items} }

func Object() *Node { return &Node{kind: KindObject, members: map[string]*Node{}} }

// Kind returns the node kind. A nil node is null.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}

	return n.kind
}

func (n *Node) Bool() (bool, bool) {
	if n.Kind() != KindBool {
		return false, false
	}

	return n.b, true
}

func (n *Node) Int() (int64, bool) {
	if n.Kind() != KindInt {
		return 0, false
	}

	return n.i, true
}

func (n *Node) Uint() (uint64, bool) {
	if n.Kind() != KindUint {
		return 0, false
	}

	return n.u, true
}

func (n *Node) Float() (float64, bool) {
	if n.Kind() != KindFloat {
		return 0, false
	}

	return n.f, true
}

// Text returns the value of a string node.
func (n *Node) Text() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}

	return n.s, true
}

func (n *Node) Bytes() ([]byte, bool) {
	if n.Kind() != KindBytes {
		return nil, false
	}

	return n.raw, true
}

func (n *Node) Time() (time.Time, bool) {
	if n.Kind() != KindTime {
		return time.Time{}, false
	}

	return n.t, true
}

// Len returns the number of elements or members, zero for scalars.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindArray:
		return len(n.items)
	case KindObject:
		return len(n.keys)
	default:
		return 0
	}
}

// Index returns the i-th element of a sequence, nil when out of range.
func (n *Node) Index(i int) *Node {
	if n.Kind() != KindArray || i < 0 || i >= len(n.items) {
		return nil
	}

	return n.items[i]
}

// Elements iterates the elements of a sequence.
func (n *Node) Elements() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		if n.Kind() != KindArray {
			return
		}

		for i, item := range n.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Append adds child to a sequence and returns n.
func (n *Node) Append(child *Node) *Node {
	if n.Kind() != KindArray {
		panic("tree: Append on " + n.Kind().String() + " node")
	}

	n.items = append(n.items, child)

	return n
}

// Set inserts or overwrites a member. An overwritten member keeps its position.
func (n *Node) Set(key string, child *Node) *Node {
	if n.Kind() != KindObject {
		panic("tree: Set on " + n.Kind().String() + " node")
	}

	if _, ok := n.members[key]; !ok {
		n.keys = append(n.keys, key)
	}

	n.members[key] = child

	return n
}

// Get returns the member stored under key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != KindObject {
		return nil, false
	}

	child, ok := n.members[key]

	return child, ok
}

// Keys returns the member keys in insertion order.
func (n *Node) Keys() []string {
	if n.Kind() != KindObject {
		return nil
	}

	return n.keys
}

// Members iterates the members of an object in insertion order.
func (n *Node) Members() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		if n.Kind() != KindObject {
			return
		}

		for _, k := range n.keys {
			if !yield(k, n.members[k]) {
				return
			}
		}
	}
}

// At follows path from n.
func (n *Node) At(path diagnostic.Path) (*Node, bool) {
	cur := n

	for _, seg := range path {
		if seg.IsIndex {
			if cur.Kind() != KindArray || seg.Index >= cur.Len() {
				return nil, false
			}

			cur = cur.Index(seg.Index)

			continue
		}

		next, ok := cur.Get(seg.Key)
		if !ok {
			return nil, false
		}

		cur = next
	}

	return cur, true
}

// Equal reports deep equality. Member order is ignored.
func (n *Node) Equal(o *Node) bool {
	if n.Kind() != o.Kind() {
		return false
	}

	switch n.Kind() {
	case KindNull:
		return true
	case KindBool:
		return n.b == o.b
	case KindInt:
		return n.i == o.i
	case KindUint:
		return n.u == o.u
	case KindFloat:
		return n.f == o.f
	case KindString:
		return n.s == o.s
	case KindBytes:
		return string(n.raw) == string(o.raw)
	case KindTime:
		return n.t.Equal(o.t)
	case KindArray:
		if len(n.items) != len(o.items) {
			return false
		}

		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(n.keys) != len(o.keys) {
			return false
		}

		for k, v := range n.members {
			ov, ok := o.members[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}

		return true
	}

	return false
}
