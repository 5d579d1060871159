package primitive

import "tagged-serde/tree"

// Accepts reports whether a document node of kind src may be read into a
// scalar of kind k. Range checks come after and are not covered here.
//
// Integers take either signed or unsigned nodes, floats take only floats, and
// every other kind takes exactly its own node kind. Texts stand in for the
// kinds that have a canonical textual form.
func (k KindEnum) Accepts(src tree.Kind) bool {
	switch {
	case k.IsInteger():
		return src == tree.KindInt || src == tree.KindUint
	case k.IsFloat():
		return src == tree.KindFloat
	}

	switch k {
	default:
		return false
	case KindBool:
		return src == tree.KindBool
	case KindString, KindDuration, KindSymbol:
		return src == tree.KindString
	case KindBytes:
		return src == tree.KindBytes || src == tree.KindString
	case KindTime:
		return src == tree.KindTime || src == tree.KindString
	}
}

// Expected names the node kind a scalar of kind k is read from, for
// type mismatch messages.
func (k KindEnum) Expected() string {
	switch {
	case k.IsSigned():
		return tree.KindInt.String()
	case k.IsUnsigned():
		return tree.KindUint.String()
	case k.IsFloat():
		return tree.KindFloat.String()
	}

	switch k {
	case KindBool:
		return tree.KindBool.String()
	case KindBytes:
		return tree.KindBytes.String()
	case KindTime:
		return tree.KindTime.String()
	default:
		return tree.KindString.String()
	}
}
