package utils

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// EscapeNonASCII rewrites every non-ASCII rune of a JSON text as a \uXXXX
// escape, using surrogate pairs above the basic plane. Non-ASCII bytes can
// only occur inside string literals, so the text stays valid.
func EscapeNonASCII(b []byte) []byte {
	ascii := true
	for _, c := range b {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}

	if ascii {
		return b
	}

	out := make([]byte, 0, len(b)+len(b)/2)

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]

		switch {
		case r < utf8.RuneSelf:
			out = append(out, byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			out = appendEscape(out, hi)
			out = appendEscape(out, lo)
		default:
			out = appendEscape(out, r)
		}
	}

	return out
}

func appendEscape(out []byte, r rune) []byte {
	const hex = "0123456789abcdef"

	return append(out, '\\', 'u', hex[r>>12&0xf], hex[r>>8&0xf], hex[r>>4&0xf], hex[r&0xf])
}

// FormatFloat renders f the way encoding/json does, but always keeps a
// fraction or an exponent so the text reads back as a float.
// It reports false for NaN and infinities.
func FormatFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}

	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s, true
}
