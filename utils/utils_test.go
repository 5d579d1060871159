package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("0123"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a"))
	assert.False(t, IsDigits("-1"))
}

func TestUnpack2(t *testing.T) {
	k, v := Unpack2(strings.SplitN("key=value=x", "=", 2))
	assert.Equal(t, "key", k)
	assert.Equal(t, "value=x", v)

	k, v = Unpack2(strings.SplitN("flag", "=", 2))
	assert.Equal(t, "flag", k)
	assert.Empty(t, v)

	k, v = Unpack2([]string(nil))
	assert.Empty(t, k)
	assert.Empty(t, v)
}

func TestEscapeNonASCII(t *testing.T) {
	in := []byte(`{"a":"plain"}`)
	assert.Equal(t, in, EscapeNonASCII(in))

	assert.Equal(t, `"\u00e9t\u00e9"`, string(EscapeNonASCII([]byte(`"été"`))))
	assert.Equal(t, `"\ud83d\ude00"`, string(EscapeNonASCII([]byte("\"\U0001F600\""))))
}

func TestFormatFloat(t *testing.T) {
	for f, want := range map[float64]string{
		0:      "0.0",
		1:      "1.0",
		-2.5:   "-2.5",
		1e21:   "1e+21",
		1.5e-7: "1.5e-07",
		123456: "123456.0",
	} {
		got, ok := FormatFloat(f)
		assert.True(t, ok, f)
		assert.Equal(t, want, got, f)
	}

	_, ok := FormatFloat(math.NaN())
	assert.False(t, ok)

	_, ok = FormatFloat(math.Inf(-1))
	assert.False(t, ok)
}
