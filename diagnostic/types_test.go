package diagnostic_test

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagged-serde/diagnostic"
)

func Example() {
	var err error = diagnostic.TypeMismatch("int", "string")
	err = diagnostic.WithKey(err, "age")
	err = diagnostic.WithIndex(err, 0)
	err = diagnostic.WithKey(err, "outer")

	fmt.Println(err)
	fmt.Println(errors.Is(err, diagnostic.ErrTypeMismatch))
	fmt.Println(diagnostic.MissingField())
	// Output:
	// error at .outer[0].age: type mismatch: expected `int` got `string`
	// true
	// error at <root>: missing field
}

func TestSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{diagnostic.TypeMismatch("a", "b"), diagnostic.ErrTypeMismatch},
		{diagnostic.SizeMismatch(3, 2), diagnostic.ErrSizeMismatch},
		{diagnostic.MissingField(), diagnostic.ErrMissingField},
		{diagnostic.FormatViolation("bad %d", 1), diagnostic.ErrFormatViolation},
		{diagnostic.Configuration("bad %s", "x"), diagnostic.ErrConfiguration},
	}

	for _, c := range cases {
		assert.ErrorIs(t, c.err, c.sentinel)

		if c.sentinel != diagnostic.ErrMissingField {
			assert.NotErrorIs(t, c.err, diagnostic.ErrMissingField)
		}
	}
}

func TestWrapForeignError(t *testing.T) {
	_, cause := strconv.Atoi("x")

	err := diagnostic.WithKey(cause, "n")
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostic.ErrFormatViolation)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Equal(t, ".n", diagnostic.Wrap(err).Path.String())
	assert.Equal(t, diagnostic.CodeFormatViolation, diagnostic.CodeOf(err))
	assert.Nil(t, diagnostic.WithIndex(nil, 1))
}

func TestSizeMismatchMessage(t *testing.T) {
	err := diagnostic.WithIndex(diagnostic.SizeMismatch(3, 2), 4)
	assert.EqualError(t, err, "error at [4]: size mismatch: expected `3` got `2`")
}

func TestPathRoundTrip(t *testing.T) {
	for _, s := range []string{"<root>", ".outer[0].age", "[2][3]", ".a.b.c", ".items[10]"} {
		p, err := diagnostic.ParsePath(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, p.String())
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, s := range []string{"name", ".", "[x]", "[-1]", "[1", ".a..b"} {
		_, err := diagnostic.ParsePath(s)
		assert.Error(t, err, s)
	}
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "type mismatch", diagnostic.CodeTypeMismatch.String())
	assert.Equal(t, "unknown", diagnostic.CodeEnum(diagnostic.CodeTotal).String())
}
