package variant_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagged-serde/variant"
)

func Example() {
	var v variant.Of2[int, string]
	fmt.Println(v.Index(), v.Value())

	_ = v.Set("hello")
	s, ok := variant.Get[string](v)
	fmt.Println(v.Index(), s, ok)

	err := v.Set(1.5)
	fmt.Println(err)
	// Output:
	// -1 <nil>
	// 1 hello true
	// value is not an alternative of the variant: float64
}

func TestSetAndClear(t *testing.T) {
	var v variant.Of3[int, string, []byte]

	require.NoError(t, v.Set(42))
	assert.Equal(t, 0, v.Index())

	n, ok := variant.Get[int](v)
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = variant.Get[string](v)
	assert.False(t, ok)

	require.NoError(t, v.Set([]byte("x")))
	assert.Equal(t, 2, v.Index())

	require.NoError(t, v.Set(nil))
	assert.Equal(t, -1, v.Index())
	assert.Nil(t, v.Value())

	assert.ErrorIs(t, v.Set(int64(1)), variant.ErrNotAlternative, "exact types only")
}

func TestMust(t *testing.T) {
	v := variant.Must(&variant.Of4[bool, int, string, float64]{}, 2.5)
	assert.Equal(t, 3, v.Index())

	assert.Panics(t, func() { variant.Must(&variant.Of2[int, string]{}, true) })
}
