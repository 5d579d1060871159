package cbor_test

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagged-serde/diagnostic"
	"tagged-serde/format/cbor"
	"tagged-serde/options"
)

type Person struct {
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Address   *string   `json:"address"`
	Photo     []byte    `cbor:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func ExampleDump() {
	type pair struct {
		B int    `cbor:"b"`
		A string `cbor:"a"`
	}

	out, err := cbor.Dump(pair{B: 1, A: "x"})
	if err != nil {
		panic(err)
	}

	fmt.Println(hex.EncodeToString(out))

	// Output:
	// a261616178616201
}

func TestRoundTrip(t *testing.T) {
	addr := "Jakarta"
	p := Person{
		Name:      "Sucipto",
		Age:       24,
		Address:   &addr,
		Photo:     []byte{0xde, 0xad},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	out, err := cbor.Dump(p)
	require.NoError(t, err)

	back, err := cbor.Parse[Person](out)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	// identical values encode to identical bytes
	again, err := cbor.Dump(back)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestNativeTime(t *testing.T) {
	type event struct {
		At time.Time `cbor:"at"`
	}

	out, err := cbor.Dump(event{At: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
	require.NoError(t, err)

	// {"at": 0("2024-01-02T03:04:05Z")}
	assert.Equal(t, "a1626174c074"+hex.EncodeToString([]byte("2024-01-02T03:04:05Z")), hex.EncodeToString(out))
}

func TestNullAndErrors(t *testing.T) {
	n, err := cbor.Read([]byte{0xf6}, options.Options{})
	require.NoError(t, err)
	assert.Equal(t, "null", n.String())

	// truncated text string
	_, err = cbor.Parse[string]([]byte{0x63, 0x61})
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)

	// integer where a string is expected
	_, err = cbor.Parse[string]([]byte{0x01})
	assert.EqualError(t, err, "error at <root>: type mismatch: expected `string` got `int`")

	// trailing bytes
	_, err = cbor.Parse[int]([]byte{0x01, 0x02})
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)
}
