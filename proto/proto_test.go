package proto_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"tagged-serde/diagnostic"
	"tagged-serde/primitive"
	"tagged-serde/proto"
	"tagged-serde/tag"
)

type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}

	return "user"
}

func init() {
	primitive.RegisterEnum(RoleUser, RoleAdmin)
}

type Address struct {
	City string `proto:"1"`
	Zip  string `proto:"2,skipmissing"`
}

type User struct {
	ID      int64     `proto:"1"`
	Name    string    `proto:"2"`
	Email   *string   `proto:"3"`
	Scores  []int32   `proto:"4"`
	Ratio   float64   `proto:"5"`
	Weight  float32   `proto:"6"`
	Active  bool      `proto:"7"`
	Role    Role      `proto:"8"`
	Home    Address   `proto:"9"`
	Avatar  []byte    `proto:"10,omitempty"`
	Seen    time.Time `proto:"11"` // no wire mapping, skipped
	Comment string    // untagged, skipped
}

func ExampleMarshal() {
	type point struct {
		X int32 `proto:"1"`
		Y int32 `proto:"2"`
	}

	b, err := proto.Marshal(point{X: 150, Y: -1})
	if err != nil {
		panic(err)
	}

	fmt.Printf("% x\n", b)

	// Output:
	// 08 96 01 10 ff ff ff ff ff ff ff ff ff 01
}

func sample() User {
	email := "s@example.com"

	return User{
		ID:     42,
		Name:   "Sucipto",
		Email:  &email,
		Scores: []int32{1, -2},
		Ratio:  0.5,
		Weight: 1.25,
		Active: true,
		Role:   RoleAdmin,
		Home:   Address{City: "Jakarta"},
	}
}

func TestMarshalMatchesWire(t *testing.T) {
	u := sample()
	neg := int64(u.Scores[1])

	var want []byte
	want = protowire.AppendTag(want, 1, protowire.VarintType)
	want = protowire.AppendVarint(want, 42)
	want = protowire.AppendTag(want, 2, protowire.BytesType)
	want = protowire.AppendString(want, "Sucipto")
	want = protowire.AppendTag(want, 3, protowire.BytesType)
	want = protowire.AppendString(want, "s@example.com")
	want = protowire.AppendTag(want, 4, protowire.VarintType)
	want = protowire.AppendVarint(want, 1)
	want = protowire.AppendTag(want, 4, protowire.VarintType)
	want = protowire.AppendVarint(want, uint64(neg))
	want = protowire.AppendTag(want, 5, protowire.Fixed64Type)
	want = protowire.AppendFixed64(want, 0x3fe0000000000000)
	want = protowire.AppendTag(want, 6, protowire.Fixed32Type)
	want = protowire.AppendFixed32(want, 0x3fa00000)
	want = protowire.AppendTag(want, 7, protowire.VarintType)
	want = protowire.AppendVarint(want, 1)
	want = protowire.AppendTag(want, 8, protowire.VarintType)
	want = protowire.AppendVarint(want, 1)

	var home []byte
	home = protowire.AppendTag(home, 1, protowire.BytesType)
	home = protowire.AppendString(home, "Jakarta")
	home = protowire.AppendTag(home, 2, protowire.BytesType)
	home = protowire.AppendString(home, "")

	want = protowire.AppendTag(want, 9, protowire.BytesType)
	want = protowire.AppendBytes(want, home)

	got, err := proto.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	back, err := proto.Parse[User](got)
	require.NoError(t, err)
	assert.Equal(t, u, back)
}

func TestUnmarshalRules(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.BytesType) // unknown, skipped
	b = protowire.AppendString(b, "ignored")
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 1, protowire.VarintType) // last one wins
	b = protowire.AppendVarint(b, 8)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "Sugeng")

	var packed []byte
	packed = protowire.AppendVarint(packed, 3)
	packed = protowire.AppendVarint(packed, 4)
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)

	b = protowire.AppendTag(b, 5, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 0)
	b = protowire.AppendTag(b, 6, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 0)
	b = protowire.AppendTag(b, 7, protowire.VarintType)
	b = protowire.AppendVarint(b, 0)
	b = protowire.AppendTag(b, 8, protowire.VarintType)
	b = protowire.AppendVarint(b, 0)

	var home []byte
	home = protowire.AppendTag(home, 1, protowire.BytesType)
	home = protowire.AppendString(home, "Solo")

	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendBytes(b, home)

	u := User{Home: Address{Zip: "57111"}}
	require.NoError(t, proto.Unmarshal(b, &u))

	assert.Equal(t, int64(8), u.ID)
	assert.Equal(t, "Sugeng", u.Name)
	assert.Nil(t, u.Email)
	assert.Equal(t, []int32{3, 4}, u.Scores)
	assert.Equal(t, Address{City: "Solo", Zip: "57111"}, u.Home)
}

func TestUnmarshalErrors(t *testing.T) {
	type small struct {
		N int8   `proto:"1"`
		S string `proto:"2,skipmissing"`
	}

	var b []byte
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "x")

	s := small{N: 5}
	err := proto.Unmarshal(b, &s)
	require.ErrorIs(t, err, diagnostic.ErrMissingField)
	assert.EqualError(t, err, "error at .1: missing field")
	assert.Equal(t, small{N: 5}, s)

	b = protowire.AppendTag(nil, 1, protowire.BytesType)
	b = protowire.AppendString(b, "x")
	err = proto.Unmarshal(b, &s)
	assert.EqualError(t, err, "error at .1: type mismatch: expected `varint` got `bytes`")

	b = protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 300)
	err = proto.Unmarshal(b, &s)
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)
	assert.EqualError(t, err, "error at .1: value 300 overflows int8")

	// truncated varint
	err = proto.Unmarshal([]byte{0x08, 0x96}, &s)
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)

	err = proto.Unmarshal(nil, new(map[string]int))
	require.ErrorIs(t, err, diagnostic.ErrConfiguration)
}

func TestEnumRange(t *testing.T) {
	type holder struct {
		R Role `proto:"1"`
	}

	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 9)

	_, err := proto.Parse[holder](b)
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)

	_, err = proto.Marshal(holder{R: Role(9)})
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)
	assert.Contains(t, err.Error(), "value 9 is not a member of proto_test.Role")
}

func TestTupleMessage(t *testing.T) {
	name := tag.New("proto:`1`", "Sucipto")
	age := tag.New("proto:`2`", 20)

	b, err := proto.Marshal(tag.Tuple{name, age})
	require.NoError(t, err)

	var want []byte
	want = protowire.AppendTag(want, 1, protowire.BytesType)
	want = protowire.AppendString(want, "Sucipto")
	want = protowire.AppendTag(want, 2, protowire.VarintType)
	want = protowire.AppendVarint(want, 20)
	assert.Equal(t, want, b)

	outName := tag.New("proto:`1`", "")
	outAge := tag.New("proto:`2`", 0)
	require.NoError(t, proto.Unmarshal(b, &tag.Tuple{outName, outAge}))
	assert.Equal(t, "Sucipto", outName.Get())
	assert.Equal(t, 20, outAge.Get())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.bin")

	b, err := proto.Marshal(sample())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	u, err := proto.ParseFile[User](path)
	require.NoError(t, err)
	assert.Equal(t, sample(), u)
}
