package tree_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagged-serde/diagnostic"
	"tagged-serde/tree"
)

func Example() {
	doc := tree.Object().
		Set("name", tree.String("Sucipto")).
		Set("age", tree.Int(24)).
		Set("tags", tree.Array(tree.String("a"), tree.Null())).
		Set("age", tree.Uint(25))

	fmt.Println(doc)
	fmt.Println(doc.Keys())
	// Output:
	// {"name":"Sucipto","age":25,"tags":["a",null]}
	// [name age tags]
}

func TestScalarAccess(t *testing.T) {
	n := tree.Int(-3)

	i, ok := n.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(-3), i)

	_, ok = n.Float()
	assert.False(t, ok)
	_, ok = n.Text()
	assert.False(t, ok)

	big := tree.Uint(math.MaxUint64)
	assert.Equal(t, tree.KindUint, big.Kind())
	assert.Equal(t, tree.KindInt, tree.Uint(7).Kind())

	var missing *tree.Node
	assert.Equal(t, tree.KindNull, missing.Kind())
	assert.Equal(t, 0, missing.Len())
}

func TestAt(t *testing.T) {
	doc := tree.Object().Set("outer", tree.Array(tree.Object().Set("age", tree.String("x"))))

	p, err := diagnostic.ParsePath(".outer[0].age")
	require.NoError(t, err)

	n, ok := doc.At(p)
	require.True(t, ok)
	assert.Equal(t, `"x"`, n.String())

	p, err = diagnostic.ParsePath(".outer[1]")
	require.NoError(t, err)

	_, ok = doc.At(p)
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	a := tree.Object().Set("a", tree.Int(1)).Set("b", tree.Time(ts))
	b := tree.Object().Set("b", tree.Time(ts)).Set("a", tree.Uint(1))

	if !assert.True(t, a.Equal(b)) {
		spew.Dump(a, b)
	}

	assert.False(t, a.Equal(tree.Object()))
	assert.False(t, tree.Array(tree.Int(1)).Equal(tree.Array(tree.Float(1))))
	assert.True(t, tree.Bytes([]byte("x")).Equal(tree.Bytes([]byte("x"))))
}

func TestMutationPanicsOnWrongKind(t *testing.T) {
	assert.Panics(t, func() { tree.Int(1).Append(tree.Null()) })
	assert.Panics(t, func() { tree.Array().Set("k", tree.Null()) })
}

func TestIteration(t *testing.T) {
	doc := tree.Object().Set("z", tree.Int(1)).Set("a", tree.Int(2))

	var keys []string
	for k := range doc.Members() {
		keys = append(keys, k)
	}

	assert.Equal(t, []string{"z", "a"}, keys)

	arr := tree.Array(tree.Int(1), tree.Int(2), tree.Int(3))

	sum := int64(0)
	for _, item := range arr.Elements() {
		v, _ := item.Int()
		sum += v
	}

	assert.Equal(t, int64(6), sum)
}
