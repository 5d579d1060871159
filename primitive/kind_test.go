package primitive_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tagged-serde/primitive"
	"tagged-serde/tree"
)

type Shade int

const (
	ShadeLight Shade = iota + 1
	ShadeDark
)

func (s Shade) String() string {
	switch s {
	case ShadeLight:
		return "Light"
	case ShadeDark:
		return "Dark"
	default:
		return fmt.Sprintf("Shade(%d)", int(s))
	}
}

func init() {
	primitive.RegisterEnum(ShadeLight, ShadeDark)
}

func Example() {
	type Age int
	type Name string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Age(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Name(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(ShadeDark)))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf([]byte(nil))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindInt
	// KindString
	// KindSymbol
	// KindBytes
	// KindDuration
	// KindTime
	// KindEnum(0)
}

func TestAccepts(t *testing.T) {
	assert.True(t, primitive.KindInt8.Accepts(tree.KindInt))
	assert.True(t, primitive.KindUint64.Accepts(tree.KindUint))
	assert.True(t, primitive.KindInt64.Accepts(tree.KindUint))
	assert.False(t, primitive.KindInt.Accepts(tree.KindFloat))
	assert.False(t, primitive.KindInt.Accepts(tree.KindString))
	assert.False(t, primitive.KindFloat64.Accepts(tree.KindInt))
	assert.True(t, primitive.KindFloat32.Accepts(tree.KindFloat))
	assert.True(t, primitive.KindTime.Accepts(tree.KindString))
	assert.True(t, primitive.KindTime.Accepts(tree.KindTime))
	assert.False(t, primitive.KindBool.Accepts(tree.KindInt))
	assert.True(t, primitive.KindSymbol.Accepts(tree.KindString))
	assert.True(t, primitive.KindBytes.Accepts(tree.KindBytes))
}

func TestExpected(t *testing.T) {
	assert.Equal(t, "int", primitive.KindInt16.Expected())
	assert.Equal(t, "uint", primitive.KindUint.Expected())
	assert.Equal(t, "float", primitive.KindFloat32.Expected())
	assert.Equal(t, "string", primitive.KindDuration.Expected())
	assert.Equal(t, "time", primitive.KindTime.Expected())
}

func TestClasses(t *testing.T) {
	assert.True(t, primitive.KindInt64.IsSigned())
	assert.False(t, primitive.KindUint8.IsSigned())
	assert.True(t, primitive.KindUint.IsUnsigned())
	assert.True(t, primitive.KindInt8.IsInteger())
	assert.True(t, primitive.KindUint64.IsInteger())
	assert.False(t, primitive.KindFloat32.IsInteger())
	assert.False(t, primitive.KindSymbol.IsInteger())
	assert.True(t, primitive.KindFloat64.IsFloat())
	assert.False(t, primitive.KindDuration.IsFloat())
}
