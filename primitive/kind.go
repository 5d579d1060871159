package primitive

import (
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindBytes
	KindTime
	KindDuration
	KindSymbol // registered enumeration, written by name
)

func (k KindEnum) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k KindEnum) IsSigned() bool {
	return k >= KindInt && k <= KindInt64
}

func (k KindEnum) IsUnsigned() bool {
	return k >= KindUint && k <= KindUint64
}

func (k KindEnum) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

var byReflectKind = map[reflect.Kind]KindEnum{
	reflect.Int:     KindInt,
	reflect.Int8:    KindInt8,
	reflect.Int16:   KindInt16,
	reflect.Int32:   KindInt32,
	reflect.Int64:   KindInt64,
	reflect.Uint:    KindUint,
	reflect.Uint8:   KindUint8,
	reflect.Uint16:  KindUint16,
	reflect.Uint32:  KindUint32,
	reflect.Uint64:  KindUint64,
	reflect.Float32: KindFloat32,
	reflect.Float64: KindFloat64,
	reflect.Bool:    KindBool,
	reflect.String:  KindString,
}

// FromReflectType classifies a scalar type. Named types report the kind of
// their underlying type unless they are registered enumerations.
// Non-scalar types yield zero.
func FromReflectType(rtype reflect.Type) KindEnum {
	switch {
	case rtype == nil:
		return 0
	case rtype == timeType:
		return KindTime
	case rtype == durationType:
		return KindDuration
	case rtype.Kind() == reflect.Slice && rtype.Elem().Kind() == reflect.Uint8:
		return KindBytes
	}

	if _, ok := LookupEnum(rtype); ok {
		return KindSymbol
	}

	return byReflectKind[rtype.Kind()]
}
