package primitive

import (
	"math"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as the unknown (unresolved) kind

	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindArray // composite: array<T>
	KindMap   // composite: map<K,V>

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// KindUnknown is the zero value of KindEnum.
const KindUnknown KindEnum = 0

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k KindEnum) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

// IsPrimitive reports whether k is a scalar kind usable as an array element
// or a map key/value.
func (k KindEnum) IsPrimitive() bool {
	return k.IsNumber() || k == KindBool || k == KindString
}

func (k KindEnum) IsComposite() bool {
	return k == KindArray || k == KindMap
}

func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only numeric kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	case KindInt64, KindUint64:
		return 64
	case KindFloat32:
		return 32
	case KindFloat64:
		return 64
	}
}

// IntRange returns the inclusive bounds of a signed integer kind.
func (k KindEnum) IntRange() (lo, hi int64) {
	if !k.IsSigned() {
		panic("IntRange requested for non-signed kind: " + k.String())
	}

	bits := k.Bits()
	if bits == 64 {
		return math.MinInt64, math.MaxInt64
	}

	return -(1 << (bits - 1)), 1<<(bits-1) - 1
}

// UintMax returns the inclusive upper bound of an unsigned integer kind.
func (k KindEnum) UintMax() uint64 {
	if !k.IsUnsigned() {
		panic("UintMax requested for non-unsigned kind: " + k.String())
	}

	bits := k.Bits()
	if bits == 64 {
		return math.MaxUint64
	}

	return 1<<bits - 1
}
