// Package datatype enumerates the concrete scannable data types and their
// fixed properties (unit size, signedness, float comparison tolerance). The
// original Rust engine dispatches through a registry of trait objects, one
// per data type, each implementing comparer-generator methods for every
// supported vector width (spec §9, REDESIGN FLAGS: "collapse the DataType
// trait-object registry into a tagged enum"). Here a closed set of constants
// plus plain functions serves the same role without runtime registration.
package datatype

import "fmt"

// DataType identifies one of the scannable primitive types or the
// variable-length byte-array type.
type DataType int

const (
	U8 DataType = iota
	I8
	U16
	I16
	U32
	I32
	U64
	I64
	F32
	F64
	ByteArray
)

func (d DataType) String() string {
	switch d {
	case U8:
		return "u8"
	case I8:
		return "i8"
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case U64:
		return "u64"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case ByteArray:
		return "byte_array"
	default:
		return fmt.Sprintf("datatype(%d)", int(d))
	}
}

// UnitSize returns the fixed size in bytes of one element of d. ByteArray
// has no fixed unit size; callers must track a length alongside it and
// should not call UnitSize for it.
func (d DataType) UnitSize() uint64 {
	switch d {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether d is a floating-point type, which changes
// tolerance handling and NaN semantics in comparisons.
func (d DataType) IsFloat() bool {
	return d == F32 || d == F64
}

// IsSigned reports whether d is a signed integer type.
func (d DataType) IsSigned() bool {
	switch d {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// IsByteArray reports whether d is the variable-length byte-array type,
// which bypasses the predicate factory entirely and is handled inside scan
// kernels directly (spec §5.3).
func (d DataType) IsByteArray() bool {
	return d == ByteArray
}

// FloatTolerance selects how approximately-equal comparisons treat
// floating-point values, mirroring the original engine's configurable
// epsilon bands (spec §6).
type FloatTolerance int

const (
	ToleranceEpsilon FloatTolerance = iota
	TolerancePow1
	TolerancePow2
	TolerancePow3
	TolerancePow4
	TolerancePow5
)

// Epsilon returns the absolute tolerance band represented by t.
func (t FloatTolerance) Epsilon() float64 {
	switch t {
	case TolerancePow1:
		return 1e-1
	case TolerancePow2:
		return 1e-2
	case TolerancePow3:
		return 1e-3
	case TolerancePow4:
		return 1e-4
	case TolerancePow5:
		return 1e-5
	default:
		return 1e-9
	}
}
