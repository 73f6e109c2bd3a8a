// Package predicate implements the factory described in spec.md: from a
// (data type, compare kind, optional operands) triple it produces a scalar
// predicate, and — for every data type except ByteArray — a vector
// predicate operating on a whole vecmask.Mask at once. Byte-array compares
// are handled directly inside scan kernels and never reach this factory
// (spec §5.3).
package predicate

import (
	"fmt"
	"math"

	"github.com/zcanann/Olorin-sub001/datatype"
	"github.com/zcanann/Olorin-sub001/vecmask"
)

// CompareKind selects which family of comparison a predicate performs.
type CompareKind int

const (
	Equal CompareKind = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual

	Changed
	Unchanged
	Increased
	Decreased

	IncreasedByX
	DecreasedByX
	MultipliedByX
	DividedByX
	ModuloX
	ShiftLeftX
	ShiftRightX
	BitwiseAndX
	BitwiseOrX
	BitwiseXorX
)

// Family groups a CompareKind into the three operand shapes spec.md
// describes: Immediate (vs a constant), Relative (current vs previous, no
// constant), and Delta (current vs previous, combined with a constant).
type Family int

const (
	FamilyImmediate Family = iota
	FamilyRelative
	FamilyDelta
)

func (k CompareKind) Family() Family {
	switch k {
	case Equal, NotEqual, LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual:
		return FamilyImmediate
	case Changed, Unchanged, Increased, Decreased:
		return FamilyRelative
	default:
		return FamilyDelta
	}
}

// ScalarPredicate evaluates one element given its current bytes and,
// for Relative/Delta kinds, its previous bytes. Both slices are exactly
// dataType.UnitSize() long.
type ScalarPredicate func(current, previous []byte) bool

// VectorPredicate evaluates a whole lane of elements at once, given the
// current and previous lanes (previous may be the zero Mask for Immediate
// compares, which ignore it), returning a Mask of vecmask.TrueByte /
// vecmask.FalseByte per *byte*, which scan kernels then narrow to
// per-element results according to the data type's unit size and the
// scan's alignment.
type VectorPredicate func(current, previous vecmask.Mask) vecmask.Mask

// Options carries the operands a predicate may need beyond the data type
// and compare kind: an immediate constant (Immediate and Delta families)
// and a floating-point tolerance (float data types only).
type Options struct {
	Immediate []byte
	Tolerance datatype.FloatTolerance
}

// New builds the scalar and, where possible, vector predicate for
// (dataType, kind, opts). It returns a non-nil error for requests that are
// not implementable, e.g. an unsigned type compared less-than against a
// negative immediate (spec §5.3, "Predicate-construction-failure"). For
// dataType == datatype.ByteArray it returns (nil, nil, nil): byte-array
// compares never go through this factory.
func New(dt datatype.DataType, kind CompareKind, opts Options) (ScalarPredicate, VectorPredicate, error) {
	if dt.IsByteArray() {
		return nil, nil, nil
	}

	dec, err := decoderFor(dt)
	if err != nil {
		return nil, nil, err
	}

	if kind.Family() == FamilyImmediate {
		if err := validateImmediate(dt, kind, opts.Immediate, dec); err != nil {
			return nil, nil, err
		}
	}

	numeric, err := numericPredicate(dt, kind, opts, dec)
	if err != nil {
		return nil, nil, err
	}

	scalar := func(current, previous []byte) bool {
		return numeric(dec(current), decOrZero(dec, previous))
	}
	vector := vectorizeScalar(dt, scalar)
	return scalar, vector, nil
}

// decodedValue is a bit-pattern-preserving numeric view of one element:
// integers sign/zero-extended into i64/u64 depending on signedness, floats
// widened to float64. Carrying both an integer and float view lets the
// comparator apply the right arithmetic without a type switch at every
// call.
type decodedValue struct {
	u   uint64
	i   int64
	f   float64
	dt  datatype.DataType
}

func decOrZero(dec func([]byte) decodedValue, b []byte) decodedValue {
	if b == nil {
		return decodedValue{}
	}
	return dec(b)
}

func decoderFor(dt datatype.DataType) (func([]byte) decodedValue, error) {
	switch dt {
	case datatype.U8:
		return func(b []byte) decodedValue { return decodedValue{u: uint64(b[0]), dt: dt} }, nil
	case datatype.I8:
		return func(b []byte) decodedValue { return decodedValue{i: int64(int8(b[0])), dt: dt} }, nil
	case datatype.U16:
		return func(b []byte) decodedValue { return decodedValue{u: uint64(leU16(b)), dt: dt} }, nil
	case datatype.I16:
		return func(b []byte) decodedValue { return decodedValue{i: int64(int16(leU16(b))), dt: dt} }, nil
	case datatype.U32:
		return func(b []byte) decodedValue { return decodedValue{u: uint64(leU32(b)), dt: dt} }, nil
	case datatype.I32:
		return func(b []byte) decodedValue { return decodedValue{i: int64(int32(leU32(b))), dt: dt} }, nil
	case datatype.U64:
		return func(b []byte) decodedValue { return decodedValue{u: leU64(b), dt: dt} }, nil
	case datatype.I64:
		return func(b []byte) decodedValue { return decodedValue{i: int64(leU64(b)), dt: dt} }, nil
	case datatype.F32:
		return func(b []byte) decodedValue { return decodedValue{f: float64(math.Float32frombits(leU32(b))), dt: dt} }, nil
	case datatype.F64:
		return func(b []byte) decodedValue { return decodedValue{f: math.Float64frombits(leU64(b)), dt: dt} }, nil
	default:
		return nil, fmt.Errorf("predicate: unsupported data type %s", dt)
	}
}

func leU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// validateImmediate rejects requests the factory cannot implement, per
// spec §5.3's example: an unsigned type compared less-than/less-equal
// against a negative immediate can never be true, and is surfaced as a
// rejected scan request rather than silently miscompiled.
func validateImmediate(dt datatype.DataType, kind CompareKind, immediate []byte, dec func([]byte) decodedValue) error {
	if immediate == nil {
		return fmt.Errorf("predicate: immediate compare requires a constant operand")
	}
	if uint64(len(immediate)) != dt.UnitSize() {
		return fmt.Errorf("predicate: immediate length %d does not match %s unit size %d", len(immediate), dt, dt.UnitSize())
	}
	if dt.IsSigned() || dt.IsFloat() {
		return nil
	}
	switch kind {
	case LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual:
		signBit := uint64(1) << (dt.UnitSize()*8 - 1)
		if dec(immediate).u&signBit != 0 {
			return fmt.Errorf("predicate: compare kind %d against unsigned %s with a negative-patterned immediate is not implementable", kind, dt)
		}
		return nil
	default:
		return nil
	}
}

func numericPredicate(dt datatype.DataType, kind CompareKind, opts Options, dec func([]byte) decodedValue) (func(cur, prev decodedValue) bool, error) {
	var immediate decodedValue
	if kind.Family() != FamilyRelative {
		if opts.Immediate != nil {
			immediate = dec(opts.Immediate)
		}
	}

	cmp := func(a, b decodedValue) int {
		return compareDecoded(dt, a, b, opts.Tolerance)
	}
	approxEqual := func(a, b decodedValue) bool {
		if dt.IsFloat() {
			return math.Abs(a.f-b.f) <= opts.Tolerance.Epsilon()
		}
		return cmp(a, b) == 0
	}

	switch kind {
	case Equal:
		return func(cur, _ decodedValue) bool { return approxEqual(cur, immediate) }, nil
	case NotEqual:
		return func(cur, _ decodedValue) bool { return !approxEqual(cur, immediate) }, nil
	case LessThan:
		return func(cur, _ decodedValue) bool { return cmp(cur, immediate) < 0 }, nil
	case LessThanOrEqual:
		return func(cur, _ decodedValue) bool { return cmp(cur, immediate) <= 0 }, nil
	case GreaterThan:
		return func(cur, _ decodedValue) bool { return cmp(cur, immediate) > 0 }, nil
	case GreaterThanOrEqual:
		return func(cur, _ decodedValue) bool { return cmp(cur, immediate) >= 0 }, nil

	case Changed:
		return func(cur, prev decodedValue) bool { return !bytewiseEqual(dt, cur, prev) }, nil
	case Unchanged:
		return func(cur, prev decodedValue) bool { return bytewiseEqual(dt, cur, prev) }, nil
	case Increased:
		return func(cur, prev decodedValue) bool { return cmp(cur, prev) > 0 }, nil
	case Decreased:
		return func(cur, prev decodedValue) bool { return cmp(cur, prev) < 0 }, nil

	case IncreasedByX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, addOp)) }, nil
	case DecreasedByX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, subOp)) }, nil
	case MultipliedByX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, mulOp)) }, nil
	case DividedByX:
		return func(cur, prev decodedValue) bool {
			if isZero(dt, immediate) {
				return false
			}
			return approxEqual(cur, arith(dt, prev, immediate, divOp))
		}, nil
	case ModuloX:
		return func(cur, prev decodedValue) bool {
			if isZero(dt, immediate) {
				return false
			}
			return approxEqual(cur, arith(dt, prev, immediate, modOp))
		}, nil
	case ShiftLeftX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, shlOp)) }, nil
	case ShiftRightX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, shrOp)) }, nil
	case BitwiseAndX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, andOp)) }, nil
	case BitwiseOrX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, orOp)) }, nil
	case BitwiseXorX:
		return func(cur, prev decodedValue) bool { return approxEqual(cur, arith(dt, prev, immediate, xorOp)) }, nil
	default:
		return nil, fmt.Errorf("predicate: unsupported compare kind %d", kind)
	}
}

func bytewiseEqual(dt datatype.DataType, a, b decodedValue) bool {
	if dt.IsFloat() {
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	}
	if dt.IsSigned() {
		return a.i == b.i
	}
	return a.u == b.u
}

func compareDecoded(dt datatype.DataType, a, b decodedValue, tol datatype.FloatTolerance) int {
	switch {
	case dt.IsFloat():
		if math.Abs(a.f-b.f) <= tol.Epsilon() {
			return 0
		}
		if a.f < b.f {
			return -1
		}
		return 1
	case dt.IsSigned():
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	default:
		switch {
		case a.u < b.u:
			return -1
		case a.u > b.u:
			return 1
		default:
			return 0
		}
	}
}

type binOp int

const (
	addOp binOp = iota
	subOp
	mulOp
	divOp
	modOp
	shlOp
	shrOp
	andOp
	orOp
	xorOp
)

func isZero(dt datatype.DataType, v decodedValue) bool {
	if dt.IsFloat() {
		return v.f == 0
	}
	if dt.IsSigned() {
		return v.i == 0
	}
	return v.u == 0
}

// arith applies op to prev and operand under dt's numeric domain. Modulo,
// shift and bitwise ops are only meaningful for integers; for float data
// types they return prev unchanged.
func arith(dt datatype.DataType, prev, operand decodedValue, op binOp) decodedValue {
	if dt.IsFloat() {
		var r float64
		switch op {
		case addOp:
			r = prev.f + operand.f
		case subOp:
			r = prev.f - operand.f
		case mulOp:
			r = prev.f * operand.f
		case divOp:
			r = prev.f / operand.f
		default:
			r = prev.f
		}
		return decodedValue{f: r, dt: dt}
	}
	if dt.IsSigned() {
		var r int64
		switch op {
		case addOp:
			r = prev.i + operand.i
		case subOp:
			r = prev.i - operand.i
		case mulOp:
			r = prev.i * operand.i
		case divOp:
			r = prev.i / operand.i
		case modOp:
			r = prev.i % operand.i
		case shlOp:
			r = prev.i << uint(operand.i)
		case shrOp:
			r = prev.i >> uint(operand.i)
		case andOp:
			r = prev.i & operand.i
		case orOp:
			r = prev.i | operand.i
		case xorOp:
			r = prev.i ^ operand.i
		}
		return decodedValue{i: r, dt: dt}
	}
	var r uint64
	switch op {
	case addOp:
		r = prev.u + operand.u
	case subOp:
		r = prev.u - operand.u
	case mulOp:
		r = prev.u * operand.u
	case divOp:
		r = prev.u / operand.u
	case modOp:
		r = prev.u % operand.u
	case shlOp:
		r = prev.u << operand.u
	case shrOp:
		r = prev.u >> operand.u
	case andOp:
		r = prev.u & operand.u
	case orOp:
		r = prev.u | operand.u
	case xorOp:
		r = prev.u ^ operand.u
	}
	return decodedValue{u: r, dt: dt}
}

// vectorizeScalar builds a VectorPredicate by applying the scalar predicate
// to each unit-size-wide slot of the lane. This is the portable fallback
// every data type gets; the staggered kernel (spec §5.4) instead builds its
// own byte-equal vector predicates directly against vecmask, bypassing this
// factory altogether.
func vectorizeScalar(dt datatype.DataType, scalar ScalarPredicate) VectorPredicate {
	unit := int(dt.UnitSize())
	if unit == 0 {
		return nil
	}
	return func(current, previous vecmask.Mask) vecmask.Mask {
		var out vecmask.Mask
		for start := 0; start+unit <= vecmask.LaneWidth; start += unit {
			cur := current[start : start+unit]
			prev := previous[start : start+unit]
			result := scalar(cur, prev)
			fill := vecmask.FalseByte
			if result {
				fill = vecmask.TrueByte
			}
			for i := start; i < start+unit; i++ {
				out[i] = fill
			}
		}
		return out
	}
}
