package kernel

import (
	"bytes"
	"fmt"

	"github.com/zcanann/Olorin-sub001/predicate"
)

// ScalarForByteArray builds the scalar predicate for a ByteArray compare.
// predicate.New deliberately never builds one (spec.md:95: byte-array
// compares are implemented directly inside specialized kernels, not
// through that factory), so the dispatcher calls here instead for
// datatype.ByteArray terms. There is no SIMD form — vector_comparisons_byte_array.rs
// returns None from every one of its constructors — so a ByteArray term
// always runs through the Scalar Fallback kernel (spec §4.3.5); the
// stride already carried by kernel.Params.Alignment is what gives that
// single scalar loop the aligned/sparse/overlapping behaviors spec §4.3
// describes for other data types.
func ScalarForByteArray(kind predicate.CompareKind, immediate []byte) (predicate.ScalarPredicate, error) {
	if len(immediate) == 0 {
		return nil, fmt.Errorf("kernel: byte-array compare requires a non-empty pattern")
	}
	switch kind {
	case predicate.Equal:
		return func(current, _ []byte) bool { return bytes.Equal(current, immediate) }, nil
	case predicate.NotEqual:
		return func(current, _ []byte) bool { return !bytes.Equal(current, immediate) }, nil
	case predicate.Changed:
		return func(current, previous []byte) bool { return previous != nil && !bytes.Equal(current, previous) }, nil
	case predicate.Unchanged:
		return func(current, previous []byte) bool { return previous == nil || bytes.Equal(current, previous) }, nil
	default:
		return nil, fmt.Errorf("kernel: byte-array compare does not support compare kind %d", kind)
	}
}
