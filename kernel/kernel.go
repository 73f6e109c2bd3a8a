// Package kernel implements the scan kernels spec.md §4.3 describes: given a
// region's current/previous byte buffers and one surviving Filter, apply a
// predicate and run-length encode the surviving byte ranges into the next
// generation of Filters. Each kernel is grounded on one of the Rust
// originals' scanners/vector/*.rs files, ported to the single portable lane
// width in package vecmask instead of native SIMD widths (spec §9).
package kernel

import (
	"github.com/zcanann/Olorin-sub001/predicate"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// Kind identifies which kernel algorithm the dispatcher selected for one
// (filter, data type) pair.
type Kind int

const (
	// Discard means the filter is smaller than one element and contributes
	// nothing; no kernel runs.
	Discard Kind = iota
	AlignedDense
	OverlappingBytewiseStaggered
	Overlapping
	Sparse
	Scalar
)

func (k Kind) String() string {
	switch k {
	case Discard:
		return "discard"
	case AlignedDense:
		return "aligned-dense"
	case OverlappingBytewiseStaggered:
		return "overlapping-bytewise-staggered"
	case Overlapping:
		return "overlapping"
	case Sparse:
		return "sparse"
	case Scalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Params is the Go counterpart of MappedScanParameters (spec §3): derived,
// immutable inputs to a single kernel invocation.
type Params struct {
	UnitSize  uint64
	Alignment uint64

	CompareKind predicate.CompareKind
	Immediate   []byte // the compare's constant operand, if any (Immediate and Delta families)

	Scalar predicate.ScalarPredicate
	Vector predicate.VectorPredicate // nil if no SIMD implementation exists
}

// Select applies the priority table from spec §4.3 to decide which kernel
// runs for filterSize bytes under params.
func Select(filterSize uint64, params Params) Kind {
	if filterSize < params.UnitSize {
		return Discard
	}
	hasVector := params.Vector != nil
	switch {
	case params.UnitSize == params.Alignment && hasVector:
		return AlignedDense
	case params.UnitSize > params.Alignment && hasVector && isStaggerWidth(params.UnitSize) && isImmediateEqOrNe(params.CompareKind):
		return OverlappingBytewiseStaggered
	case params.UnitSize > params.Alignment && hasVector:
		return Overlapping
	case params.UnitSize < params.Alignment && hasVector:
		return Sparse
	default:
		return Scalar
	}
}

func isStaggerWidth(unitSize uint64) bool {
	return unitSize == 2 || unitSize == 4 || unitSize == 8
}

func isImmediateEqOrNe(kind predicate.CompareKind) bool {
	return kind == predicate.Equal || kind == predicate.NotEqual
}

// Run executes the kernel chosen for filter against the region bytes
// current/previous (both already sliced to exactly filter's byte range,
// aligned to filter.BaseAddress), run-length encoding the survivors with an
// encoder of the kernel's own and returning the filters emitted for this
// filter alone.
func Run(kind Kind, baseAddress uint64, current, previous []byte, params Params) []snapshot.Filter {
	switch kind {
	case Discard:
		return nil
	case AlignedDense:
		return runAlignedDense(baseAddress, current, previous, params)
	case OverlappingBytewiseStaggered:
		return runOverlappingBytewiseStaggered(baseAddress, current, previous, params)
	case Overlapping:
		return runOverlapping(baseAddress, current, previous, params)
	case Sparse:
		return runSparse(baseAddress, current, previous, params)
	default:
		return runScalar(baseAddress, current, previous, params)
	}
}
