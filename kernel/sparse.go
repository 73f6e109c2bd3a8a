package kernel

import (
	"github.com/zcanann/Olorin-sub001/rle"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// runSparse handles alignment > unit_size: elements are smaller than the
// spacing between candidate starts, so only every alignment-th byte is a
// possible element start (spec §4.3.2). The Rust original packs several of
// these spaced-out elements into one SIMD vector using a sparse mask for a
// performance win; a portable build gets the identical Filter output by
// evaluating the scalar predicate directly at each alignment-strided start,
// which is exactly what the sparse mask's final fast path reduces to.
func runSparse(baseAddress uint64, current, previous []byte, params Params) []snapshot.Filter {
	enc := rle.New(baseAddress)
	scalarTail(enc, 0, uint64(len(current)), current, previous, params)
	enc.FinalizeCurrentEncodeWithPadding(0, paddingFor(params))
	return enc.TakeResultRegions()
}
