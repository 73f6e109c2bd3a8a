package kernel

import (
	"github.com/zcanann/Olorin-sub001/rle"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// runOverlapping handles unit_size > alignment in the general case: every
// byte position is a potential element start, so elements at adjacent
// starts overlap in memory (spec §4.3.3). The Rust original tests a whole
// vector at once and combines `unit_size / alignment` rotated copies of the
// vector predicate's output; the portable equivalent tests the scalar
// predicate at every byte offset directly, which produces the same
// byte-granular hit/miss sequence without needing rotation machinery.
func runOverlapping(baseAddress uint64, current, previous []byte, params Params) []snapshot.Filter {
	enc := rle.New(baseAddress)
	unit := params.UnitSize
	last := uint64(len(current))

	for offset := uint64(0); offset+unit <= last; offset++ {
		cur := current[offset : offset+unit]
		var prev []byte
		if previous != nil {
			prev = previous[offset : offset+unit]
		}
		if params.Scalar(cur, prev) {
			enc.EncodeRange(1)
		} else {
			enc.FinalizeCurrentEncodeWithPadding(1, paddingFor(params))
		}
	}

	enc.FinalizeCurrentEncodeWithPadding(0, paddingFor(params))
	return enc.TakeResultRegions()
}
