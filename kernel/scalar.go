package kernel

import (
	"github.com/zcanann/Olorin-sub001/rle"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// runScalar walks elements at stride = alignment and applies the scalar
// predicate one element at a time. It is used both as the dispatcher's
// fallback kernel and, by the vector kernels below, to finish off a tail
// that doesn't fill a whole lane (spec §4.3.5).
func runScalar(baseAddress uint64, current, previous []byte, params Params) []snapshot.Filter {
	enc := rle.New(baseAddress)
	scalarTail(enc, 0, uint64(len(current)), current, previous, params)
	enc.FinalizeCurrentEncodeWithPadding(0, paddingFor(params))
	return enc.TakeResultRegions()
}

// scalarTail runs the scalar predicate over [start, end) of current/previous
// (both full-buffer relative offsets), feeding hits/misses into enc. It
// assumes enc's cursor is already positioned at start.
func scalarTail(enc *rle.Encoder, start, end uint64, current, previous []byte, params Params) {
	unit := params.UnitSize
	align := params.Alignment
	for offset := start; offset+unit <= end; offset += align {
		cur := current[offset : offset+unit]
		var prev []byte
		if previous != nil {
			prev = previous[offset : offset+unit]
		}
		if params.Scalar(cur, prev) {
			enc.EncodeRange(align)
		} else {
			enc.FinalizeCurrentEncodeWithPadding(align, paddingFor(params))
		}
	}
}

// paddingFor returns the trailing-byte padding a closed run should gain to
// cover the rest of a data type wider than the scan's alignment (spec §4.2,
// §9).
func paddingFor(params Params) uint64 {
	if params.UnitSize <= params.Alignment {
		return 0
	}
	return params.UnitSize - params.Alignment
}
