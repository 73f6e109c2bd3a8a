package kernel

import (
	"github.com/zcanann/Olorin-sub001/predicate"
	"github.com/zcanann/Olorin-sub001/rle"
	"github.com/zcanann/Olorin-sub001/snapshot"
	"github.com/zcanann/Olorin-sub001/vecmask"
)

// runOverlappingBytewiseStaggered specializes Overlapping for unit_size in
// {2, 4, 8} with an immediate equal/not-equal compare (spec §4.3.4). Rather
// than rotating a single unit-wide compare, it broadcasts each byte of the
// immediate into its own mask, computes a byte-equal comparison at every lane
// position, rotates each byte's result left by its position within the
// element, and ANDs them together — the AND is true at lane position i
// exactly when the unit_size-byte element starting at i matches
// byte-for-byte, mirroring VectorGenerics::rotate_left_with_discard in the
// original engine. Lane positions whose element extends past the chunk are
// compared directly against the buffer. NotEqual selects the positions where
// that element match fails, so both compare kinds pick the same positions as
// the general Overlapping kernel.
func runOverlappingBytewiseStaggered(baseAddress uint64, current, previous []byte, params Params) []snapshot.Filter {
	enc := rle.New(baseAddress)
	unit := int(params.UnitSize)
	immediate := params.Immediate
	wantEqual := params.CompareKind == predicate.Equal
	last := len(current)

	chunkCount := 0
	if vecmask.LaneWidth > 0 {
		chunkCount = (last - unit + 1)
		if chunkCount < 0 {
			chunkCount = 0
		}
	}
	vectorizableChunks := 0
	if chunkCount > 0 {
		vectorizableChunks = chunkCount / vecmask.LaneWidth
	}

	for c := 0; c < vectorizableChunks; c++ {
		base := c * vecmask.LaneWidth
		var lane vecmask.Mask
		copy(lane[:], current[base:base+vecmask.LaneWidth])

		combined := vecmask.Splat(vecmask.TrueByte)
		for b := 0; b < unit; b++ {
			byteMask := byteCompareMask(lane, immediate[b], true)
			rotated := vecmask.RotateLeftWithDiscard(byteMask, b)
			combined = vecmask.And(combined, rotated)
		}

		for i := 0; i < vecmask.LaneWidth; i++ {
			equal := combined[i] == vecmask.TrueByte
			if i+unit > vecmask.LaneWidth {
				// The rotation discarded this element's trailing bytes, which
				// lie in the next chunk; compare the element directly.
				equal = staggeredElementMatches(current[base+i:base+i+unit], immediate, true)
			}
			if equal == wantEqual {
				enc.EncodeRange(1)
			} else {
				enc.FinalizeCurrentEncodeWithPadding(1, paddingFor(params))
			}
		}
	}

	// Tail: remaining byte offsets that don't fill a whole lane, checked
	// directly by bytewise comparison against the immediate.
	tailStart := vectorizableChunks * vecmask.LaneWidth
	for offset := tailStart; offset+unit <= last; offset++ {
		if staggeredElementMatches(current[offset:offset+unit], immediate, true) == wantEqual {
			enc.EncodeRange(1)
		} else {
			enc.FinalizeCurrentEncodeWithPadding(1, paddingFor(params))
		}
	}

	enc.FinalizeCurrentEncodeWithPadding(0, paddingFor(params))
	return enc.TakeResultRegions()
}

func byteCompareMask(lane vecmask.Mask, target byte, wantEqual bool) vecmask.Mask {
	var out vecmask.Mask
	for i, v := range lane {
		match := v == target
		if !wantEqual {
			match = !match
		}
		if match {
			out[i] = vecmask.TrueByte
		} else {
			out[i] = vecmask.FalseByte
		}
	}
	return out
}

func staggeredElementMatches(elementBytes, immediate []byte, wantEqual bool) bool {
	for b, v := range elementBytes {
		match := v == immediate[b]
		if !wantEqual {
			match = !match
		}
		if !match {
			return false
		}
	}
	return true
}
