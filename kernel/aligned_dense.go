package kernel

import (
	"github.com/zcanann/Olorin-sub001/rle"
	"github.com/zcanann/Olorin-sub001/snapshot"
	"github.com/zcanann/Olorin-sub001/vecmask"
)

// runAlignedDense handles unit_size == alignment: every lane-width chunk
// packs lanes_per_vector whole elements with no overlap. It loads a vector
// at a time, applies the SIMD predicate, and fast-paths the common
// all-true/all-false results before falling back to a per-element loop
// (spec §4.3.1).
func runAlignedDense(baseAddress uint64, current, previous []byte, params Params) []snapshot.Filter {
	enc := rle.New(baseAddress)
	unit := params.UnitSize
	elementCount := uint64(len(current)) / unit
	elementsPerVector := uint64(vecmask.LaneWidth) / unit
	vectorizableIterations := uint64(0)
	if elementsPerVector > 0 {
		vectorizableIterations = elementCount / elementsPerVector
	}
	vectorElementCount := vectorizableIterations * elementsPerVector

	for i := uint64(0); i < vectorizableIterations; i++ {
		offset := i * uint64(vecmask.LaneWidth)
		var curLane, prevLane vecmask.Mask
		copy(curLane[:], current[offset:offset+uint64(vecmask.LaneWidth)])
		if previous != nil {
			copy(prevLane[:], previous[offset:offset+uint64(vecmask.LaneWidth)])
		}
		result := params.Vector(curLane, prevLane)

		switch {
		case result.All(vecmask.TrueByte):
			enc.EncodeRange(uint64(vecmask.LaneWidth))
		case result.All(vecmask.FalseByte):
			enc.FinalizeCurrentEncode(uint64(vecmask.LaneWidth))
		default:
			for e := uint64(0); e < elementsPerVector; e++ {
				if result[e*unit] == vecmask.TrueByte {
					enc.EncodeRange(unit)
				} else {
					enc.FinalizeCurrentEncode(unit)
				}
			}
		}
	}

	// Tail elements that don't fill a whole vector fall back to scalar.
	scalarTail(enc, vectorElementCount*unit, elementCount*unit, current, previous, params)

	enc.FinalizeCurrentEncode(0)
	return enc.TakeResultRegions()
}
