package snapshot

import "fmt"

// Filter is a sub-range of its owning SnapshotRegion: a contiguous byte span
// that survived a previous scan step. Filters never overlap within a region
// and are kept sorted by base address. The very first scan against a fresh
// region produces exactly one filter equal to the region itself.
type Filter struct {
	BaseAddress uint64
	Size        uint64
}

// NewFilter constructs a Filter, matching the Rust original's
// SnapshotRegionFilter::new(base_address, size).
func NewFilter(baseAddress, size uint64) Filter {
	return Filter{BaseAddress: baseAddress, Size: size}
}

// End returns the exclusive upper bound of the filter's byte range.
func (f Filter) End() uint64 {
	return f.BaseAddress + f.Size
}

// ElementCount returns the number of aligned elements of the given unit size
// that start within this filter under the given alignment. This is the
// quantity paging and the result index sum across filters (spec §4.6).
func (f Filter) ElementCount(alignment uint64) uint64 {
	if alignment == 0 || f.Size < alignment {
		return 0
	}
	return f.Size / alignment
}

func (f Filter) String() string {
	return fmt.Sprintf("Filter[0x%x, 0x%x)", f.BaseAddress, f.End())
}
