package snapshot

import (
	"github.com/zcanann/Olorin-sub001/memaddr"
)

// Region is one contiguous span of the target's address space, together with
// the two generations of bytes a scan compares (spec §3: "SnapshotRegion").
// CurrentValues holds the freshest read; PreviousValues holds whatever was
// read the step before. A region created fresh for a first scan has a nil
// PreviousValues.
type Region struct {
	memaddr.NormalizedRegion

	CurrentValues  []byte
	PreviousValues []byte

	// PageBoundaries holds the offsets, relative to Base, at which the
	// underlying OS read had to be split into separate system calls (e.g.
	// because the region straddles two physical pages with different
	// residency). A read failure is attributed to whichever boundary-bounded
	// chunk it fell in, per spec §4.4.
	PageBoundaries []uint64

	Filters *FilterCollection
}

// NewRegion wraps a freshly enumerated region with no read values yet and a
// single filter spanning the whole region, matching the Rust original's
// behavior of seeding every new region with one maximal filter before the
// first scan narrows it (spec §3, §4.1).
func NewRegion(r memaddr.NormalizedRegion) *Region {
	return &Region{
		NormalizedRegion: r,
		Filters:          NewFilterCollection([]Filter{NewFilter(r.Base, r.Size)}),
	}
}

// HasPreviousValues reports whether a prior read generation exists.
func (sr *Region) HasPreviousValues() bool {
	return sr.PreviousValues != nil
}

// SwapGenerations moves CurrentValues into PreviousValues ahead of a new
// read, per the collector's refill protocol (spec §4.4: "subsequent reads
// swap current to previous, then fill a new current").
func (sr *Region) SwapGenerations() {
	sr.PreviousValues = sr.CurrentValues
	sr.CurrentValues = nil
}

// ElementCount returns the number of aligned element starts across this
// region's surviving filters, under the given alignment.
func (sr *Region) ElementCount(alignment uint64) uint64 {
	return sr.Filters.ResultCount(alignment)
}

// ByteCount returns the total bytes spanned by this region's surviving
// filters (not necessarily the full region size, once filters have shrunk).
func (sr *Region) ByteCount() uint64 {
	return sr.Filters.ByteCount()
}

// IsDiscarded reports whether every filter has been eliminated, meaning the
// region contributes nothing further and can be dropped by the next scan
// step (spec §4.1, "discard" outcome).
func (sr *Region) IsDiscarded() bool {
	return sr.Filters.IsEmpty()
}

// ChunkForOffset returns the [start, end) page-boundary-aligned chunk that
// contains the given offset into the region, used to attribute partial read
// failures to a sub-range instead of the whole region (spec §4.4).
func (sr *Region) ChunkForOffset(offset uint64) (start, end uint64) {
	prev := uint64(0)
	for _, b := range sr.PageBoundaries {
		if offset < b {
			return prev, b
		}
		prev = b
	}
	return prev, sr.Size
}
