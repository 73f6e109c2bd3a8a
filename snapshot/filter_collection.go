package snapshot

import "sort"

// FilterCollection holds the surviving filters for one SnapshotRegion. It
// keeps them sorted and disjoint, and can quickly answer "how many results
// live in here" and "which filter owns the Nth result" (spec §4.6).
type FilterCollection struct {
	filters []Filter
}

// NewFilterCollection builds a FilterCollection from an already-sorted,
// disjoint slice of filters. It does not defensively sort; callers that
// cannot guarantee order should use NewFilterCollectionUnsorted.
func NewFilterCollection(filters []Filter) *FilterCollection {
	return &FilterCollection{filters: filters}
}

// NewFilterCollectionUnsorted sorts filters by base address before wrapping
// them.
func NewFilterCollectionUnsorted(filters []Filter) *FilterCollection {
	cp := make([]Filter, len(filters))
	copy(cp, filters)
	sort.Slice(cp, func(i, j int) bool { return cp[i].BaseAddress < cp[j].BaseAddress })
	return &FilterCollection{filters: cp}
}

// Filters returns the underlying slice. Callers must not mutate it.
func (fc *FilterCollection) Filters() []Filter {
	if fc == nil {
		return nil
	}
	return fc.filters
}

// Len returns the number of filters.
func (fc *FilterCollection) Len() int {
	if fc == nil {
		return 0
	}
	return len(fc.filters)
}

// IsEmpty reports whether the collection has no filters.
func (fc *FilterCollection) IsEmpty() bool {
	return fc.Len() == 0
}

// ResultCount returns the total number of aligned element starts across all
// filters, under the given alignment.
func (fc *FilterCollection) ResultCount(alignment uint64) uint64 {
	if fc == nil {
		return 0
	}
	var total uint64
	for _, f := range fc.filters {
		total += f.ElementCount(alignment)
	}
	return total
}

// ByteCount returns the total size in bytes of all filters.
func (fc *FilterCollection) ByteCount() uint64 {
	if fc == nil {
		return 0
	}
	var total uint64
	for _, f := range fc.filters {
		total += f.Size
	}
	return total
}

// FilterAndOffset finds the filter owning the localOrdinal-th element (0
// indexed, counting within this collection only) under the given alignment,
// via binary search over the prefix sum of per-filter counts — the same
// technique as interval.EndpointIndex's ExpsearchPosType, specialized to a
// monotonic prefix-sum instead of a sorted endpoint list.
func (fc *FilterCollection) FilterAndOffset(localOrdinal uint64, alignment uint64) (filterIndex int, offsetInFilter uint64, ok bool) {
	if fc == nil {
		return 0, 0, false
	}
	remaining := localOrdinal
	// Binary search the smallest prefix-sum index whose cumulative count
	// exceeds remaining. Filters are few enough per region in practice that
	// a linear scan would also be fine, but spec §4.6 calls for the
	// binary-search structure explicitly.
	lo, hi := 0, len(fc.filters)
	prefix := make([]uint64, len(fc.filters)+1)
	for i, f := range fc.filters {
		prefix[i+1] = prefix[i] + f.ElementCount(alignment)
	}
	idx := sort.Search(hi-lo, func(i int) bool { return prefix[i+1] > remaining })
	if idx >= len(fc.filters) {
		return 0, 0, false
	}
	localWithinFilter := remaining - prefix[idx]
	return idx, localWithinFilter * alignment, true
}
