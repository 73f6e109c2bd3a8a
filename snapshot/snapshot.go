package snapshot

import "sort"

// SortOrder controls how a Snapshot's regions are ordered, which in turn
// determines result ordinal assignment and scan-progress granularity (spec
// §3: "sorted by base address ascending, or by size descending").
type SortOrder int

const (
	// SortByBaseAddressAscending orders regions by their starting address,
	// the default and the order results are paged in.
	SortByBaseAddressAscending SortOrder = iota
	// SortBySizeDescending orders the largest regions first, useful for
	// prioritizing scan work that is likely to shed the most candidates
	// soonest.
	SortBySizeDescending
)

// Snapshot is an ordered collection of Regions captured from one target
// process at one point in time (spec §3: "Snapshot"). It is the scanning
// engine's central piece of state: every scan step reads it, narrows its
// filters, and replaces it with the next generation.
type Snapshot struct {
	regions []*Region
}

// New builds a Snapshot from freshly enumerated regions, in base-address
// order.
func New(regions []*Region) *Snapshot {
	s := &Snapshot{regions: regions}
	s.Sort(SortByBaseAddressAscending)
	return s
}

// Regions returns the snapshot's regions in their current sort order.
// Callers must not mutate the returned slice's length, though mutating
// individual Region contents (e.g. during a scan step) is expected.
func (s *Snapshot) Regions() []*Region {
	if s == nil {
		return nil
	}
	return s.regions
}

// Sort reorders the snapshot's regions in place.
func (s *Snapshot) Sort(order SortOrder) {
	switch order {
	case SortBySizeDescending:
		sort.SliceStable(s.regions, func(i, j int) bool {
			return s.regions[i].ByteCount() > s.regions[j].ByteCount()
		})
	default:
		sort.SliceStable(s.regions, func(i, j int) bool {
			return s.regions[i].Base < s.regions[j].Base
		})
	}
}

// RegionCount returns the number of regions currently in the snapshot.
func (s *Snapshot) RegionCount() int {
	if s == nil {
		return 0
	}
	return len(s.regions)
}

// ByteCount sums the surviving filter bytes across every region.
func (s *Snapshot) ByteCount() uint64 {
	if s == nil {
		return 0
	}
	var total uint64
	for _, r := range s.regions {
		total += r.ByteCount()
	}
	return total
}

// NumberOfResults sums the aligned element counts across every region's
// surviving filters, under the given alignment. This is the quantity
// reported to callers as "how many results does this scan have" (spec §3,
// §4.6).
func (s *Snapshot) NumberOfResults(alignment uint64) uint64 {
	if s == nil {
		return 0
	}
	var total uint64
	for _, r := range s.regions {
		total += r.ElementCount(alignment)
	}
	return total
}

// DiscardEmptyRegions drops every region whose filters have all been
// eliminated, in place. It is called once per scan step after filtering, so
// that a subsequent step's fan-out never wastes work on dead regions (spec
// §4.1).
func (s *Snapshot) DiscardEmptyRegions() {
	if s == nil {
		return
	}
	kept := s.regions[:0]
	for _, r := range s.regions {
		if !r.IsDiscarded() {
			kept = append(kept, r)
		}
	}
	s.regions = kept
}

// RegionAndLocalOrdinal resolves a global result ordinal to the region that
// owns it and the ordinal local to that region, by walking the prefix sum
// of per-region element counts. Regions are few enough relative to elements
// that a linear scan here is appropriate; the expensive binary search lives
// one level down, in FilterCollection.FilterAndOffset (spec §4.6).
func (s *Snapshot) RegionAndLocalOrdinal(globalOrdinal uint64, alignment uint64) (region *Region, localOrdinal uint64, ok bool) {
	if s == nil {
		return nil, 0, false
	}
	remaining := globalOrdinal
	for _, r := range s.regions {
		count := r.ElementCount(alignment)
		if remaining < count {
			return r, remaining, true
		}
		remaining -= count
	}
	return nil, 0, false
}
