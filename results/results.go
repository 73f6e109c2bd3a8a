// Package results materializes ScanResult values on demand from a Snapshot,
// the freeze list, and a fresh read, and pages them for display (spec §4.6).
// Nothing here is precomputed: every ScanResult is built lazily from the
// ordinal the caller asks for.
package results

import (
	"context"
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zcanann/Olorin-sub001/datatype"
	"github.com/zcanann/Olorin-sub001/memaddr"
	"github.com/zcanann/Olorin-sub001/memio"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// ScanResult is one resolved element: its position in the scan's ordering,
// its address, and its current and (if available) previous raw bytes, one
// unit of the data type long (spec §4.6). AsUint64 decodes them.
type ScanResult struct {
	GlobalOrdinal  uint64
	RegionIndex    int
	FilterIndex    int
	OffsetInFilter uint64
	Address        uint64

	DataType      datatype.DataType
	CurrentValue  []byte
	PreviousValue []byte

	IsFrozen bool

	ModuleName   string
	ModuleOffset uint64
	HasModule    bool
}

// ModuleResolver looks up which loaded module, if any, contains an address.
// Index wraps this behind an LRU cache, since paging re-resolves the same
// small set of hot addresses repeatedly (spec §4.6 step 4).
type ModuleResolver interface {
	ResolveModule(ctx context.Context, address uint64) (name string, offset uint64, ok bool)
}

// FrozenChecker reports whether an address is currently pinned by the freeze
// list, so paged results can flag is_frozen without the results package
// depending on the freeze package's concrete type.
type FrozenChecker interface {
	IsFrozen(address uint64) bool
}

type moduleResolution struct {
	name   string
	offset uint64
	ok     bool
}

// Index resolves ordinals against a Snapshot into ScanResult values,
// caching module-address resolutions (spec §4.6, "attach module name/offset
// by looking up the address in the loaded-module table").
type Index struct {
	snap      *snapshot.Snapshot
	dataType  datatype.DataType
	alignment uint64
	modules   ModuleResolver
	frozen    FrozenChecker

	moduleCache *lru.Cache[uint64, moduleResolution]
}

// moduleCacheSize bounds the LRU cache of address->module resolutions. A
// page is typically tens to a few hundred results, so this comfortably
// covers several pages' worth of hot addresses without growing unbounded
// across a long-lived session.
const moduleCacheSize = 4096

// NewIndex builds an Index over snap, resolving values as dataType/alignment
// elements. modules and frozen may be nil (module/freeze info is then
// omitted from results).
func NewIndex(snap *snapshot.Snapshot, dataType datatype.DataType, alignment uint64, modules ModuleResolver, frozen FrozenChecker) *Index {
	cache, _ := lru.New[uint64, moduleResolution](moduleCacheSize)
	return &Index{
		snap:        snap,
		dataType:    dataType,
		alignment:   alignment,
		modules:     modules,
		frozen:      frozen,
		moduleCache: cache,
	}
}

// TotalCount returns the snapshot's total number of results under the
// index's alignment.
func (idx *Index) TotalCount() uint64 {
	return idx.snap.NumberOfResults(idx.alignment)
}

// Get resolves one ordinal to a ScanResult, per spec §4.6 steps 1-4.
func (idx *Index) Get(ctx context.Context, globalOrdinal uint64) (ScanResult, bool) {
	region, localOrdinal, ok := idx.snap.RegionAndLocalOrdinal(globalOrdinal, idx.alignment)
	if !ok {
		return ScanResult{}, false
	}
	filterIndex, offsetInFilter, ok := region.Filters.FilterAndOffset(localOrdinal, idx.alignment)
	if !ok {
		return ScanResult{}, false
	}
	filter := region.Filters.Filters()[filterIndex]
	address := filter.BaseAddress + offsetInFilter

	unitSize := idx.dataType.UnitSize()
	localByteOffset := address - region.Base

	res := ScanResult{
		GlobalOrdinal:  globalOrdinal,
		RegionIndex:    idx.regionIndex(region),
		FilterIndex:    filterIndex,
		OffsetInFilter: offsetInFilter,
		Address:        address,
		DataType:       idx.dataType,
		CurrentValue:   sliceOrNil(region.CurrentValues, localByteOffset, unitSize),
		PreviousValue:  sliceOrNil(region.PreviousValues, localByteOffset, unitSize),
	}

	if idx.frozen != nil {
		res.IsFrozen = idx.frozen.IsFrozen(address)
	}
	if idx.modules != nil {
		if resolved, cached := idx.moduleCache.Get(address); cached {
			res.ModuleName, res.ModuleOffset, res.HasModule = resolved.name, resolved.offset, resolved.ok
		} else {
			name, offset, resolvedOK := idx.modules.ResolveModule(ctx, address)
			idx.moduleCache.Add(address, moduleResolution{name: name, offset: offset, ok: resolvedOK})
			res.ModuleName, res.ModuleOffset, res.HasModule = name, offset, resolvedOK
		}
	}
	return res, true
}

func (idx *Index) regionIndex(target *snapshot.Region) int {
	for i, r := range idx.snap.Regions() {
		if r == target {
			return i
		}
	}
	return -1
}

func sliceOrNil(buf []byte, offset, size uint64) []byte {
	if buf == nil || offset+size > uint64(len(buf)) {
		return nil
	}
	out := make([]byte, size)
	copy(out, buf[offset:offset+size])
	return out
}

// Page is one contiguous window of results, plus the paging metadata spec
// §4.6 requires be exposed alongside it.
type Page struct {
	Results       []ScanResult
	PageIndex     uint64
	PageSize      uint64
	LastPageIndex uint64
	TotalCount    uint64
}

// Page resolves the ordinal range [pageIndex*pageSize, (pageIndex+1)*pageSize)
// into a Page (spec §4.6, "Paging is realized by requesting a contiguous
// range of ordinals").
func (idx *Index) Page(ctx context.Context, pageIndex, pageSize uint64) Page {
	total := idx.TotalCount()
	var lastPage uint64
	if total > 0 {
		lastPage = (total - 1) / pageSizeOrOne(pageSize)
	}

	page := Page{
		PageIndex:     pageIndex,
		PageSize:      pageSize,
		LastPageIndex: lastPage,
		TotalCount:    total,
	}
	if pageSize == 0 {
		return page
	}

	start := pageIndex * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	for ordinal := start; ordinal < end; ordinal++ {
		if res, ok := idx.Get(ctx, ordinal); ok {
			page.Results = append(page.Results, res)
		}
	}
	return page
}

func pageSizeOrOne(pageSize uint64) uint64 {
	if pageSize == 0 {
		return 1
	}
	return pageSize
}

// AsUint64 decodes a little-endian integer ScanResult value, for callers
// that want a typed view instead of raw bytes. ok is false for ByteArray
// values or malformed lengths.
func AsUint64(dt datatype.DataType, value []byte) (v uint64, ok bool) {
	switch dt.UnitSize() {
	case 1:
		if len(value) < 1 {
			return 0, false
		}
		return uint64(value[0]), true
	case 2:
		if len(value) < 2 {
			return 0, false
		}
		return uint64(binary.LittleEndian.Uint16(value)), true
	case 4:
		if len(value) < 4 {
			return 0, false
		}
		return uint64(binary.LittleEndian.Uint32(value)), true
	case 8:
		if len(value) < 8 {
			return 0, false
		}
		return binary.LittleEndian.Uint64(value), true
	default:
		return 0, false
	}
}

// ModuleTableResolver implements ModuleResolver against a static slice of
// loaded modules, as returned by memio.RegionEnumerator.ListModules.
type ModuleTableResolver struct {
	Modules []memio.Module
}

// ResolveModule implements ModuleResolver via memaddr.AddressToModule.
func (m ModuleTableResolver) ResolveModule(_ context.Context, address uint64) (string, uint64, bool) {
	return memaddr.AddressToModule(address, m.Modules)
}
