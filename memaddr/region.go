package memaddr

import "fmt"

// NormalizedRegion is a half-open byte range [Base, Base+Size) in the target
// process's address space, as returned by the region enumerator. It carries
// no payload; SnapshotRegion attaches the read buffers.
type NormalizedRegion struct {
	Base uint64
	Size uint64
}

// End returns the exclusive upper bound of the range.
func (r NormalizedRegion) End() uint64 {
	return r.Base + r.Size
}

// Contains reports whether addr falls in [Base, End).
func (r NormalizedRegion) Contains(addr uint64) bool {
	return addr >= r.Base && addr < r.End()
}

func (r NormalizedRegion) String() string {
	return fmt.Sprintf("[0x%x, 0x%x)", r.Base, r.End())
}

// Module describes one loaded module in the target process, as returned by
// the region enumerator's module listing.
type Module struct {
	Name string
	Base uint64
	Size uint64
}

// End returns the exclusive upper bound of the module's mapped range.
func (m Module) End() uint64 {
	return m.Base + m.Size
}

// AddressToModule resolves addr against a set of loaded modules, returning
// the containing module's name and the offset within it. The modules slice
// need not be sorted; this does a linear scan, which is fine given the small
// number of modules typically loaded in a target process.
func AddressToModule(addr uint64, modules []Module) (name string, offset uint64, ok bool) {
	for _, m := range modules {
		if addr >= m.Base && addr < m.End() {
			return m.Name, addr - m.Base, true
		}
	}
	return "", 0, false
}
