// Package memaddr defines the address primitives shared by every layer of
// the scanning engine: raw virtual-memory ranges and the module-relative
// pointer chains used to key the freeze list.
package memaddr

import "fmt"

// Pointer is a logical address in the target process: either an absolute
// base address, or a base address resolved against a loaded module plus an
// ordered chain of pointer-dereference offsets. Equality is structural (see
// Equal); since Offsets is a slice, a Pointer is not itself comparable, and
// the freeze list keys its map by Key() instead.
type Pointer struct {
	Base       uint64
	ModuleName string
	Offsets    []int64
}

// NewAbsolutePointer returns a Pointer with no module and no offset chain.
func NewAbsolutePointer(base uint64) Pointer {
	return Pointer{Base: base}
}

// NewModulePointer returns a Pointer resolved relative to a loaded module.
func NewModulePointer(moduleName string, base uint64, offsets ...int64) Pointer {
	cp := make([]int64, len(offsets))
	copy(cp, offsets)
	return Pointer{Base: base, ModuleName: moduleName, Offsets: cp}
}

// Key returns a value suitable for use as a map key. []int64 in Offsets is
// not itself comparable, so the chain is folded into a string; module name
// is part of the key because addresses drift across process restarts but
// module-relative offsets do not (see spec §9's freeze-list redesign note).
func (p Pointer) Key() string {
	if len(p.Offsets) == 0 {
		return fmt.Sprintf("%s|%x", p.ModuleName, p.Base)
	}
	key := fmt.Sprintf("%s|%x", p.ModuleName, p.Base)
	for _, off := range p.Offsets {
		key += fmt.Sprintf("|%x", off)
	}
	return key
}

// Equal reports structural equality.
func (p Pointer) Equal(other Pointer) bool {
	if p.Base != other.Base || p.ModuleName != other.ModuleName || len(p.Offsets) != len(other.Offsets) {
		return false
	}
	for i, off := range p.Offsets {
		if other.Offsets[i] != off {
			return false
		}
	}
	return true
}

// IsModuleRelative reports whether this pointer is anchored to a module
// rather than an absolute address.
func (p Pointer) IsModuleRelative() bool {
	return p.ModuleName != ""
}

func (p Pointer) String() string {
	if p.ModuleName == "" {
		return fmt.Sprintf("0x%x", p.Base)
	}
	return fmt.Sprintf("%s+0x%x%v", p.ModuleName, p.Base, p.Offsets)
}
