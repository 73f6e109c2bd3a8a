// Package memio declares the three OS capabilities the scanning engine
// consumes but never implements itself: enumerating virtual memory regions,
// reading bytes, and writing bytes. Concrete, OS-specific implementations are
// injected by the caller (spec §6); this package only defines the shape of
// that collaboration so the engine stays hermetic and testable (spec §9's
// note on replacing global registries with constructor-time dependencies).
package memio

import (
	"context"

	"github.com/zcanann/Olorin-sub001/memaddr"
)

type (
	// NormalizedRegion re-exports memaddr.NormalizedRegion to keep this
	// package's public API self-contained for its primary consumers.
	NormalizedRegion = memaddr.NormalizedRegion
	// Module re-exports memaddr.Module.
	Module = memaddr.Module
)

// ProcessHandle is an opaque reference to an opened target process. The
// engine never inspects it; it only threads it through to the injected
// capabilities below.
type ProcessHandle interface {
	// PID returns the target process's platform identifier, for logging.
	PID() int
}

// Protection is a bitmask of page-protection flags, interpreted by the
// region enumerator's implementation (e.g. read/write/execute).
type Protection uint32

const (
	ProtectRead Protection = 1 << iota
	ProtectWrite
	ProtectExecute
	ProtectCopyOnWrite
)

// RegionType filters which kind of virtual-memory mapping to enumerate.
type RegionType uint32

const (
	RegionImage RegionType = 1 << iota
	RegionPrivate
	RegionMapped
)

// BoundsPolicy controls how the enumerator clips regions against a caller
// supplied [start, end) window.
type BoundsPolicy int

const (
	// BoundsClip truncates regions that straddle the window boundary.
	BoundsClip BoundsPolicy = iota
	// BoundsExclude drops any region that is not fully contained.
	BoundsExclude
	// BoundsInclude keeps any region that overlaps at all, unclipped.
	BoundsInclude
)

// RegionEnumerator lists the virtual memory regions and loaded modules of a
// target process. This is the first of the three injected OS capabilities
// (spec §6).
type RegionEnumerator interface {
	// ListVirtualPages enumerates regions matching the given protection and
	// type filters, clipped to [start, end) per boundsPolicy.
	ListVirtualPages(
		ctx context.Context,
		handle ProcessHandle,
		requiredProtection Protection,
		excludedProtection Protection,
		allowedTypes RegionType,
		start, end uint64,
		boundsPolicy BoundsPolicy,
	) ([]NormalizedRegion, error)

	// ListModules returns every module currently mapped into the target.
	ListModules(ctx context.Context, handle ProcessHandle) ([]Module, error)
}

// ByteReader reads bytes out of a target process. This is the second
// injected OS capability.
type ByteReader interface {
	// Read fills dst from the target starting at address, returning true iff
	// every byte was read successfully. A partial/total failure must not
	// panic or corrupt dst past what was actually read.
	Read(ctx context.Context, handle ProcessHandle, address uint64, dst []byte) (ok bool, err error)

	// ReadStruct is a struct-aware variant: it reads into dst and reports,
	// per page_boundaries-aligned chunk, which chunks succeeded. failedRanges
	// holds the [start,end) sub-ranges (relative to address) that could not
	// be read; dst is left unmodified in those ranges.
	ReadStruct(ctx context.Context, handle ProcessHandle, address uint64, dst []byte, pageBoundaries []uint64) (failedRanges [][2]uint64, err error)
}

// ByteWriter writes bytes into a target process. This is the third injected
// OS capability.
type ByteWriter interface {
	Write(ctx context.Context, handle ProcessHandle, address uint64, src []byte) (ok bool, err error)
}
