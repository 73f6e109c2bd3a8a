// Package scan implements the dispatcher from spec.md §4.4: given a
// snapshot and a list of (data type, predicate) pairs, it fans out across
// regions and filters, selects a kernel per spec §4.3, and assembles the
// narrowed filter list for each region. It reports progress and honors
// cooperative cancellation the way the teacher's worker-pool code
// (traverse.Each, golang.org/x/sync/errgroup) reports errors (spec §9,
// REDESIGN FLAGS: "replace ad hoc thread spawning with the corpus's
// worker-pool idioms").
package scan

import (
	"github.com/zcanann/Olorin-sub001/datatype"
	"github.com/zcanann/Olorin-sub001/kernel"
	"github.com/zcanann/Olorin-sub001/predicate"
)

// Term is one data-type/predicate pair a Request scans for. A request with
// more than one Term scans every region once per term; the terms run one
// after another, each narrowing the filters the previous term left.
type Term struct {
	DataType    datatype.DataType
	CompareKind predicate.CompareKind
	Options     predicate.Options
	Alignment   uint64 // 0 means "use DataType.UnitSize()" (spec §6: memory_alignment none)
}

// ResolvedAlignment returns t.Alignment, or DataType.UnitSize() when
// Alignment is zero (spec §6's `memory_alignment ∈ {none, 1, 2, 4, 8}`).
func (t Term) ResolvedAlignment() uint64 {
	if t.Alignment == 0 {
		return t.DataType.UnitSize()
	}
	return t.Alignment
}

// Request is one invocation of the dispatcher.
type Request struct {
	Terms          []Term
	SingleThreaded bool
	ValidationScan bool // debug_perform_validation_scan (spec §6)

	// ReadFailureCount is the number of bytes the value collector failed to
	// read before this dispatch ran; it is threaded through unchanged into
	// Outcome so callers can report it alongside scan_completed (spec §6, §7).
	ReadFailureCount uint64
}

// mappedTerm is a Term with its predicate already constructed, so the
// dispatcher builds every predicate exactly once per request instead of
// once per region.
type mappedTerm struct {
	term      Term
	params    kernel.Params
}
