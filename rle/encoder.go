// Package rle implements run-length encoding of per-element scan results
// into the coalesced, disjoint, sorted snapshot.Filter ranges a scan step
// produces (spec §4.2). It is the Go counterpart of the run-length encoder
// driven by every scan kernel: kernels call EncodeRange for a hit and one of
// the Finalize variants for a miss, in strictly increasing offset order.
package rle

import "github.com/zcanann/Olorin-sub001/snapshot"

// Encoder accumulates hit/miss decisions against a single region's byte
// range, starting at baseAddress, and coalesces adjacent hits into Filters.
// It is not safe for concurrent use; callers run one Encoder per
// (region, goroutine).
type Encoder struct {
	baseAddress uint64
	cursor      uint64 // offset from baseAddress of the next byte not yet consumed
	runOpen     bool
	runStart    uint64 // offset from baseAddress where the current open run started

	results []snapshot.Filter
}

// New returns an Encoder ready to encode a region starting at baseAddress.
func New(baseAddress uint64) *Encoder {
	return &Encoder{baseAddress: baseAddress}
}

// EncodeRange records stepBytes bytes, starting at the encoder's current
// cursor, as a hit. Consecutive EncodeRange calls coalesce into a single
// run; the run is only materialized into a Filter once it is closed by a
// Finalize call.
func (e *Encoder) EncodeRange(stepBytes uint64) {
	if !e.runOpen {
		e.runOpen = true
		e.runStart = e.cursor
	}
	e.cursor += stepBytes
}

// FinalizeCurrentEncode closes any currently open run (with no trailing
// padding) and advances the cursor past stepBytes of miss.
func (e *Encoder) FinalizeCurrentEncode(stepBytes uint64) {
	e.FinalizeCurrentEncodeWithPadding(stepBytes, 0)
}

// FinalizeCurrentEncodeWithPadding closes any currently open run, extending
// its length by dataTypeSizePadding bytes before materializing it, then
// advances the cursor past stepBytes of miss. The padding captures the
// trailing bytes of a data type wider than the scan's memory alignment: a
// multi-byte element can fail its last alignment-sized probe while its
// earlier probes succeeded, but the whole element's bytes still belong to
// the result once the run closes (spec §4.2, §9).
func (e *Encoder) FinalizeCurrentEncodeWithPadding(stepBytes uint64, dataTypeSizePadding uint64) {
	if e.runOpen {
		length := (e.cursor - e.runStart) + dataTypeSizePadding
		e.results = append(e.results, snapshot.NewFilter(e.baseAddress+e.runStart, length))
		e.runOpen = false
	}
	e.cursor += stepBytes
}

// TakeResultRegions returns the filters accumulated so far and resets the
// encoder's result buffer (but not its cursor or open-run state, matching
// the Rust original's take semantics of draining without otherwise
// disturbing in-flight encoding).
func (e *Encoder) TakeResultRegions() []snapshot.Filter {
	out := e.results
	e.results = nil
	return out
}
