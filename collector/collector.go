// Package collector implements the value-collector refill protocol from
// spec.md §4.5: using an injected byte reader, it fills a Region's current
// and previous buffers from the target process, handling first-read versus
// refill semantics and partial read failures.
package collector

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/zcanann/Olorin-sub001/memio"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// Collector refills snapshot.Region buffers from a target process via an
// injected memio.ByteReader.
type Collector struct {
	reader memio.ByteReader
	handle memio.ProcessHandle
}

// New returns a Collector that reads through reader against handle.
func New(reader memio.ByteReader, handle memio.ProcessHandle) *Collector {
	return &Collector{reader: reader, handle: handle}
}

// Result summarizes one region's refill outcome, for the dispatcher's
// scan_completed read-failure count (spec §6).
type Result struct {
	// FailedByteCount is the number of bytes that could not be read at all
	// (spec §7: target-read-failure, recovered locally).
	FailedByteCount uint64
	// TotalFailure reports whether the read failed so completely that the
	// region's prior contents were kept unchanged.
	TotalFailure bool
}

// Refill implements spec §4.5's protocol for one region. On the first call
// for a region (PreviousValues is nil and CurrentValues is nil), it fills
// CurrentValues only. On every subsequent call, it swaps CurrentValues into
// PreviousValues before filling a fresh CurrentValues.
func (c *Collector) Refill(ctx context.Context, region *snapshot.Region) Result {
	isFirstRead := region.CurrentValues == nil && region.PreviousValues == nil
	if !isFirstRead {
		region.SwapGenerations()
	}

	size := region.Size
	buf := make([]byte, size)

	failedRanges, err := c.reader.ReadStruct(ctx, c.handle, region.Base, buf, region.PageBoundaries)
	if err != nil {
		log.Error.Printf("collector: read error at 0x%x: %v", region.Base, err)
		region.CurrentValues = region.PreviousValues
		return Result{FailedByteCount: size, TotalFailure: true}
	}

	if len(failedRanges) == 0 {
		region.CurrentValues = buf
		return Result{}
	}

	var failedBytes uint64
	for _, r := range failedRanges {
		failedBytes += r[1] - r[0]
	}

	if failedBytes >= size {
		// Total failure: keep whatever the region already had.
		region.CurrentValues = region.PreviousValues
		return Result{FailedByteCount: failedBytes, TotalFailure: true}
	}

	// Partial failure: keep the bytes that were actually read; fall back to
	// the previous generation's bytes (or zero) for the ranges that failed,
	// so the scan still has a well-defined byte to compare against (spec
	// §4.5: "must still operate on the returned bytes").
	for _, r := range failedRanges {
		start, end := r[0], r[1]
		if region.PreviousValues != nil && end <= uint64(len(region.PreviousValues)) {
			copy(buf[start:end], region.PreviousValues[start:end])
		}
	}
	region.CurrentValues = buf
	return Result{FailedByteCount: failedBytes}
}
