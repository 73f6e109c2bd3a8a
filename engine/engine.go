// Package engine wires the scanning pieces — snapshot, dispatcher,
// collector, result index, and freeze list — into the single entry point a
// caller (CLI, GUI, IPC server; all out of scope here per spec.md's
// Non-goals) drives a scan session through. Its shape mirrors
// pileup/snp/pileup.go's Opts/DefaultOpts configuration struct and
// top-level Pileup entry function.
package engine

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/zcanann/Olorin-sub001/collector"
	"github.com/zcanann/Olorin-sub001/datatype"
	"github.com/zcanann/Olorin-sub001/freeze"
	"github.com/zcanann/Olorin-sub001/memaddr"
	"github.com/zcanann/Olorin-sub001/memio"
	"github.com/zcanann/Olorin-sub001/results"
	"github.com/zcanann/Olorin-sub001/scan"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// MemoryAlignment mirrors spec §6's memory_alignment knob. AlignmentNone
// means "use the scanned data type's own unit size."
type MemoryAlignment uint64

const (
	AlignmentNone MemoryAlignment = 0
	Alignment1    MemoryAlignment = 1
	Alignment2    MemoryAlignment = 2
	Alignment4    MemoryAlignment = 4
	Alignment8    MemoryAlignment = 8
)

// ReadMode mirrors spec §6's memory_read_mode knob.
type ReadMode int

const (
	// ReadModeSkip never refills region buffers; callers are expected to
	// have populated them already (e.g. replaying a captured snapshot).
	ReadModeSkip ReadMode = iota
	// ReadModeBeforeScan refills every region once before each scan step.
	ReadModeBeforeScan
	// ReadModeInterleaved is accepted as its own mode, but Engine.Run treats
	// it like ReadModeBeforeScan: every region is refilled once before the
	// dispatch starts, not immediately before that region is scanned.
	ReadModeInterleaved
)

// Opts configures one Engine, following the shape of pileup/snp/pileup.go's
// Opts/DefaultOpts pair (spec §6's configuration table).
type Opts struct {
	MemoryAlignment            MemoryAlignment
	MemoryReadMode             ReadMode
	FloatingPointTolerance     datatype.FloatTolerance
	IsSingleThreadedScan       bool
	DebugPerformValidationScan bool
}

// DefaultOpts matches spec §6: no forced alignment, read-before-scan,
// epsilon float tolerance, parallel, no validation overhead.
var DefaultOpts = Opts{
	MemoryAlignment:            AlignmentNone,
	MemoryReadMode:             ReadModeBeforeScan,
	FloatingPointTolerance:     datatype.ToleranceEpsilon,
	IsSingleThreadedScan:       false,
	DebugPerformValidationScan: false,
}

// EventSink receives the engine's scan lifecycle events (spec §6: "Events:
// scan_started, scan_progress(fraction), scan_completed(result_count),
// scan_cancelled, freeze_tick_failed(pointer)"). Every method may be called
// from a worker goroutine.
type EventSink interface {
	ScanStarted(correlationID uuid.UUID)
	ScanProgress(correlationID uuid.UUID, fraction float64)
	ScanCompleted(correlationID uuid.UUID, resultCount uint64, readFailureCount uint64)
	ScanCancelled(correlationID uuid.UUID)
	FreezeTickFailed(pointer string)
}

// NoopEventSink discards every event; callers that only want log output can
// pass this.
type NoopEventSink struct{}

func (NoopEventSink) ScanStarted(uuid.UUID)                   {}
func (NoopEventSink) ScanProgress(uuid.UUID, float64)         {}
func (NoopEventSink) ScanCompleted(uuid.UUID, uint64, uint64) {}
func (NoopEventSink) ScanCancelled(uuid.UUID)                 {}
func (NoopEventSink) FreezeTickFailed(string)                 {}

// Engine is the top-level session object: it owns a Snapshot, drives scans
// against it through a Dispatcher and Collector, and carries a FreezeList
// alongside it.
type Engine struct {
	opts Opts

	reader memio.ByteReader
	writer memio.ByteWriter
	handle memio.ProcessHandle

	collector  *collector.Collector
	dispatcher *scan.Dispatcher
	freezeList *freeze.List
	events     EventSink

	snap *snapshot.Snapshot
}

// New builds an Engine over an already-enumerated set of regions. reader and
// writer may be the same injected OS capability object; handle identifies
// the target process to both.
func New(opts Opts, reader memio.ByteReader, writer memio.ByteWriter, handle memio.ProcessHandle, regions []*snapshot.Region, events EventSink) *Engine {
	if events == nil {
		events = NoopEventSink{}
	}
	return &Engine{
		opts:       opts,
		reader:     reader,
		writer:     writer,
		handle:     handle,
		collector:  collector.New(reader, handle),
		dispatcher: scan.New(),
		freezeList: freeze.New(writer, handle),
		events:     events,
		snap:       snapshot.New(regions),
	}
}

// Snapshot returns the engine's current snapshot, for read-only inspection
// (e.g. building a results.Index over it).
func (e *Engine) Snapshot() *snapshot.Snapshot { return e.snap }

// FreezeList returns the engine's freeze list.
func (e *Engine) FreezeList() *freeze.List { return e.freezeList }

// ResolvedAlignment returns the engine's configured alignment, or unitSize
// when none was forced (spec §6: "none ⇒ use unit_size").
func (e *Engine) ResolvedAlignment(unitSize uint64) uint64 {
	if e.opts.MemoryAlignment == AlignmentNone {
		return unitSize
	}
	return uint64(e.opts.MemoryAlignment)
}

// NewResultIndex builds a results.Index over the engine's current snapshot
// for the given scanned data type, wiring in the engine's own module
// resolver and freeze list as the index's module/frozen collaborators.
func (e *Engine) NewResultIndex(dataType datatype.DataType, modules results.ModuleResolver) *results.Index {
	alignment := e.ResolvedAlignment(dataType.UnitSize())
	return results.NewIndex(e.snap, dataType, alignment, modules, frozenAdapter{e.freezeList})
}

type frozenAdapter struct{ list *freeze.List }

// IsFrozen implements results.FrozenChecker by delegating to the freeze
// list's own absolute-address lookup.
func (a frozenAdapter) IsFrozen(address uint64) bool {
	return a.list.IsFrozenAbsolute(address)
}

// Request is one scan request: a set of (data type, predicate) terms. The
// cancellation token and progress reporter are passed to Run separately, the
// remaining scan.Request fields come from the engine's Opts, and Run assigns
// each call its own correlation ID for the events.
type Request struct {
	Terms []scan.Term
}

// Run executes req against the engine's snapshot: refills region buffers
// per the configured read mode, dispatches the scan, and emits lifecycle
// events (spec §6, §4.4, §4.5).
func (e *Engine) Run(ctx context.Context, req Request, token *scan.CancelToken, reporter scan.ProgressReporter) (scan.Outcome, error) {
	correlationID := uuid.New()
	e.events.ScanStarted(correlationID)
	log.Printf("scan %s: started, %d regions, %s", correlationID, e.snap.RegionCount(), humanize.Bytes(e.snap.ByteCount()))

	var readFailureCount uint64
	if e.opts.MemoryReadMode != ReadModeSkip {
		readFailureCount = e.refillAll(ctx)
	}

	wrapped := wrappingReporter{correlationID: correlationID, inner: reporter, events: e.events}
	dispatchReq := scan.Request{
		Terms:          req.Terms,
		SingleThreaded: e.opts.IsSingleThreadedScan,
		ValidationScan: e.opts.DebugPerformValidationScan,

		ReadFailureCount: readFailureCount,
	}

	outcome, err := e.dispatcher.Run(ctx, e.snap, dispatchReq, token, wrapped)
	if err != nil {
		log.Error.Printf("scan %s: dispatch failed: %v", correlationID, err)
		return outcome, errors.E(err, fmt.Sprintf("scan %s", correlationID))
	}

	if outcome.Cancelled {
		log.Printf("scan %s: cancelled", correlationID)
		e.events.ScanCancelled(correlationID)
		return outcome, nil
	}

	log.Printf("scan %s: completed, %s results, %d read failures", correlationID, humanize.Comma(int64(outcome.ResultCount)), outcome.ReadFailureCount)
	e.events.ScanCompleted(correlationID, outcome.ResultCount, outcome.ReadFailureCount)
	return outcome, nil
}

func (e *Engine) refillAll(ctx context.Context) uint64 {
	var failures uint64
	for _, region := range e.snap.Regions() {
		result := e.collector.Refill(ctx, region)
		failures += result.FailedByteCount
	}
	return failures
}

// TickFreezeList performs one freeze-list write tick (spec §4.7), reporting
// resolution failures through the engine's event sink as freeze_tick_failed.
func (e *Engine) TickFreezeList(ctx context.Context, resolver freeze.ModuleResolver) {
	e.freezeList.Tick(ctx, resolver, func(p memaddr.Pointer) {
		e.events.FreezeTickFailed(p.String())
	})
}

// wrappingReporter adapts a caller's scan.ProgressReporter to also emit the
// engine's scan_progress event.
type wrappingReporter struct {
	correlationID uuid.UUID
	inner         scan.ProgressReporter
	events        EventSink
}

func (w wrappingReporter) Report(fraction float64) {
	if w.inner != nil {
		w.inner.Report(fraction)
	}
	w.events.ScanProgress(w.correlationID, fraction)
}
