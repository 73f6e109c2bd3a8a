package scan

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"golang.org/x/sync/errgroup"

	"github.com/zcanann/Olorin-sub001/kernel"
	"github.com/zcanann/Olorin-sub001/predicate"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

// CancelToken is a cooperatively-checked cancellation flag, polled before
// each region is scanned for each term (spec §5, "Cancellation").
type CancelToken struct {
	flag atomic.Bool
}

// Cancel requests that any in-progress scan stop at its next poll point.
func (c *CancelToken) Cancel() { c.flag.Store(true) }

// Cancelled reports whether Cancel has been called.
func (c *CancelToken) Cancelled() bool { return c.flag.Load() }

// ProgressReporter receives a monotone non-decreasing value in [0.0, 1.0]
// from worker goroutines; implementations must be thread-safe (spec §4.4).
type ProgressReporter interface {
	Report(fraction float64)
}

// monotoneProgress wraps a ProgressReporter so that out-of-order worker
// updates never move the reported fraction backwards.
type monotoneProgress struct {
	mu       sync.Mutex
	reporter ProgressReporter
	high     float64
}

func newMonotoneProgress(reporter ProgressReporter) *monotoneProgress {
	return &monotoneProgress{reporter: reporter}
}

func (p *monotoneProgress) report(fraction float64) {
	if p == nil || p.reporter == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if fraction > p.high {
		p.high = fraction
		p.reporter.Report(fraction)
	}
}

// Outcome is the result of one Dispatcher.Run call.
type Outcome struct {
	Cancelled        bool
	ReadFailureCount uint64
	ResultCount      uint64
}

// Dispatcher runs scan Requests against a Snapshot, narrowing each region's
// filters in place (spec §4.4).
type Dispatcher struct{}

// New returns a ready-to-use Dispatcher. It carries no state: every
// invocation is self-contained, per spec §5's "kernels are lock-free over
// their inputs" design.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Run executes req against snap, narrowing every region's filters
// in place. token may be nil (never cancels); reporter may be nil (no
// progress reports).
func (d *Dispatcher) Run(ctx context.Context, snap *snapshot.Snapshot, req Request, token *CancelToken, reporter ProgressReporter) (Outcome, error) {
	mapped := make([]mappedTerm, 0, len(req.Terms))
	for _, term := range req.Terms {
		var scalar predicate.ScalarPredicate
		var vector predicate.VectorPredicate
		unitSize := term.DataType.UnitSize()
		alignment := term.ResolvedAlignment()

		if term.DataType.IsByteArray() {
			// Byte-array compares never reach predicate.New (spec §5.3); the
			// kernel owns the pattern match directly, and the element width
			// is the pattern's own length rather than a fixed unit size.
			s, err := kernel.ScalarForByteArray(term.CompareKind, term.Options.Immediate)
			if err != nil {
				return Outcome{}, errors.E(err, "predicate construction failed")
			}
			scalar = s
			unitSize = uint64(len(term.Options.Immediate))
			if term.Alignment == 0 {
				alignment = 1 // probe every byte offset unless the caller forces a stride
			}
		} else {
			s, v, err := predicate.New(term.DataType, term.CompareKind, term.Options)
			if err != nil {
				return Outcome{}, errors.E(err, "predicate construction failed")
			}
			scalar, vector = s, v
		}

		mapped = append(mapped, mappedTerm{
			term: term,
			params: kernel.Params{
				UnitSize:    unitSize,
				Alignment:   alignment,
				CompareKind: term.CompareKind,
				Immediate:   term.Options.Immediate,
				Scalar:      scalar,
				Vector:      vector,
			},
		})
	}

	regions := snap.Regions()
	totalWork := len(regions) * len(mapped)
	if totalWork == 0 {
		return Outcome{}, nil
	}

	// Terms narrow the snapshot in sequence: a multi-term request is a
	// conjunctive scan (e.g. "changed AND == 5"), so term N+1 must see term
	// N's narrowed filters. Within one term, every region is independent and
	// fans out freely (spec §4.4: "the per-type passes are independent and
	// may also run in parallel" describes this inner fan-out, not a race
	// between terms).
	// Filters as they stood before this request, restored on cancellation so
	// a cancelled scan leaves every region's filters as it found them.
	saved := make([]*snapshot.FilterCollection, len(regions))
	for i, region := range regions {
		saved[i] = region.Filters
	}

	progress := newMonotoneProgress(reporter)
	var completed int64
	errOnce := errors.Once{}
	var cancelled atomic.Bool

	runOne := func(region *snapshot.Region, mt mappedTerm) {
		if token != nil && token.Cancelled() {
			cancelled.Store(true)
			return
		}
		region.Filters = applyTermToRegionValidated(region, mt.params, req.ValidationScan)
		done := atomic.AddInt64(&completed, 1)
		progress.report(float64(done) / float64(totalWork))
	}

	for _, mt := range mapped {
		if cancelled.Load() || errOnce.Err() != nil {
			break
		}
		if req.SingleThreaded {
			for _, region := range regions {
				if token != nil && token.Cancelled() {
					cancelled.Store(true)
					break
				}
				runOne(region, mt)
			}
			continue
		}

		group, gctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			return traverse.Each(len(regions), func(i int) error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				runOne(regions[i], mt)
				return nil
			})
		})
		if err := group.Wait(); err != nil {
			errOnce.Set(errors.E(err, "scan dispatch"))
		}
	}

	if err := errOnce.Err(); err != nil {
		log.Error.Printf("scan: dispatch error: %v", err)
		return Outcome{}, err
	}

	if cancelled.Load() {
		for i, region := range regions {
			region.Filters = saved[i]
		}
		log.Printf("scan: cancelled after %d/%d work units", atomic.LoadInt64(&completed), totalWork)
		return Outcome{Cancelled: true}, nil
	}

	snap.DiscardEmptyRegions()

	alignment := uint64(0)
	if len(mapped) > 0 {
		alignment = mapped[0].params.Alignment
	}
	return Outcome{
		ReadFailureCount: req.ReadFailureCount,
		ResultCount:      snap.NumberOfResults(alignment),
	}, nil
}

// applyTermToRegion scans every surviving filter of region against params,
// returning the region's next-generation FilterCollection.
func applyTermToRegion(region *snapshot.Region, params kernel.Params) *snapshot.FilterCollection {
	return applyTermToRegionValidated(region, params, false)
}

func applyTermToRegionValidated(region *snapshot.Region, params kernel.Params, validate bool) *snapshot.FilterCollection {
	var next []snapshot.Filter
	for _, f := range region.Filters.Filters() {
		offset := f.BaseAddress - region.Base
		end := offset + f.Size
		if end > uint64(len(region.CurrentValues)) {
			end = uint64(len(region.CurrentValues))
		}
		if offset >= end {
			continue
		}
		current := region.CurrentValues[offset:end]
		var previous []byte
		if region.PreviousValues != nil {
			previous = region.PreviousValues[offset:end]
		}

		kind := kernel.Select(f.Size, params)
		if kind == kernel.Discard {
			continue
		}
		filters := kernel.Run(kind, f.BaseAddress, current, previous, params)
		if validate && kind != kernel.Scalar {
			validateAgainstScalar(region, f, current, previous, params, filters)
		}
		next = append(next, filters...)
	}
	return snapshot.NewFilterCollection(next)
}

// validateAgainstScalar re-runs the scalar fallback kernel over the same
// bytes the selected kernel just processed and logs a mismatch, implementing
// debug_perform_validation_scan (spec §6). A mismatch is logged rather than
// asserted/panicked: it indicates a kernel bug, which spec §7 classifies as
// non-fatal ("Unsupported-kernel-variant... logs and emits ... rather than
// panicking").
func validateAgainstScalar(region *snapshot.Region, f snapshot.Filter, current, previous []byte, params kernel.Params, got []snapshot.Filter) {
	want := kernel.Run(kernel.Scalar, f.BaseAddress, current, previous, params)
	if !filtersEqual(want, got) {
		log.Error.Printf("scan: validation mismatch in region 0x%x filter %s: scalar=%v kernel=%v", region.Base, f, want, got)
	}
}

func filtersEqual(a, b []snapshot.Filter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
