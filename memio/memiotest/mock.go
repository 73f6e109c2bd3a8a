// Package memiotest provides an in-memory stand-in for the three OS
// capabilities in memio, so the scanning engine can be exercised hermetically
// without a real target process (spec §9: "the OS mocks in the repo already
// demonstrate the desired shape").
package memiotest

import (
	"context"
	"sync"

	"github.com/zcanann/Olorin-sub001/memaddr"
	"github.com/zcanann/Olorin-sub001/memio"
)

// Handle is a trivial ProcessHandle for tests.
type Handle int

// PID implements memio.ProcessHandle.
func (h Handle) PID() int { return int(h) }

// Process is an in-memory fake of a target process's address space: a set
// of backing regions plus modules, with an optional per-address failure
// injection for exercising the read-failure recovery path.
type Process struct {
	mu       sync.Mutex
	regions  []memaddr.NormalizedRegion
	backing  map[uint64][]byte // region base -> live bytes
	modules  []memaddr.Module
	failAddr map[uint64]bool // addresses that fail to read/write
}

// NewProcess returns an empty fake process.
func NewProcess() *Process {
	return &Process{
		backing:  make(map[uint64][]byte),
		failAddr: make(map[uint64]bool),
	}
}

// AddRegion registers a region backed by the given initial bytes. len(data)
// must equal size.
func (p *Process) AddRegion(base, size uint64, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, size)
	copy(buf, data)
	p.regions = append(p.regions, memaddr.NormalizedRegion{Base: base, Size: size})
	p.backing[base] = buf
}

// AddModule registers a loaded module.
func (p *Process) AddModule(m memaddr.Module) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modules = append(p.modules, m)
}

// SetBytes overwrites live memory starting at address; address must fall
// entirely within one previously-added region.
func (p *Process) SetBytes(address uint64, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.regions {
		if address >= r.Base && address+uint64(len(data)) <= r.End() {
			copy(p.backing[r.Base][address-r.Base:], data)
			return
		}
	}
}

// Bytes returns a copy of live memory at address..address+n, for assertions.
func (p *Process) Bytes(address uint64, n int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.regions {
		if address >= r.Base && address+uint64(n) <= r.End() {
			out := make([]byte, n)
			copy(out, p.backing[r.Base][address-r.Base:])
			return out
		}
	}
	return nil
}

// FailAt marks an address as unreadable/unwritable until ClearFailures.
func (p *Process) FailAt(address uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAddr[address] = true
}

// ClearFailures removes all injected failures.
func (p *Process) ClearFailures() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAddr = make(map[uint64]bool)
}

// Enumerator implements memio.RegionEnumerator against a Process.
type Enumerator struct{ P *Process }

// ListVirtualPages implements memio.RegionEnumerator.
func (e Enumerator) ListVirtualPages(
	_ context.Context,
	_ memio.ProcessHandle,
	_ memio.Protection,
	_ memio.Protection,
	_ memio.RegionType,
	start, end uint64,
	_ memio.BoundsPolicy,
) ([]memaddr.NormalizedRegion, error) {
	e.P.mu.Lock()
	defer e.P.mu.Unlock()
	out := make([]memaddr.NormalizedRegion, 0, len(e.P.regions))
	for _, r := range e.P.regions {
		if r.End() <= start || r.Base >= end {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ListModules implements memio.RegionEnumerator.
func (e Enumerator) ListModules(_ context.Context, _ memio.ProcessHandle) ([]memaddr.Module, error) {
	e.P.mu.Lock()
	defer e.P.mu.Unlock()
	out := make([]memaddr.Module, len(e.P.modules))
	copy(out, e.P.modules)
	return out, nil
}

// ReaderWriter implements memio.ByteReader and memio.ByteWriter against a
// Process.
type ReaderWriter struct{ P *Process }

// Read implements memio.ByteReader.
func (rw ReaderWriter) Read(_ context.Context, _ memio.ProcessHandle, address uint64, dst []byte) (bool, error) {
	rw.P.mu.Lock()
	defer rw.P.mu.Unlock()
	if rw.P.failAddr[address] {
		return false, nil
	}
	for _, r := range rw.P.regions {
		if address >= r.Base && address+uint64(len(dst)) <= r.End() {
			copy(dst, rw.P.backing[r.Base][address-r.Base:])
			return true, nil
		}
	}
	return false, nil
}

// ReadStruct implements memio.ByteReader. The fake process never partially
// fails within a region it can resolve at all: either the whole read
// succeeds or, when the start address is marked failing, the whole range is
// reported as one failed chunk.
func (rw ReaderWriter) ReadStruct(ctx context.Context, handle memio.ProcessHandle, address uint64, dst []byte, _ []uint64) ([][2]uint64, error) {
	ok, err := rw.Read(ctx, handle, address, dst)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}
	return [][2]uint64{{0, uint64(len(dst))}}, nil
}

// Write implements memio.ByteWriter.
func (rw ReaderWriter) Write(_ context.Context, _ memio.ProcessHandle, address uint64, src []byte) (bool, error) {
	rw.P.mu.Lock()
	defer rw.P.mu.Unlock()
	if rw.P.failAddr[address] {
		return false, nil
	}
	for _, r := range rw.P.regions {
		if address >= r.Base && address+uint64(len(src)) <= r.End() {
			copy(rw.P.backing[r.Base][address-r.Base:], src)
			return true, nil
		}
	}
	return false, nil
}
