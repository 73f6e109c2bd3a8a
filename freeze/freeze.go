// Package freeze implements the pinned-value list from spec.md §4.7: a
// keyed collection of addresses whose bytes are rewritten on every tick so
// the target process cannot change them.
package freeze

import (
	"context"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/grailbio/base/log"
	"gopkg.in/yaml.v3"

	"github.com/zcanann/Olorin-sub001/memaddr"
	"github.com/zcanann/Olorin-sub001/memio"
)

// Entry is one pinned value: the bytes to hold in place, and whether the
// tick currently writes them.
type Entry struct {
	Bytes   []byte
	Enabled bool
}

// ModuleResolver resolves a memaddr.Pointer to an absolute address, for
// entries keyed by module name + offset chain rather than a raw address.
type ModuleResolver interface {
	ResolveAddress(ctx context.Context, p memaddr.Pointer) (address uint64, ok bool)
}

// List is a keyed collection of pinned addresses (spec §4.7). Zero value is
// not usable; construct with New.
type List struct {
	mu      sync.RWMutex
	entries map[string]entryWithPointer
	writer  memio.ByteWriter
	handle  memio.ProcessHandle
}

type entryWithPointer struct {
	pointer memaddr.Pointer
	entry   Entry
}

// New returns an empty List that ticks writes through writer against handle.
func New(writer memio.ByteWriter, handle memio.ProcessHandle) *List {
	return &List{
		entries: make(map[string]entryWithPointer),
		writer:  writer,
		handle:  handle,
	}
}

// Set inserts or replaces the pinned entry for p. Re-setting the same bytes
// is always safe (spec §4.7: "pinning is idempotent").
func (l *List) Set(p memaddr.Pointer, bytes []byte, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	l.entries[p.Key()] = entryWithPointer{pointer: p, entry: Entry{Bytes: cp, Enabled: enabled}}
}

// SetEnabled toggles an existing entry's enabled flag without touching its
// bytes. It is a no-op if p is not present.
func (l *List) SetEnabled(p memaddr.Pointer, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[p.Key()]; ok {
		e.entry.Enabled = enabled
		l.entries[p.Key()] = e
	}
}

// Remove deletes the entry for p, if any.
func (l *List) Remove(p memaddr.Pointer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, p.Key())
}

// Len returns the number of entries, enabled or not.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Tick walks every enabled entry and rewrites its pinned bytes at the
// resolved address. It takes a read-lock snapshot of the table, iterates a
// local copy, then releases the lock before doing any I/O, so that
// concurrent Set/Remove calls never tear the iteration (spec §4.7:
// "mutations serialize against it"). Address resolution failures are
// skipped silently, per spec; the entry is not removed. onFailure, if
// non-nil, is called for every entry this tick could not write (so a caller
// can surface spec §6's freeze_tick_failed(pointer) event without this
// package depending on an event sink's shape).
func (l *List) Tick(ctx context.Context, resolver ModuleResolver, onFailure func(p memaddr.Pointer)) {
	snapshot := l.snapshotEntries()
	for _, ewp := range snapshot {
		if !ewp.entry.Enabled {
			continue
		}
		address, ok := l.resolve(ctx, ewp.pointer, resolver)
		if !ok {
			log.Debug.Printf("freeze: skipping unresolved %s this tick", ewp.pointer)
			if onFailure != nil {
				onFailure(ewp.pointer)
			}
			continue
		}
		wrote, err := l.writer.Write(ctx, l.handle, address, ewp.entry.Bytes)
		if err != nil {
			log.Error.Printf("freeze: write error at %s (0x%x): %v", ewp.pointer, address, err)
			if onFailure != nil {
				onFailure(ewp.pointer)
			}
			continue
		}
		if !wrote {
			log.Error.Printf("freeze: write failed at %s (0x%x)", ewp.pointer, address)
			if onFailure != nil {
				onFailure(ewp.pointer)
			}
		}
	}
}

// IsFrozenAbsolute reports whether an enabled entry is pinned at exactly the
// given absolute (non-module-relative) address. Module-relative entries are
// not recognized here, since their resolved address can drift between ticks
// and recognizing them would require the same resolver the tick itself uses.
func (l *List) IsFrozenAbsolute(address uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ewp := range l.entries {
		if !ewp.entry.Enabled || ewp.pointer.IsModuleRelative() {
			continue
		}
		if ewp.pointer.Base == address {
			return true
		}
	}
	return false
}

func (l *List) snapshotEntries() []entryWithPointer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]entryWithPointer, 0, len(l.entries))
	for _, ewp := range l.entries {
		out = append(out, ewp)
	}
	return out
}

func (l *List) resolve(ctx context.Context, p memaddr.Pointer, resolver ModuleResolver) (uint64, bool) {
	if !p.IsModuleRelative() {
		return p.Base, true
	}
	if resolver == nil {
		return 0, false
	}
	return resolver.ResolveAddress(ctx, p)
}

// persistedEntry is the on-disk shape of one List entry (spec §6:
// "{address, module_name?, pointer_offsets[], bytes_hex}").
type persistedEntry struct {
	Address        uint64  `yaml:"address"`
	ModuleName     string  `yaml:"module_name,omitempty"`
	PointerOffsets []int64 `yaml:"pointer_offsets,omitempty"`
	BytesHex       string  `yaml:"bytes_hex"`
	Enabled        bool    `yaml:"enabled"`
}

// MarshalYAML serializes every entry in the list, sorted by key for
// reproducible diffs.
func (l *List) MarshalYAML() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.entries))
	for key := range l.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]persistedEntry, 0, len(l.entries))
	for _, key := range keys {
		ewp := l.entries[key]
		out = append(out, persistedEntry{
			Address:        ewp.pointer.Base,
			ModuleName:     ewp.pointer.ModuleName,
			PointerOffsets: ewp.pointer.Offsets,
			BytesHex:       hex.EncodeToString(ewp.entry.Bytes),
			Enabled:        ewp.entry.Enabled,
		})
	}
	return yaml.Marshal(out)
}

// UnmarshalYAML replaces the list's contents with what is encoded in data.
func (l *List) UnmarshalYAML(data []byte) error {
	var in []persistedEntry
	if err := yaml.Unmarshal(data, &in); err != nil {
		return err
	}
	entries := make(map[string]entryWithPointer, len(in))
	for _, pe := range in {
		bytes, err := hex.DecodeString(pe.BytesHex)
		if err != nil {
			return err
		}
		var pointer memaddr.Pointer
		if pe.ModuleName != "" {
			pointer = memaddr.NewModulePointer(pe.ModuleName, pe.Address, pe.PointerOffsets...)
		} else {
			pointer = memaddr.NewAbsolutePointer(pe.Address)
		}
		entries[pointer.Key()] = entryWithPointer{pointer: pointer, entry: Entry{Bytes: bytes, Enabled: pe.Enabled}}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
	return nil
}
