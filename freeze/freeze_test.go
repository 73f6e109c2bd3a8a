package freeze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcanann/Olorin-sub001/memaddr"
	"github.com/zcanann/Olorin-sub001/memio/memiotest"
)

func TestTickWritesEnabledEntries(t *testing.T) {
	proc := memiotest.NewProcess()
	proc.AddRegion(0x1000, 4, []byte{0, 0, 0, 0})
	l := New(memiotest.ReaderWriter{P: proc}, memiotest.Handle(1))

	p := memaddr.NewAbsolutePointer(0x1000)
	l.Set(p, []byte{9, 9, 9, 9}, true)

	l.Tick(context.Background(), nil, nil)

	assert.Equal(t, []byte{9, 9, 9, 9}, proc.Bytes(0x1000, 4))
}

func TestTickSkipsDisabledEntries(t *testing.T) {
	proc := memiotest.NewProcess()
	proc.AddRegion(0x1000, 4, []byte{1, 2, 3, 4})
	l := New(memiotest.ReaderWriter{P: proc}, memiotest.Handle(1))

	p := memaddr.NewAbsolutePointer(0x1000)
	l.Set(p, []byte{9, 9, 9, 9}, false)

	l.Tick(context.Background(), nil, nil)

	assert.Equal(t, []byte{1, 2, 3, 4}, proc.Bytes(0x1000, 4))
}

type fakeResolver struct {
	addr uint64
	ok   bool
}

func (f fakeResolver) ResolveAddress(_ context.Context, _ memaddr.Pointer) (uint64, bool) {
	return f.addr, f.ok
}

func TestTickSkipsUnresolvedModulePointer(t *testing.T) {
	proc := memiotest.NewProcess()
	proc.AddRegion(0x1000, 4, []byte{1, 2, 3, 4})
	l := New(memiotest.ReaderWriter{P: proc}, memiotest.Handle(1))

	p := memaddr.NewModulePointer("game.exe", 0x10, 0x4)
	l.Set(p, []byte{9, 9, 9, 9}, true)

	l.Tick(context.Background(), fakeResolver{ok: false}, nil)
	assert.Equal(t, []byte{1, 2, 3, 4}, proc.Bytes(0x1000, 4))

	l.Tick(context.Background(), fakeResolver{addr: 0x1000, ok: true}, nil)
	assert.Equal(t, []byte{9, 9, 9, 9}, proc.Bytes(0x1000, 4))
}

func TestTickReportsUnresolvedEntriesToCallback(t *testing.T) {
	l := New(nil, nil)
	p := memaddr.NewModulePointer("game.exe", 0x10, 0x4)
	l.Set(p, []byte{9, 9, 9, 9}, true)

	var failed []memaddr.Pointer
	l.Tick(context.Background(), fakeResolver{ok: false}, func(p memaddr.Pointer) {
		failed = append(failed, p)
	})
	require.Len(t, failed, 1)
	assert.Equal(t, p.Key(), failed[0].Key())
}

func TestIsFrozenAbsolute(t *testing.T) {
	l := New(nil, nil)
	l.Set(memaddr.NewAbsolutePointer(0x1000), []byte{1}, true)
	l.Set(memaddr.NewAbsolutePointer(0x2000), []byte{1}, false)
	l.Set(memaddr.NewModulePointer("game.exe", 0x10), []byte{1}, true)

	assert.True(t, l.IsFrozenAbsolute(0x1000))
	assert.False(t, l.IsFrozenAbsolute(0x2000))
	assert.False(t, l.IsFrozenAbsolute(0x10))
}

func TestRemoveDropsEntry(t *testing.T) {
	l := New(nil, nil)
	p := memaddr.NewAbsolutePointer(0x1000)
	l.Set(p, []byte{1}, true)
	require.Equal(t, 1, l.Len())
	l.Remove(p)
	assert.Equal(t, 0, l.Len())
}

func TestMarshalUnmarshalYAMLRoundTrips(t *testing.T) {
	l := New(nil, nil)
	l.Set(memaddr.NewAbsolutePointer(0x1000), []byte{1, 2, 3}, true)
	l.Set(memaddr.NewModulePointer("game.exe", 0x10, 0x4, -0x8), []byte{4, 5}, false)

	data, err := l.MarshalYAML()
	require.NoError(t, err)

	out := New(nil, nil)
	require.NoError(t, out.UnmarshalYAML(data))
	assert.Equal(t, 2, out.Len())
}
