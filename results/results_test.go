package results

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zcanann/Olorin-sub001/datatype"
	"github.com/zcanann/Olorin-sub001/memaddr"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

func u32le(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func buildSnapshot() *snapshot.Snapshot {
	region := snapshot.NewRegion(memaddr.NormalizedRegion{Base: 0x1000, Size: 16})
	region.CurrentValues = append(append(append(append([]byte{}, u32le(10)...), u32le(20)...), u32le(30)...), u32le(40)...)
	region.Filters = snapshot.NewFilterCollection([]snapshot.Filter{
		snapshot.NewFilter(0x1000, 4),
		snapshot.NewFilter(0x1008, 8),
	})
	return snapshot.New([]*snapshot.Region{region})
}

func TestIndexGetResolvesAddressAndValue(t *testing.T) {
	snap := buildSnapshot()
	idx := NewIndex(snap, datatype.U32, 4, nil, nil)

	res, ok := idx.Get(context.Background(), 0)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1000), res.Address)
	assert.Equal(t, u32le(10), res.CurrentValue)

	res, ok = idx.Get(context.Background(), 1)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1008), res.Address)
	assert.Equal(t, u32le(30), res.CurrentValue)

	res, ok = idx.Get(context.Background(), 2)
	require.True(t, ok)
	assert.Equal(t, uint64(0x100c), res.Address)
	assert.Equal(t, u32le(40), res.CurrentValue)
}

func TestIndexGetOutOfRange(t *testing.T) {
	snap := buildSnapshot()
	idx := NewIndex(snap, datatype.U32, 4, nil, nil)

	_, ok := idx.Get(context.Background(), 3)
	assert.False(t, ok)
}

func TestIndexPagingExposesMetadata(t *testing.T) {
	snap := buildSnapshot()
	idx := NewIndex(snap, datatype.U32, 4, nil, nil)

	page := idx.Page(context.Background(), 0, 2)
	assert.Equal(t, uint64(3), page.TotalCount)
	assert.Equal(t, uint64(1), page.LastPageIndex)
	assert.Len(t, page.Results, 2)

	page = idx.Page(context.Background(), 1, 2)
	assert.Len(t, page.Results, 1)
	assert.Equal(t, uint64(0x100c), page.Results[0].Address)
}

type fakeResolver struct {
	calls int
}

func (f *fakeResolver) ResolveModule(_ context.Context, address uint64) (string, uint64, bool) {
	f.calls++
	if address == 0x1000 {
		return "game.exe", 0, true
	}
	return "", 0, false
}

type fakeFrozen struct{ frozenAddr uint64 }

func (f fakeFrozen) IsFrozen(address uint64) bool { return address == f.frozenAddr }

func TestIndexModuleResolutionIsCached(t *testing.T) {
	snap := buildSnapshot()
	resolver := &fakeResolver{}
	idx := NewIndex(snap, datatype.U32, 4, resolver, fakeFrozen{frozenAddr: 0x1000})

	res, ok := idx.Get(context.Background(), 0)
	require.True(t, ok)
	assert.True(t, res.HasModule)
	assert.Equal(t, "game.exe", res.ModuleName)
	assert.True(t, res.IsFrozen)

	_, _ = idx.Get(context.Background(), 0)
	assert.Equal(t, 1, resolver.calls)
}

func TestAsUint64(t *testing.T) {
	v, ok := AsUint64(datatype.U32, u32le(42))
	require.True(t, ok)
	assert.Equal(t, uint64(42), v)

	_, ok = AsUint64(datatype.ByteArray, []byte{1, 2, 3})
	assert.False(t, ok)
}
