package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zcanann/Olorin-sub001/datatype"
	"github.com/zcanann/Olorin-sub001/predicate"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

func u32le(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func mustPredicate(t *testing.T, dt datatype.DataType, kind predicate.CompareKind, opts predicate.Options) Params {
	scalar, vector, err := predicate.New(dt, kind, opts)
	require.NoError(t, err)
	return Params{
		UnitSize:    dt.UnitSize(),
		CompareKind: kind,
		Immediate:   opts.Immediate,
		Scalar:      scalar,
		Vector:      vector,
	}
}

func TestSelectPriority(t *testing.T) {
	base := mustPredicate(t, datatype.U32, predicate.Equal, predicate.Options{Immediate: u32le(1)})

	base.Alignment = 4
	assert.Equal(t, AlignedDense, Select(16, base))

	base.Alignment = 2
	assert.Equal(t, OverlappingBytewiseStaggered, Select(16, base))

	gtBase := mustPredicate(t, datatype.U32, predicate.GreaterThan, predicate.Options{Immediate: u32le(1)})
	gtBase.Alignment = 1
	assert.Equal(t, Overlapping, Select(16, gtBase))

	base.Alignment = 8
	assert.Equal(t, Sparse, Select(16, base))

	discardParams := mustPredicate(t, datatype.U32, predicate.Equal, predicate.Options{Immediate: u32le(1)})
	discardParams.Alignment = 4
	assert.Equal(t, Discard, Select(2, discardParams))
}

func TestAlignedDenseScenario1(t *testing.T) {
	// spec scenario 1: region [0x1000,0x1010), u32 == 1, alignment 4.
	params := mustPredicate(t, datatype.U32, predicate.Equal, predicate.Options{Immediate: u32le(1)})
	params.Alignment = 4

	current := append(append(append(append([]byte{}, u32le(1)...), u32le(0)...), u32le(1)...), u32le(2)...)
	kind := Select(uint64(len(current)), params)
	require.Equal(t, AlignedDense, kind)

	got := Run(kind, 0x1000, current, nil, params)
	assert.Equal(t, []snapshot.Filter{
		snapshot.NewFilter(0x1000, 4),
		snapshot.NewFilter(0x1008, 4),
	}, got)
}

func TestOverlappingBytewiseStaggeredMatchesOverlapping(t *testing.T) {
	params := mustPredicate(t, datatype.U16, predicate.Equal, predicate.Options{Immediate: []byte{0x05, 0x00}})
	params.Alignment = 1

	current := []byte{0x05, 0x00, 0x05, 0x00, 0x01, 0x02}

	staggered := Run(OverlappingBytewiseStaggered, 0x2000, current, nil, params)
	overlapping := Run(Overlapping, 0x2000, current, nil, params)
	assert.Equal(t, overlapping, staggered)
}

func TestRelativeUnchangedScenario(t *testing.T) {
	// spec scenario 4: region of 32 bytes, u16 unchanged, alignment 2.
	params := mustPredicate(t, datatype.U16, predicate.Unchanged, predicate.Options{})
	params.Alignment = 2

	current := make([]byte, 32)
	previous := make([]byte, 32)
	for i := range current {
		current[i] = byte(i)
		previous[i] = byte(i)
	}

	kind := Select(uint64(len(current)), params)

	got := Run(kind, 0x3000, current, previous, params)
	require.Len(t, got, 1)
	assert.Equal(t, snapshot.NewFilter(0x3000, 32), got[0])
}

func TestDeltaIncreasedByOneScenario(t *testing.T) {
	// spec scenario 5: previous=5, current=6, one i32 element, increased_by 1.
	params := mustPredicate(t, datatype.I32, predicate.IncreasedByX, predicate.Options{Immediate: u32le(1)})
	params.Alignment = 4

	current := u32le(6)
	previous := u32le(5)

	kind := Select(uint64(len(current)), params)
	got := Run(kind, 0x4000, current, previous, params)
	require.Len(t, got, 1)
	assert.Equal(t, snapshot.NewFilter(0x4000, 4), got[0])
}
