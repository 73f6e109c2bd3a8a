package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

func TestEncoderSingleRun(t *testing.T) {
	e := New(0x1000)
	e.EncodeRange(4)
	e.EncodeRange(4)
	e.FinalizeCurrentEncode(0)

	got := e.TakeResultRegions()
	assert.Equal(t, []snapshot.Filter{snapshot.NewFilter(0x1000, 8)}, got)
}

func TestEncoderHitMissHit(t *testing.T) {
	e := New(0x1000)
	e.EncodeRange(4)
	e.FinalizeCurrentEncode(4) // miss of 4 bytes, cursor now at 8
	e.EncodeRange(4)
	e.FinalizeCurrentEncode(0)

	got := e.TakeResultRegions()
	assert.Equal(t, []snapshot.Filter{
		snapshot.NewFilter(0x1000, 4),
		snapshot.NewFilter(0x1008, 4),
	}, got)
}

func TestEncoderNoHitsProducesNoFilters(t *testing.T) {
	e := New(0x1000)
	e.FinalizeCurrentEncode(16)
	got := e.TakeResultRegions()
	assert.Empty(t, got)
}

func TestEncoderPaddingExtendsTrailingRun(t *testing.T) {
	e := New(0x1000)
	e.EncodeRange(4) // only the first alignment-step of a wider element hits
	e.FinalizeCurrentEncodeWithPadding(4, 4)

	got := e.TakeResultRegions()
	// Run was 4 bytes long at close time; padding of 4 extends it to 8,
	// capturing the rest of a data type wider than the alignment step.
	assert.Equal(t, []snapshot.Filter{snapshot.NewFilter(0x1000, 8)}, got)
}

func TestEncoderFinalPaddingOnOpenRun(t *testing.T) {
	e := New(0x2000)
	e.EncodeRange(4)
	e.EncodeRange(4)
	// End-of-scan finalize call, as every kernel issues, with the data
	// type's padding even though no more miss bytes follow.
	e.FinalizeCurrentEncodeWithPadding(0, 4)

	got := e.TakeResultRegions()
	assert.Equal(t, []snapshot.Filter{snapshot.NewFilter(0x2000, 12)}, got)
}

func TestEncoderTakeResetsResultsOnly(t *testing.T) {
	e := New(0x1000)
	e.EncodeRange(4)
	e.FinalizeCurrentEncode(0)
	first := e.TakeResultRegions()
	assert.Len(t, first, 1)

	second := e.TakeResultRegions()
	assert.Empty(t, second)

	// Cursor state survives the take, so a subsequent encode continues
	// from where the previous one left off.
	e.EncodeRange(4)
	e.FinalizeCurrentEncode(0)
	third := e.TakeResultRegions()
	assert.Equal(t, []snapshot.Filter{snapshot.NewFilter(0x1004, 4)}, third)
}
