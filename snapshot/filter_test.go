package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterEnd(t *testing.T) {
	f := NewFilter(0x1000, 0x40)
	assert.Equal(t, uint64(0x1040), f.End())
}

func TestFilterElementCount(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		alignment uint64
		expected  uint64
	}{
		{"exact multiple", NewFilter(0, 16), 4, 4},
		{"remainder dropped", NewFilter(0, 18), 4, 4},
		{"smaller than alignment", NewFilter(0, 2), 4, 0},
		{"zero alignment", NewFilter(0, 16), 0, 0},
		{"alignment one", NewFilter(0, 5), 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.ElementCount(tt.alignment))
		})
	}
}

func TestFilterCollectionResultCount(t *testing.T) {
	fc := NewFilterCollection([]Filter{
		NewFilter(0, 16),
		NewFilter(32, 8),
	})
	assert.Equal(t, uint64(6), fc.ResultCount(4))
	assert.Equal(t, uint64(24), fc.ByteCount())
}

func TestFilterCollectionFilterAndOffset(t *testing.T) {
	fc := NewFilterCollection([]Filter{
		NewFilter(0x100, 16), // alignment 4 -> 4 elements: ordinals 0..3
		NewFilter(0x200, 8),  // alignment 4 -> 2 elements: ordinals 4..5
	})

	idx, off, ok := fc.FilterAndOffset(0, 4)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, uint64(0), off)

	idx, off, ok = fc.FilterAndOffset(3, 4)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, uint64(12), off)

	idx, off, ok = fc.FilterAndOffset(4, 4)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, uint64(0), off)

	idx, off, ok = fc.FilterAndOffset(5, 4)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, uint64(4), off)

	_, _, ok = fc.FilterAndOffset(6, 4)
	assert.False(t, ok)
}

func TestFilterCollectionEmpty(t *testing.T) {
	var fc *FilterCollection
	assert.True(t, fc.IsEmpty())
	assert.Equal(t, uint64(0), fc.ResultCount(4))
}
