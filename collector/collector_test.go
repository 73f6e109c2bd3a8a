package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zcanann/Olorin-sub001/memaddr"
	"github.com/zcanann/Olorin-sub001/memio/memiotest"
	"github.com/zcanann/Olorin-sub001/snapshot"
)

func TestRefillFirstReadFillsCurrentOnly(t *testing.T) {
	proc := memiotest.NewProcess()
	proc.AddRegion(0x1000, 4, []byte{1, 2, 3, 4})
	c := New(memiotest.ReaderWriter{P: proc}, memiotest.Handle(1))

	region := snapshot.NewRegion(memaddr.NormalizedRegion{Base: 0x1000, Size: 4})
	result := c.Refill(context.Background(), region)

	require.False(t, result.TotalFailure)
	assert.Equal(t, []byte{1, 2, 3, 4}, region.CurrentValues)
	assert.Nil(t, region.PreviousValues)
}

func TestRefillSecondReadSwapsGenerations(t *testing.T) {
	proc := memiotest.NewProcess()
	proc.AddRegion(0x1000, 4, []byte{1, 2, 3, 4})
	c := New(memiotest.ReaderWriter{P: proc}, memiotest.Handle(1))

	region := snapshot.NewRegion(memaddr.NormalizedRegion{Base: 0x1000, Size: 4})
	c.Refill(context.Background(), region)

	proc.SetBytes(0x1000, []byte{9, 9, 9, 9})
	c.Refill(context.Background(), region)

	assert.Equal(t, []byte{1, 2, 3, 4}, region.PreviousValues)
	assert.Equal(t, []byte{9, 9, 9, 9}, region.CurrentValues)
}

func TestRefillTotalFailureKeepsPriorContents(t *testing.T) {
	proc := memiotest.NewProcess()
	proc.AddRegion(0x1000, 4, []byte{1, 2, 3, 4})
	c := New(memiotest.ReaderWriter{P: proc}, memiotest.Handle(1))

	region := snapshot.NewRegion(memaddr.NormalizedRegion{Base: 0x1000, Size: 4})
	c.Refill(context.Background(), region)

	proc.FailAt(0x1000)
	result := c.Refill(context.Background(), region)

	assert.True(t, result.TotalFailure)
	assert.Equal(t, []byte{1, 2, 3, 4}, region.CurrentValues)
}
