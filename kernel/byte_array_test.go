package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcanann/Olorin-sub001/predicate"
)

func TestScalarForByteArrayEqualMatchesPattern(t *testing.T) {
	scalar, err := ScalarForByteArray(predicate.Equal, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.NoError(t, err)
	assert.True(t, scalar([]byte{0xDE, 0xAD, 0xBE, 0xEF}, nil))
	assert.False(t, scalar([]byte{0xDE, 0xAD, 0xBE, 0x00}, nil))
}

func TestScalarForByteArrayNotEqualInvertsMatch(t *testing.T) {
	scalar, err := ScalarForByteArray(predicate.NotEqual, []byte{1, 2})
	require.NoError(t, err)
	assert.False(t, scalar([]byte{1, 2}, nil))
	assert.True(t, scalar([]byte{1, 3}, nil))
}

func TestScalarForByteArrayRejectsEmptyPattern(t *testing.T) {
	_, err := ScalarForByteArray(predicate.Equal, nil)
	require.Error(t, err)
}

func TestScalarForByteArrayRejectsUnsupportedKind(t *testing.T) {
	_, err := ScalarForByteArray(predicate.GreaterThan, []byte{1})
	require.Error(t, err)
}

func TestSelectNeverPanicsOnByteArrayParams(t *testing.T) {
	scalar, err := ScalarForByteArray(predicate.Equal, []byte{1, 2, 3})
	require.NoError(t, err)

	params := Params{UnitSize: 3, Alignment: 1, CompareKind: predicate.Equal, Immediate: []byte{1, 2, 3}, Scalar: scalar}
	current := []byte{9, 1, 2, 3, 9}

	assert.NotPanics(t, func() {
		kind := Select(uint64(len(current)), params)
		filters := Run(kind, 0x1000, current, nil, params)
		require.Len(t, filters, 1)
		assert.Equal(t, uint64(0x1001), filters[0].BaseAddress)
		assert.Equal(t, uint64(3), filters[0].Size)
	})
}
