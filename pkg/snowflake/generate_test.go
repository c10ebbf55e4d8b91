package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIDIsMonotonic(t *testing.T) {
	require.NoError(t, Init(1, 1))

	prev, err := NextID()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		id, err := NextID()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestInitRejectsOutOfRange(t *testing.T) {
	assert.ErrorIs(t, Init(32, 0), errInvalidMachineID)
	assert.ErrorIs(t, Init(0, -1), errInvalidDataCenterID)
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("1234")
	assert.True(t, ok)
	assert.Equal(t, int64(1234), id)

	_, ok = ParseID("abc")
	assert.False(t, ok)
	_, ok = ParseID("-5")
	assert.False(t, ok)
}
