package stock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luanafs/pantry-api/internal/repository"
)

func TestIncrementUsageUpToQuantity(t *testing.T) {
	p := repository.Product{Quantity: 3}
	for i := 1; i <= 3; i++ {
		require.NoError(t, IncrementUsage(&p))
		assert.Equal(t, uint32(i), Used(p))
		assert.Equal(t, uint32(3-i), Remaining(p))
	}
	assert.True(t, IsExhausted(p))

	// The fourth unit does not exist; usage stays pinned at quantity.
	err := IncrementUsage(&p)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, uint32(3), p.Usage)
}

func TestSetUsageBounds(t *testing.T) {
	p := repository.Product{Quantity: 5, Usage: 2}

	require.NoError(t, SetUsage(&p, 0))
	assert.Equal(t, uint32(0), p.Usage)

	require.NoError(t, SetUsage(&p, 5))
	assert.True(t, IsExhausted(p))

	assert.ErrorIs(t, SetUsage(&p, 6), ErrUsageOutOfRange)
	assert.ErrorIs(t, SetUsage(&p, -1), ErrUsageOutOfRange)
	assert.Equal(t, uint32(5), p.Usage, "a rejected set leaves usage untouched")
}

func TestSetUsageRejectsValuesPastUint32(t *testing.T) {
	// A value that wraps to zero after a uint32 conversion must still be
	// rejected: 0 <= usage <= quantity is checked before any narrowing.
	p := repository.Product{Quantity: 3, Usage: 2}
	tooBig := int(int64(math.MaxUint32) + 1)
	assert.ErrorIs(t, SetUsage(&p, tooBig), ErrUsageOutOfRange)
	assert.Equal(t, uint32(2), p.Usage)
}

func TestIsExhaustedOnlyAtFullConsumption(t *testing.T) {
	assert.False(t, IsExhausted(repository.Product{Quantity: 2, Usage: 1}))
	assert.True(t, IsExhausted(repository.Product{Quantity: 2, Usage: 2}))
}
