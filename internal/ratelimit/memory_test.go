package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AllowsBurstThenBlocks(t *testing.T) {
	m := NewMemory(3)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "1.2.3.4|a@x.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
	}
	ok, _ := m.Allow(ctx, "1.2.3.4|a@x.com")
	assert.False(t, ok)

	// other keys are independent
	ok, _ = m.Allow(ctx, "1.2.3.4|b@x.com")
	assert.True(t, ok)

	// one token refills every 20s at 3/min
	now = now.Add(21 * time.Second)
	ok, _ = m.Allow(ctx, "1.2.3.4|a@x.com")
	assert.True(t, ok)
}

func TestMemory_SweepsIdleKeys(t *testing.T) {
	m := NewMemory(5)
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = m.Allow(ctx, "old")
	now = now.Add(time.Hour)
	m.sweep(now)

	assert.NotContains(t, m.entries, "old")
}
