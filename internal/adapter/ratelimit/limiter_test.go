package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidArgs(t *testing.T) {
	assert.Nil(t, New(0, 5, time.Minute))
	assert.Nil(t, New(1, 0, time.Minute))
	assert.NotNil(t, New(1, 1, 0))
}

func TestKeyedLimiter_NilAllowsEverything(t *testing.T) {
	var l *KeyedLimiter
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("alex", time.Now()))
	}
	assert.Zero(t, l.Len())
}

func TestKeyedLimiter_BurstThenRefill(t *testing.T) {
	l := New(1, 3, time.Minute)
	require.NotNil(t, l)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("alex", now), "burst token %d", i)
	}
	assert.False(t, l.Allow("alex", now))

	assert.True(t, l.Allow("alex", now.Add(time.Second)))
	assert.False(t, l.Allow("alex", now.Add(time.Second)))
}

func TestKeyedLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()

	assert.True(t, l.Allow("alex", now))
	assert.False(t, l.Allow("alex", now))
	assert.True(t, l.Allow("maria", now))
	assert.Equal(t, 2, l.Len())
}

func TestKeyedLimiter_BlankKeyBypasses(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()

	assert.True(t, l.Allow("  ", now))
	assert.True(t, l.Allow("", now))
	assert.Zero(t, l.Len())
}

func TestKeyedLimiter_SweepsIdleKeys(t *testing.T) {
	l := New(1000, 1000, time.Minute)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Allow("stale", start)
	later := start.Add(2 * time.Minute)
	for i := 0; i < sweepEvery; i++ {
		l.Allow(fmt.Sprintf("k%d", i%4), later)
	}

	assert.Equal(t, 4, l.Len())
}
