package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "a")
	assert.True(t, errors.Is(err, ErrMiss))

	got, err = m.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestMemoryDeleteAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "x", []byte("1"), time.Second))
	require.NoError(t, m.Set(ctx, "y", []byte("2"), time.Hour))
	require.NoError(t, m.Set(ctx, "z", []byte("3"), time.Hour))

	require.NoError(t, m.Delete(ctx, "y", "missing"))
	_, err := m.Get(ctx, "y")
	assert.ErrorIs(t, err, ErrMiss)

	now = now.Add(time.Minute)
	assert.Equal(t, 1, m.Purge())
	_, err = m.Get(ctx, "z")
	assert.NoError(t, err)
}

func TestMemoryCopiesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
