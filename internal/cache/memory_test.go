package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory[string, int](4, time.Minute)

	_, ok := m.Get("missing")
	assert.False(t, ok)

	m.Set("a", 1)
	m.Set("b", 2)

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, m.Len())
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemory[string, string](2, time.Minute)

	m.Set("first", "1")
	m.Set("second", "2")
	_, ok := m.Get("first") // touch so "second" becomes LRU
	require.True(t, ok)
	m.Set("third", "3")

	_, ok = m.Get("second")
	assert.False(t, ok)
	_, ok = m.Get("first")
	assert.True(t, ok)
	_, ok = m.Get("third")
	assert.True(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory[string, int](4, 20*time.Millisecond)

	m.Set("short-lived", 7)
	v, ok := m.Get("short-lived")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	time.Sleep(60 * time.Millisecond)

	_, ok = m.Get("short-lived")
	assert.False(t, ok)
}

func TestMemoryPurge(t *testing.T) {
	m := NewMemory[int, string](8, time.Minute)
	for i := 0; i < 5; i++ {
		m.Set(i, fmt.Sprintf("v%d", i))
	}
	require.Equal(t, 5, m.Len())

	m.Purge()
	assert.Zero(t, m.Len())
}

func TestMemoryDefaultSize(t *testing.T) {
	m := NewMemory[string, int](0, 0)
	m.Set("k", 42)
	v, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}
