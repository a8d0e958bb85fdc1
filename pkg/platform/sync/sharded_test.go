package sync

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	m := NewShardedMap[int]()

	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Set("a", 1)
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	m.Delete("a")
	_, ok = m.Get("a")
	assert.False(t, ok)

	// Deleting twice is harmless.
	m.Delete("a")
}

func TestUpdateHoldsValuePresence(t *testing.T) {
	m := NewShardedMap[int]()

	m.Update("n", func(old int, ok bool) (int, bool) {
		assert.False(t, ok)
		return 10, true
	})
	v, ok := m.Get("n")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	// Rejecting the update keeps the previous value.
	m.Update("n", func(old int, ok bool) (int, bool) {
		assert.True(t, ok)
		assert.Equal(t, 10, old)
		return 5, false
	})
	v, _ = m.Get("n")
	assert.Equal(t, 10, v)
}

func TestUpdateIsAtomicPerKey(t *testing.T) {
	m := NewShardedMap[int]()
	m.Set("counter", 0)

	const goroutines = 64
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update("counter", func(old int, _ bool) (int, bool) {
				return old + 1, true
			})
		}()
	}
	wg.Wait()

	v, _ := m.Get("counter")
	assert.Equal(t, goroutines, v)
}

func TestRangeAndLen(t *testing.T) {
	m := NewShardedMap[string]()
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key-%d", i), "v")
	}

	assert.Equal(t, 100, m.Len())

	seen := 0
	m.Range(func(_ string, _ string) bool {
		seen++
		return true
	})
	assert.Equal(t, 100, seen)

	// Early exit stops iteration.
	seen = 0
	m.Range(func(_ string, _ string) bool {
		seen++
		return seen < 10
	})
	assert.Equal(t, 10, seen)
}

func TestEmptyKeyUsesShardZero(t *testing.T) {
	m := NewShardedMap[int]()
	m.Set("", 7)
	v, ok := m.Get("")
	require.True(t, ok)
	assert.Equal(t, 7, v)
}
