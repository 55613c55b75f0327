package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache(time.Hour)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", Entry{Text: "content:\"乾卦\"", Model: "gpt-3.5-turbo-1106"})

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "content:\"乾卦\"", got.Text)
	assert.Equal(t, "gpt-3.5-turbo-1106", got.Model)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	c.Set("k", Entry{Text: "reply"})

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_NoExpiration(t *testing.T) {
	c := NewMemoryCache(0)
	c.Set("k", Entry{Text: "reply"})

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestMemoryCache_StatsCountEveryLookup(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	c.Set("a", Entry{Text: "1"})

	for range 3 {
		c.Get("a")
	}
	c.Get("b")

	hits, misses := c.Stats()
	assert.Equal(t, int64(3), hits)
	assert.Equal(t, int64(1), misses)
}

func TestKey(t *testing.T) {
	k1 := Key("gpt-4o", "system", "乾卦")
	k2 := Key("gpt-4o", "system", "乾卦")
	assert.Equal(t, k1, k2)
	assert.Contains(t, k1, "gendataset:v1:")

	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, k1, Key("gpt-4o-mini", "system", "乾卦"))
}
