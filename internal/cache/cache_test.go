package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", "value")
	v, found := c.Get("key")
	assert.True(t, found)
	assert.Equal(t, "value", v)
}

func TestGetMissing(t *testing.T) {
	c := New(time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	c := New(time.Minute)

	c.SetWithTTL("key", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", "value")
	c.Delete("key")

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestClear(t *testing.T) {
	c := New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	_, found := c.Get("a")
	assert.False(t, found)
	_, found = c.Get("b")
	assert.False(t, found)
}

func TestRepoStatusCache(t *testing.T) {
	c := NewRepoStatusCache()

	c.Set(KeyRepoStatuses, []string{"demo"})
	v, found := c.Get(KeyRepoStatuses)
	assert.True(t, found)
	assert.Equal(t, []string{"demo"}, v)
}
