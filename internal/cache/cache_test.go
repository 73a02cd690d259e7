package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("product:1", "widget")

	v, ok := c.Get("product:1")
	require.True(t, ok)
	assert.Equal(t, "widget", v)

	_, ok = c.Get("product:2")
	assert.False(t, ok)
}

func TestExpiration(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2, time.Hour)

	now = now.Add(2 * time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.sweep()
	assert.Equal(t, 1, c.Len())
}

func TestDeleteByPrefix(t *testing.T) {
	c := New(time.Minute)
	c.Set("products:list", 1)
	c.Set("products:list:summary", 2)
	c.Set("product:abc", 3)

	c.DeleteByPrefix("products:")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("product:abc")
	assert.True(t, ok)

	c.Delete("product:abc")
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestRunStopsOnCancel(t *testing.T) {
	c := New(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
