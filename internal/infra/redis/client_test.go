package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/authkit/internal/core/cooldown"
)

var _ cooldown.Gate = (*Client)(nil)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(Config{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_Cooldown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	left, err := c.Remaining(ctx, "login")
	require.NoError(t, err)
	assert.Zero(t, left)

	require.NoError(t, c.Block(ctx, "login", time.Now().Add(30*time.Second)))
	assert.True(t, mr.Exists("authkit:cooldown:login"))

	left, err = c.Remaining(ctx, "login")
	require.NoError(t, err)
	assert.Greater(t, left, 25*time.Second)
	assert.LessOrEqual(t, left, 30*time.Second)

	// A shorter window leaves the longer one in place.
	require.NoError(t, c.Block(ctx, "login", time.Now().Add(time.Second)))
	left, _ = c.Remaining(ctx, "login")
	assert.Greater(t, left, 25*time.Second)

	mr.FastForward(31 * time.Second)
	left, err = c.Remaining(ctx, "login")
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestClient_ConcurrentBlockKeepsLongest(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Odd writers ask for a short window, even writers for a longer one.
			d := time.Duration(i+1) * time.Second
			if i%2 == 1 {
				d = 100 * time.Millisecond
			}
			assert.NoError(t, c.Block(ctx, "login", time.Now().Add(d)))
		}()
	}
	wg.Wait()

	left, err := c.Remaining(ctx, "login")
	require.NoError(t, err)
	assert.Greater(t, left, 18*time.Second)
}

func TestClient_BlockExtendsShorterCooldown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	require.NoError(t, c.Block(ctx, "refresh", time.Now().Add(time.Second)))
	require.NoError(t, c.Block(ctx, "refresh", time.Now().Add(time.Minute)))

	assert.Greater(t, mr.TTL("authkit:cooldown:refresh"), 50*time.Second)
}

func TestClient_BlockInPastIsNoop(t *testing.T) {
	c, mr := newTestClient(t)

	require.NoError(t, c.Block(context.Background(), "login", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("authkit:cooldown:login"))
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(Config{URL: "redis://127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(Config{URL: "://nope"})
	assert.ErrorContains(t, err, "failed to parse redis URL")
}
