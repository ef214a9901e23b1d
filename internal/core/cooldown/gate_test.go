package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewMemoryGate()
	g.now = func() time.Time { return now }

	left, err := g.Remaining(ctx, "login")
	require.NoError(t, err)
	assert.Zero(t, left)

	require.NoError(t, g.Block(ctx, "login", now.Add(30*time.Second)))
	left, err = g.Remaining(ctx, "login")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, left)

	// A shorter window does not shorten the active one.
	require.NoError(t, g.Block(ctx, "login", now.Add(5*time.Second)))
	left, _ = g.Remaining(ctx, "login")
	assert.Equal(t, 30*time.Second, left)

	left, _ = g.Remaining(ctx, "register")
	assert.Zero(t, left)

	now = now.Add(31 * time.Second)
	left, err = g.Remaining(ctx, "login")
	require.NoError(t, err)
	assert.Zero(t, left)
}
