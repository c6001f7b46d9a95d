package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// These tests need a reachable Redis instance (localhost:6379 by default, as
// in the project's docker-compose environment) and are skipped in short mode.

func TestClaimIsFirstCallerWins(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis-backed test in short mode")
	}

	store := New("localhost:6379", time.Minute)
	defer store.Close()

	ctx := context.Background()
	windowID := time.Now().UnixNano()

	first, err := store.Claim(ctx, windowID)
	require.NoError(t, err)
	require.True(t, first)

	second, err := store.Claim(ctx, windowID)
	require.NoError(t, err)
	require.False(t, second)
}

func TestReleaseAllowsReclaiming(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis-backed test in short mode")
	}

	store := New("localhost:6379", time.Minute)
	defer store.Close()

	ctx := context.Background()
	windowID := time.Now().UnixNano()

	claimed, err := store.Claim(ctx, windowID)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, store.Release(ctx, windowID))

	reclaimed, err := store.Claim(ctx, windowID)
	require.NoError(t, err)
	require.True(t, reclaimed)
}
