package conversation

import (
	"context"
	"testing"
	"time"

	"bookline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxAge, idleAge time.Duration) (*MemorySessionStore, *time.Time) {
	t.Helper()
	now := time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)
	// A long sweep interval keeps the background ticker out of the way;
	// the tests drive expiry through the injected clock.
	s := NewMemorySessionStore(maxAge, idleAge, time.Hour)
	s.clock = func() time.Time { return now }
	t.Cleanup(s.Close)
	return s, &now
}

func testContext(now time.Time) *models.ConversationContext {
	return &models.ConversationContext{
		SessionID:    "s-1",
		CreatedAt:    now,
		LastActivity: now,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s, now := newTestStore(t, time.Hour, 30*time.Minute)
	require.NoError(t, s.Put(context.Background(), "s-1", testContext(*now)))

	got, ok, err := s.Get(context.Background(), "s-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "s-1", got.SessionID)

	_, ok, err = s.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreLazyExpiryWithoutSweep(t *testing.T) {
	s, now := newTestStore(t, time.Hour, 30*time.Minute)
	require.NoError(t, s.Put(context.Background(), "s-1", testContext(*now)))

	// Idle past the inactivity TTL; no sweep has run.
	*now = now.Add(31 * time.Minute)
	_, ok, err := s.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries must be invisible before sweep")
}

func TestMemoryStoreAbsoluteAgeCap(t *testing.T) {
	s, now := newTestStore(t, time.Hour, 30*time.Minute)
	convCtx := testContext(*now)
	require.NoError(t, s.Put(context.Background(), "s-1", convCtx))

	// Keep the session active so the idle TTL never fires, and walk past
	// the absolute cap.
	for i := 0; i < 5; i++ {
		*now = now.Add(15 * time.Minute)
		convCtx.LastActivity = *now
		require.NoError(t, s.Put(context.Background(), "s-1", convCtx))
	}

	_, ok, _ := s.Get(context.Background(), "s-1")
	assert.False(t, ok, "the absolute age cap fires even for active sessions")
}

func TestMemoryStoreSweep(t *testing.T) {
	s, now := newTestStore(t, time.Hour, 30*time.Minute)
	fresh := testContext(*now)
	require.NoError(t, s.Put(context.Background(), "stale", testContext(*now)))

	*now = now.Add(40 * time.Minute)
	fresh.CreatedAt = *now
	fresh.LastActivity = *now
	require.NoError(t, s.Put(context.Background(), "fresh", fresh))

	s.Sweep()

	s.mu.RLock()
	_, staleHeld := s.sessions["stale"]
	_, freshHeld := s.sessions["fresh"]
	s.mu.RUnlock()
	assert.False(t, staleHeld, "sweep removes expired entries")
	assert.True(t, freshHeld)
}

func TestMemoryStoreDelete(t *testing.T) {
	s, now := newTestStore(t, time.Hour, 30*time.Minute)
	require.NoError(t, s.Put(context.Background(), "s-1", testContext(*now)))
	require.NoError(t, s.Delete(context.Background(), "s-1"))

	_, ok, _ := s.Get(context.Background(), "s-1")
	assert.False(t, ok)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s, now := newTestStore(t, time.Hour, 30*time.Minute)
	require.NoError(t, s.Put(context.Background(), "s-1", testContext(*now)))

	got, _, _ := s.Get(context.Background(), "s-1")
	got.Slots.Date = "2026-03-01"

	again, _, _ := s.Get(context.Background(), "s-1")
	assert.Empty(t, again.Slots.Date, "mutating a returned context must not affect the store")
}
