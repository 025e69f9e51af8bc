package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthdaybot/internal/registry"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

// TestGate_ExpiryBoundary pins the boundary semantics of the gate: one
// second before expiry the gate is active, at exactly the expiry instant it
// has cleared.
func TestGate_ExpiryBoundary(t *testing.T) {
	armTime := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	duration := 12 * time.Hour
	expiresAt := armTime.Add(duration)

	tests := []struct {
		name          string
		checkTime     time.Time
		wantCleared   bool
		wantRemaining time.Duration
	}{
		{"Just armed", armTime, false, duration},
		{"One second before expiry", expiresAt.Add(-time.Second), false, time.Second},
		{"Exactly at expiry", expiresAt, true, 0},
		{"One second after expiry", expiresAt.Add(time.Second), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := store.New(t.TempDir())
			require.NoError(t, err)

			clock := &steppingClock{now: armTime}
			gate := &registry.Gate{Store: st, Clock: clock, Duration: duration}
			require.NoError(t, gate.Arm("user-1"))

			clock.now = tt.checkTime
			remaining, cleared, err := gate.Check("user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCleared, cleared)
			assert.Equal(t, tt.wantRemaining, remaining)
		})
	}
}

// TestGate_NoEntryMeansCleared: absence of a cooldown entry is unrestricted
// mutation, not an error.
func TestGate_NoEntryMeansCleared(t *testing.T) {
	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	gate := &registry.Gate{Store: st, Clock: MockClock{CurrentTime: time.Now()}, Duration: time.Hour}

	remaining, cleared, err := gate.Check("never-seen")
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Zero(t, remaining)
}

// TestGate_RearmOverwrites verifies a second Arm replaces the expiry rather
// than stacking on it.
func TestGate_RearmOverwrites(t *testing.T) {
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	clock := &steppingClock{now: start}
	gate := &registry.Gate{Store: st, Clock: clock, Duration: time.Hour}

	require.NoError(t, gate.Arm("user-1"))

	clock.now = start.Add(30 * time.Minute)
	require.NoError(t, gate.Arm("user-1"))

	remaining, cleared, err := gate.Check("user-1")
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Equal(t, time.Hour, remaining, "re-arm counts from the second mutation")
}

// TestCooldownActiveError_RemainingMinutes checks the round-up shown to the
// user: any fraction of a minute counts as a whole one, never zero.
func TestCooldownActiveError_RemainingMinutes(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      int
	}{
		{"Whole hours", 12 * time.Hour, 720},
		{"Exact minute", time.Minute, 1},
		{"Just over a minute", time.Minute + time.Second, 2},
		{"Under a minute", 10 * time.Second, 1},
		{"Near zero", time.Millisecond, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &registry.CooldownActiveError{Remaining: tt.remaining}
			assert.Equal(t, tt.want, err.RemainingMinutes())
		})
	}
}
