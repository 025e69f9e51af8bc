package ui_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthdaybot/internal/registry"
	"github.com/tartampluch/go-birthdaybot/internal/store"
	"github.com/tartampluch/go-birthdaybot/internal/ui"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func newTestDispatcher(t *testing.T, refresh func(ctx context.Context) error) (*ui.Dispatcher, *registry.Registry) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	tr, err := ui.NewTranslator("en")
	require.NoError(t, err)

	reg := registry.New(st, MockClock{CurrentTime: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}, 12*time.Hour)
	return ui.NewDispatcher(reg, tr, refresh), reg
}

// TestDispatch_SubmitSuccess: a valid submission confirms with the stored
// date echoed back.
func TestDispatch_SubmitSuccess(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	reply := d.Dispatch(context.Background(), ui.Action{
		Kind:     ui.ActionSubmitBirthday,
		PersonID: "user-1",
		DateText: "21-06",
	})

	assert.Equal(t, "🎉 Birthday set to 21-06", reply)
}

// TestDispatch_ErrorReplies walks the full error taxonomy and checks each
// rejection maps to its localized user-facing reply.
func TestDispatch_ErrorReplies(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	// Seed one record so duplicate and cooldown paths are reachable.
	seed := d.Dispatch(context.Background(), ui.Action{
		Kind:     ui.ActionSubmitBirthday,
		PersonID: "seeded",
		DateText: "01-01",
	})
	require.Contains(t, seed, "Birthday set")

	tests := []struct {
		name      string
		action    ui.Action
		wantReply string
	}{
		{
			name: "Malformed date",
			action: ui.Action{
				Kind: ui.ActionSubmitBirthday, PersonID: "user-1", DateText: "32-01",
			},
			wantReply: "Invalid format. Use DD-MM (e.g., 21-06).",
		},
		{
			name: "Impossible calendar date",
			action: ui.Action{
				Kind: ui.ActionSubmitBirthday, PersonID: "user-1", DateText: "31-04",
			},
			wantReply: "Invalid date.",
		},
		{
			name: "Unknown timezone echoes the input",
			action: ui.Action{
				Kind: ui.ActionSubmitBirthday, PersonID: "user-1", DateText: "21-06", ZoneText: "Nowhere/Place",
			},
			wantReply: "Unknown timezone \"Nowhere/Place\". Use a zone name like Europe/London.",
		},
		{
			name: "Second submission",
			action: ui.Action{
				Kind: ui.ActionSubmitBirthday, PersonID: "seeded", DateText: "02-02",
			},
			wantReply: "You've already submitted a birthday. Use Change Birthday instead.",
		},
		{
			name: "Change without a record",
			action: ui.Action{
				Kind: ui.ActionChangeBirthday, PersonID: "nobody", DateText: "02-02",
			},
			wantReply: "You have no birthday on record yet. Use Submit Birthday first.",
		},
		{
			name: "Change during cooldown reports remaining minutes",
			action: ui.Action{
				Kind: ui.ActionChangeBirthday, PersonID: "seeded", DateText: "02-02",
			},
			wantReply: "You changed your birthday recently. Try again in 720 minute(s).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantReply, d.Dispatch(context.Background(), tt.action))
		})
	}
}

// TestDispatch_Refresh confirms the refresh hook runs and failures surface
// as the generic reply rather than leaking internals.
func TestDispatch_Refresh(t *testing.T) {
	calls := 0
	d, _ := newTestDispatcher(t, func(ctx context.Context) error {
		calls++
		return nil
	})

	reply := d.Dispatch(context.Background(), ui.Action{Kind: ui.ActionRefreshDisplay, PersonID: "user-1"})
	assert.Equal(t, "✅ Birthday list refreshed.", reply)
	assert.Equal(t, 1, calls)
}

func TestDispatch_RefreshFailure(t *testing.T) {
	d, _ := newTestDispatcher(t, func(ctx context.Context) error {
		return errors.New("channel unreachable")
	})

	reply := d.Dispatch(context.Background(), ui.Action{Kind: ui.ActionRefreshDisplay, PersonID: "user-1"})
	assert.Equal(t, "Something went wrong. Please try again later.", reply)
	assert.NotContains(t, reply, "unreachable", "internal errors must not reach the submitter")
}

// TestDispatch_UnknownKind: an out-of-range kind is an internal fault.
func TestDispatch_UnknownKind(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	reply := d.Dispatch(context.Background(), ui.Action{Kind: ui.ActionKind(99)})
	assert.Equal(t, "Something went wrong. Please try again later.", reply)
}
