package display_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/display"
	"github.com/tartampluch/go-birthdaybot/internal/platform"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendMessage(ctx context.Context, channelID string, content platform.MessageContent) (string, error) {
	args := m.Called(ctx, channelID, content)
	return args.String(0), args.Error(1)
}

func (m *MockMessenger) EditMessage(ctx context.Context, channelID, messageID string, content platform.MessageContent) error {
	args := m.Called(ctx, channelID, messageID, content)
	return args.Error(0)
}

func (m *MockMessenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	args := m.Called(ctx, channelID, messageID)
	return args.Error(0)
}

func (m *MockMessenger) FetchMessage(ctx context.Context, channelID, messageID string) (string, error) {
	args := m.Called(ctx, channelID, messageID)
	return args.String(0), args.Error(1)
}

type MockRoster struct {
	mock.Mock
}

func (m *MockRoster) ListMembers(ctx context.Context) ([]platform.Member, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]platform.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoster) FetchMember(ctx context.Context, personID string) (platform.Member, error) {
	args := m.Called(ctx, personID)
	return args.Get(0).(platform.Member), args.Error(1)
}

func (m *MockRoster) GrantRole(ctx context.Context, personID string) error {
	args := m.Called(ctx, personID)
	return args.Error(0)
}

func (m *MockRoster) RevokeRole(ctx context.Context, personID string) error {
	args := m.Called(ctx, personID)
	return args.Error(0)
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

const testChannel = "chan-1"

// plainTexts renders month blocks without a translation bundle so the tests
// can assert on predictable strings.
func plainTexts() display.Texts {
	return display.Texts{
		Title: func(month int) string { return "== Month " + strconv.Itoa(month) + " ==" },
		Empty: func() string { return "(empty)" },
		Entry: func(date, name string) string { return date + " " + name },
		CTA:   func() string { return "[submit here]" },
	}
}

func newTestReconciler(t *testing.T) (*display.Reconciler, *store.Store, *MockMessenger, *MockRoster) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	messenger := new(MockMessenger)
	roster := new(MockRoster)
	rec := &display.Reconciler{
		Store:     st,
		Messenger: messenger,
		Roster:    roster,
		ChannelID: testChannel,
		Texts:     plainTexts(),
	}
	return rec, st, messenger, roster
}

// TestReconcile_FirstPassCreatesAllSlots: an empty slot set produces twelve
// creations and persists every identity.
func TestReconcile_FirstPassCreatesAllSlots(t *testing.T) {
	rec, st, messenger, _ := newTestReconciler(t)

	var sent []platform.MessageContent
	for month := 1; month <= config.MonthsPerYear; month++ {
		id := "msg-" + strconv.Itoa(month)
		messenger.On("SendMessage", mock.Anything, testChannel, mock.Anything).
			Run(func(args mock.Arguments) {
				sent = append(sent, args.Get(2).(platform.MessageContent))
			}).
			Return(id, nil).Once()
	}

	require.NoError(t, rec.Reconcile(context.Background()))

	slots, err := st.Slots()
	require.NoError(t, err)
	for month := 1; month <= config.MonthsPerYear; month++ {
		assert.Equal(t, "msg-"+strconv.Itoa(month), slots.Get(month))
	}

	// Months are posted in chronological order; only the last slot is
	// interactive and carries the call to action.
	require.Len(t, sent, config.MonthsPerYear)
	for i, content := range sent {
		month := i + 1
		assert.Contains(t, content.Body, "== Month "+strconv.Itoa(month)+" ==")
		if month == config.InteractiveSlotMonth {
			assert.True(t, content.Interactive)
			assert.Contains(t, content.Body, "[submit here]")
		} else {
			assert.False(t, content.Interactive)
			assert.NotContains(t, content.Body, "[submit here]")
		}
	}
}

// TestReconcile_SecondPassIsEditOnly: with every slot known and the remote
// bodies drifted, convergence is twelve in-place edits and zero creations.
func TestReconcile_SecondPassIsEditOnly(t *testing.T) {
	rec, st, messenger, _ := newTestReconciler(t)

	require.NoError(t, st.UpdateSlots(func(set *store.SlotSet) error {
		for month := 1; month <= config.MonthsPerYear; month++ {
			set.Set(month, "msg-"+strconv.Itoa(month))
		}
		return nil
	}))

	messenger.On("FetchMessage", mock.Anything, testChannel, mock.Anything).
		Return("drifted body", nil).Times(config.MonthsPerYear)
	messenger.On("EditMessage", mock.Anything, testChannel, mock.Anything, mock.Anything).
		Return(nil).Times(config.MonthsPerYear)

	require.NoError(t, rec.Reconcile(context.Background()))

	messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	messenger.AssertExpectations(t)
}

// TestReconcile_UnchangedContentSkipsEdits: a pass whose rendered bodies
// already match the remote messages performs no writes at all.
func TestReconcile_UnchangedContentSkipsEdits(t *testing.T) {
	rec, _, messenger, _ := newTestReconciler(t)

	// First pass creates everything; remember each body by identity.
	bodies := make(map[string]string)
	for month := 1; month <= config.MonthsPerYear; month++ {
		id := "msg-" + strconv.Itoa(month)
		messenger.On("SendMessage", mock.Anything, testChannel, mock.Anything).
			Run(func(args mock.Arguments) {
				bodies[id] = args.Get(2).(platform.MessageContent).Body
			}).
			Return(id, nil).Once()
	}
	require.NoError(t, rec.Reconcile(context.Background()))

	// Second pass fetches the identical bodies back.
	for month := 1; month <= config.MonthsPerYear; month++ {
		id := "msg-" + strconv.Itoa(month)
		messenger.On("FetchMessage", mock.Anything, testChannel, id).
			Return(bodies[id], nil).Once()
	}
	require.NoError(t, rec.Reconcile(context.Background()))

	messenger.AssertNotCalled(t, "EditMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	messenger.AssertExpectations(t)
}

// TestReconcile_LostSlotRecreated: a slot whose remote message is gone gets
// a fresh message and its stored identity overwritten; the other slots are
// edited as usual.
func TestReconcile_LostSlotRecreated(t *testing.T) {
	rec, st, messenger, _ := newTestReconciler(t)

	require.NoError(t, st.UpdateSlots(func(set *store.SlotSet) error {
		for month := 1; month <= config.MonthsPerYear; month++ {
			set.Set(month, "msg-"+strconv.Itoa(month))
		}
		return nil
	}))

	messenger.On("FetchMessage", mock.Anything, testChannel, "msg-3").
		Return("", platform.ErrNotFound)
	messenger.On("FetchMessage", mock.Anything, testChannel, mock.Anything).
		Return("drifted body", nil)
	messenger.On("EditMessage", mock.Anything, testChannel, mock.Anything, mock.Anything).
		Return(nil)
	messenger.On("SendMessage", mock.Anything, testChannel, mock.Anything).
		Return("msg-3-reborn", nil).Once()

	require.NoError(t, rec.Reconcile(context.Background()))

	slots, err := st.Slots()
	require.NoError(t, err)
	assert.Equal(t, "msg-3-reborn", slots.Get(3))
	assert.Equal(t, "msg-4", slots.Get(4), "other slots keep their identity")
	messenger.AssertExpectations(t)
}

// TestReconcile_MonthRendering verifies entry placement, day ordering and
// the empty placeholder through a full pass.
func TestReconcile_MonthRendering(t *testing.T) {
	rec, st, messenger, roster := newTestReconciler(t)

	require.NoError(t, st.UpdateBirthdays(func(m map[string]store.BirthdayRecord) error {
		m["late-june"] = store.BirthdayRecord{Day: 28, Month: 6, Timezone: "UTC"}
		m["early-june"] = store.BirthdayRecord{Day: 3, Month: 6, Timezone: "UTC"}
		m["ghost"] = store.BirthdayRecord{Day: 15, Month: 6, Timezone: "UTC"}
		return nil
	}))

	roster.On("FetchMember", mock.Anything, "late-june").
		Return(platform.Member{DisplayName: "Zoe"}, nil)
	roster.On("FetchMember", mock.Anything, "early-june").
		Return(platform.Member{DisplayName: "Abe"}, nil)
	roster.On("FetchMember", mock.Anything, "ghost").
		Return(platform.Member{}, platform.ErrNotFound)

	bodies := make(map[int]string)
	for month := 1; month <= config.MonthsPerYear; month++ {
		capturedMonth := month
		messenger.On("SendMessage", mock.Anything, testChannel, mock.Anything).
			Run(func(args mock.Arguments) {
				bodies[capturedMonth] = args.Get(2).(platform.MessageContent).Body
			}).
			Return("msg-"+strconv.Itoa(month), nil).Once()
	}

	require.NoError(t, rec.Reconcile(context.Background()))

	june := bodies[6]
	assert.Contains(t, june, "03-06 Abe")
	assert.Contains(t, june, "15-06 "+fmt.Sprintf(config.FallbackName, "ghost"))
	assert.Contains(t, june, "28-06 Zoe")
	assert.Less(t, strings.Index(june, "03-06"), strings.Index(june, "28-06"), "entries sorted by day")
	assert.NotContains(t, june, "(empty)")

	assert.Contains(t, bodies[7], "(empty)", "a month without entries shows the placeholder")
}

// TestReconcile_ConcurrentPassesCreateOnce: a user-triggered pass racing the
// scheduled one must not double-create the slots. The mock send is slowed
// down so an unserialized second pass would observe the still-empty slot set
// and create its own twelve messages.
func TestReconcile_ConcurrentPassesCreateOnce(t *testing.T) {
	rec, st, messenger, _ := newTestReconciler(t)

	var sends int32
	messenger.On("SendMessage", mock.Anything, testChannel, mock.Anything).
		Run(func(mock.Arguments) {
			atomic.AddInt32(&sends, 1)
			time.Sleep(5 * time.Millisecond)
		}).
		Return("msg", nil)
	// Whichever pass runs second sees populated slots and converges them.
	messenger.On("FetchMessage", mock.Anything, testChannel, "msg").
		Return("drifted body", nil)
	messenger.On("EditMessage", mock.Anything, testChannel, "msg", mock.Anything).
		Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rec.Reconcile(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(config.MonthsPerYear), atomic.LoadInt32(&sends),
		"overlapping passes must create each slot exactly once")

	slots, err := st.Slots()
	require.NoError(t, err)
	for month := 1; month <= config.MonthsPerYear; month++ {
		assert.Equal(t, "msg", slots.Get(month))
	}
}
