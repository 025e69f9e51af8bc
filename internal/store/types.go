package store

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-birthdaybot/internal/config"
)

// BirthdayRecord is one person's recurring annual date.
// Day/Month are validated by the registry before they ever reach the store;
// Timezone is a zone identifier resolvable by the platform's tz database.
type BirthdayRecord struct {
	Day      int    `json:"day"`
	Month    int    `json:"month"`
	Timezone string `json:"timezoneId"`
}

// DateText renders the record back into the DD-MM submission form.
func (r BirthdayRecord) DateText() string {
	return fmt.Sprintf(config.DateInputLayout, r.Day, r.Month)
}

// GreetingEntry ties a posted greeting message to its author's record.
// At most one live entry exists per person; the entry is removed when the
// role is revoked or when the message outlives the configured window,
// whichever occurs first.
type GreetingEntry struct {
	MessageID string    `json:"messageId"`
	SentAt    time.Time `json:"sentAtISO8601"`
}

// SlotSet is the fixed array of display message identities, one per calendar
// month. Index 0 is January. An empty string means "not yet created".
type SlotSet struct {
	MessageIDs [config.MonthsPerYear]string `json:"messageIds"`
}

// Get returns the identity stored for a 1-based month.
func (s *SlotSet) Get(month int) string {
	return s.MessageIDs[month-1]
}

// Set stores the identity for a 1-based month.
func (s *SlotSet) Set(month int, id string) {
	s.MessageIDs[month-1] = id
}
