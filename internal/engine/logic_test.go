package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

// TestIsBirthdayToday verifies the core temporal logic: the UTC instant is
// converted into the record's zone before the calendar date is compared.
func TestIsBirthdayToday(t *testing.T) {
	tests := []struct {
		name   string
		utcNow time.Time
		rec    store.BirthdayRecord
		want   bool
		desc   string
	}{
		{
			name:   "Plain UTC match",
			utcNow: time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 21, Month: 6, Timezone: "UTC"},
			want:   true,
			desc:   "Same calendar date in UTC",
		},
		{
			name:   "Plain UTC miss",
			utcNow: time.Date(2025, 6, 22, 10, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 21, Month: 6, Timezone: "UTC"},
			want:   false,
			desc:   "Day after, no match",
		},
		{
			name:   "Ahead-of-UTC zone already on the date",
			utcNow: time.Date(2023, 12, 31, 11, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 1, Month: 1, Timezone: "Pacific/Kiritimati"},
			want:   true,
			desc:   "UTC+14: 11:00Z on Dec 31 is already Jan 1 locally",
		},
		{
			name:   "Same instant in UTC is not yet the date",
			utcNow: time.Date(2023, 12, 31, 11, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 1, Month: 1, Timezone: "UTC"},
			want:   false,
			desc:   "The identical instant must evaluate differently per zone",
		},
		{
			name:   "Behind-UTC zone still on the previous date",
			utcNow: time.Date(2025, 6, 21, 2, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 21, Month: 6, Timezone: "America/Los_Angeles"},
			want:   false,
			desc:   "02:00Z on Jun 21 is still Jun 20 in Los Angeles",
		},
		{
			name:   "Leapling in a leap year",
			utcNow: time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 29, Month: 2, Timezone: "UTC"},
			want:   true,
			desc:   "Feb 29 exists in 2024 and matches directly",
		},
		{
			name:   "Leapling celebrated March 1st in a non-leap year",
			utcNow: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 29, Month: 2, Timezone: "UTC"},
			want:   true,
			desc:   "time.Date normalizes Feb 29 to Mar 1 in 2025",
		},
		{
			name:   "Leapling does not also match Feb 28 in a non-leap year",
			utcNow: time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 29, Month: 2, Timezone: "UTC"},
			want:   false,
			desc:   "Normalization moves forward, never back",
		},
		{
			name:   "Unresolvable zone falls back to UTC",
			utcNow: time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC),
			rec:    store.BirthdayRecord{Day: 21, Month: 6, Timezone: "Mars/Olympus"},
			want:   true,
			desc:   "A zone lost from the tz database degrades to UTC evaluation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBirthdayToday(tt.utcNow, tt.rec), tt.desc)
		})
	}
}
