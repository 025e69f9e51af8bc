// Package registry validates birthday submissions and applies the
// create/change protocol on top of the store: strict format, calendar
// validity, timezone resolution, one record per person, and a cooldown
// between successive changes.
package registry

import (
	"log/slog"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/engine"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

var datePattern = regexp.MustCompile(config.DatePattern)

// Registry owns the mutation protocol for birthday records.
type Registry struct {
	Store *store.Store
	Gate  *Gate

	// OnMutated is invoked after every successful create or change, with
	// the cooldown already armed. The caller hangs display reconciliation
	// and feed regeneration off it.
	OnMutated func()

	// mu serializes the whole mutation protocol. The cooldown check and
	// the write it guards live in different store documents; without one
	// critical section across both, two concurrent changes for the same
	// person could each pass the gate before either arms it.
	mu sync.Mutex
}

// New wires a Registry and its cooldown gate over the store.
func New(st *store.Store, clock engine.Clock, cooldown time.Duration) *Registry {
	return &Registry{
		Store: st,
		Gate:  &Gate{Store: st, Clock: clock, Duration: cooldown},
	}
}

// Submit creates a record for a person who has none.
func (r *Registry) Submit(personID, dateText, tzText string) (store.BirthdayRecord, error) {
	rec, err := parseRecord(dateText, tzText)
	if err != nil {
		return store.BirthdayRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.Store.UpdateBirthdays(func(m map[string]store.BirthdayRecord) error {
		if _, exists := m[personID]; exists {
			return ErrAlreadyExists
		}
		m[personID] = rec
		return nil
	})
	if err != nil {
		return store.BirthdayRecord{}, err
	}

	r.finishMutation(personID, rec, config.MsgRecordCreated)
	return rec, nil
}

// Change replaces the record of a person who already has one, provided
// their cooldown has cleared.
func (r *Registry) Change(personID, dateText, tzText string) (store.BirthdayRecord, error) {
	rec, err := parseRecord(dateText, tzText)
	if err != nil {
		return store.BirthdayRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	remaining, cleared, err := r.Gate.Check(personID)
	if err != nil {
		return store.BirthdayRecord{}, err
	}
	if !cleared {
		return store.BirthdayRecord{}, &CooldownActiveError{Remaining: remaining}
	}

	err = r.Store.UpdateBirthdays(func(m map[string]store.BirthdayRecord) error {
		if _, exists := m[personID]; !exists {
			return ErrNotFound
		}
		m[personID] = rec
		return nil
	})
	if err != nil {
		return store.BirthdayRecord{}, err
	}

	r.finishMutation(personID, rec, config.MsgRecordChanged)
	return rec, nil
}

// finishMutation arms the gate and fires the mutation hook. An arming
// failure is logged but does not undo the committed record: the worst case
// is one extra permitted change.
func (r *Registry) finishMutation(personID string, rec store.BirthdayRecord, msg string) {
	if err := r.Gate.Arm(personID); err != nil {
		slog.Error(config.MsgItemSkipped,
			config.LogKeyComponent, config.CompRegistry,
			config.LogKeyPerson, personID,
			config.LogKeyError, err,
		)
	}

	slog.Info(msg,
		config.LogKeyComponent, config.CompRegistry,
		config.LogKeyPerson, personID,
		config.LogKeyDate, rec.DateText(),
		config.LogKeyZone, rec.Timezone,
	)

	if r.OnMutated != nil {
		r.OnMutated()
	}
}

// parseRecord applies the validation order of the protocol: format, then
// calendar validity, then timezone.
func parseRecord(dateText, tzText string) (store.BirthdayRecord, error) {
	if !datePattern.MatchString(dateText) {
		return store.BirthdayRecord{}, ErrInvalidFormat
	}

	// The pattern guarantees two zero-padded numeric groups.
	day, _ := strconv.Atoi(dateText[:2])
	month, _ := strconv.Atoi(dateText[3:])

	if day > config.DaysInMonth[month] {
		return store.BirthdayRecord{}, ErrInvalidDate
	}

	zone := tzText
	if zone == "" {
		zone = config.DefaultTimezone
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return store.BirthdayRecord{}, &InvalidTimezoneError{Zone: tzText}
	}

	return store.BirthdayRecord{Day: day, Month: month, Timezone: zone}, nil
}
