package registry

import (
	"errors"
	"fmt"
	"time"
)

// The registry's discriminated error set. Validation errors are reported to
// the submitter and never logged as system faults; policy rejections carry
// the concrete data the user needs (existing value, remaining wait).
var (
	// ErrInvalidFormat rejects input that is not strict zero-padded DD-MM.
	ErrInvalidFormat = errors.New("invalid date format")

	// ErrInvalidDate rejects a well-formed pair that is no real calendar
	// date, e.g. 31-04.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrAlreadyExists rejects a second submission for the same person.
	ErrAlreadyExists = errors.New("birthday already submitted")

	// ErrNotFound rejects a change for a person without a record.
	ErrNotFound = errors.New("no birthday record")
)

// InvalidTimezoneError rejects a zone identifier the platform's timezone
// database cannot resolve.
type InvalidTimezoneError struct {
	Zone string
}

func (e *InvalidTimezoneError) Error() string {
	return fmt.Sprintf("unknown timezone %q", e.Zone)
}

// CooldownActiveError rejects a change attempted before the previous
// mutation's cooldown has expired.
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active, %s remaining", e.Remaining)
}

// RemainingMinutes reports the wait rounded up to whole minutes, which is
// what gets surfaced to the user.
func (e *CooldownActiveError) RemainingMinutes() int {
	mins := int((e.Remaining + time.Minute - 1) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return mins
}
