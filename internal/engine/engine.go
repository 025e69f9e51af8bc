// Package engine evaluates birthday records against the calendar and keeps
// the role grants and greeting messages of the group converged with them.
// The daily pass drives a four-state transition table per member; the
// sweeper expires greeting messages on a fixed window independently of role
// state.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/platform"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

// Engine runs the daily role & greeting evaluation.
type Engine struct {
	Store     *store.Store
	Messenger platform.Messenger
	Roster    platform.Roster
	Clock     Clock
	ChannelID string

	// Greeting renders the localized greeting body for a mention.
	// Injected by the ui package.
	Greeting func(mention string) string

	// PurgeDeparted removes records of people no longer in the group.
	// An explicit opt-in policy.
	PurgeDeparted bool
}

// RunDaily evaluates every group member holding a record. Per-member
// platform failures are logged and the loop continues; only a failure to
// reach the roster or the store aborts the pass (it retries on the next
// tick).
func (e *Engine) RunDaily(ctx context.Context) error {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	log.Info(config.MsgDailyStart)

	members, err := e.Roster.ListMembers(ctx)
	if err != nil {
		return err
	}
	records, err := e.Store.Birthdays()
	if err != nil {
		return err
	}

	utcNow := e.Clock.Now().UTC()
	stats := struct{ evaluated, granted, revoked int }{}

	for _, member := range members {
		rec, ok := records[member.ID]
		if !ok {
			continue
		}
		stats.evaluated++

		isToday := isBirthdayToday(utcNow, rec)
		switch {
		case !member.HasRole && isToday:
			if err := e.startBirthday(ctx, member); err != nil {
				log.Warn(config.MsgMemberSkipped,
					config.LogKeyMember, member.ID,
					config.LogKeyError, err,
				)
				continue
			}
			stats.granted++

		case member.HasRole && !isToday:
			if err := e.endBirthday(ctx, member); err != nil {
				log.Warn(config.MsgMemberSkipped,
					config.LogKeyMember, member.ID,
					config.LogKeyError, err,
				)
				continue
			}
			stats.revoked++

		default:
			// Steady state either way; nothing to mutate.
		}
	}

	if e.PurgeDeparted {
		if err := e.purgeDeparted(members, records); err != nil {
			log.Warn(config.MsgItemSkipped, config.LogKeyError, err)
		}
	}

	log.Info(config.MsgDailyDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyEvaluated, stats.evaluated),
			slog.Int(config.LogKeyGranted, stats.granted),
			slog.Int(config.LogKeyRevoked, stats.revoked),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// startBirthday grants the role and posts the greeting, persisting the
// greeting entry before the operation counts as done. A greeting that
// cannot be persisted is taken down again: an untracked message would
// escape both the revocation path and the sweeper.
func (e *Engine) startBirthday(ctx context.Context, member platform.Member) error {
	if err := e.Roster.GrantRole(ctx, member.ID); err != nil {
		return err
	}
	slog.Info(config.MsgRoleGranted,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMember, member.ID,
	)

	// Replace any stale entry so at most one greeting lives per person.
	if err := e.removeGreeting(ctx, member.ID); err != nil {
		return err
	}

	body := e.Greeting(member.Mention)
	messageID, err := e.Messenger.SendMessage(ctx, e.ChannelID, platform.MessageContent{Body: body})
	if err != nil {
		return err
	}

	err = e.Store.UpdateGreetings(func(m map[string]store.GreetingEntry) error {
		m[member.ID] = store.GreetingEntry{
			MessageID: messageID,
			SentAt:    e.Clock.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		_ = e.Messenger.DeleteMessage(ctx, e.ChannelID, messageID)
		return err
	}

	slog.Info(config.MsgGreetingSent,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMember, member.ID,
		config.LogKeyMessage, messageID,
	)
	return nil
}

// endBirthday revokes the role and removes the greeting message and entry.
func (e *Engine) endBirthday(ctx context.Context, member platform.Member) error {
	if err := e.Roster.RevokeRole(ctx, member.ID); err != nil {
		return err
	}
	slog.Info(config.MsgRoleRevoked,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMember, member.ID,
	)
	return e.removeGreeting(ctx, member.ID)
}

// removeGreeting deletes the person's greeting message (a message already
// gone is fine) and drops the entry.
func (e *Engine) removeGreeting(ctx context.Context, personID string) error {
	greetings, err := e.Store.Greetings()
	if err != nil {
		return err
	}
	entry, ok := greetings[personID]
	if !ok {
		return nil
	}

	if err := e.Messenger.DeleteMessage(ctx, e.ChannelID, entry.MessageID); err != nil {
		if !errors.Is(err, platform.ErrNotFound) {
			return err
		}
	}

	err = e.Store.UpdateGreetings(func(m map[string]store.GreetingEntry) error {
		delete(m, personID)
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info(config.MsgGreetingGone,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyPerson, personID,
	)
	return nil
}

// purgeDeparted drops records (and cooldowns) of people who left the group.
func (e *Engine) purgeDeparted(members []platform.Member, records map[string]store.BirthdayRecord) error {
	present := make(map[string]bool, len(members))
	for _, m := range members {
		present[m.ID] = true
	}

	var departed []string
	for personID := range records {
		if !present[personID] {
			departed = append(departed, personID)
		}
	}
	if len(departed) == 0 {
		return nil
	}

	err := e.Store.UpdateBirthdays(func(m map[string]store.BirthdayRecord) error {
		for _, personID := range departed {
			delete(m, personID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = e.Store.UpdateCooldowns(func(m map[string]time.Time) error {
		for _, personID := range departed {
			delete(m, personID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, personID := range departed {
		slog.Info(config.MsgRecordPurged,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyPerson, personID,
		)
	}
	return nil
}

// isBirthdayToday converts the UTC instant into the record's zone and
// matches the local calendar date. The occurrence goes through time.Date so
// a 29-02 record normalizes to March 1st in non-leap years instead of never
// matching.
func isBirthdayToday(utcNow time.Time, rec store.BirthdayRecord) bool {
	loc, err := time.LoadLocation(rec.Timezone)
	if err != nil {
		// The zone validated at submission time; if the tz database
		// drifted underneath us, UTC is the documented default.
		loc = time.UTC
	}

	localNow := utcNow.In(loc)
	occurrence := time.Date(localNow.Year(), time.Month(rec.Month), rec.Day, 0, 0, 0, 0, loc)

	return occurrence.Month() == localNow.Month() && occurrence.Day() == localNow.Day()
}
