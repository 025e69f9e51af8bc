// Package display keeps the twelve per-month summary messages converged
// with the record store. Slots are edited in place; a slot whose remote
// message was lost is recreated and its stored identity overwritten, which
// makes the pass idempotent across restarts and human deletions.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/platform"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

// Texts supplies the localized fragments of a month block. Injected by the
// ui package so rendering stays decoupled from the translation library.
type Texts struct {
	Title func(month int) string
	Empty func() string
	Entry func(date, name string) string
	CTA   func() string
}

// Reconciler converges the display slots with the store.
type Reconciler struct {
	Store     *store.Store
	Messenger platform.Messenger
	Roster    platform.Roster
	ChannelID string
	Texts     Texts

	// mu serializes passes. The slot set is read at the start of a pass
	// and persisted at its end; an overlapping pass would observe the
	// stale set and create duplicate messages nothing ever edits again.
	mu sync.Mutex
}

// Reconcile renders all twelve month blocks from the current records and
// applies the minimal creates/edits. Per-slot failures are logged and the
// remaining slots still converge.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompDisplay)
	log.Debug(config.MsgReconcileStart)

	records, err := r.Store.Birthdays()
	if err != nil {
		return err
	}
	slots, err := r.Store.Slots()
	if err != nil {
		return err
	}

	names := r.resolveNames(ctx, records)

	changed := false
	for month := 1; month <= config.MonthsPerYear; month++ {
		content := platform.MessageContent{
			Body:        r.renderMonth(month, records, names),
			Interactive: month == config.InteractiveSlotMonth,
		}

		if id := slots.Get(month); id != "" {
			err := r.editSlot(ctx, id, content)
			if err == nil {
				continue
			}
			if !errors.Is(err, platform.ErrNotFound) {
				log.Warn(config.MsgItemSkipped,
					config.LogKeyMonth, month,
					config.LogKeyMessage, id,
					config.LogKeyError, err,
				)
				continue
			}
			// The remote message is gone; fall through to recreate.
			log.Info(config.MsgSlotRecreated, config.LogKeyMonth, month)
		}

		id, err := r.Messenger.SendMessage(ctx, r.ChannelID, content)
		if err != nil {
			log.Warn(config.MsgItemSkipped,
				config.LogKeyMonth, month,
				config.LogKeyError, err,
			)
			continue
		}
		slots.Set(month, id)
		changed = true
		log.Info(config.MsgSlotCreated,
			config.LogKeyMonth, month,
			config.LogKeyMessage, id,
		)
	}

	if changed {
		err = r.Store.UpdateSlots(func(set *store.SlotSet) error {
			*set = slots
			return nil
		})
		if err != nil {
			return err
		}
	}

	log.Info(config.MsgReconcileDone,
		config.LogKeyCount, len(records),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// editSlot converges one existing slot message. The remote body is compared
// first so a pass over unchanged data performs no writes at all; only a
// drifted message is edited in place.
func (r *Reconciler) editSlot(ctx context.Context, id string, content platform.MessageContent) error {
	current, err := r.Messenger.FetchMessage(ctx, r.ChannelID, id)
	if err != nil {
		return err
	}
	if current == content.Body {
		return nil
	}
	return r.Messenger.EditMessage(ctx, r.ChannelID, id, content)
}

// renderMonth builds one month's block: title, then day-sorted entries or
// the empty placeholder. The interactive slot closes with the call to
// action.
func (r *Reconciler) renderMonth(month int, records map[string]store.BirthdayRecord, names map[string]string) string {
	type line struct {
		day      int
		personID string
		record   store.BirthdayRecord
	}

	var entries []line
	for personID, rec := range records {
		if rec.Month == month {
			entries = append(entries, line{day: rec.Day, personID: personID, record: rec})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].day != entries[j].day {
			return entries[i].day < entries[j].day
		}
		// Stable output for equal days keeps repeated passes edit-free.
		return entries[i].personID < entries[j].personID
	})

	var b strings.Builder
	b.WriteString(r.Texts.Title(month))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(r.Texts.Empty())
		b.WriteString("\n")
	} else {
		for _, e := range entries {
			b.WriteString(r.Texts.Entry(e.record.DateText(), names[e.personID]))
			b.WriteString("\n")
		}
	}

	if month == config.InteractiveSlotMonth {
		b.WriteString("\n")
		b.WriteString(r.Texts.CTA())
	}

	return strings.TrimRight(b.String(), "\n")
}

// resolveNames maps every recorded person to a display name, falling back
// to a generic label when the roster lookup fails.
func (r *Reconciler) resolveNames(ctx context.Context, records map[string]store.BirthdayRecord) map[string]string {
	names := make(map[string]string, len(records))
	for personID := range records {
		member, err := r.Roster.FetchMember(ctx, personID)
		if err != nil {
			names[personID] = fmt.Sprintf(config.FallbackName, personID)
			continue
		}
		names[personID] = member.DisplayName
	}
	return names
}
