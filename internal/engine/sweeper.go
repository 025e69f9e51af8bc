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

// Sweeper expires greeting messages past their window. It runs on its own
// short period so a greeting never outlives the TTL even when the daily
// pass missed its revocation-triggered deletion (platform error, restart
// mid-cycle, clock skew).
type Sweeper struct {
	Store     *store.Store
	Messenger platform.Messenger
	Clock     Clock
	ChannelID string
	TTL       time.Duration
}

// Sweep deletes every greeting older than the TTL and removes its entry.
// A message already gone counts as deleted; a transient delete failure
// keeps the entry for the next sweep.
func (s *Sweeper) Sweep(ctx context.Context) error {
	greetings, err := s.Store.Greetings()
	if err != nil {
		return err
	}

	now := s.Clock.Now()
	log := slog.With(config.LogKeyComponent, config.CompSweeper)
	swept := 0

	for personID, entry := range greetings {
		if now.Sub(entry.SentAt) <= s.TTL {
			continue
		}

		if err := s.Messenger.DeleteMessage(ctx, s.ChannelID, entry.MessageID); err != nil {
			if !errors.Is(err, platform.ErrNotFound) {
				log.Warn(config.MsgItemSkipped,
					config.LogKeyPerson, personID,
					config.LogKeyMessage, entry.MessageID,
					config.LogKeyError, err,
				)
				continue
			}
		}

		err := s.Store.UpdateGreetings(func(m map[string]store.GreetingEntry) error {
			delete(m, personID)
			return nil
		})
		if err != nil {
			log.Error(config.MsgItemSkipped,
				config.LogKeyPerson, personID,
				config.LogKeyError, err,
			)
			continue
		}

		swept++
		log.Info(config.MsgGreetingStale,
			config.LogKeyPerson, personID,
			config.LogKeyMessage, entry.MessageID,
		)
	}

	if swept > 0 {
		log.Info(config.MsgSweepDone, config.LogKeySwept, swept)
	}
	return nil
}
