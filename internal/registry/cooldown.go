package registry

import (
	"time"

	"github.com/tartampluch/go-birthdaybot/internal/engine"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

// Gate rate-limits mutation of a person's record. An entry exists only
// between a mutation and its expiry; absence means unrestricted mutation.
type Gate struct {
	Store    *store.Store
	Clock    engine.Clock
	Duration time.Duration
}

// Check reports whether the person may mutate their record. When the gate
// is still active it returns the remaining wait.
func (g *Gate) Check(personID string) (time.Duration, bool, error) {
	cooldowns, err := g.Store.Cooldowns()
	if err != nil {
		return 0, false, err
	}

	expiresAt, ok := cooldowns[personID]
	if !ok {
		return 0, true, nil
	}

	now := g.Clock.Now()
	if !now.Before(expiresAt) {
		// Expiry boundary is inclusive: at exactly expiresAt the gate
		// is cleared.
		return 0, true, nil
	}
	return expiresAt.Sub(now), false, nil
}

// Arm sets (or overwrites) the person's expiry to now + Duration.
func (g *Gate) Arm(personID string) error {
	expiresAt := g.Clock.Now().Add(g.Duration)
	return g.Store.UpdateCooldowns(func(m map[string]time.Time) error {
		m[personID] = expiresAt
		return nil
	})
}
