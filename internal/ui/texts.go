package ui

import (
	"strconv"

	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/display"
)

// DisplayTexts binds the reconciler's rendering fragments to the bundle.
func (t *Translator) DisplayTexts() display.Texts {
	return display.Texts{
		Title: func(month int) string {
			return t.TData(config.TKeyListTitle, map[string]any{
				"Month": t.MonthName(month),
			})
		},
		Empty: func() string {
			return t.T(config.TKeyListEmpty)
		},
		Entry: func(date, name string) string {
			return t.TData(config.TKeyListEntry, map[string]any{
				"Date": date,
				"Name": name,
			})
		},
		CTA: func() string {
			return t.T(config.TKeyListCTA)
		},
	}
}

// Greeting renders the birthday greeting body for a mention.
func (t *Translator) Greeting(mention string) string {
	return t.TData(config.TKeyGreeting, map[string]any{"Mention": mention})
}

// FeedSummary renders the calendar event title for a display name.
func (t *Translator) FeedSummary(name string) string {
	return t.TData(config.TKeyFeedSummary, map[string]any{"Name": name})
}

// MonthName resolves the localized name of a 1-based month.
func (t *Translator) MonthName(month int) string {
	return t.T(config.TKeyMonthPrefix + strconv.Itoa(month))
}
