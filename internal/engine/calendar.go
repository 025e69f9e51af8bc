package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/platform"
	"github.com/tartampluch/go-birthdaybot/internal/store"
)

// Feed renders the record store as a subscribable iCalendar object so group
// members can follow the birthdays from their own calendar clients.
type Feed struct {
	Store  *store.Store
	Roster platform.Roster
	Clock  Clock

	// Summary renders the localized event title for a display name.
	// Injected by the ui package.
	Summary func(name string) string
}

// Render produces the ICS document for every record, with one full-day
// event per year across the previous, current and next year. An empty store
// yields the minimal valid calendar rather than an invalid feed.
func (f *Feed) Render(ctx context.Context) ([]byte, error) {
	records, err := f.Store.Birthdays()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := f.Clock.Now().UTC()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now)

	// Deterministic event order keeps the encoded feed stable between
	// passes with unchanged data.
	personIDs := make([]string, 0, len(records))
	for personID := range records {
		personIDs = append(personIDs, personID)
	}
	sort.Strings(personIDs)

	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}

	for _, personID := range personIDs {
		rec := records[personID]
		name := f.displayName(ctx, personID)

		for _, y := range targetYears {
			event := ical.NewEvent()
			event.Props.SetText(config.PropUID,
				fmt.Sprintf(config.FormatFeedUID, personID, y, config.ICalDomain))
			event.Props.SetText(config.PropSummary, f.Summary(name))

			// time.Date normalizes 29-02 to March 1st in non-leap
			// years, matching the daily evaluation.
			eventDate := time.Date(y, time.Month(rec.Month), rec.Day, 0, 0, 0, 0, time.UTC)
			dtStartProp := ical.NewProp(config.PropDTStart)
			dtStartProp.SetDate(eventDate)
			event.Props.Set(dtStartProp)

			event.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, event.Component)
		}
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFeedEncode, err)
	}

	slog.Debug(config.MsgFeedUpdated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(records),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

func (f *Feed) displayName(ctx context.Context, personID string) string {
	member, err := f.Roster.FetchMember(ctx, personID)
	if err != nil {
		return fmt.Sprintf(config.FallbackName, personID)
	}
	return member.DisplayName
}
