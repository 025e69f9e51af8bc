package ui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/registry"
)

// ActionKind enumerates the closed set of interactive actions. Anything the
// platform's widgets can trigger maps onto exactly one of these.
type ActionKind int

const (
	ActionSubmitBirthday ActionKind = iota
	ActionChangeBirthday
	ActionRefreshDisplay
)

// Action is one user interaction, already stripped of platform specifics.
type Action struct {
	Kind     ActionKind
	PersonID string
	DateText string
	ZoneText string
}

// Dispatcher routes actions to the registry and turns the outcome into the
// localized ephemeral reply the submitter sees. Validation errors and
// policy rejections are user feedback, not system faults.
type Dispatcher struct {
	Registry   *registry.Registry
	Translator *Translator

	// Refresh forces a display reconciliation (the /refresh command).
	Refresh func(ctx context.Context) error

	table map[ActionKind]func(ctx context.Context, a Action) string
}

// NewDispatcher builds the dispatch table.
func NewDispatcher(reg *registry.Registry, tr *Translator, refresh func(ctx context.Context) error) *Dispatcher {
	d := &Dispatcher{
		Registry:   reg,
		Translator: tr,
		Refresh:    refresh,
	}
	d.table = map[ActionKind]func(ctx context.Context, a Action) string{
		ActionSubmitBirthday: d.handleSubmit,
		ActionChangeBirthday: d.handleChange,
		ActionRefreshDisplay: d.handleRefresh,
	}
	return d
}

// Dispatch executes an action and returns the reply text for the submitter.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) string {
	handler, ok := d.table[a.Kind]
	if !ok {
		return d.Translator.T(config.TKeyErrInternal)
	}
	return handler(ctx, a)
}

func (d *Dispatcher) handleSubmit(_ context.Context, a Action) string {
	rec, err := d.Registry.Submit(a.PersonID, a.DateText, a.ZoneText)
	if err != nil {
		return d.replyForError(err)
	}
	return d.Translator.TData(config.TKeyReplySubmitted, map[string]any{
		"Date": rec.DateText(),
	})
}

func (d *Dispatcher) handleChange(_ context.Context, a Action) string {
	rec, err := d.Registry.Change(a.PersonID, a.DateText, a.ZoneText)
	if err != nil {
		return d.replyForError(err)
	}
	return d.Translator.TData(config.TKeyReplyChanged, map[string]any{
		"Date": rec.DateText(),
	})
}

func (d *Dispatcher) handleRefresh(ctx context.Context, _ Action) string {
	if d.Refresh != nil {
		if err := d.Refresh(ctx); err != nil {
			slog.Error(config.MsgItemSkipped,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyError, err,
			)
			return d.Translator.T(config.TKeyErrInternal)
		}
	}
	return d.Translator.T(config.TKeyReplyRefreshed)
}

// replyForError maps the registry's discriminated errors onto user-facing
// texts. Anything outside the taxonomy is an internal fault: logged here,
// reported generically.
func (d *Dispatcher) replyForError(err error) string {
	var tzErr *registry.InvalidTimezoneError
	var cdErr *registry.CooldownActiveError

	switch {
	case errors.Is(err, registry.ErrInvalidFormat):
		return d.Translator.T(config.TKeyErrFormat)
	case errors.Is(err, registry.ErrInvalidDate):
		return d.Translator.T(config.TKeyErrDate)
	case errors.As(err, &tzErr):
		return d.Translator.TData(config.TKeyErrTimezone, map[string]any{
			"Zone": tzErr.Zone,
		})
	case errors.Is(err, registry.ErrAlreadyExists):
		return d.Translator.T(config.TKeyErrExists)
	case errors.Is(err, registry.ErrNotFound):
		return d.Translator.T(config.TKeyErrNoRecord)
	case errors.As(err, &cdErr):
		return d.Translator.TData(config.TKeyErrCooldown, map[string]any{
			"Minutes": cdErr.RemainingMinutes(),
		})
	default:
		slog.Error(config.MsgItemSkipped,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err,
		)
		return d.Translator.T(config.TKeyErrInternal)
	}
}
