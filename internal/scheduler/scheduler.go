// Package scheduler multiplexes the periodic work of the bot under a suture
// supervisor: the daily lifecycle evaluation, the greeting sweep and the
// feed server. A panicking or failing service is restarted with backoff;
// nothing a tick does can take the process down.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Scheduler owns the supervisor tree.
type Scheduler struct {
	root *suture.Supervisor
}

// New builds the supervisor with the configured failure policy, logging
// suture events through slog.
func New(logger *slog.Logger) *Scheduler {
	handler := &sutureslog.Handler{Logger: logger}

	root := suture.New(config.SupervisorName, suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.SupervisorFails,
		FailureDecay:     config.SupervisorDecay,
		FailureBackoff:   config.SupervisorBackoff,
		Timeout:          config.ShutdownTimeout,
	})

	return &Scheduler{root: root}
}

// Add registers a service with the supervisor.
func (s *Scheduler) Add(svc suture.Service) {
	s.root.Add(svc)
}

// Serve runs the tree until the context is cancelled.
func (s *Scheduler) Serve(ctx context.Context) error {
	return s.root.Serve(ctx)
}

// TickerService runs a task on a fixed period. With Immediate set, the task
// also runs once as soon as the service starts. Task errors are logged and
// swallowed: the next tick is the retry.
type TickerService struct {
	Name      string
	Interval  time.Duration
	Immediate bool
	Task      func(ctx context.Context) error
}

// String names the service in supervisor logs.
func (t *TickerService) String() string {
	return t.Name
}

// Serve implements suture.Service.
func (t *TickerService) Serve(ctx context.Context) error {
	log := slog.With(
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyAction, t.Name,
	)
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, t.Interval.String())

	if t.Immediate {
		t.runOnce(ctx, log)
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return ctx.Err()
		case <-ticker.C:
			t.runOnce(ctx, log)
		}
	}
}

func (t *TickerService) runOnce(ctx context.Context, log *slog.Logger) {
	if err := t.Task(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error(config.MsgItemSkipped, config.LogKeyError, err)
	}
}
