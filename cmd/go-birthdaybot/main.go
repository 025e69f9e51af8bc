package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/tartampluch/go-birthdaybot/internal/config"
	"github.com/tartampluch/go-birthdaybot/internal/display"
	"github.com/tartampluch/go-birthdaybot/internal/engine"
	"github.com/tartampluch/go-birthdaybot/internal/glue"
	"github.com/tartampluch/go-birthdaybot/internal/platform"
	"github.com/tartampluch/go-birthdaybot/internal/registry"
	"github.com/tartampluch/go-birthdaybot/internal/scheduler"
	"github.com/tartampluch/go-birthdaybot/internal/server"
	"github.com/tartampluch/go-birthdaybot/internal/store"
	"github.com/tartampluch/go-birthdaybot/internal/ui"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// We configure structured logging (slog) early to capture startup issues.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads settings, wires dependencies, connects to the platform and
// serves the supervisor tree until the context is cancelled.
func run(ctx context.Context) error {
	// Settings. A missing credential is fatal before any connection attempt.
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	st, err := store.New(settings.DataDir)
	if err != nil {
		return err
	}

	translator, err := ui.NewTranslator(settings.Language)
	if err != nil {
		return err
	}

	// Platform session.
	session, err := discordgo.New("Bot " + settings.Token)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSessionOpen, err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	if err := session.Open(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSessionOpen, err)
	}
	defer func() { _ = session.Close() }()
	slog.Info(config.MsgSessionReady, config.LogKeyComponent, config.CompMain)

	adapter := platform.NewDiscord(session, settings.GuildID, settings.RoleName)
	clock := engine.RealClock{}

	// Display reconciliation and feed generation.
	reconciler := &display.Reconciler{
		Store:     st,
		Messenger: adapter,
		Roster:    adapter,
		ChannelID: settings.ChannelID,
		Texts:     translator.DisplayTexts(),
	}

	feed := &engine.Feed{
		Store:   st,
		Roster:  adapter,
		Clock:   clock,
		Summary: translator.FeedSummary,
	}

	var feedServer *server.FeedServer
	if settings.FeedEnabled {
		feedServer = server.NewFeedServer(settings.FeedPort)
	}

	refresh := func(ctx context.Context) error {
		if err := reconciler.Reconcile(ctx); err != nil {
			return err
		}
		if feedServer != nil {
			data, err := feed.Render(ctx)
			if err != nil {
				return err
			}
			feedServer.Update(data)
		}
		return nil
	}

	// Mutations coalesce into a single pending refresh: a burst of
	// submissions triggers one reconciliation pass, not one per mutation,
	// and the submitter's reply never waits on twelve message edits.
	refreshPending := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-refreshPending:
				if err := refresh(ctx); err != nil && ctx.Err() == nil {
					slog.Error(config.MsgItemSkipped,
						config.LogKeyComponent, config.CompMain,
						config.LogKeyError, err,
					)
				}
			}
		}
	}()

	// Registry and interactions.
	reg := registry.New(st, clock, settings.Cooldown)
	reg.OnMutated = func() {
		select {
		case refreshPending <- struct{}{}:
		default:
			// A refresh is already queued; it will pick this mutation up.
		}
	}

	dispatcher := ui.NewDispatcher(reg, translator, refresh)
	interactions := &glue.Interactions{
		Adapter:    adapter,
		Dispatcher: dispatcher,
		Translator: translator,
		GuildID:    settings.GuildID,
	}
	if err := interactions.Register(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCommandSync, err)
	}

	// Lifecycle engine and sweeper.
	eng := &engine.Engine{
		Store:         st,
		Messenger:     adapter,
		Roster:        adapter,
		Clock:         clock,
		ChannelID:     settings.ChannelID,
		Greeting:      translator.Greeting,
		PurgeDeparted: settings.PurgeDeparted,
	}
	sweeper := &engine.Sweeper{
		Store:     st,
		Messenger: adapter,
		Clock:     clock,
		ChannelID: settings.ChannelID,
		TTL:       settings.GreetingTTL,
	}

	// Supervised periodic work. The daily pass runs once immediately so a
	// restart converges roles, greetings and the display without waiting a
	// day.
	sched := scheduler.New(slog.Default())
	sched.Add(&scheduler.TickerService{
		Name:      config.CompEngine,
		Interval:  settings.DailyInterval,
		Immediate: true,
		Task: func(ctx context.Context) error {
			if err := eng.RunDaily(ctx); err != nil {
				return err
			}
			return refresh(ctx)
		},
	})
	sched.Add(&scheduler.TickerService{
		Name:     config.CompSweeper,
		Interval: settings.SweepInterval,
		Task:     sweeper.Sweep,
	})
	if feedServer != nil {
		sched.Add(feedServer)
	}

	if err := sched.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
