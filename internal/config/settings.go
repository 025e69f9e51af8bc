package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/zalando/go-keyring"
)

// ErrTokenNotConfigured signals the fatal startup condition of a missing
// credential. The process must not attempt to connect without it.
var ErrTokenNotConfigured = errors.New(ErrTokenMissing)

// Settings holds every runtime parameter of the bot.
// Values are layered: struct defaults, then an optional YAML file, then
// BIRTHDAYBOT_* environment variables (highest priority).
type Settings struct {
	// Token is the platform credential. Resolved from the environment or,
	// failing that, from the OS keyring. Never read from the config file.
	Token string `koanf:"token" validate:"-"`

	GuildID   string `koanf:"guild_id" validate:"required"`
	ChannelID string `koanf:"channel_id" validate:"required"`
	RoleName  string `koanf:"role_name" validate:"required"`

	// DataDir is where the four persisted documents live.
	DataDir  string `koanf:"data_dir" validate:"required"`
	Language string `koanf:"language" validate:"required"`

	Cooldown      time.Duration `koanf:"cooldown" validate:"gt=0"`
	GreetingTTL   time.Duration `koanf:"greeting_ttl" validate:"gt=0"`
	DailyInterval time.Duration `koanf:"daily_interval" validate:"gt=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`

	// PurgeDeparted removes the birthday record of anyone no longer in the
	// group during the daily pass. Off by default: leaving a group should
	// not silently destroy a person's data.
	PurgeDeparted bool `koanf:"purge_departed"`

	// FeedEnabled serves the subscribable iCal birthday feed over HTTP.
	FeedEnabled bool   `koanf:"feed_enabled"`
	FeedPort    string `koanf:"feed_port"`
}

// defaultSettings returns the built-in defaults, overridden by file and env.
func defaultSettings() *Settings {
	return &Settings{
		RoleName:      DefaultRoleName,
		DataDir:       DefaultDataDir,
		Language:      DefaultLanguage,
		Cooldown:      DefaultCooldown,
		GreetingTTL:   DefaultGreetingTTL,
		DailyInterval: DefaultDailyInterval,
		SweepInterval: DefaultSweepInterval,
		PurgeDeparted: false,
		FeedEnabled:   true,
		FeedPort:      DefaultFeedPort,
	}
}

// LoadSettings builds the Settings from defaults, an optional YAML file and
// the environment, resolves the credential token, and validates the result.
func LoadSettings() (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
		}
		slog.Debug("Settings file loaded",
			LogKeyComponent, CompConfig,
			LogKeyFile, path,
		)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}

	cfg := &Settings{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}

	if err := cfg.resolveToken(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}

	return cfg, nil
}

// resolveToken falls back to the OS keyring when the environment did not
// provide the credential. A missing token is fatal.
func (s *Settings) resolveToken() error {
	if s.Token != "" {
		return nil
	}

	if secret, err := keyring.Get(KeyringService, KeyringUser); err == nil && secret != "" {
		slog.Info(MsgTokenKeyring, LogKeyComponent, CompConfig)
		s.Token = secret
		return nil
	}

	return ErrTokenNotConfigured
}

// findConfigFile returns the first existing settings file, or "".
// BIRTHDAYBOT_CONFIG overrides the default search paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransform maps BIRTHDAYBOT_GUILD_ID to guild_id, and so on.
// The settings struct is flat, so no dot-path nesting is needed.
func envTransform(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
}
