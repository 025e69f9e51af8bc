// Package ui owns everything the humans see: localized message texts and
// the closed set of interactive actions, decoupled from the platform's
// rendering machinery.
package ui

import (
	"embed"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-birthdaybot/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message keys against the embedded locale bundle.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
}

// NewTranslator loads every embedded locale and localizes for lang,
// falling back to English for missing keys.
func NewTranslator(lang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}

	return &Translator{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}, nil
}

// T translates a key without template data.
func (t *Translator) T(key string) string {
	return t.TData(key, nil)
}

// TData translates a key with template data, returning the key itself when
// the translation is missing so the UI degrades visibly, not fatally.
func (t *Translator) TData(key string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}
