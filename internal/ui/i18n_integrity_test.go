package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthdaybot/internal/config"
)

// requiredKeys lists every translation key the code resolves. Month names
// are generated from the prefix.
func requiredKeys() []string {
	keys := []string{
		config.TKeyGreeting,
		config.TKeyListTitle,
		config.TKeyListEmpty,
		config.TKeyListEntry,
		config.TKeyListCTA,
		config.TKeyFeedSummary,
		config.TKeyBtnSubmit,
		config.TKeyBtnChange,
		config.TKeyModalTitle,
		config.TKeyModalDateLabel,
		config.TKeyModalDateHint,
		config.TKeyModalZoneLabel,
		config.TKeyModalZoneHint,
		config.TKeyReplySubmitted,
		config.TKeyReplyChanged,
		config.TKeyReplyRefreshed,
		config.TKeyErrFormat,
		config.TKeyErrDate,
		config.TKeyErrTimezone,
		config.TKeyErrExists,
		config.TKeyErrNoRecord,
		config.TKeyErrCooldown,
		config.TKeyErrInternal,
	}
	for month := 1; month <= config.MonthsPerYear; month++ {
		keys = append(keys, config.TKeyMonthPrefix+strconv.Itoa(month))
	}
	return keys
}

func loadLocale(t *testing.T, name string) map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("locales", name))
	require.NoErrorf(t, err, "Must load %s", name)

	var jsonMap map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")
	return jsonMap
}

// TestI18nIntegrity ensures that every translation key defined in config.go
// actually exists in the locale JSON files.
func TestI18nIntegrity(t *testing.T) {
	locales := []string{"active.en.json", "active.fr.json"}

	for _, locale := range locales {
		t.Run(locale, func(t *testing.T) {
			jsonMap := loadLocale(t, locale)

			for _, key := range requiredKeys() {
				_, exists := jsonMap[key]
				assert.Truef(t, exists, "Key '%s' defined in config.go is missing in %s", key, locale)
			}
		})
	}
}

// TestI18nLocaleParity ensures the translated locales carry exactly the same
// key set as English, so no language silently degrades to key echoes.
func TestI18nLocaleParity(t *testing.T) {
	en := loadLocale(t, "active.en.json")
	fr := loadLocale(t, "active.fr.json")

	for key := range en {
		_, exists := fr[key]
		assert.Truef(t, exists, "Key '%s' exists in en but not in fr", key)
	}
	for key := range fr {
		_, exists := en[key]
		assert.Truef(t, exists, "Key '%s' exists in fr but not in en", key)
	}
}
