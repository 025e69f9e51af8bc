// Package store owns the four persisted document maps: birthday records,
// mutation cooldowns, live greetings and display slot identities. Each kind
// lives in its own JSON file, is replaced whole on save, and is guarded by
// its own mutex so that a load-mutate-save sequence cannot lose an update to
// a concurrent task.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/tartampluch/go-birthdaybot/internal/config"
)

// Store reads and writes the persisted documents under a single directory.
// It is the only component allowed to touch the files; everything else goes
// through snapshots and Update closures.
type Store struct {
	dir string

	birthdaysMu sync.Mutex
	cooldownsMu sync.Mutex
	greetingsMu sync.Mutex
	slotsMu     sync.Mutex
}

// New creates the data directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDataDir, err)
	}
	return &Store{dir: dir}, nil
}

// -----------------------------------------------------------------------------
// Birthdays
// -----------------------------------------------------------------------------

// Birthdays returns a snapshot of all records. A missing file yields an
// empty map, never an error.
func (s *Store) Birthdays() (map[string]BirthdayRecord, error) {
	s.birthdaysMu.Lock()
	defer s.birthdaysMu.Unlock()
	return loadMap[BirthdayRecord](s.path(config.FileBirthdays))
}

// UpdateBirthdays runs fn over the record map while holding the kind's lock,
// then persists the result. If fn returns an error nothing is written.
func (s *Store) UpdateBirthdays(fn func(map[string]BirthdayRecord) error) error {
	s.birthdaysMu.Lock()
	defer s.birthdaysMu.Unlock()
	return updateMap(s.path(config.FileBirthdays), fn)
}

// -----------------------------------------------------------------------------
// Cooldowns
// -----------------------------------------------------------------------------

// Cooldowns returns a snapshot of the personId -> expiry map.
func (s *Store) Cooldowns() (map[string]time.Time, error) {
	s.cooldownsMu.Lock()
	defer s.cooldownsMu.Unlock()
	return loadMap[time.Time](s.path(config.FileCooldowns))
}

// UpdateCooldowns mutates and persists the cooldown map under its lock.
func (s *Store) UpdateCooldowns(fn func(map[string]time.Time) error) error {
	s.cooldownsMu.Lock()
	defer s.cooldownsMu.Unlock()
	return updateMap(s.path(config.FileCooldowns), fn)
}

// -----------------------------------------------------------------------------
// Greetings
// -----------------------------------------------------------------------------

// Greetings returns a snapshot of the live greeting entries.
func (s *Store) Greetings() (map[string]GreetingEntry, error) {
	s.greetingsMu.Lock()
	defer s.greetingsMu.Unlock()
	return loadMap[GreetingEntry](s.path(config.FileGreetings))
}

// UpdateGreetings mutates and persists the greeting map under its lock.
func (s *Store) UpdateGreetings(fn func(map[string]GreetingEntry) error) error {
	s.greetingsMu.Lock()
	defer s.greetingsMu.Unlock()
	return updateMap(s.path(config.FileGreetings), fn)
}

// -----------------------------------------------------------------------------
// Display Slots
// -----------------------------------------------------------------------------

// Slots returns a snapshot of the display slot identities.
func (s *Store) Slots() (SlotSet, error) {
	s.slotsMu.Lock()
	defer s.slotsMu.Unlock()

	var set SlotSet
	if err := loadDocument(s.path(config.FileSlots), &set); err != nil {
		return SlotSet{}, err
	}
	return set, nil
}

// UpdateSlots mutates and persists the slot set under its lock.
func (s *Store) UpdateSlots(fn func(*SlotSet) error) error {
	s.slotsMu.Lock()
	defer s.slotsMu.Unlock()

	var set SlotSet
	if err := loadDocument(s.path(config.FileSlots), &set); err != nil {
		return err
	}
	if err := fn(&set); err != nil {
		return err
	}
	return saveDocument(s.path(config.FileSlots), &set)
}

// -----------------------------------------------------------------------------
// Document plumbing
// -----------------------------------------------------------------------------

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func loadMap[V any](path string) (map[string]V, error) {
	m := make(map[string]V)
	if err := loadDocument(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func updateMap[V any](path string, fn func(map[string]V) error) error {
	m, err := loadMap[V](path)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return saveDocument(path, m)
}

// loadDocument decodes a JSON document into out. Absence of the file leaves
// out at its zero value: a store that has never been written reads as empty.
func loadDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%s: %w", config.ErrStoreLoad, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreDecode, err)
	}
	return nil
}

// saveDocument replaces the document whole: encode, write a sibling temp
// file, then rename over the target so readers never observe a torn write.
func saveDocument(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "    ")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreEncode, err)
	}

	tmp := path + config.TempFileSuffix
	if err := os.WriteFile(tmp, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		// Best effort cleanup of the orphaned temp file.
		_ = os.Remove(tmp)
		return fmt.Errorf("%s: %w", config.ErrStoreRename, err)
	}

	slog.Debug("Document saved",
		config.LogKeyComponent, config.CompStore,
		config.LogKeyFile, filepath.Base(path),
		config.LogKeySizeBytes, len(data),
	)
	return nil
}
