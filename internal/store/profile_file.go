package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/models"
)

const defaultReloadDebounce = 500 * time.Millisecond

// ProfileFile serves profiles from the intro JSON file, an object mapping a
// record key to an intro. Profiles keep the order of the file.
type ProfileFile struct {
	path     string
	log      *logrus.Logger
	debounce time.Duration

	mu       sync.RWMutex
	profiles []models.Profile
	loadedAt time.Time

	onReload func([]models.Profile)
}

// ProfileFileOption configures a ProfileFile.
type ProfileFileOption func(*ProfileFile)

// WithReloadDebounce sets how long Watch waits for writes to settle.
func WithReloadDebounce(d time.Duration) ProfileFileOption {
	return func(f *ProfileFile) { f.debounce = d }
}

// WithOnReload registers a callback run after every successful reload.
func WithOnReload(fn func([]models.Profile)) ProfileFileOption {
	return func(f *ProfileFile) { f.onReload = fn }
}

// NewProfileFile creates a ProfileFile for path. Call Load before use.
func NewProfileFile(path string, log *logrus.Logger, opts ...ProfileFileOption) *ProfileFile {
	f := &ProfileFile{
		path:     path,
		log:      log,
		debounce: defaultReloadDebounce,
	}
	for _, o := range opts {
		o(f)
	}

	return f
}

// Path returns the watched file path.
func (f *ProfileFile) Path() string { return f.path }

// Load reads and parses the file, replacing the current profiles on success.
func (f *ProfileFile) Load() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("opening profiles file: %w", err)
	}
	defer file.Close()

	profiles, err := ParseProfiles(file)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", f.path, err)
	}

	f.mu.Lock()
	f.profiles = profiles
	f.loadedAt = time.Now()
	f.mu.Unlock()

	f.log.WithFields(logrus.Fields{
		"path":     f.path,
		"profiles": len(profiles),
	}).Info("profiles loaded")

	return nil
}

// Profiles returns up to limit profiles in file order. limit <= 0 returns all.
func (f *ProfileFile) Profiles(_ context.Context, limit int) ([]models.Profile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.profiles == nil {
		return nil, models.ErrProfilesUnavailable
	}

	n := len(f.profiles)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]models.Profile, n)
	copy(out, f.profiles[:n])

	return out, nil
}

// Names returns every profile name in file order.
func (f *ProfileFile) Names(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.profiles == nil {
		return nil, models.ErrProfilesUnavailable
	}

	names := make([]string, len(f.profiles))
	for i := range f.profiles {
		names[i] = f.profiles[i].Name
	}

	return names, nil
}

// Count returns the number of loaded profiles.
func (f *ProfileFile) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.profiles)
}

// Loaded reports whether a load has succeeded.
func (f *ProfileFile) Loaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.profiles != nil
}

// Watch reloads the file whenever it is written or replaced, until ctx is
// cancelled. The parent directory is watched so editors that rename over the
// file are seen. A failed reload keeps the last good profiles.
func (f *ProfileFile) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(f.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	f.log.WithField("path", f.path).Debug("watching profiles file")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(f.debounce, f.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			f.log.WithError(err).Warn("profiles file watcher error")
		}
	}
}

func (f *ProfileFile) reload() {
	if err := f.Load(); err != nil {
		f.log.WithError(err).WithField("path", f.path).Error("profiles reload failed, keeping previous data")

		return
	}

	if f.onReload != nil {
		f.mu.RLock()
		snapshot := make([]models.Profile, len(f.profiles))
		copy(snapshot, f.profiles)
		f.mu.RUnlock()

		f.onReload(snapshot)
	}
}

var errNotObject = errors.New("profiles file must be a JSON object")

// ParseProfiles decodes a {"key": intro, ...} document, keeping key order.
// Each profile is normalised with its key as the name fallback.
func ParseProfiles(r io.Reader) ([]models.Profile, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading opening token: %w", err)
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	profiles := []models.Profile{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}

		key, _ := keyTok.(string)

		var p models.Profile
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}

		p.Normalize(key)
		profiles = append(profiles, p)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading closing token: %w", err)
	}

	return profiles, nil
}
