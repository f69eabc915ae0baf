// Package config persists the desired charge limit across reboots.
//
// The on-disk format is a single integer in a text file, shared with the
// boot-time service.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ampurr/ampurr/pkg/engine"
)

// DefaultPath is where the limit is persisted.
const DefaultPath = "/etc/ampurr.conf"

// Store reads and writes the persisted charge limit. Saves are atomic: the
// new value goes to a temp file in the same directory and is renamed into
// place, so a crash never leaves a half-written value behind.
//
// Concurrent writers are last-writer-wins. The writers are short-lived
// processes with no locking authority over each other, so this is a
// documented assumption, not a guarantee.
type Store struct {
	// Path overrides DefaultPath, mainly for tests.
	Path string
}

func (s *Store) path() string {
	if s.Path != "" {
		return s.Path
	}
	return DefaultPath
}

// Load returns the persisted limit. ok is false when no limit has been
// configured yet; that is not an error. A file that exists but does not
// hold a valid limit is reported as corrupt, never silently defaulted.
func (s *Store) Load() (int, bool, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, pkgerrors.Wrapf(err, "failed to read %s", s.path())
	}

	raw := strings.TrimSpace(string(b))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, pkgerrors.Wrapf(engine.ErrCorruptConfig, "%s contains %q", s.path(), raw)
	}
	if v < engine.MinLimit || v > engine.MaxLimit {
		return 0, false, pkgerrors.Wrapf(engine.ErrCorruptConfig, "%s contains out-of-range limit %d", s.path(), v)
	}

	return v, true, nil
}

// Save persists a new limit. Values are validated by the caller before
// they get here, but the store refuses out-of-range values anyway so the
// file can never hold one.
func (s *Store) Save(v int) error {
	if v < engine.MinLimit || v > engine.MaxLimit {
		return pkgerrors.Wrapf(engine.ErrInvalidRange, "refusing to persist %d", v)
	}

	dir := filepath.Dir(s.path())
	tmp, err := os.CreateTemp(dir, ".ampurr-conf-*")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create temp file in %s", dir)
	}
	defer func() {
		// No-op after a successful rename.
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("failed to clean up %s: %v", tmp.Name(), err)
		}
	}()

	if _, err := tmp.WriteString(strconv.Itoa(v) + "\n"); err != nil {
		tmp.Close()
		return pkgerrors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrapf(err, "failed to close %s", tmp.Name())
	}

	// CreateTemp files are 0600; the config should be world-readable like
	// any other file in /etc.
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to chmod %s", tmp.Name())
	}

	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return pkgerrors.Wrapf(err, "failed to move config into place at %s", s.path())
	}

	return nil
}

// Delete removes the persisted limit. A missing file is fine.
func (s *Store) Delete() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "failed to remove %s", s.path())
	}
	return nil
}
