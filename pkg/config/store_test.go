package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ampurr/ampurr/pkg/engine"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Path: filepath.Join(t.TempDir(), "ampurr.conf")}
}

func TestLoadAbsent(t *testing.T) {
	s := newStore(t)

	_, ok, err := s.Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)

	for v := engine.MinLimit; v <= engine.MaxLimit; v++ {
		require.NoError(t, s.Save(v))

		got, ok, err := s.Load()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}

func TestSaveRefusesOutOfRange(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(80))

	for _, v := range []int{0, 49, 101} {
		require.ErrorIs(t, s.Save(v), engine.ErrInvalidRange)
	}

	// The previously saved value must be untouched.
	got, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 80, got)
}

func TestLoadCorrupt(t *testing.T) {
	s := newStore(t)

	for _, content := range []string{"banana", "80%", "", "7f", "12 34"} {
		require.NoError(t, os.WriteFile(s.Path, []byte(content), 0644))

		_, _, err := s.Load()
		require.ErrorIs(t, err, engine.ErrCorruptConfig, "content %q", content)
	}
}

func TestLoadOutOfRangeIsCorrupt(t *testing.T) {
	s := newStore(t)

	// An out-of-range value can only appear if something other than the
	// store wrote the file; do not let it pass as configured state.
	require.NoError(t, os.WriteFile(s.Path, []byte("42\n"), 0644))

	_, _, err := s.Load()
	require.ErrorIs(t, err, engine.ErrCorruptConfig)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(60))
	require.NoError(t, s.Save(70))

	entries, err := os.ReadDir(filepath.Dir(s.Path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, filepath.Base(s.Path), entries[0].Name())
}

func TestSaveFilePermissions(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(60))

	info, err := os.Stat(s.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(75))
	require.NoError(t, s.Delete())

	_, ok, err := s.Load()
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting again is not an error.
	require.NoError(t, s.Delete())
}
