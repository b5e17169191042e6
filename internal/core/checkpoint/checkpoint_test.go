package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), ".deliciousbackup"))
}

func TestReadMissing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, ok, err := s.Read()
	require.NoError(t, err)
	assert.False(t, ok, "missing file means no prior run")
	assert.True(t, got.IsZero())
}

func TestWriteThenRead(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	want := time.Date(2009, 3, 4, 5, 6, 7, 0, time.UTC)

	_, err := s.Write(want)
	require.NoError(t, err)

	got, ok, err := s.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, want.Equal(got), "want %v, got %v", want, got)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "1236143167\n", string(data))
}

func TestReadLegacyFloat(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("1236143167.123456"), 0o644))

	got, ok, err := s.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1236143167), got.Unix())
}

func TestReadMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"text", "yesterday"},
		{"nan", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0o644))

			_, ok, err := s.Read()
			assert.ErrorIs(t, err, ErrMalformed)
			assert.False(t, ok)
		})
	}
}

func TestWriteNeverMovesBackward(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	later := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := later.Add(-24 * time.Hour)

	wrote, err := s.Write(later)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = s.Write(earlier)
	require.NoError(t, err)
	assert.False(t, wrote, "an earlier time is not written")

	got, ok, err := s.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, later.Equal(got), "checkpoint moved backward to %v", got)

	evenLater := later.Add(time.Hour)
	wrote, err = s.Write(evenLater)
	require.NoError(t, err)
	assert.True(t, wrote)
	got, _, err = s.Read()
	require.NoError(t, err)
	assert.True(t, evenLater.Equal(got))
}

func TestWriteReplacesMalformed(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0o644))

	want := time.Date(2011, 2, 3, 4, 5, 6, 0, time.UTC)
	wrote, err := s.Write(want)
	require.NoError(t, err)
	assert.True(t, wrote)

	got, ok, err := s.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, want.Equal(got))
}

func TestWriteCreatesParentDir(t *testing.T) {
	t.Parallel()
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "dir", "checkpoint"))

	_, err := s.Write(time.Unix(42, 0))
	require.NoError(t, err)
	_, ok, err := s.Read()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := DefaultPath(".deliciousbackup")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".deliciousbackup"), p)
}
