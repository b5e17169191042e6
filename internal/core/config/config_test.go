package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentultra/deliciousbackup/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	p := writeConfig(t, `
username: alice
password: s3cret
endpoint: https://api.pinboard.in/v1
checkpoint: /tmp/alice.checkpoint
strict_checkpoint: true
timeout: 15s
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "https://api.pinboard.in/v1", cfg.Endpoint)
	assert.Equal(t, core.DefaultDatabase, cfg.Database, "unset keys keep their default")
	assert.Equal(t, "/tmp/alice.checkpoint", cfg.Checkpoint)
	assert.True(t, cfg.StrictCheckpoint)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "unknown key", content: "usrname: alice\n"},
		{name: "bad yaml", content: "username: [alice\n"},
		{name: "bad duration", content: "timeout: soon\n"},
		{name: "negative timeout", content: "timeout: -1s\n", wantErr: ErrInvalidTimeout},
		{name: "empty database", content: "database: \"\"\n", wantErr: ErrEmptyDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestHasCredentials(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.False(t, cfg.HasCredentials())
	cfg.Username = "alice"
	assert.False(t, cfg.HasCredentials())
	cfg.Password = "s3cret"
	assert.True(t, cfg.HasCredentials())
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(p))
	assert.Equal(t, core.AppName, filepath.Base(filepath.Dir(p)))
}
