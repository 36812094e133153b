package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendNone, cfg.Remote.Backend)
	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, 15*time.Minute, cfg.Snooze())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FullFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[remote]
backend = "github"
owner = "mvdberg"
repo = "huishouden"
token = "ghp_test"

[daemon]
interval_seconds = 60
snooze_minutes = 5

[log]
level = "debug"
file = "/tmp/klusplan.log"

[[users]]
username = "mark"
display_name = "Mark"
password = "geheim"

[[users]]
username = "sanne"
display_name = "Sanne"
password = "ookgeheim"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendGitHub, cfg.Remote.Backend)
	assert.Equal(t, "mvdberg", cfg.Remote.Owner)
	assert.Equal(t, time.Minute, cfg.Interval())
	assert.Equal(t, 5*time.Minute, cfg.Snooze())
	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Users, 2)

	user, ok := cfg.FindUser("sanne")
	require.True(t, ok)
	assert.Equal(t, "Sanne", user.DisplayName)

	_, ok = cfg.FindUser("piet")
	assert.False(t, ok)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "github without owner",
			content: "[remote]\nbackend = \"github\"\nrepo = \"huishouden\"\n",
		},
		{
			name:    "git without path",
			content: "[remote]\nbackend = \"git\"\n",
		},
		{
			name:    "unknown backend",
			content: "[remote]\nbackend = \"ftp\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[remote\nbackend=")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "klusplan")

	path, err := Init(dir)
	require.NoError(t, err)
	assert.FileExists(t, path)

	// Template must be loadable and refuse a second init.
	_, err = Load(dir)
	require.NoError(t, err)

	_, err = Init(dir)
	assert.Error(t, err)
}

func TestSession_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadSession(dir)
	require.NoError(t, err)
	assert.Nil(t, s)

	saved, err := SaveSession(dir, User{Username: "mark", DisplayName: "Mark"})
	require.NoError(t, err)
	assert.Equal(t, "mark", saved.Username)

	s, err = LoadSession(dir)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Mark", s.DisplayName)

	require.NoError(t, ClearSession(dir))
	s, err = LoadSession(dir)
	require.NoError(t, err)
	assert.Nil(t, s)

	// Logging out twice is fine.
	assert.NoError(t, ClearSession(dir))
}
