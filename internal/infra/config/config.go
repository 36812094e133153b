// Package config provides configuration loading from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file name inside the data directory.
const FileName = "config.toml"

// Remote backends.
const (
	BackendNone   = "none"
	BackendGitHub = "github"
	BackendGit    = "git"
)

// Remote selects and configures the content store backend.
// Fields are ordered to minimize memory padding.
type Remote struct {
	Backend string `toml:"backend"`
	Owner   string `toml:"owner"`
	Repo    string `toml:"repo"`
	Token   string `toml:"token"`
	Path    string `toml:"path"`
}

// Daemon configures the background scheduler.
type Daemon struct {
	IntervalSeconds int `toml:"interval_seconds"`
	SnoozeMinutes   int `toml:"snooze_minutes"`
}

// Log configures logging output.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// User is one entry of the login allow-list.
type User struct {
	Username    string `toml:"username"`
	DisplayName string `toml:"display_name"`
	Password    string `toml:"password"`
}

// Config is the full application configuration.
type Config struct {
	Remote Remote `toml:"remote"`
	Daemon Daemon `toml:"daemon"`
	Log    Log    `toml:"log"`
	Users  []User `toml:"users"`
}

// NewDefault returns the configuration used when no file exists.
func NewDefault() *Config {
	return &Config{
		Remote: Remote{Backend: BackendNone},
		Daemon: Daemon{IntervalSeconds: 30, SnoozeMinutes: 15},
		Log:    Log{Level: "info"},
	}
}

// Interval returns the daemon tick interval.
func (c *Config) Interval() time.Duration {
	if c.Daemon.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Daemon.IntervalSeconds) * time.Second
}

// Snooze returns the prompt snooze duration.
func (c *Config) Snooze() time.Duration {
	if c.Daemon.SnoozeMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Daemon.SnoozeMinutes) * time.Minute
}

// FindUser looks up an allow-list entry by username.
func (c *Config) FindUser(username string) (User, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Remote.Backend {
	case "", BackendNone:
	case BackendGitHub:
		if c.Remote.Owner == "" || c.Remote.Repo == "" {
			return errors.New("remote backend github requires owner and repo")
		}
	case BackendGit:
		if c.Remote.Path == "" {
			return errors.New("remote backend git requires path")
		}
	default:
		return fmt.Errorf("unknown remote backend: %s", c.Remote.Backend)
	}
	return nil
}

// DefaultDir returns the default data directory, honoring XDG_CONFIG_HOME.
func DefaultDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "klusplan")
}

// Load reads the configuration from dir, falling back to defaults when the
// file does not exist. Unknown keys are ignored; invalid TOML is an error.
func Load(dir string) (*Config, error) {
	cfg := NewDefault()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Template is the commented starting point written by `klusplan init`.
const Template = `# klusplan configuration

[remote]
# backend = "github"   # none | github | git
# owner = "mvdberg"
# repo = "huishouden"
# token = "ghp_..."
# path = "/pad/naar/repo"   # for backend = "git"

[daemon]
interval_seconds = 30
snooze_minutes = 15

[log]
level = "info"
# file = "/pad/naar/klusplan.log"

# [[users]]
# username = "mark"
# display_name = "Mark"
# password = "geheim"
`

// Init writes the template config file. It refuses to overwrite an
// existing one.
func Init(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
