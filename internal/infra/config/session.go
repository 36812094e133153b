package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const sessionFileName = "session.json"

// Session records the logged-in user.
type Session struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	LoggedInAt  string `json:"loggedInAt"`
}

// LoadSession reads the current session. Returns nil when nobody is
// logged in.
func LoadSession(dir string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(dir, sessionFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}

// SaveSession records a login.
func SaveSession(dir string, user User) (*Session, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	s := &Session{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		LoggedInAt:  time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sessionFileName), data, 0o600); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}
	return s, nil
}

// ClearSession logs the current user out. Missing session is not an error.
func ClearSession(dir string) error {
	err := os.Remove(filepath.Join(dir, sessionFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
