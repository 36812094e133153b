package domain

import (
	"context"
	"time"
)

// Remote document paths. The store exposes whole documents only; there is
// no partial-update primitive.
const (
	TasksPath  = "data/tasks.json"
	PeoplePath = "data/people.json"
	ConfigPath = "data/config.json"
	FeedPath   = "data/klusplan.ics"
)

// Document is one whole remote file plus its opaque version token.
// Fields are ordered to minimize memory padding.
type Document struct {
	Content []byte
	Version string
}

// ContentStore is a per-path whole-document remote store with optimistic
// concurrency. Implementations map conflicts to ErrConflict and missing
// documents to ErrNotFound.
type ContentStore interface {
	// Read fetches the document at path. Returns ErrNotFound when the
	// document does not exist yet.
	Read(ctx context.Context, path string) (Document, error)

	// Write replaces the document at path. version is the token from the
	// last read, or empty when creating. Returns the new token, or
	// ErrConflict when the token is stale.
	Write(ctx context.Context, path, message string, content []byte, version string) (string, error)

	// Validate is a read-only reachability probe for new credentials.
	Validate(ctx context.Context) error
}

// Bundle is the full serialized application state: every top-level
// collection, in the shape used by the local cache and export files.
type Bundle struct {
	Tasks      []*Task  `json:"tasks" yaml:"tasks"`
	People     []Person `json:"people" yaml:"people"`
	Groups     []Group  `json:"groups" yaml:"groups"`
	Statuses   []string `json:"statuses" yaml:"statuses"`
	Locations  []string `json:"locations" yaml:"locations"`
	Categories []string `json:"categories" yaml:"categories"`
	Projects   []string `json:"projects" yaml:"projects"`
	ExportedAt string   `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
}

// BundleCache is the local durable cache. Every mutation lands here
// immediately so an unplanned exit never loses edits.
type BundleCache interface {
	// LoadBundle restores the cached state. Returns ErrNotFound when no
	// cache exists yet.
	LoadBundle() (*Bundle, error)

	// SaveBundle persists the current state.
	SaveBundle(b *Bundle) error

	// LoadDirty reports whether uncommitted edits were cached.
	LoadDirty() (bool, error)

	// SaveDirty persists the dirty flag.
	SaveDirty(dirty bool) error

	// LoadDismissed restores the dismissed-notification keys with their
	// date stamp.
	LoadDismissed() (date string, keys []string, err error)

	// SaveDismissed persists the dismissed keys under a date stamp.
	SaveDismissed(date string, keys []string) error
}

// Logger is the logging port. Implementations write structured records;
// args are alternating key/value pairs as in log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// PromptAction is the user's answer to an end-of-task prompt.
type PromptAction int

const (
	PromptMarkDone PromptAction = iota
	PromptExtend
	PromptSnooze
	PromptDismiss
)

// EndPrompt describes one end-of-task confirmation. SubtaskID is empty for
// task-level prompts.
type EndPrompt struct {
	TaskID    string
	SubtaskID string
	Title     string
	End       time.Time
}

// Prompter raises the blocking end-of-task confirmation. The daemon
// guarantees at most one prompt is active at a time.
type Prompter interface {
	// ConfirmEnd blocks until the user answers. Extend actions return the
	// new end time alongside PromptExtend.
	ConfirmEnd(ctx context.Context, p EndPrompt) (PromptAction, time.Time, error)
}
