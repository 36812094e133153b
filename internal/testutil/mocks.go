// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mvdberg/klusplan/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	mu      sync.Mutex
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = m.NowTime.Add(d)
}

// Set pins the clock to an instant.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = t
}

// MockContentStore is an in-memory test double for domain.ContentStore.
// Fields are ordered to minimize memory padding.
type MockContentStore struct {
	Docs        map[string]domain.Document
	ReadErr     map[string]error
	WriteErr    map[string]error
	ValidateErr error

	// ConflictOnce rejects the next write to a path with ErrConflict and
	// bumps the stored version, simulating a concurrent writer.
	ConflictOnce map[string]bool

	// Writes records every write attempt in order, as "path" entries.
	Writes []string

	mu     sync.Mutex
	nextID int
}

// NewMockContentStore creates a MockContentStore with initialized maps.
func NewMockContentStore() *MockContentStore {
	return &MockContentStore{
		Docs:         make(map[string]domain.Document),
		ReadErr:      make(map[string]error),
		WriteErr:     make(map[string]error),
		ConflictOnce: make(map[string]bool),
	}
}

// Seed stores a document with a fresh version token.
func (m *MockContentStore) Seed(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.Docs[path] = domain.Document{Content: content, Version: "v" + strconv.Itoa(m.nextID)}
}

// Read returns the stored document.
func (m *MockContentStore) Read(_ context.Context, path string) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ReadErr[path]; err != nil {
		return domain.Document{}, err
	}
	doc, ok := m.Docs[path]
	if !ok {
		return domain.Document{}, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return doc, nil
}

// Write stores a document, enforcing the version token.
func (m *MockContentStore) Write(_ context.Context, path, _ string, content []byte, version string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes = append(m.Writes, path)
	if err := m.WriteErr[path]; err != nil {
		return "", err
	}
	if m.ConflictOnce[path] {
		delete(m.ConflictOnce, path)
		m.nextID++
		cur := m.Docs[path]
		cur.Version = "v" + strconv.Itoa(m.nextID)
		m.Docs[path] = cur
		return "", fmt.Errorf("%s: %w", path, domain.ErrConflict)
	}
	if cur, ok := m.Docs[path]; ok && cur.Version != version {
		return "", fmt.Errorf("%s: %w", path, domain.ErrConflict)
	}
	m.nextID++
	next := "v" + strconv.Itoa(m.nextID)
	m.Docs[path] = domain.Document{Content: content, Version: next}
	return next, nil
}

// Validate reports the configured probe result.
func (m *MockContentStore) Validate(_ context.Context) error {
	return m.ValidateErr
}

// MockBundleCache is an in-memory test double for domain.BundleCache.
type MockBundleCache struct {
	Bundle        *domain.Bundle
	BundleErr     error
	DismissedDate string
	DismissedKeys []string
	SaveCount     int
	Dirty         bool

	mu sync.Mutex
}

// LoadBundle returns the cached bundle.
func (m *MockBundleCache) LoadBundle() (*domain.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BundleErr != nil {
		return nil, m.BundleErr
	}
	if m.Bundle == nil {
		return nil, domain.ErrNotFound
	}
	return m.Bundle, nil
}

// SaveBundle stores the bundle.
func (m *MockBundleCache) SaveBundle(b *domain.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bundle = b
	m.SaveCount++
	return nil
}

// LoadDirty returns the cached dirty flag.
func (m *MockBundleCache) LoadDirty() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Dirty, nil
}

// SaveDirty stores the dirty flag.
func (m *MockBundleCache) SaveDirty(dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirty = dirty
	return nil
}

// LoadDismissed returns the cached dismissed keys.
func (m *MockBundleCache) LoadDismissed() (string, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.DismissedDate, m.DismissedKeys, nil
}

// SaveDismissed stores the dismissed keys under a date stamp.
func (m *MockBundleCache) SaveDismissed(date string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DismissedDate = date
	m.DismissedKeys = keys
	return nil
}

// MockPrompter is a scripted test double for domain.Prompter.
// Fields are ordered to minimize memory padding.
type MockPrompter struct {
	// Actions are consumed in order; when exhausted, PromptDismiss.
	Actions []domain.PromptAction
	// ExtendTo is returned alongside PromptExtend actions.
	ExtendTo time.Time
	// Prompts records every prompt raised, in order.
	Prompts []domain.EndPrompt
	Err     error

	mu     sync.Mutex
	active int
	// MaxActive tracks the highest number of concurrently open prompts.
	MaxActive int
}

// ConfirmEnd records the prompt and replies with the next scripted action.
func (m *MockPrompter) ConfirmEnd(_ context.Context, p domain.EndPrompt) (domain.PromptAction, time.Time, error) {
	m.mu.Lock()
	m.active++
	if m.active > m.MaxActive {
		m.MaxActive = m.active
	}
	m.Prompts = append(m.Prompts, p)
	action := domain.PromptDismiss
	if len(m.Actions) > 0 {
		action = m.Actions[0]
		m.Actions = m.Actions[1:]
	}
	err := m.Err
	extendTo := m.ExtendTo
	m.active--
	m.mu.Unlock()
	if err != nil {
		return domain.PromptDismiss, time.Time{}, err
	}
	return action, extendTo, nil
}
