// Package sync reconciles local state with the remote content store. The
// remote offers whole-document reads and writes guarded by opaque version
// tokens; there is no partial-update primitive, so the engine moves entire
// collections and serializes its writes.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/mvdberg/klusplan/internal/domain"
	"github.com/mvdberg/klusplan/internal/state"
)

// FeedRenderer produces the derived calendar-feed document pushed after a
// successful write-all.
type FeedRenderer interface {
	Render(tasks []*domain.Task, people []*domain.Person) []byte
}

// configDoc is the remote taxonomy document shape.
type configDoc struct {
	Groups     []domain.Group `json:"groups"`
	Statuses   []string       `json:"statuses"`
	Locations  []string       `json:"locations"`
	Categories []string       `json:"categories"`
}

// Engine is the remote sync engine. A nil remote means the planner runs
// local-only and commits just clear the dirty flag.
// Fields are ordered to minimize memory padding.
type Engine struct {
	store    *state.Store
	remote   domain.ContentStore
	feed     FeedRenderer
	logger   domain.Logger
	versions map[string]string
	mu       gosync.Mutex
}

// New creates a sync engine. remote and feed may be nil.
func New(store *state.Store, remote domain.ContentStore, feed FeedRenderer, logger domain.Logger) *Engine {
	return &Engine{
		store:    store,
		remote:   remote,
		feed:     feed,
		logger:   logger,
		versions: make(map[string]string),
	}
}

// Configured reports whether a remote store is wired.
func (e *Engine) Configured() bool { return e.remote != nil }

// Validate probes the remote with a side-effect-free read, used before
// committing to new credentials.
func (e *Engine) Validate(ctx context.Context) error {
	if e.remote == nil {
		return domain.ErrNotConfigured
	}
	if err := e.remote.Validate(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnreachable, err)
	}
	return nil
}

type readResult struct {
	doc   domain.Document
	err   error
	found bool
}

// ReadAll fetches the three documents in parallel and installs them as the
// new clean state. A missing document leaves that collection untouched; any
// other failure aborts the whole read with local state unchanged.
func (e *Engine) ReadAll(ctx context.Context) error {
	if e.remote == nil {
		return domain.ErrNotConfigured
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	paths := []string{domain.TasksPath, domain.PeoplePath, domain.ConfigPath}
	results := make([]readResult, len(paths))
	var wg gosync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			doc, err := e.remote.Read(ctx, path)
			switch {
			case err == nil:
				results[i] = readResult{doc: doc, found: true}
			case errors.Is(err, domain.ErrNotFound):
				results[i] = readResult{}
			default:
				results[i] = readResult{err: err}
			}
		}(i, path)
	}
	wg.Wait()
	for i, r := range results {
		if r.err != nil {
			return fmt.Errorf("read %s: %w", paths[i], r.err)
		}
	}

	// Overlay the fetched documents on the current state so documents that
	// do not exist yet keep their local collections.
	bundle := e.store.Bundle()
	if r := results[0]; r.found {
		var tasks []*domain.Task
		if err := json.Unmarshal(r.doc.Content, &tasks); err != nil {
			return fmt.Errorf("parse %s: %w", domain.TasksPath, err)
		}
		bundle.Tasks = tasks
		e.versions[domain.TasksPath] = r.doc.Version
	}
	if r := results[1]; r.found {
		var people []domain.Person
		if err := json.Unmarshal(r.doc.Content, &people); err != nil {
			return fmt.Errorf("parse %s: %w", domain.PeoplePath, err)
		}
		bundle.People = people
		e.versions[domain.PeoplePath] = r.doc.Version
	}
	if r := results[2]; r.found {
		var cfg configDoc
		if err := json.Unmarshal(r.doc.Content, &cfg); err != nil {
			return fmt.Errorf("parse %s: %w", domain.ConfigPath, err)
		}
		if len(cfg.Groups) > 0 {
			bundle.Groups = cfg.Groups
		}
		if len(cfg.Statuses) > 0 {
			bundle.Statuses = cfg.Statuses
		}
		if len(cfg.Locations) > 0 {
			bundle.Locations = cfg.Locations
		}
		if len(cfg.Categories) > 0 {
			bundle.Categories = cfg.Categories
		}
		e.versions[domain.ConfigPath] = r.doc.Version
	}

	e.store.Replace(bundle, true)
	e.logger.Info("remote state loaded",
		"tasks", len(bundle.Tasks), "people", len(bundle.People))
	return nil
}

// WriteAll pushes the three documents sequentially, then the derived
// calendar feed. Parallel writes race on version tokens, so the order is
// fixed: tasks, people, config, feed. The feed write is best-effort.
func (e *Engine) WriteAll(ctx context.Context) error {
	if e.remote == nil {
		return domain.ErrNotConfigured
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	bundle := e.store.Bundle()
	tasksJSON, err := json.MarshalIndent(bundle.Tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	peopleJSON, err := json.MarshalIndent(bundle.People, "", "  ")
	if err != nil {
		return fmt.Errorf("encode people: %w", err)
	}
	cfg := configDoc{
		Groups:     bundle.Groups,
		Statuses:   bundle.Statuses,
		Locations:  bundle.Locations,
		Categories: bundle.Categories,
	}
	cfgJSON, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := e.writeDoc(ctx, domain.TasksPath, "Update tasks", tasksJSON); err != nil {
		return err
	}
	if err := e.writeDoc(ctx, domain.PeoplePath, "Update people", peopleJSON); err != nil {
		return err
	}
	if err := e.writeDoc(ctx, domain.ConfigPath, "Update config", cfgJSON); err != nil {
		return err
	}

	if e.feed != nil {
		people := make([]*domain.Person, len(bundle.People))
		for i := range bundle.People {
			people[i] = &bundle.People[i]
		}
		feed := e.feed.Render(bundle.Tasks, people)
		if err := e.writeDoc(ctx, domain.FeedPath, "Update calendar feed", feed); err != nil {
			e.logger.Warn("calendar feed push failed", "error", err)
		}
	}
	return nil
}

// writeDoc writes one document with the cached version token. On a stale
// token it re-fetches the current token and retries exactly once; a second
// failure propagates.
func (e *Engine) writeDoc(ctx context.Context, path, message string, content []byte) error {
	version, err := e.remote.Write(ctx, path, message, content, e.versions[path])
	if errors.Is(err, domain.ErrConflict) {
		fresh := ""
		if doc, rerr := e.remote.Read(ctx, path); rerr == nil {
			fresh = doc.Version
		}
		e.logger.Warn("stale version token, retrying write", "path", path)
		version, err = e.remote.Write(ctx, path, message, content, fresh)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	e.versions[path] = version
	return nil
}

// Commit is the explicit save action: push to the remote when configured,
// otherwise succeed locally, then clear dirty and recapture the clean
// snapshot.
func (e *Engine) Commit(ctx context.Context) error {
	if e.remote != nil {
		if err := e.WriteAll(ctx); err != nil {
			return err
		}
	}
	e.store.MarkClean()
	return nil
}
