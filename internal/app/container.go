// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/mvdberg/klusplan/internal/daemon"
	"github.com/mvdberg/klusplan/internal/domain"
	"github.com/mvdberg/klusplan/internal/infra/cachefile"
	"github.com/mvdberg/klusplan/internal/infra/config"
	"github.com/mvdberg/klusplan/internal/infra/githubstore"
	"github.com/mvdberg/klusplan/internal/infra/gitstore"
	"github.com/mvdberg/klusplan/internal/infra/ical"
	"github.com/mvdberg/klusplan/internal/infra/logging"
	"github.com/mvdberg/klusplan/internal/notify"
	"github.com/mvdberg/klusplan/internal/state"
	klussync "github.com/mvdberg/klusplan/internal/sync"
)

// Container wires the application's ports to their implementations.
// Fields are ordered to minimize memory padding.
type Container struct {
	Config  *config.Config
	Store   *state.Store
	Sync    *klussync.Engine
	Notify  *notify.Center
	Cache   domain.BundleCache
	Remote  domain.ContentStore
	Clock   domain.Clock
	Logger  domain.Logger
	Feed    *ical.Renderer
	Dir     string
	Session *config.Session

	logClose func() error
}

// Options tune container construction.
type Options struct {
	// Dir overrides the data directory. Empty means the default
	// XDG location.
	Dir string
	// LogWriter receives log output instead of the configured log file.
	// Used by tests and by commands that want logs on stderr.
	LogWriter io.Writer
}

// New builds a fully wired container.
func New(opts Options) (*Container, error) {
	dir := opts.Dir
	if dir == "" {
		dir = config.DefaultDir()
	}
	if dir == "" {
		return nil, fmt.Errorf("cannot determine data directory")
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	logger, logClose, err := buildLogger(cfg, opts.LogWriter)
	if err != nil {
		return nil, err
	}

	remote, err := buildRemote(cfg)
	if err != nil {
		return nil, err
	}

	cache := cachefile.New(filepath.Join(dir, "cache"))
	store := state.New(cache, logger)
	feed := ical.New()
	engine := klussync.New(store, remote, feed, logger)
	clock := domain.RealClock{}
	center := notify.New(store, cache, clock, logger)

	session, err := config.LoadSession(dir)
	if err != nil {
		logger.Warn("session load failed", "error", err)
	}

	return &Container{
		Config:   cfg,
		Store:    store,
		Sync:     engine,
		Notify:   center,
		Cache:    cache,
		Remote:   remote,
		Clock:    clock,
		Logger:   logger,
		Feed:     feed,
		Dir:      dir,
		Session:  session,
		logClose: logClose,
	}, nil
}

// NewWithDeps creates a Container with explicit dependencies for testing.
func NewWithDeps(cfg *config.Config, cache domain.BundleCache, remote domain.ContentStore, clock domain.Clock, logger domain.Logger, dir string) *Container {
	store := state.New(cache, logger)
	feed := ical.New()
	return &Container{
		Config: cfg,
		Store:  store,
		Sync:   klussync.New(store, remote, feed, logger),
		Notify: notify.New(store, cache, clock, logger),
		Cache:  cache,
		Remote: remote,
		Clock:  clock,
		Logger: logger,
		Feed:   feed,
		Dir:    dir,
	}
}

// Daemon builds the scheduler daemon using the container's wiring.
func (c *Container) Daemon(prompter domain.Prompter) *daemon.Daemon {
	return c.DaemonWithInterval(prompter, c.Config.Interval())
}

// DaemonWithInterval builds the daemon with an explicit tick interval.
// The snooze duration always comes from the config.
func (c *Container) DaemonWithInterval(prompter domain.Prompter, interval time.Duration) *daemon.Daemon {
	return daemon.New(c.Store, c.Notify, prompter, c.Clock, c.Logger, interval, c.Config.Snooze())
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.logClose != nil {
		return c.logClose()
	}
	return nil
}

func buildLogger(cfg *config.Config, w io.Writer) (domain.Logger, func() error, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if w != nil {
		return logging.New(w, level), nil, nil
	}
	if cfg.Log.File != "" {
		l, err := logging.Open(cfg.Log.File, level)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}
	return domain.NopLogger{}, nil, nil
}

// buildRemote selects the content store backend. Backend "none" yields a
// nil store; the sync engine reports ErrNotConfigured for remote
// operations in that case.
func buildRemote(cfg *config.Config) (domain.ContentStore, error) {
	switch cfg.Remote.Backend {
	case "", config.BackendNone:
		return nil, nil
	case config.BackendGitHub:
		return githubstore.New(githubstore.Options{
			Owner: cfg.Remote.Owner,
			Repo:  cfg.Remote.Repo,
			Token: cfg.Remote.Token,
		}), nil
	case config.BackendGit:
		return gitstore.New(cfg.Remote.Path, "")
	default:
		return nil, fmt.Errorf("unknown remote backend: %s", cfg.Remote.Backend)
	}
}
