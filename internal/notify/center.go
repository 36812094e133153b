// Package notify filters the derived notification list against the
// per-day dismissed set.
package notify

import (
	"sync"

	"github.com/mvdberg/klusplan/internal/domain"
	"github.com/mvdberg/klusplan/internal/state"
)

// Center owns notification dismissal. Dismissed keys are persisted with a
// date stamp and stop suppressing once the calendar date rolls over.
// Fields are ordered to minimize memory padding.
type Center struct {
	store     *state.Store
	cache     domain.BundleCache
	clock     domain.Clock
	logger    domain.Logger
	dismissed map[string]bool
	date      string
	mu        sync.Mutex
}

// New creates a Center, restoring any dismissals persisted for today.
func New(store *state.Store, cache domain.BundleCache, clock domain.Clock, logger domain.Logger) *Center {
	c := &Center{
		store:     store,
		cache:     cache,
		clock:     clock,
		logger:    logger,
		dismissed: make(map[string]bool),
		date:      domain.FormatDate(clock.Now()),
	}
	if date, keys, err := cache.LoadDismissed(); err == nil && date == c.date {
		for _, k := range keys {
			c.dismissed[k] = true
		}
	}
	return c
}

// rollLocked drops the dismissed set when the date has changed.
func (c *Center) rollLocked() {
	today := domain.FormatDate(c.clock.Now())
	if today == c.date {
		return
	}
	c.date = today
	c.dismissed = make(map[string]bool)
	c.persistLocked()
}

func (c *Center) persistLocked() {
	keys := make([]string, 0, len(c.dismissed))
	for k := range c.dismissed {
		keys = append(keys, k)
	}
	if err := c.cache.SaveDismissed(c.date, keys); err != nil {
		c.logger.Warn("dismissed keys write failed", "error", err)
	}
}

// Build derives the current notifications, minus today's dismissals.
func (c *Center) Build() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	all := domain.BuildNotifications(c.store.Tasks(), c.clock.Now())
	out := all[:0]
	for _, n := range all {
		if !c.dismissed[n.Key] {
			out = append(out, n)
		}
	}
	return out
}

// Dismiss hides one notification for the rest of the day.
func (c *Center) Dismiss(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	c.dismissed[key] = true
	c.persistLocked()
}

// DismissAll hides every currently-visible notification for the rest of
// the day.
func (c *Center) DismissAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	for _, n := range domain.BuildNotifications(c.store.Tasks(), c.clock.Now()) {
		c.dismissed[n.Key] = true
	}
	c.persistLocked()
}
