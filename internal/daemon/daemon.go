// Package daemon runs the periodic scheduler: it promotes task state when
// start times pass, raises end-of-task prompts, and keeps the notification
// list current.
package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/mvdberg/klusplan/internal/domain"
	"github.com/mvdberg/klusplan/internal/notify"
	"github.com/mvdberg/klusplan/internal/state"
)

// DefaultInterval is the tick period.
const DefaultInterval = 30 * time.Second

// DefaultSnooze is how long a snoozed item stays quiet before the end
// prompt may fire again, unless the config sets another duration.
const DefaultSnooze = 15 * time.Minute

// Daemon is the background scheduler.
// Fields are ordered to minimize memory padding.
type Daemon struct {
	store    *state.Store
	center   *notify.Center
	prompter domain.Prompter
	clock    domain.Clock
	logger   domain.Logger

	interval      time.Duration
	snooze        time.Duration
	snoozed       map[string]time.Time
	dismissed     map[string]bool
	notifications []domain.Notification

	mu           sync.Mutex
	promptActive bool
}

// New creates a daemon. prompter may be nil, in which case end crossings
// only surface through the notification list.
func New(store *state.Store, center *notify.Center, prompter domain.Prompter, clock domain.Clock, logger domain.Logger, interval, snooze time.Duration) *Daemon {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if snooze <= 0 {
		snooze = DefaultSnooze
	}
	return &Daemon{
		store:     store,
		center:    center,
		prompter:  prompter,
		clock:     clock,
		logger:    logger,
		interval:  interval,
		snooze:    snooze,
		snoozed:   make(map[string]time.Time),
		dismissed: make(map[string]bool),
	}
}

// Run ticks until the context is canceled. An immediate first tick brings
// the state current before the first interval elapses.
func (d *Daemon) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Notifications returns the list derived on the last tick.
func (d *Daemon) Notifications() []domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.notifications
}

// endCandidate is an item whose end has passed while in progress.
type endCandidate struct {
	task *domain.Task
	sub  *domain.Subtask
	end  time.Time
}

func (c endCandidate) id() string {
	if c.sub != nil {
		return c.sub.ID
	}
	return c.task.ID
}

func (c endCandidate) title() string {
	if c.sub != nil {
		return c.task.Title + " · " + c.sub.Title
	}
	return c.task.Title
}

// Tick runs one scheduler pass: expire snoozes, apply auto-start
// transitions, raise at most one end prompt, and re-derive notifications.
func (d *Daemon) Tick(ctx context.Context) {
	now := d.clock.Now()

	d.mu.Lock()
	for id, expiry := range d.snoozed {
		if !expiry.After(now) {
			delete(d.snoozed, id)
		}
	}
	d.mu.Unlock()

	d.autoStart(now)

	candidate, ok := d.nextEndCandidate(now)
	if ok {
		d.raisePrompt(ctx, candidate, now)
	}

	d.mu.Lock()
	d.notifications = d.center.Build()
	d.mu.Unlock()
}

// autoStart flips not-yet-started items to in-progress once their start
// time passes.
func (d *Daemon) autoStart(now time.Time) {
	for _, t := range d.store.Tasks() {
		changed := false
		if start, ok := t.Scheduled.StartTime(); ok && !now.Before(start) && t.Status.NotYetStarted() {
			t.Status = domain.StatusInProgress
			changed = true
			d.logger.Info("auto-started task", "task", t.ID, "title", t.Title)
		}
		for i := range t.Subtasks {
			sub := &t.Subtasks[i]
			start, ok := sub.Scheduled.StartTime()
			if ok && !now.Before(start) && sub.Status == domain.SubtaskTodo {
				sub.Status = domain.SubtaskDoing
				changed = true
				d.logger.Info("auto-started subtask", "task", t.ID, "subtask", sub.ID)
			}
		}
		if changed {
			if err := d.store.SaveTask(t); err != nil {
				d.logger.Error("save after auto-start failed", "task", t.ID, "error", err)
			}
		}
	}
}

// nextEndCandidate returns the first in-progress item whose end has
// passed, skipping snoozed and dismissed items. Only one prompt may be
// open; further candidates wait for a later tick.
func (d *Daemon) nextEndCandidate(now time.Time) (endCandidate, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.promptActive || d.prompter == nil {
		return endCandidate{}, false
	}
	for _, t := range d.store.Tasks() {
		if t.Status == domain.StatusInProgress {
			if _, end, ok := t.Scheduled.DisplayInterval(); ok && !now.Before(end) {
				if c := (endCandidate{task: t, end: end}); d.eligibleLocked(c) {
					d.promptActive = true
					return c, true
				}
			}
		}
		for i := range t.Subtasks {
			sub := &t.Subtasks[i]
			if sub.Status != domain.SubtaskDoing {
				continue
			}
			_, end, ok := sub.Scheduled.DisplayInterval()
			if !ok || now.Before(end) {
				continue
			}
			if c := (endCandidate{task: t, sub: sub, end: end}); d.eligibleLocked(c) {
				d.promptActive = true
				return c, true
			}
		}
	}
	return endCandidate{}, false
}

func (d *Daemon) eligibleLocked(c endCandidate) bool {
	_, snoozed := d.snoozed[c.id()]
	return !snoozed && !d.dismissed[c.id()]
}

// raisePrompt blocks on the prompter and applies the chosen action.
func (d *Daemon) raisePrompt(ctx context.Context, c endCandidate, now time.Time) {
	defer func() {
		d.mu.Lock()
		d.promptActive = false
		d.mu.Unlock()
	}()

	prompt := domain.EndPrompt{TaskID: c.task.ID, Title: c.title(), End: c.end}
	if c.sub != nil {
		prompt.SubtaskID = c.sub.ID
	}
	action, extendTo, err := d.prompter.ConfirmEnd(ctx, prompt)
	if err != nil {
		d.logger.Warn("end prompt failed", "task", c.task.ID, "error", err)
		return
	}

	switch action {
	case domain.PromptMarkDone:
		if c.sub != nil {
			c.sub.Status = domain.SubtaskDone
		} else {
			c.task.Status = domain.StatusDone
		}
		d.saveAfterPrompt(c)
	case domain.PromptExtend:
		if extendTo.IsZero() {
			extendTo = now.Add(time.Hour)
		}
		sched := &c.task.Scheduled
		if c.sub != nil {
			sched = &c.sub.Scheduled
		}
		if sched.AllDay {
			sched.End = domain.FormatDate(extendTo)
		} else {
			sched.End = domain.FormatDateTime(extendTo)
		}
		d.saveAfterPrompt(c)
	case domain.PromptSnooze:
		d.mu.Lock()
		d.snoozed[c.id()] = now.Add(d.snooze)
		d.mu.Unlock()
	case domain.PromptDismiss:
		d.mu.Lock()
		d.dismissed[c.id()] = true
		d.mu.Unlock()
	}
}

func (d *Daemon) saveAfterPrompt(c endCandidate) {
	if err := d.store.SaveTask(c.task); err != nil {
		d.logger.Error("save after prompt failed", "task", c.task.ID, "error", err)
	}
}
