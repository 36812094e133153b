// Package state owns the in-memory application state: every top-level
// collection, the dirty flag, and the clean snapshot used for discard.
// All mutation goes through the Store so the cache stays current and the
// schedule invariants hold after every edit.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mvdberg/klusplan/internal/domain"
)

// Store is the root state controller. It is safe for concurrent use by
// the CLI path and the scheduler daemon.
// Fields are ordered to minimize memory padding.
type Store struct {
	cache    domain.BundleCache
	logger   domain.Logger
	snapshot []byte

	tasks      []*domain.Task
	people     []*domain.Person
	groups     []domain.Group
	statuses   []string
	locations  []string
	categories []string

	mu    sync.Mutex
	dirty bool
}

// New loads the store from the local cache. A missing or corrupt cache
// falls back to an empty task list with the default taxonomy rather than
// failing.
func New(cache domain.BundleCache, logger domain.Logger) *Store {
	s := &Store{cache: cache, logger: logger}

	b, err := cache.LoadBundle()
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("local cache unreadable, starting fresh", "error", err)
		}
		b = &domain.Bundle{}
	}
	s.apply(b)

	if dirty, err := cache.LoadDirty(); err == nil {
		s.dirty = dirty
	}
	s.takeSnapshot()
	return s
}

// apply installs a bundle, filling absent collections with defaults and
// renormalizing every task.
func (s *Store) apply(b *domain.Bundle) {
	s.tasks = b.Tasks
	if s.tasks == nil {
		s.tasks = []*domain.Task{}
	}
	s.people = make([]*domain.Person, len(b.People))
	for i := range b.People {
		p := b.People[i]
		s.people[i] = &p
	}
	s.groups = b.Groups
	if s.groups == nil {
		s.groups = domain.DefaultGroups()
	}
	s.statuses = b.Statuses
	if s.statuses == nil {
		s.statuses = domain.DefaultStatusList()
	}
	s.locations = b.Locations
	if s.locations == nil {
		s.locations = domain.DefaultLocations()
	}
	s.categories = b.Categories
	if s.categories == nil {
		s.categories = domain.DefaultCategories()
	}
	for _, t := range s.tasks {
		domain.NormalizeSchedule(t)
	}
}

// Bundle serializes the current state into the cache/export shape.
func (s *Store) Bundle() *domain.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundleLocked()
}

func (s *Store) bundleLocked() *domain.Bundle {
	people := make([]domain.Person, len(s.people))
	for i, p := range s.people {
		people[i] = *p
	}
	return &domain.Bundle{
		Tasks:      s.tasks,
		People:     people,
		Groups:     s.groups,
		Statuses:   s.statuses,
		Locations:  s.locations,
		Categories: s.categories,
	}
}

// Tasks returns the live task slice. Callers must treat it as read-only
// and route edits through the store.
func (s *Store) Tasks() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks
}

// People returns the person list.
func (s *Store) People() []*domain.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.people
}

// Groups returns the group taxonomy.
func (s *Store) Groups() []domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups
}

// Statuses returns the status list in board order.
func (s *Store) Statuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses
}

// Locations returns the location taxonomy.
func (s *Store) Locations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locations
}

// Categories returns the category taxonomy.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories
}

// Dirty reports whether there are uncommitted edits.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// TaskByID returns the task with the given id.
func (s *Store) TaskByID(id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskByIDLocked(id)
}

func (s *Store) taskByIDLocked(id string) (*domain.Task, error) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
}

// markDirtyLocked flags the session dirty and refreshes the cache so an
// unplanned exit never loses edits. Cache write failures are logged, not
// fatal.
func (s *Store) markDirtyLocked() {
	s.dirty = true
	if err := s.cache.SaveBundle(s.bundleLocked()); err != nil {
		s.logger.Warn("cache bundle write failed", "error", err)
	}
	if err := s.cache.SaveDirty(true); err != nil {
		s.logger.Warn("cache dirty flag write failed", "error", err)
	}
}

// MarkClean clears the dirty flag and recaptures the clean snapshot.
// Called after a successful commit.
func (s *Store) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	if err := s.cache.SaveBundle(s.bundleLocked()); err != nil {
		s.logger.Warn("cache bundle write failed", "error", err)
	}
	if err := s.cache.SaveDirty(false); err != nil {
		s.logger.Warn("cache dirty flag write failed", "error", err)
	}
	s.takeSnapshot()
}

func (s *Store) takeSnapshot() {
	snap, err := json.Marshal(s.bundleLocked())
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		return
	}
	s.snapshot = snap
}

// Discard restores every collection from the last clean snapshot and
// renormalizes schedules.
func (s *Store) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return domain.ErrNoSnapshot
	}
	var b domain.Bundle
	if err := json.Unmarshal(s.snapshot, &b); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	s.apply(&b)
	s.dirty = false
	if err := s.cache.SaveBundle(s.bundleLocked()); err != nil {
		s.logger.Warn("cache bundle write failed", "error", err)
	}
	if err := s.cache.SaveDirty(false); err != nil {
		s.logger.Warn("cache dirty flag write failed", "error", err)
	}
	return nil
}

// Replace installs a bundle wholesale, used by the sync engine after a
// remote read and by import. The new state is considered clean when
// fromRemote is set.
func (s *Store) Replace(b *domain.Bundle, fromRemote bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(b)
	if fromRemote {
		s.dirty = false
		if err := s.cache.SaveDirty(false); err != nil {
			s.logger.Warn("cache dirty flag write failed", "error", err)
		}
		if err := s.cache.SaveBundle(s.bundleLocked()); err != nil {
			s.logger.Warn("cache bundle write failed", "error", err)
		}
		s.takeSnapshot()
		return
	}
	s.markDirtyLocked()
}

// NewTask appends a fresh task in the first group and returns it.
func (s *Store) NewTask() *domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	group := ""
	if len(s.groups) > 0 {
		group = s.groups[0].Name
	}
	t := domain.NewTask(domain.NextTaskID(s.tasks), group)
	s.tasks = append(s.tasks, t)
	s.markDirtyLocked()
	s.logger.Info("task created", "task", t.ID)
	return t
}

// SaveTask normalizes an edited task and auto-registers any new group,
// location, or category the editor introduced.
func (s *Store) SaveTask(t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.taskByIDLocked(t.ID); err != nil {
		return err
	}
	if t.Group != "" && !s.hasGroupLocked(t.Group) {
		color := domain.GroupColors[len(s.groups)%len(domain.GroupColors)]
		s.groups = append(s.groups, domain.Group{ID: domain.Slugify(t.Group), Name: t.Group, Color: color})
	}
	if t.Location != "" && !slices.Contains(s.locations, t.Location) {
		s.locations = append(s.locations, t.Location)
	}
	if t.Category != "" && !slices.Contains(s.categories, t.Category) {
		s.categories = append(s.categories, t.Category)
	}
	domain.NormalizeSchedule(t)
	s.markDirtyLocked()
	return nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.markDirtyLocked()
			s.logger.Info("task deleted", "task", id)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
}

// AddSubtask appends a subtask to a task and returns its id.
func (s *Store) AddSubtask(taskID, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.taskByIDLocked(taskID)
	if err != nil {
		return "", err
	}
	id := t.NextSubtaskID()
	inCal := true
	t.Subtasks = append(t.Subtasks, domain.Subtask{
		ID:         id,
		Title:      strings.TrimSpace(title),
		Status:     domain.SubtaskTodo,
		InCalendar: &inCal,
	})
	s.markDirtyLocked()
	return id, nil
}

// SetMaterialStatus updates one material's status on a task.
func (s *Store) SetMaterialStatus(taskID string, index int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.taskByIDLocked(taskID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.Materials) {
		return fmt.Errorf("material %d of %s: %w", index, taskID, domain.ErrNotFound)
	}
	t.Materials[index].Status = status
	s.markDirtyLocked()
	return nil
}

// AddPerson registers a person under a slug id derived from the name.
func (s *Store) AddPerson(name string) (*domain.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := make(map[string]bool, len(s.people))
	for _, p := range s.people {
		taken[p.ID] = true
	}
	p := &domain.Person{ID: domain.UniqueSlug(domain.Slugify(name), taken), Name: name}
	s.people = append(s.people, p)
	s.markDirtyLocked()
	return p, nil
}

// RenamePerson updates a person's display name. The id stays stable so
// task assignments survive.
func (s *Store) RenamePerson(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.people {
		if p.ID == id {
			p.Name = name
			s.markDirtyLocked()
			return nil
		}
	}
	return fmt.Errorf("person %s: %w", id, domain.ErrPersonNotFound)
}

// DeletePerson removes a person and clears them from every assignee slot.
func (s *Store) DeletePerson(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i, p := range s.people {
		if p.ID == id {
			s.people = append(s.people[:i], s.people[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("person %s: %w", id, domain.ErrPersonNotFound)
	}
	for _, t := range s.tasks {
		kept := t.Assignees[:0]
		for _, a := range t.Assignees {
			if a != id {
				kept = append(kept, a)
			}
		}
		t.Assignees = kept
	}
	s.markDirtyLocked()
	return nil
}

// AddGroup registers a group with the next palette color.
func (s *Store) AddGroup(name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasGroupLocked(name) {
		return nil, fmt.Errorf("group %q: %w", name, domain.ErrDuplicateEntry)
	}
	g := domain.Group{
		ID:    domain.Slugify(name),
		Name:  name,
		Color: domain.GroupColors[len(s.groups)%len(domain.GroupColors)],
	}
	s.groups = append(s.groups, g)
	s.markDirtyLocked()
	return &s.groups[len(s.groups)-1], nil
}

func (s *Store) hasGroupLocked(name string) bool {
	for _, g := range s.groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

// RenameGroup renames a group and fans the new name out to every task
// referencing the old one. Tasks reference groups by name, so the rewrite
// has to happen here.
func (s *Store) RenameGroup(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].Name == oldName {
			for _, t := range s.tasks {
				if t.Group == oldName {
					t.Group = newName
				}
			}
			s.groups[i].Name = newName
			if slug := domain.Slugify(newName); slug != "" {
				s.groups[i].ID = slug
			}
			s.markDirtyLocked()
			return nil
		}
	}
	return fmt.Errorf("group %q: %w", oldName, domain.ErrGroupNotFound)
}

// SetGroupColor updates a group's display color.
func (s *Store) SetGroupColor(name, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].Name == name {
			s.groups[i].Color = color
			s.markDirtyLocked()
			return nil
		}
	}
	return fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
}

// DeleteGroup removes a group from the taxonomy. Tasks keep their group
// name; it just disappears from the filters.
func (s *Store) DeleteGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].Name == name {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			s.markDirtyLocked()
			return nil
		}
	}
	return fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
}

// TaxonomyKind selects one of the simple string taxonomies.
type TaxonomyKind string

const (
	TaxonomyStatuses   TaxonomyKind = "statuses"
	TaxonomyLocations  TaxonomyKind = "locations"
	TaxonomyCategories TaxonomyKind = "categories"
)

func (s *Store) taxonomyLocked(kind TaxonomyKind) (*[]string, error) {
	switch kind {
	case TaxonomyStatuses:
		return &s.statuses, nil
	case TaxonomyLocations:
		return &s.locations, nil
	case TaxonomyCategories:
		return &s.categories, nil
	}
	return nil, fmt.Errorf("taxonomy %q: %w", kind, domain.ErrUnknownTaxonomy)
}

// AddTaxonomyEntry appends a value to a simple taxonomy list.
func (s *Store) AddTaxonomyEntry(kind TaxonomyKind, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.taxonomyLocked(kind)
	if err != nil {
		return err
	}
	if slices.Contains(*list, value) {
		return fmt.Errorf("%s %q: %w", kind, value, domain.ErrDuplicateEntry)
	}
	*list = append(*list, value)
	s.markDirtyLocked()
	return nil
}

// RenameTaxonomyEntry renames a value and rewrites the matching task field
// so existing tasks follow the new spelling.
func (s *Store) RenameTaxonomyEntry(kind TaxonomyKind, oldValue, newValue string) error {
	newValue = strings.TrimSpace(newValue)
	if newValue == "" {
		return domain.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.taxonomyLocked(kind)
	if err != nil {
		return err
	}
	for i, v := range *list {
		if v != oldValue {
			continue
		}
		for _, t := range s.tasks {
			switch kind {
			case TaxonomyStatuses:
				if string(t.Status) == oldValue {
					t.Status = domain.Status(newValue)
				}
			case TaxonomyLocations:
				if t.Location == oldValue {
					t.Location = newValue
				}
			case TaxonomyCategories:
				if t.Category == oldValue {
					t.Category = newValue
				}
			}
		}
		(*list)[i] = newValue
		s.markDirtyLocked()
		return nil
	}
	return fmt.Errorf("%s %q: %w", kind, oldValue, domain.ErrNotFound)
}

// DeleteTaxonomyEntry removes a value from a simple taxonomy list. Tasks
// keep the value on their own field.
func (s *Store) DeleteTaxonomyEntry(kind TaxonomyKind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.taxonomyLocked(kind)
	if err != nil {
		return err
	}
	for i, v := range *list {
		if v == value {
			*list = append((*list)[:i], (*list)[i+1:]...)
			s.markDirtyLocked()
			return nil
		}
	}
	return fmt.Errorf("%s %q: %w", kind, value, domain.ErrNotFound)
}

// ResetLists restores the taxonomy lists to their defaults, keeping tasks
// and people.
func (s *Store) ResetLists() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = domain.DefaultGroups()
	s.statuses = domain.DefaultStatusList()
	s.locations = domain.DefaultLocations()
	s.categories = domain.DefaultCategories()
	s.markDirtyLocked()
}

// ClearAll wipes tasks and people and restores the default taxonomy.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = []*domain.Task{}
	s.people = []*domain.Person{}
	s.groups = domain.DefaultGroups()
	s.statuses = domain.DefaultStatusList()
	s.locations = domain.DefaultLocations()
	s.categories = domain.DefaultCategories()
	s.markDirtyLocked()
	s.logger.Info("all data cleared")
}

// Export returns the full state with an export timestamp and the derived
// project list, for the manual backup path.
func (s *Store) Export(now time.Time) *domain.Bundle {
	b := s.Bundle()
	b.Projects = domain.Projects(b.Tasks)
	b.ExportedAt = now.UTC().Format(time.RFC3339)
	return b
}

// Import replaces the state from an export bundle. Absent collections fall
// back to the current defaults; tasks are required.
func (s *Store) Import(b *domain.Bundle) error {
	if b == nil || b.Tasks == nil {
		return domain.ErrInvalidBundle
	}
	b.ExportedAt = ""
	s.Replace(b, false)
	return nil
}
