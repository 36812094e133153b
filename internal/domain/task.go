// Package domain contains the planner's core entities and pure logic.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EstimateHours holds the three-point effort estimate for a task.
type EstimateHours struct {
	Optimistic float64 `json:"optimistic"`
	Realistic  float64 `json:"realistic"`
	Worst      float64 `json:"worst"`
}

// Material is one required item for a task. Status is free text from an open
// vocabulary (kopen, kijken, in huis, onderweg, geregeld).
type Material struct {
	Item   string `json:"item"`
	Qty    string `json:"qty,omitempty"`
	Status string `json:"status,omitempty"`
}

// UnmarshalJSON accepts both the canonical object form and the legacy bare
// string form found in older documents.
func (m *Material) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Material{Item: strings.TrimSpace(s)}
		return nil
	}
	type alias Material
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Material(a)
	return nil
}

// Schedule is a task's time representation. Start and End are either
// "2006-01-02T15:04" datetimes or, when AllDay is set, "2006-01-02" dates
// with an inclusive End. Date and Timeblock are the legacy single-date form
// kept for older documents; Date mirrors Start's date portion after
// normalization.
type Schedule struct {
	Date      string `json:"date,omitempty"`
	Timeblock string `json:"timeblock,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
	AllDay    bool   `json:"allDay,omitempty"`
}

// HasStart reports whether a start instant is set.
func (s Schedule) HasStart() bool { return s.Start != "" }

// Subtask is an independently schedulable checklist item of a task.
type Subtask struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Status     SubtaskStatus `json:"status"`
	Scheduled  Schedule      `json:"scheduled"`
	InCalendar *bool         `json:"inCalendar,omitempty"`
}

// Task is the central plannable unit of work.
type Task struct {
	ID               string        `json:"id"`
	Project          string        `json:"project,omitempty"`
	Group            string        `json:"group,omitempty"`
	Location         string        `json:"location,omitempty"`
	Category         string        `json:"category,omitempty"`
	Title            string        `json:"title"`
	Status           Status        `json:"status"`
	Assignees        []string      `json:"assignees"`
	EstimateHours    EstimateHours `json:"estimate_hours"`
	ActualHours      float64       `json:"actual_hours,omitempty"`
	Scheduled        Schedule      `json:"scheduled"`
	InCalendar       *bool         `json:"inCalendar,omitempty"`
	Subtasks         []Subtask     `json:"subtasks"`
	Dependencies     []string      `json:"dependencies,omitempty"`
	DefinitionOfDone string        `json:"definition_of_done,omitempty"`
	Materials        []Material    `json:"materials,omitempty"`
	Tools            []string      `json:"tools,omitempty"`
	Steps            []string      `json:"steps,omitempty"` // legacy; superseded by subtask titles
	Notes            string        `json:"notes,omitempty"`
}

// InCalendarFeed reports whether the task should be emitted into the derived
// calendar feed. Absent means true.
func (t *Task) InCalendarFeed() bool {
	return t.InCalendar == nil || *t.InCalendar
}

// InCalendarFeed reports whether the subtask should be emitted into the
// derived calendar feed. Absent means true.
func (s *Subtask) InCalendarFeed() bool {
	return s.InCalendar == nil || *s.InCalendar
}

// PrimaryAssignee returns the first assignee id, or "".
func (t *Task) PrimaryAssignee() string {
	if len(t.Assignees) > 0 {
		return t.Assignees[0]
	}
	return ""
}

// HasAssignee reports whether the person occupies either assignee slot.
func (t *Task) HasAssignee(personID string) bool {
	for _, id := range t.Assignees {
		if id == personID {
			return true
		}
	}
	return false
}

// NextTaskID returns the first free sequential task id (TASK-001, TASK-002,
// ...). IDs are never reused while the task that carries one exists, but a
// freed number may be reassigned, matching the original allocator.
func NextTaskID(tasks []*Task) string {
	existing := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		existing[t.ID] = true
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("TASK-%03d", n)
		if !existing[id] {
			return id
		}
	}
}

// NextSubtaskID returns the first free id for a new subtask of t, derived
// from the parent id (TASK-004.1, TASK-004.2, ...).
func (t *Task) NextSubtaskID() string {
	existing := make(map[string]bool, len(t.Subtasks))
	for _, s := range t.Subtasks {
		existing[s.ID] = true
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s.%d", t.ID, n)
		if !existing[id] {
			return id
		}
	}
}

// FindSubtask returns the subtask with the given id, or nil.
func (t *Task) FindSubtask(id string) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// NewTask returns a fresh task with the defaults the editor starts from.
func NewTask(id, group string) *Task {
	inCal := true
	return &Task{
		ID:         id,
		Group:      group,
		Title:      "Nieuwe klus",
		Status:     StatusBacklog,
		Assignees:  []string{},
		Subtasks:   []Subtask{},
		Materials:  []Material{},
		InCalendar: &inCal,
	}
}
