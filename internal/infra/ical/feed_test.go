package ical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdberg/klusplan/internal/domain"
)

func renderLines(t *testing.T, tasks []*domain.Task, people []*domain.Person) []string {
	t.Helper()

	out := string(New().Render(tasks, people))
	require.True(t, strings.HasSuffix(out, "\r\n"))
	return strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
}

func TestRender_TimedEvent(t *testing.T) {
	tasks := []*domain.Task{
		{
			ID:     "TASK-001",
			Title:  "Badkamer kitten",
			Status: domain.StatusScheduled,
			Scheduled: domain.Schedule{
				Start: "2026-03-10T09:00",
				End:   "2026-03-10T11:30",
			},
			Location:  "Badkamer",
			Assignees: []string{"mark"},
			Group:     "Binnen",
		},
	}
	people := []*domain.Person{{ID: "mark", Name: "Mark"}}

	lines := renderLines(t, tasks, people)
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Contains(t, lines, "PRODID:"+prodID)
	assert.Contains(t, lines, "UID:TASK-001@klusplan")
	assert.Contains(t, lines, "DTSTART:20260310T090000")
	assert.Contains(t, lines, "DTEND:20260310T113000")
	assert.Contains(t, lines, "SUMMARY:Badkamer kitten")
	assert.Contains(t, lines, "LOCATION:Badkamer")
	assert.Contains(t, lines, "DESCRIPTION:Groep: Binnen\\nUitvoerder: Mark")
	assert.Contains(t, lines, "STATUS:CONFIRMED")
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
}

func TestRender_AllDayUsesExclusiveEnd(t *testing.T) {
	tasks := []*domain.Task{
		{
			ID:     "TASK-002",
			Title:  "Tuin opruimen",
			Status: domain.StatusDone,
			Scheduled: domain.Schedule{
				Start:  "2026-03-14",
				End:    "2026-03-15",
				AllDay: true,
			},
		},
	}

	lines := renderLines(t, tasks, nil)
	assert.Contains(t, lines, "DTSTART;VALUE=DATE:20260314")
	// Inclusive stored end 15th becomes exclusive 16th.
	assert.Contains(t, lines, "DTEND;VALUE=DATE:20260316")
	assert.Contains(t, lines, "STATUS:COMPLETED")
}

func TestRender_SkipsExcludedAndUnscheduled(t *testing.T) {
	excluded := false
	tasks := []*domain.Task{
		{ID: "TASK-003", Title: "Geen planning", Status: domain.StatusBacklog},
		{
			ID: "TASK-004", Title: "Niet in feed", Status: domain.StatusScheduled,
			InCalendar: &excluded,
			Scheduled:  domain.Schedule{Start: "2026-03-10T09:00", End: "2026-03-10T10:00"},
		},
	}

	lines := renderLines(t, tasks, nil)
	for _, line := range lines {
		assert.NotContains(t, line, "VEVENT")
	}
}

func TestRender_SubtaskEvent(t *testing.T) {
	tasks := []*domain.Task{
		{
			ID:     "TASK-005",
			Title:  "Keuken",
			Status: domain.StatusInProgress,
			Scheduled: domain.Schedule{
				Start: "2026-03-10T09:00",
				End:   "2026-03-12T17:00",
			},
			Subtasks: []domain.Subtask{
				{
					ID: "TASK-005.1", Title: "Bovenkastjes", Status: domain.SubtaskDone,
					Scheduled: domain.Schedule{Start: "2026-03-10T09:00", End: "2026-03-10T12:00"},
				},
				{ID: "TASK-005.2", Title: "Zonder planning", Status: domain.SubtaskTodo},
			},
		},
	}

	lines := renderLines(t, tasks, nil)
	assert.Contains(t, lines, "UID:TASK-005@klusplan")
	assert.Contains(t, lines, "UID:TASK-005.1@klusplan")
	assert.Contains(t, lines, "SUMMARY:Keuken · Bovenkastjes")
	assert.NotContains(t, strings.Join(lines, "\n"), "TASK-005.2")

	// Two events, each with its own status.
	joined := strings.Join(lines, "\n")
	assert.Equal(t, 2, strings.Count(joined, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(joined, "STATUS:COMPLETED"))
}

func TestRender_EscapesAndFolds(t *testing.T) {
	tasks := []*domain.Task{
		{
			ID:     "TASK-006",
			Title:  "Hout; schuren, lakken",
			Status: domain.StatusScheduled,
			Scheduled: domain.Schedule{
				Start: "2026-03-10T09:00",
				End:   "2026-03-10T10:00",
			},
			Notes: strings.Repeat("heel lang verhaal ", 10) + "einde",
		},
	}

	out := string(New().Render(tasks, nil))
	assert.Contains(t, out, `SUMMARY:Hout\; schuren\, lakken`)

	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), maxLineOctets, "line too long: %q", line)
	}

	// Unfolding restores the full description.
	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	assert.Contains(t, unfolded, "einde")
}

func TestRender_MultilineNotesEscaped(t *testing.T) {
	tasks := []*domain.Task{
		{
			ID:     "TASK-007",
			Title:  "Schilderen",
			Status: domain.StatusScheduled,
			Scheduled: domain.Schedule{
				Start: "2026-03-10T09:00",
				End:   "2026-03-10T10:00",
			},
			Notes: "eerst primer\ndan aflak",
		},
	}

	out := string(New().Render(tasks, nil))
	assert.Contains(t, out, `eerst primer\ndan aflak`)
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "primer\ndan")
}
