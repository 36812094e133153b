package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotifications_Rules(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		task     *Task
		wantRule string
	}{
		{
			name:     "start in two days",
			task:     &Task{ID: "TASK-001", Status: StatusScheduled, Scheduled: Schedule{Start: "2026-03-12T09:00", End: "2026-03-12T17:00"}},
			wantRule: RuleStartSoon2,
		},
		{
			name:     "start tomorrow",
			task:     &Task{ID: "TASK-001", Status: StatusScheduled, Scheduled: Schedule{Start: "2026-03-11T09:00", End: "2026-03-11T17:00"}},
			wantRule: RuleStartSoon1,
		},
		{
			name:     "starts today while scheduled",
			task:     &Task{ID: "TASK-001", Status: StatusScheduled, Scheduled: Schedule{Start: "2026-03-10T14:00", End: "2026-03-10T17:00"}},
			wantRule: RuleStartsToday,
		},
		{
			name:     "past end while in progress",
			task:     &Task{ID: "TASK-001", Status: StatusInProgress, Scheduled: Schedule{Start: "2026-03-10T08:00", End: "2026-03-10T10:00"}},
			wantRule: RuleOverdue,
		},
		{
			name:     "waiting on material",
			task:     &Task{ID: "TASK-001", Status: StatusWaitingMaterial},
			wantRule: RuleBlocked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildNotifications([]*Task{tt.task}, now)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantRule, got[0].Rule)
			assert.Equal(t, "TASK-001", got[0].TaskID)
		})
	}
}

func TestBuildNotifications_SkipsDone(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tasks := []*Task{
		{ID: "TASK-001", Status: StatusDone, Scheduled: Schedule{Start: "2026-03-01T09:00", End: "2026-03-01T17:00"}},
		{ID: "TASK-002", Status: StatusDone, Scheduled: Schedule{Start: "2026-03-11T09:00", End: "2026-03-11T17:00"}},
	}
	assert.Empty(t, BuildNotifications(tasks, now))
}

func TestBuildNotifications_OverdueEscalates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	fresh := &Task{ID: "TASK-001", Status: StatusInProgress, Scheduled: Schedule{Start: "2026-03-10T08:00", End: "2026-03-10T10:00"}}
	stale := &Task{ID: "TASK-002", Status: StatusInProgress, Scheduled: Schedule{Start: "2026-03-01T08:00", End: "2026-03-02T10:00"}}

	got := BuildNotifications([]*Task{fresh, stale}, now)
	require.Len(t, got, 2)
	// Longer overdue sorts first on its higher priority.
	assert.Equal(t, "TASK-002", got[0].TaskID)
	assert.Greater(t, got[0].Priority, got[1].Priority)
	assert.Contains(t, got[0].Message, "dagen")
}

func TestBuildNotifications_Subtasks(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	task := &Task{
		ID:     "TASK-001",
		Title:  "Badkamer",
		Status: StatusInProgress,
		Subtasks: []Subtask{
			{ID: "TASK-001.1", Title: "Tegels", Status: SubtaskTodo, Scheduled: Schedule{Start: "2026-03-10", End: "2026-03-10", AllDay: true}},
			{ID: "TASK-001.2", Title: "Kitten", Status: SubtaskDone, Scheduled: Schedule{Start: "2026-03-10", End: "2026-03-10", AllDay: true}},
			{ID: "TASK-001.3", Title: "Voegen", Status: SubtaskTodo, Scheduled: Schedule{Start: "2026-03-12", End: "2026-03-12", AllDay: true}},
		},
	}

	got := BuildNotifications([]*Task{task}, now)
	require.Len(t, got, 2, "done subtasks stay silent")
	assert.Equal(t, "TASK-001.1", got[0].SubtaskID)
	assert.Equal(t, RuleStartsToday, got[0].Rule)
	assert.Equal(t, "TASK-001.3", got[1].SubtaskID)
	assert.Equal(t, RuleStartSoon2, got[1].Rule)
	assert.Contains(t, got[0].Title, "Badkamer")
}

func TestBuildNotifications_DedupAndOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tasks := []*Task{
		{ID: "TASK-001", Status: StatusScheduled, Scheduled: Schedule{Start: "2026-03-11T09:00", End: "2026-03-11T17:00"}},
		{ID: "TASK-002", Status: StatusWaitingHelp},
		{ID: "TASK-003", Status: StatusInProgress, Scheduled: Schedule{Start: "2026-03-09T08:00", End: "2026-03-09T10:00"}},
	}

	got := BuildNotifications(tasks, now)
	seen := make(map[string]bool)
	for _, n := range got {
		assert.False(t, seen[n.Key], "duplicate key %s", n.Key)
		seen[n.Key] = true
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Priority, got[i].Priority)
	}
	assert.Equal(t, RuleOverdue, got[0].Rule)
}
