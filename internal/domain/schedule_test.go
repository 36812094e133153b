package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSchedule_LegacyDate(t *testing.T) {
	tests := []struct {
		name      string
		task      *Task
		wantStart string
		wantEnd   string
	}{
		{
			name:      "timed legacy date gets working hours",
			task:      &Task{Status: StatusScheduled, Scheduled: Schedule{Date: "2026-03-15"}},
			wantStart: "2026-03-15T09:00",
			wantEnd:   "2026-03-15T17:00",
		},
		{
			name:      "all-day legacy date stays a date",
			task:      &Task{Status: StatusScheduled, Scheduled: Schedule{Date: "2026-03-15", AllDay: true}},
			wantStart: "2026-03-15",
			wantEnd:   "2026-03-15",
		},
		{
			name:      "existing end is kept",
			task:      &Task{Status: StatusScheduled, Scheduled: Schedule{Date: "2026-03-15", End: "2026-03-15T12:00"}},
			wantStart: "2026-03-15T09:00",
			wantEnd:   "2026-03-15T12:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NormalizeSchedule(tt.task)
			assert.Equal(t, tt.wantStart, tt.task.Scheduled.Start)
			assert.Equal(t, tt.wantEnd, tt.task.Scheduled.End)
			assert.Equal(t, "2026-03-15", tt.task.Scheduled.Date)

			start, okS := tt.task.Scheduled.StartTime()
			_, okE := tt.task.Scheduled.EndTime()
			require.True(t, okS)
			require.True(t, okE)
			ds, de, ok := tt.task.Scheduled.DisplayInterval()
			require.True(t, ok)
			assert.True(t, de.After(ds))
			assert.Equal(t, start, ds)
		})
	}
}

func TestNormalizeSchedule_MissingEnd(t *testing.T) {
	tests := []struct {
		name    string
		task    *Task
		wantEnd string
	}{
		{
			name: "timed end from realistic estimate",
			task: &Task{
				Status:        StatusScheduled,
				EstimateHours: EstimateHours{Realistic: 3},
				Scheduled:     Schedule{Start: "2026-03-15T10:00"},
			},
			wantEnd: "2026-03-15T13:00",
		},
		{
			name:    "timed end defaults to one hour",
			task:    &Task{Status: StatusScheduled, Scheduled: Schedule{Start: "2026-03-15T10:30"}},
			wantEnd: "2026-03-15T11:30",
		},
		{
			name: "fractional estimate rolls minutes over",
			task: &Task{
				Status:        StatusScheduled,
				EstimateHours: EstimateHours{Realistic: 1.5},
				Scheduled:     Schedule{Start: "2026-03-15T23:00"},
			},
			wantEnd: "2026-03-16T00:30",
		},
		{
			name:    "all-day end mirrors the start date",
			task:    &Task{Status: StatusScheduled, Scheduled: Schedule{Start: "2026-03-15", AllDay: true}},
			wantEnd: "2026-03-15",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NormalizeSchedule(tt.task)
			assert.Equal(t, tt.wantEnd, tt.task.Scheduled.End)
		})
	}
}

func TestNormalizeSchedule_EndBeforeStart(t *testing.T) {
	task := &Task{
		Status:        StatusScheduled,
		EstimateHours: EstimateHours{Realistic: 2},
		Scheduled:     Schedule{Start: "2026-03-15T14:00", End: "2026-03-15T09:00"},
	}
	NormalizeSchedule(task)
	assert.Equal(t, "2026-03-15T16:00", task.Scheduled.End)

	allday := &Task{
		Status:    StatusScheduled,
		Scheduled: Schedule{Start: "2026-03-15", End: "2026-03-10", AllDay: true},
	}
	NormalizeSchedule(allday)
	assert.Equal(t, "2026-03-15", allday.Scheduled.End)

	// An all-day end equal to the start is a valid single-day span.
	single := &Task{
		Status:    StatusScheduled,
		Scheduled: Schedule{Start: "2026-03-15", End: "2026-03-15", AllDay: true},
	}
	NormalizeSchedule(single)
	assert.Equal(t, "2026-03-15", single.Scheduled.End)
}

func TestNormalizeSchedule_Idempotent(t *testing.T) {
	tasks := []*Task{
		{Status: StatusBacklog, Scheduled: Schedule{Date: "2026-03-15", Timeblock: "ochtend"}},
		{Status: StatusScheduled, Scheduled: Schedule{Start: "2026-03-15", AllDay: true}},
		{Status: StatusInProgress, EstimateHours: EstimateHours{Realistic: 4}, Scheduled: Schedule{Start: "2026-03-15T08:00"}},
		{Status: StatusDone},
		{Status: StatusBacklog, Scheduled: Schedule{Start: "not-a-date"}},
	}
	for _, task := range tasks {
		NormalizeSchedule(task)
		once := *task
		NormalizeSchedule(task)
		assert.Equal(t, once, *task)
	}
}

func TestNormalizeSchedule_Defaults(t *testing.T) {
	task := &Task{Status: StatusBacklog, Subtasks: []Subtask{{ID: "TASK-001.1", Status: "weird"}}}
	NormalizeSchedule(task)

	assert.NotNil(t, task.Assignees)
	require.NotNil(t, task.InCalendar)
	assert.True(t, *task.InCalendar)
	assert.Equal(t, SubtaskTodo, task.Subtasks[0].Status)
	require.NotNil(t, task.Subtasks[0].InCalendar)
	assert.True(t, *task.Subtasks[0].InCalendar)
	assert.Equal(t, StatusBacklog, task.Status)
}

func TestNormalizeSchedule_PromotesBacklog(t *testing.T) {
	task := &Task{Status: StatusBacklog, Scheduled: Schedule{Start: "2026-06-01T10:00"}}
	NormalizeSchedule(task)
	assert.Equal(t, StatusScheduled, task.Status)

	// Only Backlog promotes; manual statuses stay put.
	blocked := &Task{Status: StatusWaitingMaterial, Scheduled: Schedule{Start: "2026-06-01T10:00"}}
	NormalizeSchedule(blocked)
	assert.Equal(t, StatusWaitingMaterial, blocked.Status)
}

func TestParseLocalDate(t *testing.T) {
	got, err := ParseLocalDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), got)

	_, err = ParseLocalDate("15-03-2026")
	assert.Error(t, err)
}

func TestParseLocalDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-15T14:30", time.Date(2026, 3, 15, 14, 30, 0, 0, time.Local)},
		{"2026-03-15T14:30:45", time.Date(2026, 3, 15, 14, 30, 45, 0, time.Local)},
		{"2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := ParseLocalDateTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSchedule_DisplayInterval(t *testing.T) {
	allday := Schedule{Start: "2026-03-15", End: "2026-03-15", AllDay: true}
	ds, de, ok := allday.DisplayInterval()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), ds)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local), de)

	timed := Schedule{Start: "2026-03-15T10:00"}
	ds, de, ok = timed.DisplayInterval()
	require.True(t, ok)
	assert.Equal(t, time.Hour, de.Sub(ds))

	_, _, ok = Schedule{}.DisplayInterval()
	assert.False(t, ok)
}

func TestSchedule_Overlaps(t *testing.T) {
	rangeStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	rangeEnd := time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		s    Schedule
		want bool
	}{
		{"inside", Schedule{Start: "2026-03-10T10:00", End: "2026-03-10T12:00"}, true},
		{"spanning", Schedule{Start: "2026-03-01", End: "2026-03-31", AllDay: true}, true},
		{"ends exactly at range start", Schedule{Start: "2026-03-08T20:00", End: "2026-03-09T00:00"}, false},
		{"starts exactly at range end", Schedule{Start: "2026-03-16T00:00", End: "2026-03-16T02:00"}, false},
		{"all-day on last visible day", Schedule{Start: "2026-03-15", End: "2026-03-15", AllDay: true}, true},
		{"unscheduled", Schedule{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Overlaps(rangeStart, rangeEnd))
		})
	}
}
