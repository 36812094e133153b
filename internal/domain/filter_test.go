package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() []*Task {
	return []*Task{
		{ID: "TASK-001", Title: "Badkamer tegelen", Group: "Binnen", Location: "Badkamer", Category: "Tegelwerk", Project: "Verbouwing", Status: StatusInProgress, Assignees: []string{"mark", "suus"}},
		{ID: "TASK-002", Title: "Schutting plaatsen", Group: "Buiten", Location: "Tuin", Category: "Hout", Project: "Tuin", Status: StatusBacklog, Assignees: []string{"mark"}},
		{ID: "TASK-003", Title: "Keuken verven", Group: "Binnen", Location: "Keuken", Category: "Schilderwerk", Status: StatusDone},
	}
}

func TestApplyFilter(t *testing.T) {
	tasks := filterFixture()

	tests := []struct {
		name     string
		criteria Criteria
		wantIDs  []string
	}{
		{"empty criteria passes all", Criteria{}, []string{"TASK-001", "TASK-002", "TASK-003"}},
		{"search matches title case-insensitive", Criteria{Search: "BADKAMER"}, []string{"TASK-001"}},
		{"search matches location", Criteria{Search: "tuin"}, []string{"TASK-002"}},
		{"search matches category", Criteria{Search: "schilder"}, []string{"TASK-003"}},
		{"status exact", Criteria{Status: StatusDone}, []string{"TASK-003"}},
		{"group exact", Criteria{Group: "Binnen"}, []string{"TASK-001", "TASK-003"}},
		{"project exact", Criteria{Project: "Tuin"}, []string{"TASK-002"}},
		{"person matches either slot", Criteria{Person: "suus"}, []string{"TASK-001"}},
		{"criteria AND together", Criteria{Group: "Binnen", Status: StatusInProgress}, []string{"TASK-001"}},
		{"no match", Criteria{Search: "zolder"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilter(tasks, tt.criteria)
			var ids []string
			for _, task := range got {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestApplyFilter_DoesNotMutate(t *testing.T) {
	tasks := filterFixture()
	ApplyFilter(tasks, Criteria{Search: "badkamer"})
	require.Len(t, tasks, 3)
	assert.Equal(t, "TASK-001", tasks[0].ID)
}

func TestProjects(t *testing.T) {
	got := Projects(filterFixture())
	assert.Equal(t, []string{"Tuin", "Verbouwing"}, got)
}
