package domain

import (
	"slices"
	"strings"
)

// Criteria are the overview filters. Empty fields pass everything; set
// fields AND together.
type Criteria struct {
	Search  string // case-insensitive substring over title+location+group+category
	Status  Status // exact match
	Group   string // exact match on the task's group name
	Project string // exact match
	Person  string // person id, matched against both assignee slots
}

// ApplyFilter returns the tasks matching the criteria. It is a pure function
// of its inputs and never mutates the input slice.
func ApplyFilter(tasks []*Task, c Criteria) []*Task {
	query := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if query != "" {
			haystack := strings.ToLower(t.Title + " " + t.Location + " " + t.Group + " " + t.Category)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		if c.Status != "" && t.Status != c.Status {
			continue
		}
		if c.Group != "" && t.Group != c.Group {
			continue
		}
		if c.Project != "" && t.Project != c.Project {
			continue
		}
		if c.Person != "" && !t.HasAssignee(c.Person) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Projects returns the sorted distinct project names across tasks, used to
// populate the project filter.
func Projects(tasks []*Task) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		if t.Project != "" && !seen[t.Project] {
			seen[t.Project] = true
			out = append(out, t.Project)
		}
	}
	slices.Sort(out)
	return out
}
