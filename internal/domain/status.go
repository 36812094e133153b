package domain

// Status represents the lifecycle state of a task.
// The values are the Dutch display strings stored in the task documents;
// the constant names follow the canonical six-state model.
type Status string

const (
	StatusBacklog         Status = "Backlog"
	StatusScheduled       Status = "Ingepland"
	StatusInProgress      Status = "Bezig"
	StatusWaitingMaterial Status = "Wacht op materiaal"
	StatusWaitingHelp     Status = "Wacht op hulp/afspraak"
	StatusDone            Status = "Afgerond"
)

// AllStatuses returns the canonical statuses in lifecycle order.
// The order defines the default list sort and drives auto-promotion.
func AllStatuses() []Status {
	return []Status{
		StatusBacklog,
		StatusScheduled,
		StatusInProgress,
		StatusWaitingMaterial,
		StatusWaitingHelp,
		StatusDone,
	}
}

// DefaultStatusList returns the editable status taxonomy seeded at first run.
func DefaultStatusList() []string {
	all := AllStatuses()
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = string(s)
	}
	return out
}

// StatusRank returns the position of s in the configured status list,
// or len(statuses) when the status is unknown so it sorts last.
func StatusRank(statuses []string, s Status) int {
	for i, name := range statuses {
		if name == string(s) {
			return i
		}
	}
	return len(statuses)
}

// NotYetStarted reports whether the status is in the pre-start set that the
// scheduler daemon may auto-promote to in-progress.
func (s Status) NotYetStarted() bool {
	return s == StatusBacklog || s == StatusScheduled
}

// IsBlocked reports whether the task is waiting on a resource.
func (s Status) IsBlocked() bool {
	return s == StatusWaitingMaterial || s == StatusWaitingHelp
}

// IsTerminal reports whether the status is the terminal done state.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// SubtaskStatus is the simplified three-state machine for subtasks.
type SubtaskStatus string

const (
	SubtaskTodo  SubtaskStatus = "todo"
	SubtaskDoing SubtaskStatus = "doing"
	SubtaskDone  SubtaskStatus = "done"
)

// IsValid reports whether the subtask status is one of the three states.
func (s SubtaskStatus) IsValid() bool {
	switch s {
	case SubtaskTodo, SubtaskDoing, SubtaskDone:
		return true
	default:
		return false
	}
}
