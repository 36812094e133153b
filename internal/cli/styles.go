package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mvdberg/klusplan/internal/domain"
)

// Colors defines the terminal color palette.
var Colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color

	Backlog    lipgloss.Color
	Scheduled  lipgloss.Color
	InProgress lipgloss.Color
	Blocked    lipgloss.Color
	Done       lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"),
	Muted:   lipgloss.Color("#636E72"),
	Error:   lipgloss.Color("#D63031"),
	Success: lipgloss.Color("#00B894"),
	Warning: lipgloss.Color("#FDCB6E"),

	Backlog:    lipgloss.Color("#636E72"),
	Scheduled:  lipgloss.Color("#74B9FF"),
	InProgress: lipgloss.Color("#FDCB6E"),
	Blocked:    lipgloss.Color("#E17055"),
	Done:       lipgloss.Color("#00B894"),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(Colors.Primary)
	mutedStyle  = lipgloss.NewStyle().Foreground(Colors.Muted)
	errorStyle  = lipgloss.NewStyle().Foreground(Colors.Error)
	okStyle     = lipgloss.NewStyle().Foreground(Colors.Success)
	warnStyle   = lipgloss.NewStyle().Foreground(Colors.Warning)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// statusStyle returns the style for a task status.
func statusStyle(status domain.Status) lipgloss.Style {
	var c lipgloss.Color
	switch {
	case status == domain.StatusBacklog:
		c = Colors.Backlog
	case status == domain.StatusScheduled:
		c = Colors.Scheduled
	case status == domain.StatusInProgress:
		c = Colors.InProgress
	case status.IsBlocked():
		c = Colors.Blocked
	case status == domain.StatusDone:
		c = Colors.Done
	default:
		c = Colors.Muted
	}
	return lipgloss.NewStyle().Foreground(c)
}

// groupStyle colors a group label with the group's own hex color.
func groupStyle(groups []domain.Group, name string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(domain.GroupColor(groups, name)))
}
