// Package cli provides the command-line interface for klusplan.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mvdberg/klusplan/internal/app"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
	groupView  = "view"
	groupSync  = "sync"
)

// NewRootCommand creates the root command for klusplan.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "klusplan",
		Short: "Huishoud- en klusplanner",
		Long: `klusplan beheert klussen, planning en mensen voor huis en verbouwing.

Taken hebben een status, een planning (losse datum of start/eind) en
uitvoerders. Wijzigingen landen direct in de lokale cache; 'klusplan push'
zet ze door naar de geconfigureerde remote opslag.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
		&cobra.Group{ID: groupTask, Title: "Klussen:"},
		&cobra.Group{ID: groupView, Title: "Weergave:"},
		&cobra.Group{ID: groupSync, Title: "Synchronisatie:"},
	)

	for _, cmd := range []*cobra.Command{
		newInitCommand(c),
		newLoginCommand(c),
		newLogoutCommand(c),
		newWhoamiCommand(c),
	} {
		cmd.GroupID = groupSetup
		root.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		newAddCommand(c),
		newListCommand(c),
		newShowCommand(c),
		newEditCommand(c),
		newDoneCommand(c),
		newRmCommand(c),
		newSubCommand(c),
		newMaterialCommand(c),
		newPeopleCommand(c),
		newGroupsCommand(c),
		newListsCommand(c),
	} {
		cmd.GroupID = groupTask
		root.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		newGanttCommand(c),
		newCalendarCommand(c),
		newAgendaCommand(c),
		newNotifyCommand(c),
	} {
		cmd.GroupID = groupView
		root.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		newPullCommand(c),
		newPushCommand(c),
		newDiscardCommand(c),
		newClearCommand(c),
		newStatusCommand(c),
		newDaemonCommand(c),
		newExportCommand(c),
		newImportCommand(c),
		newIcalCommand(c),
	} {
		cmd.GroupID = groupSync
		root.AddCommand(cmd)
	}

	return root
}
