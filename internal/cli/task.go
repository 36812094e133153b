package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/domain"
)

// scheduleFlags are the shared planning flags of add and edit.
type scheduleFlags struct {
	Start  string
	End    string
	AllDay bool
}

func addScheduleFlags(cmd *cobra.Command, f *scheduleFlags) {
	cmd.Flags().StringVar(&f.Start, "start", "", "Start (YYYY-MM-DD of YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&f.End, "end", "", "Eind (YYYY-MM-DD of YYYY-MM-DDTHH:MM)")
	cmd.Flags().BoolVar(&f.AllDay, "all-day", false, "Hele dag in plaats van tijdvak")
}

func (f *scheduleFlags) applyTo(cmd *cobra.Command, t *domain.Task) {
	if cmd.Flags().Changed("start") {
		t.Scheduled.Start = f.Start
	}
	if cmd.Flags().Changed("end") {
		t.Scheduled.End = f.End
	}
	if cmd.Flags().Changed("all-day") {
		t.Scheduled.AllDay = f.AllDay
	}
}

// newAddCommand creates the add command for new tasks.
func newAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		sched     scheduleFlags
		Group     string
		Location  string
		Category  string
		Project   string
		Assignees []string
		Estimate  float64
		Notes     string
	}

	cmd := &cobra.Command{
		Use:   "add <titel>",
		Short: "Nieuwe klus aanmaken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := c.Store.NewTask()
			t.Title = strings.TrimSpace(args[0])
			t.Notes = opts.Notes
			t.Assignees = opts.Assignees
			t.EstimateHours.Realistic = opts.Estimate
			if opts.Group != "" {
				t.Group = opts.Group
			}
			t.Location = opts.Location
			t.Category = opts.Category
			t.Project = opts.Project
			opts.sched.applyTo(cmd, t)
			if err := c.Store.SaveTask(t); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Aangemaakt: %s %s\n", t.ID, t.Title)
			return nil
		},
	}

	addScheduleFlags(cmd, &opts.sched)
	cmd.Flags().StringVar(&opts.Group, "group", "", "Groep")
	cmd.Flags().StringVar(&opts.Location, "location", "", "Locatie")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Categorie")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project")
	cmd.Flags().StringArrayVar(&opts.Assignees, "assignee", nil, "Uitvoerder (persoon-id, meermaals toegestaan)")
	cmd.Flags().Float64Var(&opts.Estimate, "estimate", 0, "Geschatte uren")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Notities")

	return cmd
}

// newListCommand creates the list command.
func newListCommand(c *app.Container) *cobra.Command {
	var crit domain.Criteria
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Klussen tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			crit.Status = domain.Status(status)
			tasks := domain.ApplyFilter(c.Store.Tasks(), crit)
			statuses := c.Store.Statuses()
			sort.SliceStable(tasks, func(i, j int) bool {
				ri, rj := domain.StatusRank(statuses, tasks[i].Status), domain.StatusRank(statuses, tasks[j].Status)
				if ri != rj {
					return ri < rj
				}
				return tasks[i].ID < tasks[j].ID
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("STATUS")+"\t"+headerStyle.Render("GROEP")+"\t"+headerStyle.Render("PLANNING")+"\t"+headerStyle.Render("TITEL"))
			for _, t := range tasks {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					t.ID,
					statusStyle(t.Status).Render(string(t.Status)),
					groupStyle(c.Store.Groups(), t.Group).Render(t.Group),
					formatSchedule(t.Scheduled),
					t.Title,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Geen klussen gevonden."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&crit.Search, "search", "", "Zoektekst (titel, locatie, groep, categorie)")
	cmd.Flags().StringVar(&status, "status", "", "Filter op status")
	cmd.Flags().StringVar(&crit.Group, "group", "", "Filter op groep")
	cmd.Flags().StringVar(&crit.Project, "project", "", "Filter op project")
	cmd.Flags().StringVar(&crit.Person, "person", "", "Filter op uitvoerder (persoon-id)")

	return cmd
}

// newShowCommand creates the show command.
func newShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Klusdetails tonen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.Store.TaskByID(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s  %s\n", titleStyle.Render(t.ID), t.Title)
			_, _ = fmt.Fprintf(out, "Status:    %s\n", statusStyle(t.Status).Render(string(t.Status)))
			if t.Group != "" {
				_, _ = fmt.Fprintf(out, "Groep:     %s\n", groupStyle(c.Store.Groups(), t.Group).Render(t.Group))
			}
			if t.Project != "" {
				_, _ = fmt.Fprintf(out, "Project:   %s\n", t.Project)
			}
			if t.Location != "" {
				_, _ = fmt.Fprintf(out, "Locatie:   %s\n", t.Location)
			}
			if t.Category != "" {
				_, _ = fmt.Fprintf(out, "Categorie: %s\n", t.Category)
			}
			if t.Scheduled.HasStart() {
				_, _ = fmt.Fprintf(out, "Planning:  %s\n", formatSchedule(t.Scheduled))
			}
			if len(t.Assignees) > 0 {
				names := make([]string, 0, len(t.Assignees))
				for _, id := range t.Assignees {
					names = append(names, domain.PersonName(c.Store.People(), id))
				}
				_, _ = fmt.Fprintf(out, "Uitvoerders: %s\n", strings.Join(names, ", "))
			}
			if t.EstimateHours.Realistic > 0 {
				_, _ = fmt.Fprintf(out, "Schatting: %.1f uur\n", t.EstimateHours.Realistic)
			}
			if t.DefinitionOfDone != "" {
				_, _ = fmt.Fprintf(out, "DoD:       %s\n", t.DefinitionOfDone)
			}
			if len(t.Dependencies) > 0 {
				_, _ = fmt.Fprintf(out, "Wacht op:  %s\n", strings.Join(t.Dependencies, ", "))
			}
			if len(t.Subtasks) > 0 {
				_, _ = fmt.Fprintln(out, "Deelklussen:")
				for _, sub := range t.Subtasks {
					mark := " "
					if sub.Status == domain.SubtaskDone {
						mark = "x"
					}
					line := fmt.Sprintf("  [%s] %s %s", mark, sub.ID, sub.Title)
					if sub.Scheduled.HasStart() {
						line += "  " + mutedStyle.Render(formatSchedule(sub.Scheduled))
					}
					_, _ = fmt.Fprintln(out, line)
				}
			}
			if len(t.Materials) > 0 {
				_, _ = fmt.Fprintln(out, "Materialen:")
				for i, m := range t.Materials {
					line := fmt.Sprintf("  %d. %s", i, m.Item)
					if m.Qty != "" {
						line += " (" + m.Qty + ")"
					}
					if m.Status != "" {
						line += "  " + mutedStyle.Render(m.Status)
					}
					_, _ = fmt.Fprintln(out, line)
				}
			}
			if t.Notes != "" {
				_, _ = fmt.Fprintf(out, "Notities:  %s\n", t.Notes)
			}
			return nil
		},
	}
}

// newEditCommand creates the edit command.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		sched      scheduleFlags
		Title      string
		Status     string
		Group      string
		Location   string
		Category   string
		Project    string
		Assignees  []string
		Estimate   float64
		Actual     float64
		DoD        string
		Notes      string
		InCalendar bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Klus aanpassen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.Store.TaskByID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				t.Title = opts.Title
			}
			if flags.Changed("status") {
				t.Status = domain.Status(opts.Status)
			}
			if flags.Changed("group") {
				t.Group = opts.Group
			}
			if flags.Changed("location") {
				t.Location = opts.Location
			}
			if flags.Changed("category") {
				t.Category = opts.Category
			}
			if flags.Changed("project") {
				t.Project = opts.Project
			}
			if flags.Changed("assignee") {
				t.Assignees = opts.Assignees
			}
			if flags.Changed("estimate") {
				t.EstimateHours.Realistic = opts.Estimate
			}
			if flags.Changed("actual") {
				t.ActualHours = opts.Actual
			}
			if flags.Changed("dod") {
				t.DefinitionOfDone = opts.DoD
			}
			if flags.Changed("notes") {
				t.Notes = opts.Notes
			}
			if flags.Changed("in-calendar") {
				t.InCalendar = &opts.InCalendar
			}
			opts.sched.applyTo(cmd, t)

			if err := c.Store.SaveTask(t); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Bijgewerkt: %s\n", t.ID)
			return nil
		},
	}

	addScheduleFlags(cmd, &opts.sched)
	cmd.Flags().StringVar(&opts.Title, "title", "", "Titel")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Status")
	cmd.Flags().StringVar(&opts.Group, "group", "", "Groep")
	cmd.Flags().StringVar(&opts.Location, "location", "", "Locatie")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Categorie")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project")
	cmd.Flags().StringArrayVar(&opts.Assignees, "assignee", nil, "Uitvoerder (vervangt de lijst)")
	cmd.Flags().Float64Var(&opts.Estimate, "estimate", 0, "Geschatte uren")
	cmd.Flags().Float64Var(&opts.Actual, "actual", 0, "Werkelijke uren")
	cmd.Flags().StringVar(&opts.DoD, "dod", "", "Definition of done")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Notities")
	cmd.Flags().BoolVar(&opts.InCalendar, "in-calendar", true, "Opnemen in kalenderfeed")

	return cmd
}

// newDoneCommand creates the done command.
func newDoneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Klus of deelklus afronden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if taskID, ok := splitSubtaskID(id); ok {
				t, err := c.Store.TaskByID(taskID)
				if err != nil {
					return err
				}
				sub := t.FindSubtask(id)
				if sub == nil {
					return fmt.Errorf("deelklus %s: %w", id, domain.ErrNotFound)
				}
				sub.Status = domain.SubtaskDone
				if err := c.Store.SaveTask(t); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Afgerond: "+id))
				return nil
			}

			t, err := c.Store.TaskByID(id)
			if err != nil {
				return err
			}
			t.Status = domain.StatusDone
			if err := c.Store.SaveTask(t); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Afgerond: "+id))
			return nil
		},
	}
}

// newRmCommand creates the rm command.
func newRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Klus verwijderen",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.DeleteTask(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Verwijderd: %s\n", args[0])
			return nil
		},
	}
}

// newSubCommand creates the sub command group for subtasks.
func newSubCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Deelklussen beheren",
	}

	addCmd := &cobra.Command{
		Use:   "add <taak-id> <titel>",
		Short: "Deelklus toevoegen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.Store.AddSubtask(args[0], args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Toegevoegd: %s\n", id)
			return nil
		},
	}

	var schedOpts scheduleFlags
	statusCmd := &cobra.Command{
		Use:   "set <deelklus-id> <todo|doing|done>",
		Short: "Status van een deelklus zetten",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.SubtaskStatus(args[1])
			if !status.IsValid() {
				return fmt.Errorf("ongeldige status %q", args[1])
			}
			taskID, ok := splitSubtaskID(args[0])
			if !ok {
				return fmt.Errorf("deelklus %s: %w", args[0], domain.ErrNotFound)
			}
			t, err := c.Store.TaskByID(taskID)
			if err != nil {
				return err
			}
			sub := t.FindSubtask(args[0])
			if sub == nil {
				return fmt.Errorf("deelklus %s: %w", args[0], domain.ErrNotFound)
			}
			sub.Status = status
			if cmd.Flags().Changed("start") {
				sub.Scheduled.Start = schedOpts.Start
			}
			if cmd.Flags().Changed("end") {
				sub.Scheduled.End = schedOpts.End
			}
			if cmd.Flags().Changed("all-day") {
				sub.Scheduled.AllDay = schedOpts.AllDay
			}
			if err := c.Store.SaveTask(t); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Bijgewerkt: %s\n", args[0])
			return nil
		},
	}
	addScheduleFlags(statusCmd, &schedOpts)

	cmd.AddCommand(addCmd, statusCmd)
	return cmd
}

// newMaterialCommand creates the material command group.
func newMaterialCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Materialen beheren",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Materialen van alle open klussen tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, headerStyle.Render("KLUS")+"\t"+headerStyle.Render("#")+"\t"+headerStyle.Render("MATERIAAL")+"\t"+headerStyle.Render("AANTAL")+"\t"+headerStyle.Render("STATUS"))
			count := 0
			for _, t := range c.Store.Tasks() {
				if t.Status.IsTerminal() {
					continue
				}
				for i, m := range t.Materials {
					_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", t.ID, i, m.Item, m.Qty, m.Status)
					count++
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if count == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Geen materialen gevonden."))
			}
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <taak-id> <index> <status>",
		Short: "Materiaalstatus zetten (kopen, kijken, in huis, onderweg, geregeld)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("ongeldige index %q", args[1])
			}
			if err := c.Store.SetMaterialStatus(args[0], index, args[2]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Bijgewerkt.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, setCmd)
	return cmd
}

// splitSubtaskID splits "TASK-001.2" into its task id. The second return
// is false for plain task ids.
func splitSubtaskID(id string) (string, bool) {
	i := strings.LastIndex(id, ".")
	if i <= 0 {
		return id, false
	}
	return id[:i], true
}

// formatSchedule renders a schedule compactly for list output.
func formatSchedule(s domain.Schedule) string {
	if !s.HasStart() {
		return ""
	}
	if s.AllDay {
		if s.End != "" && s.End != s.Start {
			return s.Start + " t/m " + s.End
		}
		return s.Start
	}
	return s.Start + " → " + s.End
}
