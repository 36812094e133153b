package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/domain"
)

// newPullCommand creates the pull command.
func newPullCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Remote staat ophalen en lokaal overnemen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.Store.Dirty() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("Let op: lokale wijzigingen worden overschreven."))
			}
			if err := c.Sync.ReadAll(cmd.Context()); err != nil {
				if errors.Is(err, domain.ErrNotConfigured) {
					return fmt.Errorf("geen remote geconfigureerd; zie 'klusplan init'")
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Opgehaald: %d klussen, %d personen\n",
				len(c.Store.Tasks()), len(c.Store.People()))
			return nil
		},
	}
}

// newPushCommand creates the push command.
func newPushCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "push",
		Aliases: []string{"save"},
		Short:   "Lokale wijzigingen doorzetten naar de remote opslag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.Sync.Commit(cmd.Context()); err != nil {
				return err
			}
			if c.Sync.Configured() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Opgeslagen en doorgezet."))
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Lokaal opgeslagen (geen remote geconfigureerd)."))
			}
			return nil
		},
	}
}

// newDiscardCommand creates the discard command.
func newDiscardCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Lokale wijzigingen weggooien tot de laatste schone staat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.Store.Discard(); err != nil {
				if errors.Is(err, domain.ErrNoSnapshot) {
					return fmt.Errorf("geen schone staat om naar terug te keren")
				}
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wijzigingen weggegooid.")
			return nil
		},
	}
}

// newStatusCommand creates the status command with the dashboard summary.
func newStatusCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Sync- en planningstoestand tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if c.Store.Dirty() {
				_, _ = fmt.Fprintln(out, warnStyle.Render("Niet-doorgezette wijzigingen aanwezig."))
			} else {
				_, _ = fmt.Fprintln(out, okStyle.Render("Alles doorgezet."))
			}

			if !c.Sync.Configured() {
				_, _ = fmt.Fprintln(out, mutedStyle.Render("Remote: niet geconfigureerd"))
			} else if err := c.Sync.Validate(cmd.Context()); err != nil {
				_, _ = fmt.Fprintln(out, errorStyle.Render("Remote: onbereikbaar: "+err.Error()))
			} else {
				_, _ = fmt.Fprintln(out, okStyle.Render("Remote: bereikbaar"))
			}

			tasks := c.Store.Tasks()
			counts := map[domain.Status]int{}
			var done, blocked int
			var actual, budget float64
			for _, t := range tasks {
				counts[t.Status]++
				if t.Status == domain.StatusDone {
					done++
				}
				if t.Status.IsBlocked() {
					blocked++
				}
				actual += t.ActualHours
				budget += t.EstimateHours.Realistic
			}

			_, _ = fmt.Fprintf(out, "Klussen: %d totaal", len(tasks))
			for _, s := range domain.AllStatuses() {
				if counts[s] > 0 {
					_, _ = fmt.Fprintf(out, ", %d %s", counts[s], statusStyle(s).Render(string(s)))
				}
			}
			_, _ = fmt.Fprintln(out)

			if len(tasks) > 0 {
				_, _ = fmt.Fprintf(out, "Afgerond: %d%%", done*100/len(tasks))
				if blocked > 0 {
					_, _ = fmt.Fprintf(out, ", %s", warnStyle.Render(fmt.Sprintf("%d geblokkeerd", blocked)))
				}
				_, _ = fmt.Fprintln(out)
			}
			if budget > 0 {
				_, _ = fmt.Fprintf(out, "Uren: %.1f besteed van %.1f begroot\n", actual, budget)
			}

			printGroupProgress(out, c)
			printNextUp(out, c)

			if s := c.Session; s != nil {
				_, _ = fmt.Fprintf(out, "Ingelogd als: %s\n", s.DisplayName)
			}
			return nil
		},
	}
}

// printGroupProgress lists done/total per group, skipping empty groups.
func printGroupProgress(out io.Writer, c *app.Container) {
	type progress struct {
		done, total int
	}
	byGroup := map[string]*progress{}
	order := make([]string, 0)
	for _, t := range c.Store.Tasks() {
		name := t.Group
		if name == "" {
			name = domain.UngroupedBucket
		}
		p, ok := byGroup[name]
		if !ok {
			p = &progress{}
			byGroup[name] = p
			order = append(order, name)
		}
		p.total++
		if t.Status == domain.StatusDone {
			p.done++
		}
	}
	for _, name := range order {
		p := byGroup[name]
		style := groupStyle(c.Store.Groups(), name)
		_, _ = fmt.Fprintf(out, "  %s  %d/%d\n", style.Render(name), p.done, p.total)
	}
}

// printNextUp shows the first few tasks starting at or after now.
func printNextUp(out io.Writer, c *app.Container) {
	now := c.Clock.Now()
	var upcoming []*domain.Task
	for _, t := range c.Store.Tasks() {
		if t.Status == domain.StatusDone {
			continue
		}
		if start, ok := t.Scheduled.StartTime(); ok && !start.Before(now) {
			upcoming = append(upcoming, t)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		si, _ := upcoming[i].Scheduled.StartTime()
		sj, _ := upcoming[j].Scheduled.StartTime()
		return si.Before(sj)
	})
	if len(upcoming) == 0 {
		return
	}
	if len(upcoming) > 3 {
		upcoming = upcoming[:3]
	}
	_, _ = fmt.Fprintln(out, headerStyle.Render("Eerstvolgend"))
	for _, t := range upcoming {
		start, _ := t.Scheduled.StartTime()
		_, _ = fmt.Fprintf(out, "  %s  %s %s\n", domain.FormatDate(start), t.ID, t.Title)
	}
}

// newClearCommand creates the clear command for wiping local data.
func newClearCommand(c *app.Container) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Alle klussen en personen lokaal wissen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return fmt.Errorf("wissen verwijdert alles; bevestig met --force")
			}
			c.Store.ClearAll()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Alles gewist. 'klusplan push' maakt ook de remote leeg.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Zonder bevestiging wissen")
	return cmd
}
