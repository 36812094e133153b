package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/state"
)

// newPeopleCommand creates the people command group.
func newPeopleCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "people",
		Aliases: []string{"person"},
		Short:   "Personen beheren",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Personen tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			people := c.Store.People()
			if len(people) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Nog geen personen."))
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("NAAM")+"\t"+headerStyle.Render("KLUSSEN"))
			for _, p := range people {
				count := 0
				for _, t := range c.Store.Tasks() {
					if t.HasAssignee(p.ID) {
						count++
					}
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", p.ID, p.Name, count)
			}
			return w.Flush()
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <naam>",
		Short: "Persoon toevoegen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.Store.AddPerson(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Toegevoegd: %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <id> <naam>",
		Short: "Persoon hernoemen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.RenamePerson(args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Hernoemd.")
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Persoon verwijderen (wordt ook overal als uitvoerder weggehaald)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.DeletePerson(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Verwijderd.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, renameCmd, rmCmd)
	return cmd
}

// newGroupsCommand creates the groups command group.
func newGroupsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Groepen beheren",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Groepen tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("NAAM")+"\t"+headerStyle.Render("KLEUR"))
			for _, g := range c.Store.Groups() {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("■")
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\n", g.ID, g.Name, swatch, g.Color)
			}
			return w.Flush()
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <naam>",
		Short: "Groep toevoegen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.Store.AddGroup(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Toegevoegd: %s (%s)\n", g.Name, g.Color)
			return nil
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <naam> <nieuwe-naam>",
		Short: "Groep hernoemen (klussen verhuizen mee)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.RenameGroup(args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Hernoemd.")
			return nil
		},
	}

	colorCmd := &cobra.Command{
		Use:   "color <naam> <hexkleur>",
		Short: "Groepskleur zetten",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.SetGroupColor(args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Bijgewerkt.")
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <naam>",
		Short: "Groep verwijderen (klussen houden de groepsnaam)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.DeleteGroup(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Verwijderd.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, renameCmd, colorCmd, rmCmd)
	return cmd
}

// newListsCommand creates the lists command group for the free taxonomies.
func newListsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Statussen, locaties en categorieën beheren",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Alle lijsten tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, headerStyle.Render("Statussen"))
			for _, s := range c.Store.Statuses() {
				_, _ = fmt.Fprintln(out, "  "+s)
			}
			_, _ = fmt.Fprintln(out, headerStyle.Render("Locaties"))
			for _, l := range c.Store.Locations() {
				_, _ = fmt.Fprintln(out, "  "+l)
			}
			_, _ = fmt.Fprintln(out, headerStyle.Render("Categorieën"))
			for _, cat := range c.Store.Categories() {
				_, _ = fmt.Fprintln(out, "  "+cat)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <statuses|locations|categories> <waarde>",
		Short: "Waarde toevoegen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.AddTaxonomyEntry(state.TaxonomyKind(args[0]), args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Toegevoegd.")
			return nil
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <statuses|locations|categories> <oud> <nieuw>",
		Short: "Waarde hernoemen (klussen verhuizen mee)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.RenameTaxonomyEntry(state.TaxonomyKind(args[0]), args[1], args[2]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Hernoemd.")
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <statuses|locations|categories> <waarde>",
		Short: "Waarde verwijderen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Store.DeleteTaxonomyEntry(state.TaxonomyKind(args[0]), args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Verwijderd.")
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Lijsten terugzetten naar de standaardwaarden",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.Store.ResetLists()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Teruggezet.")
			return nil
		},
	}

	cmd.AddCommand(showCmd, addCmd, renameCmd, rmCmd, resetCmd)
	return cmd
}
