package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/infra/config"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Configuratiebestand aanmaken",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Init(c.Dir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Aangemaakt: %s\n", path)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Vul [remote] in om synchronisatie aan te zetten."))
			return nil
		},
	}
}

// newLoginCommand creates the login command.
func newLoginCommand(c *app.Container) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <gebruikersnaam>",
		Short: "Inloggen als een van de geconfigureerde gebruikers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := c.Config.FindUser(args[0])
			if !ok {
				return fmt.Errorf("onbekende gebruiker %q", args[0])
			}
			if user.Password != "" && user.Password != password {
				return fmt.Errorf("wachtwoord onjuist")
			}
			session, err := config.SaveSession(c.Dir, user)
			if err != nil {
				return err
			}
			c.Session = session
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Ingelogd als %s\n", session.DisplayName)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Wachtwoord")
	return cmd
}

// newLogoutCommand creates the logout command.
func newLogoutCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Uitloggen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.ClearSession(c.Dir); err != nil {
				return err
			}
			c.Session = nil
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Uitgelogd.")
			return nil
		},
	}
}

// newWhoamiCommand creates the whoami command.
func newWhoamiCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Huidige gebruiker tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.Session == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Niet ingelogd."))
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", c.Session.DisplayName, c.Session.Username)
			return nil
		},
	}
}
