package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/domain"
)

// terminalPrompter asks end-of-task questions on the terminal. The daemon
// raises at most one prompt at a time, so plain sequential stdin reads are
// safe here.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *terminalPrompter) ConfirmEnd(_ context.Context, prompt domain.EndPrompt) (domain.PromptAction, time.Time, error) {
	_, _ = fmt.Fprintf(p.out, "\n%s\n", warnStyle.Render("Eindtijd verstreken: "+prompt.Title))
	_, _ = fmt.Fprintf(p.out, "Gepland tot %s. Afronden? [a]fronden / [v]erlengen / [s]luimeren / [n]egeren: ",
		domain.FormatDateTime(prompt.End))

	line, err := p.in.ReadString('\n')
	if err != nil {
		return domain.PromptDismiss, time.Time{}, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "a", "afronden":
		return domain.PromptMarkDone, time.Time{}, nil
	case "v", "verlengen":
		// Zero time means the default extension.
		return domain.PromptExtend, time.Time{}, nil
	case "s", "sluimeren":
		return domain.PromptSnooze, time.Time{}, nil
	default:
		return domain.PromptDismiss, time.Time{}, nil
	}
}

// newDaemonCommand creates the daemon command.
func newDaemonCommand(c *app.Container) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Achtergrondplanner draaien (autostart, eindtijd-prompts, meldingen)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			prompter := newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if interval <= 0 {
				interval = c.Config.Interval()
			}
			d := c.DaemonWithInterval(prompter, interval)

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Planner actief. Ctrl-C om te stoppen.")
			err := d.Run(ctx)
			if errors.Is(err, context.Canceled) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Gestopt.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Tijd tussen ticks (standaard uit configuratie)")
	return cmd
}

// newNotifyCommand creates the notify command group.
func newNotifyCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Meldingen bekijken en wegklikken",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Actuele meldingen tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			notifications := c.Notify.Build()
			if len(notifications) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Geen meldingen."))
				return nil
			}
			for _, n := range notifications {
				style := warnStyle
				if n.Rule == domain.RuleOverdue || n.Rule == domain.RuleStartsToday {
					style = errorStyle
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
					style.Render(n.Message), n.Title, mutedStyle.Render(n.Key))
			}
			return nil
		},
	}

	dismissCmd := &cobra.Command{
		Use:   "dismiss <key>",
		Short: "Melding wegklikken tot de volgende dag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Notify.Dismiss(args[0])
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Weggeklikt.")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Alle meldingen wegklikken",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.Notify.DismissAll()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Alles weggeklikt.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, dismissCmd, clearCmd)
	return cmd
}
