package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/domain"
)

// ganttCharWidth converts bar pixel geometry to terminal cells.
const ganttCharWidth = 4

// parseFocus reads the --date flag, defaulting to today.
func parseFocus(cmd *cobra.Command, clock domain.Clock) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return clock.Now(), nil
	}
	d, err := domain.ParseLocalDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("ongeldige datum %q", raw)
	}
	return d, nil
}

// newGanttCommand creates the gantt command.
func newGanttCommand(c *app.Container) *cobra.Command {
	var zoomFlag string

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Tijdlijn per groep tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			focus, err := parseFocus(cmd, c.Clock)
			if err != nil {
				return err
			}
			zoom := domain.Zoom(zoomFlag)
			if zoom != domain.ZoomWeek && zoom != domain.ZoomMonth {
				return fmt.Errorf("zoom moet week of month zijn")
			}
			r := domain.ProjectRange(focus, zoom)
			buckets := domain.GroupBuckets(c.Store.Tasks(), c.Store.Groups(), r.Start, r.End)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s t/m %s",
				domain.FormatDate(r.Start), domain.FormatDate(r.End.AddDate(0, 0, -1)))))
			_, _ = fmt.Fprintln(out, mutedStyle.Render(strings.Join(r.Labels, "  ")))

			for _, bucket := range buckets {
				if len(bucket.Rows) == 0 {
					continue
				}
				style := groupStyle(c.Store.Groups(), bucket.Group)
				_, _ = fmt.Fprintln(out, style.Render("── "+bucket.Group))
				for _, row := range bucket.Rows {
					printGanttRow(out, r, row.Span, style, 0)
					for _, sub := range row.Subrows {
						printGanttRow(out, r, sub, mutedStyle, 2)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&zoomFlag, "zoom", "week", "Zoomniveau (week of month)")
	cmd.Flags().String("date", "", "Focusdatum (YYYY-MM-DD, standaard vandaag)")
	return cmd
}

func printGanttRow(out io.Writer, r domain.Range, sp domain.Span, style lipgloss.Style, indent int) {
	bar := r.GanttBar(sp.Start, sp.End)
	left := int(bar.Left) / ganttCharWidth
	width := int(bar.Width) / ganttCharWidth
	if width < 1 {
		width = 1
	}
	label := fmt.Sprintf("%-24.24s", strings.Repeat(" ", indent)+sp.Title())
	line := label + " " + strings.Repeat(" ", left) + style.Render(strings.Repeat("█", width))
	_, _ = fmt.Fprintln(out, line)
}

// newCalendarCommand creates the calendar command.
func newCalendarCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Maandkalender tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			focus, err := parseFocus(cmd, c.Clock)
			if err != nil {
				return err
			}
			r := domain.CalendarGrid(focus)
			byDay := domain.BucketByDay(c.Store.Tasks(), r.Start, r.End)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, titleStyle.Render(focus.Format("January 2006")))

			const cellWidth = 16
			header := make([]string, 0, 7)
			for _, name := range []string{"Ma", "Di", "Wo", "Do", "Vr", "Za", "Zo"} {
				header = append(header, fmt.Sprintf("%-*s", cellWidth, name))
			}
			_, _ = fmt.Fprintln(out, headerStyle.Render(strings.Join(header, "")))

			for week := 0; week < r.Columns/7; week++ {
				// Rows per week: the day number line plus up to
				// MaxCellItems item lines and an overflow line.
				lines := make([]string, 1, domain.MaxCellItems+2)
				for day := 0; day < 7; day++ {
					d := r.Start.AddDate(0, 0, week*7+day)
					num := fmt.Sprintf("%2d", d.Day())
					if d.Month() != focus.Month() {
						num = mutedStyle.Render(num)
					}
					lines[0] += num + strings.Repeat(" ", cellWidth-2)

					items, more := domain.CellPreview(byDay[domain.FormatDate(d)])
					for i, sp := range items {
						for len(lines) <= i+1 {
							lines = append(lines, strings.Repeat(" ", cellWidth*day))
						}
						lines[i+1] = padCell(lines[i+1], cellWidth*day)
						lines[i+1] += fmt.Sprintf("%-*.*s", cellWidth, cellWidth-1, sp.Title())
					}
					if more > 0 {
						idx := len(items) + 1
						for len(lines) <= idx {
							lines = append(lines, strings.Repeat(" ", cellWidth*day))
						}
						lines[idx] = padCell(lines[idx], cellWidth*day)
						lines[idx] += mutedStyle.Render(fmt.Sprintf("%-*s", cellWidth, fmt.Sprintf("+%d meer", more)))
					}
				}
				for _, line := range lines {
					_, _ = fmt.Fprintln(out, line)
				}
				_, _ = fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "Focusdatum (YYYY-MM-DD, standaard vandaag)")
	return cmd
}

// padCell pads a partially built line out to a cell's column offset.
// Styled runs make len() unreliable, so it tracks printable width by
// stripping the escape sequences first.
func padCell(line string, col int) string {
	width := lipgloss.Width(line)
	if width < col {
		line += strings.Repeat(" ", col-width)
	}
	return line
}

// newAgendaCommand creates the agenda command for the day view.
func newAgendaCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Dagagenda tonen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			focus, err := parseFocus(cmd, c.Clock)
			if err != nil {
				return err
			}
			r := domain.ProjectRange(focus, domain.ZoomDay)
			spans := domain.VisibleSpans(c.Store.Tasks(), r.Start, r.End)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, titleStyle.Render(domain.FormatDate(r.Start)))

			var allDay, timed []domain.Span
			for _, sp := range spans {
				if sp.Task.Scheduled.AllDay {
					allDay = append(allDay, sp)
				} else {
					timed = append(timed, sp)
				}
			}
			for _, sp := range allDay {
				_, _ = fmt.Fprintf(out, "  %s  %s\n", mutedStyle.Render("hele dag"), sp.Title())
			}
			for _, sp := range timed {
				start := sp.Start
				if start.Before(r.Start) {
					start = r.Start
				}
				end := sp.End
				if end.After(r.End) {
					end = r.End
				}
				style := statusStyle(sp.Task.Status)
				_, _ = fmt.Fprintf(out, "  %s-%s  %s\n",
					start.Format("15:04"), end.Format("15:04"), style.Render(sp.Title()))
			}
			if len(spans) == 0 {
				_, _ = fmt.Fprintln(out, mutedStyle.Render("  Niets gepland."))
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "Focusdatum (YYYY-MM-DD, standaard vandaag)")
	return cmd
}
