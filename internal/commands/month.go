package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/thermotec-agenda/internal/app"
	"github.com/klabast/wb-services/thermotec-agenda/internal/calendar"
)

// NewMonthCommand creates the month subcommand printing the calendar grid
func NewMonthCommand() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print the 6-week calendar grid of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			today := time.Now().In(loc)
			ref := today
			if month != "" {
				if ref, err = calendar.ParseMonthKey(month, loc); err != nil {
					return fmt.Errorf("--month: %w", err)
				}
			}
			return PrintMonth(cmd.OutOrStdout(), calendar.BuildMonth(ref, today))
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to print (YYYY-MM, default: current month)")
	return cmd
}

// PrintMonth writes g as text: today in brackets, other months' days in
// parentheses, holidays marked with * and listed below.
func PrintMonth(w io.Writer, g calendar.Grid) error {
	var b strings.Builder

	title := g.Title()
	fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", max(0, (7*5-len([]rune(title)))/2)), title)
	for _, h := range calendar.WeekdayHeaders() {
		fmt.Fprintf(&b, "%5s", h)
	}
	b.WriteString("\n")

	var holidays []string
	for _, week := range g.Weeks() {
		for _, d := range week {
			b.WriteString(formatCell(d))
			if d.Holiday != "" && d.IsCurrentMonth {
				holidays = append(holidays, fmt.Sprintf("%s %s", calendar.FormatShort(d.Date), d.Holiday))
			}
		}
		b.WriteString("\n")
	}

	if len(holidays) > 0 {
		b.WriteString("\n")
		for _, h := range holidays {
			fmt.Fprintf(&b, "* %s\n", h)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatCell(d calendar.Day) string {
	num := fmt.Sprintf("%d", d.Number)
	switch {
	case d.IsToday:
		num = "[" + num + "]"
	case !d.IsCurrentMonth:
		num = "(" + num + ")"
	}
	if d.Holiday != "" && d.IsCurrentMonth {
		num += "*"
	}
	return fmt.Sprintf("%5s", num)
}
