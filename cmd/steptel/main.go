package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aayushbajaj/step-telemetry/internal/app"
	"github.com/aayushbajaj/step-telemetry/internal/session"
	"github.com/aayushbajaj/step-telemetry/internal/storage"
	"github.com/aayushbajaj/step-telemetry/internal/tui"
)

// Version is set at build time via ldflags: -X main.Version=$(VERSION)
var Version = "dev"

const logFile = "steptel.log"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	ov := &app.Overrides{}

	root := &cobra.Command{
		Use:   "steptel",
		Short: "Estimate walking steps from mouse and keyboard activity",
		Long: `steptel turns pointer movement and key presses into an estimated step
count, and keeps a daily ledger of steps, distance, calories and logged
activities.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(*ov)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&ov.ConfigPath, "config", "", "config file (default ~/.config/steptel/config.yaml)")
	flags.StringVar(&ov.DataFile, "data-file", "", "ledger file (default ~/.local/share/steptel/aktivitas_data.json)")
	flags.StringVar(&ov.Backend, "backend", "", "ledger backend: json or sqlite")
	flags.StringVar(&ov.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newTrackCmd(ov),
		newTodayCmd(ov),
		newLogCmd(ov),
		newHistoryCmd(ov),
		newVersionCmd(),
	)
	return root
}

func newTrackCmd(ov *app.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Count steps and show the live dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(*ov)
		},
	}
}

func runTrack(ov app.Overrides) error {
	a, err := app.Open(ov, app.Options{LogFile: logFile})
	if err != nil {
		return err
	}
	defer a.Close()

	tui.SetTheme(a.Config.Theme)

	stop := a.Track(context.Background(), a.Sources()...)
	defer stop()

	p := tea.NewProgram(tui.New(a.Controller, a.Config.RefreshInterval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		a.Log.WithError(err).Error("dashboard exited with error")
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func newTodayCmd(ov *app.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's saved totals and activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(*ov, app.Options{LogFile: logFile})
			if err != nil {
				return err
			}
			defer a.Close()

			summary := a.Controller.CurrentSummary()
			printDay(cmd.OutOrStdout(), summary.Date, summary.Today)
			return nil
		},
	}
}

func printDay(w io.Writer, date string, rec *storage.DailyRecord) {
	if rec == nil {
		fmt.Fprintf(w, "%s: nothing saved yet\n", date)
		return
	}
	fmt.Fprintf(w, "%s\n", date)
	fmt.Fprintf(w, "  Steps:    %d\n", rec.Steps)
	fmt.Fprintf(w, "  Distance: %.2f km\n", rec.DistanceKm)
	fmt.Fprintf(w, "  Calories: %d kcal\n", rec.Calories)
	if len(rec.Activities) == 0 {
		return
	}
	fmt.Fprintln(w, "  Activities:")
	for _, act := range rec.Activities {
		fmt.Fprintf(w, "    %s  %-20s %d min\n", act.Time, act.Name, act.DurationMinutes)
	}
}

func newLogCmd(ov *app.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "log NAME MINUTES",
		Short: "Log an activity for today",
		Example: `  steptel log Yoga 30
  steptel log "Evening walk" 45`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := session.ParseMinutes(args[1])
			if err != nil {
				return err
			}

			a, err := app.Open(*ov, app.Options{LogFile: logFile})
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.Controller.LogActivity(args[0], minutes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%d min) at %s\n", entry.Name, entry.DurationMinutes, entry.Time)
			return nil
		},
	}
}

func newHistoryCmd(ov *app.Overrides) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved totals for recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}

			a, err := app.Open(*ov, app.Options{LogFile: logFile})
			if err != nil {
				return err
			}
			defer a.Close()

			printHistory(cmd.OutOrStdout(), a.Controller.History(days))
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "number of days to show")
	return cmd
}

func printHistory(w io.Writer, rows []session.DayTotals) {
	fmt.Fprintf(w, "%-10s  %8s  %8s  %6s  %s\n", "DATE", "STEPS", "KM", "KCAL", "ACTIVITIES")
	total := 0
	for _, row := range rows {
		names := make([]string, 0, len(row.Record.Activities))
		for _, act := range row.Record.Activities {
			names = append(names, act.Name)
		}
		fmt.Fprintf(w, "%-10s  %8d  %8.2f  %6d  %s\n",
			row.Date, row.Record.Steps, row.Record.DistanceKm, row.Record.Calories, strings.Join(names, ", "))
		total += row.Record.Steps
	}
	fmt.Fprintf(w, "%-10s  %8s\n", "TOTAL", strconv.Itoa(total))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "steptel %s\n", Version)
		},
	}
}
