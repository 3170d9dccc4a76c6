package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/demodash/internal/dashstate"
	"github.com/zulandar/demodash/internal/format"
	"github.com/zulandar/demodash/internal/models"
)

func newReportCmd() *cobra.Command {
	var (
		configPath string
		view       dashstate.View
		date       string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard as text",
		Long: `Prints the metrics, projects, RFIs and this week's tasks. Data comes from
the API server when it answers and from the local document otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, configPath, view, date)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&view.Tab, "tab", dashstate.TabDashboard, "tab to print: dashboard, projects, rfis or tasks")
	cmd.Flags().StringVar(&view.Status, "status", "", "only projects with this status")
	cmd.Flags().StringVar(&view.Search, "search", "", "only projects whose name or description contains this term")
	cmd.Flags().StringVar(&date, "date", "", "report as of this day (YYYY-MM-DD, default today)")
	return cmd
}

func runReport(cmd *cobra.Command, configPath string, view dashstate.View, date string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	now, err := parseDay(date)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	backend, err := selectBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	st := dashstate.New(backend, logger)
	if err := st.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("load dashboard: %w", err)
	}

	fmt.Fprintf(out, "Mode: %s\n", describeBackend(backend, cfg))
	printView(out, dashstate.BuildView(st.Snapshot(), view, now))
	return nil
}

// parseDay parses a YYYY-MM-DD flag value; blank means now.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	day, ok := models.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return day, nil
}

func printView(out io.Writer, vm dashstate.ViewModel) {
	if vm.ShowMetrics {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Active Projects Value\t%s\n", format.Currency(vm.Metrics.ActiveValue))
		fmt.Fprintf(w, "Pending RFIs\t%d\n", vm.Metrics.PendingRFIs)
		fmt.Fprintf(w, "Current Bids\t%d\n", vm.Metrics.CurrentBids)
		fmt.Fprintf(w, "Completion Rate\t%d%%\n", vm.Metrics.CompletionRate)
		w.Flush()
	}

	if vm.ShowProjects {
		fmt.Fprintf(out, "\nPROJECTS (%s)\n", vm.Status)
		if len(vm.Projects) == 0 {
			fmt.Fprintln(out, "No projects found.")
		} else {
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tVALUE\tDUE\tPROGRESS\tLOCATION")
			for _, p := range vm.Projects {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
					p.ID, p.Name, p.Status, format.Currency(p.Value), format.Date(p.DueDate), p.Progress, dash(p.Location))
			}
			w.Flush()
		}
	}

	if vm.ShowRFIs {
		fmt.Fprintln(out, "\nRFIS")
		if len(vm.RFIs) == 0 {
			fmt.Fprintln(out, "No RFIs found.")
		} else {
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPROJECT\tPRI\tSTATUS\tDUE\tREMAINING")
			for _, r := range vm.RFIs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Title, r.ProjectName, r.Priority, r.Status, format.Date(r.DueDate), r.DaysRemaining)
			}
			w.Flush()
		}
	}

	if vm.ShowTasks {
		fmt.Fprintf(out, "\nTASKS (%s - %s)\n", format.Day(vm.WeekStart), format.Day(vm.WeekEnd))
		if len(vm.Tasks) == 0 {
			fmt.Fprintln(out, "No tasks due this week.")
		} else {
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPROJECT\tPRI\tDUE")
			for _, t := range vm.Tasks {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.ProjectName, t.Priority, format.Date(t.DueDate))
			}
			w.Flush()
		}
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
