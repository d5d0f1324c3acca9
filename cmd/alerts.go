package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	alertsRepo  string
	alertsLimit int
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show recent alert history",
	RunE:  runAlerts,
}

func init() {
	alertsCmd.Flags().StringVar(&alertsRepo, "repo", "", "only alerts for this repository")
	alertsCmd.Flags().IntVar(&alertsLimit, "limit", 50, "maximum number of alerts to show")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := buildServices(ctx, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	recs, err := svc.store.ListAlertHistory(ctx, alertsRepo, alertsLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No alerts recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tREPOSITORY\tVERSION\tSEVERITY\tMANDATORY\tSUMMARY")
	for _, a := range recs {
		summary := a.Summary
		if len(summary) > 80 {
			summary = summary[:77] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\n",
			a.AlertedAt, a.RepoID, a.Version, a.Severity, a.MandatoryUpgrade, summary)
	}
	return w.Flush()
}
