package cmd

import (
	"context"
	"fmt"

	"github.com/relwatch/relwatch/models"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [repo ...]",
	Short: "Run one check sweep and exit",
	Long: `Checks the given repositories (or every monitored repository when none
are named) once, alerting on qualifying updates, then exits.

Examples:
  relwatch check
  relwatch check ethereum/go-ethereum
  relwatch check gitlab:gitlab-org/gitlab`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := buildServices(ctx, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	var summary models.CheckSummary
	if len(args) > 0 {
		for _, rawID := range args {
			summary.Add(svc.checker.CheckRepository(ctx, rawID))
		}
	} else {
		summary = svc.checker.CheckAll(ctx)
	}

	for _, o := range summary.Outcomes {
		line := fmt.Sprintf("%-24s %s", o.RepoID, o.Status)
		switch o.Status {
		case models.StatusAlertSent, models.StatusAlertFailed, models.StatusNoAlertNeeded:
			line += fmt.Sprintf("  %s -> %s [%s]", o.OldVersion, o.NewVersion, o.Severity)
		case models.StatusFirstObservation:
			line += "  baseline " + o.NewVersion
		case models.StatusError:
			line += "  " + o.Message
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d checked: %d alerts sent, %d failed, %d errors\n",
		summary.Total, summary.AlertsSent, summary.AlertsFailed, summary.Errors)

	if summary.Errors > 0 || summary.AlertsFailed > 0 {
		return fmt.Errorf("%d of %d checks did not complete cleanly",
			summary.Errors+summary.AlertsFailed, summary.Total)
	}
	return nil
}
