package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List tracked repositories and their versions",
	RunE:  runRepos,
}

func runRepos(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := buildServices(ctx, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	recs, err := svc.store.ListRepositories(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No repositories tracked yet. Run 'relwatch check' or 'relwatch serve'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tPLATFORM\tKNOWN\tALERTED\tSEVERITY\tLAST CHECKED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RepoID, r.Platform,
			deref(r.LastKnownVersion), deref(r.LastAlertedVersion),
			deref(r.Severity), r.LastCheckedAt)
	}
	return w.Flush()
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
