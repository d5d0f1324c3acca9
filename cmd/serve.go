package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/relwatch/relwatch/internal/gateway"
	"github.com/relwatch/relwatch/internal/source"
	"github.com/relwatch/relwatch/internal/store"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relwatch monitoring daemon",
	Long: `Starts the relwatch daemon: a periodic check sweep over every monitored
repository plus a local REST API (default: http://127.0.0.1:6080).

The daemon seeds tracking records for configured repositories, runs an
initial sweep to establish version baselines, then re-checks on the
configured interval. Platform webhooks can trigger checks between sweeps.

Quick API reference:
  GET  /health               liveness check
  GET  /api/repos            list tracked repositories
  GET  /api/repos/{id}       one repository's state
  POST /api/check            run a full sweep now
  POST /api/check/{id}       check one repository now
  GET  /api/alerts           recent alert history (?repo=&limit=)
  POST /api/test/{channel}   send a test notification
  POST /webhook/github       GitHub release/tag event receiver
  GET  /metrics              Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"HTTP port to listen on (default 6080, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	svc, err := buildServices(ctx, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	if servePort > 0 {
		svc.cfg.Gateway.Port = servePort
	}

	if err := seedRepositories(ctx, svc); err != nil {
		return err
	}

	fmt.Printf("relwatch starting\n")
	fmt.Printf("  Repositories : %d\n", len(svc.cfg.Monitor.Repos))
	fmt.Printf("  Interval     : %dm\n", svc.cfg.Monitor.IntervalMinutes)
	fmt.Printf("  API          : http://127.0.0.1:%d\n\n", svc.cfg.Gateway.Port)
	fmt.Println("Press Ctrl+C to stop gracefully.")
	fmt.Println()

	gw := gateway.New(svc.cfg, svc.store, svc.checker, svc.dispatcher)

	// Baselines first, then serve; the sweep runs in the background so the
	// API comes up immediately.
	go gw.RunInitialSweep()

	return gw.Start(ctx)
}

// seedRepositories makes sure every configured identifier has a tracking
// row before the first sweep, so the API lists them even while upstream
// resolution is still pending or failing.
func seedRepositories(ctx context.Context, svc *services) error {
	for _, rawID := range svc.cfg.Monitor.Repos {
		rec, err := svc.store.GetRepository(ctx, rawID)
		if err != nil {
			return err
		}
		if rec != nil {
			continue
		}
		id := source.ParseRepoID(rawID)
		err = svc.store.UpsertRepository(ctx, rawID, store.RepoUpdate{
			URL:      svc.sources.CanonicalURL(id),
			Platform: string(id.Platform),
		})
		if err != nil {
			return err
		}
		slog.Info("seeded repository", "repo", rawID)
	}
	return nil
}
