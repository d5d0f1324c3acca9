package cmd

import (
	"context"
	"fmt"

	"github.com/relwatch/relwatch/internal/notify"
	"github.com/spf13/cobra"
)

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test <channel>",
	Short: "Send a test notification over one channel",
	Long: `Sends a synthetic low-severity alert over the named channel to verify
its configuration end to end.

Channels: email, slack, telegram, webhook`,
	Args: cobra.ExactArgs(1),
	RunE: runNotifyTest,
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := buildServices(ctx, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	name := args[0]
	ch := svc.dispatcher.Channel(name)
	if ch == nil {
		return fmt.Errorf("unknown channel %q (valid: email, slack, telegram, webhook)", name)
	}
	if !ch.IsConfigured() {
		return fmt.Errorf("channel %q is not configured or not enabled", name)
	}

	if err := ch.Send(ctx, notify.TestAlert()); err != nil {
		return fmt.Errorf("test notification over %s failed: %w", name, err)
	}
	fmt.Printf("Test notification delivered over %s.\n", name)
	return nil
}
