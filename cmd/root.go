package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "relwatch",
	Short: "Release and tag monitoring with AI-classified upgrade alerts",
	Long: `relwatch watches GitHub and GitLab repositories for new releases and
tags, asks an AI oracle how urgent each update is, and alerts over email,
Slack, Telegram, or a generic webhook when an upgrade matters.

Get started:
  relwatch serve         Run the monitoring daemon with the REST API
  relwatch check         Run one check sweep and exit
  relwatch repos         List tracked repositories and their versions
  relwatch alerts        Show recent alert history
  relwatch notify-test   Send a test notification over one channel`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.relwatch/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		serveCmd,
		checkCmd,
		reposCmd,
		alertsCmd,
		notifyTestCmd,
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
