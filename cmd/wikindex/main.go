package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/wikindex/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "wikindex",
	Short:         "Secondary index and query service for a wiki page store",
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default config/$ENV.yaml)")
	rootCmd.AddCommand(serveCmd, populateCmd, consumeCmd, publishCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
