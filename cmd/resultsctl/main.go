// Command resultsctl is the operator CLI for the election results service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/EmpoweredVote/election-results/internal/config"
	"github.com/EmpoweredVote/election-results/internal/logging"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	timeout    time.Duration

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "resultsctl",
	Short: "Operate the election results service",
	Long: `resultsctl fetches snapshots directly from the configured provider,
watches a running server from the terminal and maintains the archive.

Configuration is read the same way the server reads it: .env.local, then
--config (or CONFIG_PATH), then environment overrides.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(".env.local")

		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
		} else {
			cfg, err = config.LoadFromEnv()
		}
		if err != nil {
			return err
		}

		lc := cfg.Log
		if verbose {
			lc.Level = "debug"
		}
		lc.Development = true // console encoding on stderr
		logger, err = logging.New(lc)
		if err != nil {
			return err
		}
		provider.SetLogger(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(pruneCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
