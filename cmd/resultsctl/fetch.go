package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/spf13/cobra"

	// Import providers to register them via init()
	_ "github.com/EmpoweredVote/election-results/internal/results/gemini"
	_ "github.com/EmpoweredVote/election-results/internal/results/static"
)

var (
	fetchProvider string
	fetchStatic   string
	fetchCompact  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one provider query and print the snapshot as JSON",
	Long: `Runs a single fetch against the configured provider, bypassing the
server. Invalid responses still print the degraded snapshot; transport
failures exit non-zero.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchProvider, "provider", "", "Override results.provider (gemini|static)")
	fetchCmd.Flags().StringVar(&fetchStatic, "static", "", "Read this JSON file (implies --provider static)")
	fetchCmd.Flags().BoolVar(&fetchCompact, "compact", false, "Print single-line JSON")
}

func runFetch(cmd *cobra.Command, args []string) error {
	rc := cfg.Results
	if fetchProvider != "" {
		rc.Provider = fetchProvider
	}
	if fetchStatic != "" {
		rc.Provider = string(provider.ProviderStatic)
		rc.StaticPath = fetchStatic
	}

	pc, err := rc.ProviderConfig()
	if err != nil {
		return err
	}
	p, err := provider.NewProvider(pc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	snap, err := p.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch from %s: %w", p.Name(), err)
	}
	return printSnapshot(cmd.OutOrStdout(), snap, !fetchCompact)
}

func printSnapshot(w io.Writer, snap provider.Snapshot, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(snap)
}
