package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EmpoweredVote/election-results/internal/db"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	pruneDSN       string
	pruneSchema    string
	pruneOlderThan time.Duration
	pruneDryRun    bool
)

var errNoOlderThan = errors.New("--older-than must be positive")

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete archived snapshots older than a cutoff",
	Example: `  resultsctl prune --older-than 720h
  resultsctl prune --older-than 24h --dry-run`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().StringVar(&pruneDSN, "dsn", "", "Postgres DSN (default: archive.database_url / DATABASE_URL)")
	pruneCmd.Flags().StringVar(&pruneSchema, "schema", "", "Archive schema (default: archive.schema)")
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "Delete snapshots retrieved longer ago than this (required)")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Count matching rows only; no DB writes")
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneOlderThan <= 0 {
		return errNoOlderThan
	}
	dsn := pruneDSN
	if dsn == "" {
		dsn = cfg.Archive.DatabaseURL
	}
	if dsn == "" {
		return db.ErrEmptyDSN
	}
	schema := pruneSchema
	if schema == "" {
		schema = cfg.Archive.Schema
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	cutoff := time.Now().Add(-pruneOlderThan)
	n, err := pruneSnapshots(ctx, conn, schema, cutoff, pruneDryRun)
	if err != nil {
		return err
	}

	verb := "deleted"
	if pruneDryRun {
		verb = "would delete"
	}
	logger.Info("prune complete", zap.Time("cutoff", cutoff), zap.Int64("rows", n), zap.Bool("dry_run", pruneDryRun))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d snapshot(s) retrieved before %s\n", verb, n, cutoff.Format(time.RFC3339))
	return nil
}

// pruneSnapshots deletes (or with dryRun counts) rows older than cutoff.
func pruneSnapshots(ctx context.Context, conn *sql.DB, schema string, cutoff time.Time, dryRun bool) (int64, error) {
	table := db.QuoteIdent(schema) + ".snapshots"

	if dryRun {
		var n int64
		err := conn.QueryRowContext(ctx, `SELECT count(*) FROM `+table+` WHERE retrieved_at < $1`, cutoff).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("count snapshots: %w", err)
		}
		return n, nil
	}

	res, err := conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE retrieved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return res.RowsAffected()
}
