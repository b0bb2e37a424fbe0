package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/echonote/internal/adapters/turso"
	"github.com/emiliopalmerini/echonote/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run libSQL database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).
Postgres databases create their schema on connect and need no migrations.

Examples:
  echonote migrate      # Run all pending migrations
  echonote migrate 1    # Migrate to version 1
  echonote migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	if cfg.Database.IsPostgres() {
		fmt.Fprintln(out, "Postgres schema is created on connect; nothing to migrate")
		return nil
	}

	var target *int
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = &v
	}

	db, err := turso.Open(ctx, cfg.Database.URL, cfg.Database.AuthToken, turso.Options{Ping: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := migrate.New(ctx, db, logger)
	if err != nil {
		return err
	}

	current, dirty, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", current)
	}
	fmt.Fprintf(out, "Current version: %d\n", current)

	if target == nil {
		applied, err := m.Up(ctx)
		if err != nil {
			return err
		}
		if applied == 0 {
			fmt.Fprintln(out, "No pending migrations")
			return nil
		}
		fmt.Fprintf(out, "Applied %d migration(s)\n", applied)
	} else {
		if *target == current {
			fmt.Fprintln(out, "Already at target version")
			return nil
		}
		if err := m.To(ctx, *target); err != nil {
			return err
		}
	}

	version, _, err := m.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Now at version: %d\n", version)
	return nil
}
