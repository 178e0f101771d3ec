package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hsdfat8/telbill/internal/adapters/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var status, verify bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL billing schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Connecting to database...")

			adapter := postgres.NewPostgresAdapter(cfg.Database)
			if err := adapter.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer adapter.Disconnect(context.Background())

			migrator := postgres.NewMigrator(adapter.DB())

			if status {
				return showMigrationStatus(ctx, out, migrator)
			}

			if err := migrator.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if verify {
				if err := migrator.VerifySchema(ctx); err != nil {
					return fmt.Errorf("schema verification failed: %w", err)
				}
			}

			fmt.Fprintln(out, "✓ All operations completed successfully!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show migration status")
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify schema after migration")

	return cmd
}

func showMigrationStatus(ctx context.Context, out io.Writer, migrator *postgres.Migrator) error {
	fmt.Fprintln(out, "\nMigration Status:")
	fmt.Fprintln(out, "================")

	migrations, err := migrator.GetMigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if len(migrations) == 0 {
		fmt.Fprintln(out, "No migrations have been applied yet.")
		return nil
	}

	for _, m := range migrations {
		fmt.Fprintf(out, "\n✓ %s\n", m.MigrationName)
		fmt.Fprintf(out, "  Description: %s\n", m.Description)
		fmt.Fprintf(out, "  Applied at:  %s\n", m.AppliedAt.Format(time.RFC3339))
	}

	return nil
}
