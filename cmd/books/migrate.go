package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates automatically; this one is useful to create an
empty book or to check which schema version a book is at.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			status, _ := cmd.Flags().GetBool("status")
			out := cmd.OutOrStdout()

			store, err := storage.NewSQLiteStorage(a.settings.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			before, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			if status {
				fmt.Fprintf(out, "Database        %s\nCurrent version %d\nLatest version  %d\n",
					store.Path(), before, storage.ExpectedSchemaVersion)
				return nil
			}

			slog.Info("Running database migrations", "database", store.Path(), "from", before)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			after, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			if after == before {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Already at schema version %d", after)))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated %s from version %d to %d", store.Path(), before, after)))
			return nil
		},
	}

	cmd.Flags().Bool("status", false, "show the schema version without migrating")

	return cmd
}
