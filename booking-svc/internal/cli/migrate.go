package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tableside/booking-svc/internal/storage"
	"tableside/config"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the primary schema",
		Long: `Create the record tables in PostgreSQL. The SQLite fallback creates
its schema itself when opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := config.OpenPostgres(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.PrimaryTimeout*5)
			defer cancel()
			if err := storage.NewPostgresStore(db).EnsureSchema(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Primary schema is up to date")
			return nil
		},
	}
}
