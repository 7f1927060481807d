package cli

import (
	"github.com/spf13/cobra"

	"tableside/config"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking-svc",
		Short: "Orders and table reservations that survive primary database outages",
		Long: `booking-svc serves restaurant orders, reservations and availability rules.

Writes go to PostgreSQL and are mirrored to a local SQLite file. While
PostgreSQL is unreachable the service keeps working on the local file and
reconciliation pushes those writes back once it returns.

Configuration is read from the environment (DB_HOST, FALLBACK_DB_PATH,
REDIS_HOST, KAFKA_BROKER, ...).`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewReconcileCommand())
	cmd.AddCommand(NewMigrateCommand())

	return cmd
}
