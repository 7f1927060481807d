package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"tableside/booking-svc/internal/domain"
)

func NewReconcileCommand() *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass and print the report",
		Long: `Push writes made while the primary was down back to PostgreSQL and
collapse duplicate rows that share one id. Fails when the primary is still
unreachable or another pass is running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseKinds(kinds)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.newReconciler(scope).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "limit the pass to these kinds (orders, reservations, availability, clients)")

	return cmd
}

func parseKinds(names []string) ([]domain.Kind, error) {
	var kinds []domain.Kind
	for _, name := range names {
		kind, ok := lookupKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q: must be one of %v", name, domain.Kinds)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func lookupKind(name string) (domain.Kind, bool) {
	for _, kind := range domain.Kinds {
		if string(kind) == name {
			return kind, true
		}
	}
	return "", false
}
