package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "tableside/booking-svc/internal/api/http"
	"tableside/config"
)

func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the periodic reconciler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")

	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()
	// Background work stops before the connections close.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ensureSchema(ctx, a.primary, cfg.PrimaryTimeout*5, cfg.PrimaryRetryAfter)
	if cfg.ReconcileInterval > 0 {
		go a.reconciler.Start(ctx, cfg.ReconcileInterval)
	}

	handler := httpapi.NewHandler(a.orders, a.reservations, a.availability, a.ledger, a.reconciler)
	err = httpapi.StartServer(ctx, cfg.HTTPAddr, httpapi.NewRouter(handler))
	log.Printf("Booking Service stopped")
	return err
}

type schemaApplier interface {
	EnsureSchema(ctx context.Context) error
}

// ensureSchema applies the primary schema, retrying until the primary answers
// or ctx is done. Until then writes land in the fallback.
func ensureSchema(ctx context.Context, primary schemaApplier, timeout, retry time.Duration) bool {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	for {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err := primary.EnsureSchema(attemptCtx)
		cancel()
		if err == nil {
			log.Printf("Primary schema is up to date")
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		log.Printf("Primary schema not applied, retrying in %s: %v", retry, err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(retry):
		}
	}
}
