package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tableside/booking-svc/internal/domain"
)

const reconcileLockKey = "reconcile:run"

// RunLock guards a pass across processes.
type RunLock interface {
	TryAcquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

type ReconcilerOptions struct {
	// SettleWindow skips ids updated more recently than this.
	SettleWindow time.Duration
	Kinds        []domain.Kind
}

// Reconciler pushes offline writes back to the primary and collapses
// duplicate rows that share one logical id.
type Reconciler struct {
	primary  PrimaryStore
	fallback FallbackStore
	lock     RunLock
	opts     ReconcilerOptions
	now      func() time.Time

	running sync.Mutex
}

// NewReconciler accepts a nil lock for single process deployments.
func NewReconciler(primary PrimaryStore, fallback FallbackStore, lock RunLock, opts ReconcilerOptions) *Reconciler {
	if len(opts.Kinds) == 0 {
		opts.Kinds = domain.Kinds
	}
	return &Reconciler{
		primary:  primary,
		fallback: fallback,
		lock:     lock,
		opts:     opts,
		now:      time.Now,
	}
}

// Run performs one pass. A pass already running here or in another process
// yields ErrReconciliationRunning.
func (r *Reconciler) Run(ctx context.Context) (domain.ReconcileReport, error) {
	report := domain.ReconcileReport{StartedAt: r.now().UTC()}

	if !r.running.TryLock() {
		return report, domain.ErrReconciliationRunning
	}
	defer r.running.Unlock()

	if r.lock != nil {
		release, acquired, err := r.lock.TryAcquire(ctx, reconcileLockKey)
		if err != nil {
			return report, fmt.Errorf("acquire reconcile lock: %w", err)
		}
		if !acquired {
			return report, domain.ErrReconciliationRunning
		}
		defer release()
	}

	if err := r.primary.Ping(ctx); err != nil {
		return report, fmt.Errorf("%w: primary: %v", domain.ErrStorageUnavailable, err)
	}

	for _, kind := range r.opts.Kinds {
		if err := r.syncPending(ctx, kind, &report); err != nil {
			return report, err
		}
		if err := r.collapse(ctx, kind, &report); err != nil {
			return report, err
		}
	}

	report.Duration = r.now().Sub(report.StartedAt)
	return report, nil
}

func (r *Reconciler) syncPending(ctx context.Context, kind domain.Kind, report *domain.ReconcileReport) error {
	pending, err := r.fallback.FindPending(ctx, kind)
	if err != nil {
		return fmt.Errorf("sync %s: %w", kind, err)
	}

	for _, rec := range pending {
		if rec.Deleted {
			err = r.primary.Delete(ctx, kind, rec.ID)
			if errors.Is(err, domain.ErrNotFound) {
				err = nil
			}
		} else {
			rec.PendingSync = false
			err = r.primary.Upsert(ctx, rec)
		}
		if err != nil {
			return fmt.Errorf("sync %s/%d: %w", kind, rec.ID, err)
		}

		if err := r.fallback.MarkSynced(ctx, kind, rec.ID, rec.UpdatedAt); err != nil {
			return fmt.Errorf("sync %s/%d: %w", kind, rec.ID, err)
		}
		report.Synced++
	}
	return nil
}

func (r *Reconciler) collapse(ctx context.Context, kind domain.Kind, report *domain.ReconcileReport) error {
	rows, err := r.primary.FindRows(ctx, kind)
	if err != nil {
		return fmt.Errorf("collapse %s: %w", kind, err)
	}

	settled := r.now().Add(-r.opts.SettleWindow)
	for id, group := range groupByID(rows) {
		if len(group) < 2 {
			continue
		}

		canonical := Canonical(group)
		if canonical.UpdatedAt.After(settled) {
			report.Skipped++
			continue
		}

		report.DuplicatesFound++
		log.Printf("Reconcile %s/%d: %v, keeping row %d of %d", kind, id,
			domain.ErrReconciliationConflict, canonical.RowID, len(group))

		for _, row := range group {
			if row.RowID == canonical.RowID {
				continue
			}
			if err := r.primary.DeleteRow(ctx, kind, row.RowID); err != nil {
				return fmt.Errorf("collapse %s/%d: %w", kind, id, err)
			}
			report.RecordsRemoved++
		}

		if err := r.fallback.Replace(ctx, canonical); err != nil {
			return fmt.Errorf("collapse %s/%d: overwrite fallback: %w", kind, id, err)
		}
	}
	return nil
}

// Start runs a pass every interval until ctx is done.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := r.Run(ctx)
			switch {
			case errors.Is(err, domain.ErrReconciliationRunning):
				log.Printf("Reconciliation skipped: %v", err)
			case err != nil:
				log.Printf("Reconciliation failed: %v", err)
			case report.Synced > 0 || report.DuplicatesFound > 0:
				log.Printf("Reconciliation: synced=%d duplicates=%d removed=%d skipped=%d",
					report.Synced, report.DuplicatesFound, report.RecordsRemoved, report.Skipped)
			}
		}
	}
}

// Canonical picks the latest updated row, ties broken by the highest row id.
func Canonical(group []Record) Record {
	best := group[0]
	for _, rec := range group[1:] {
		if rec.UpdatedAt.After(best.UpdatedAt) ||
			(rec.UpdatedAt.Equal(best.UpdatedAt) && rec.RowID > best.RowID) {
			best = rec
		}
	}
	return best
}

func groupByID(rows []Record) map[int][]Record {
	groups := make(map[int][]Record)
	for _, rec := range rows {
		groups[rec.ID] = append(groups[rec.ID], rec)
	}
	return groups
}
