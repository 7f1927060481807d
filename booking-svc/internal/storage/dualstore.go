package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"tableside/booking-svc/internal/domain"
)

type DualStoreOptions struct {
	// PrimaryTimeout bounds every call to the primary.
	PrimaryTimeout time.Duration
	// PrimaryRetryAfter is how long the primary is skipped after a failure.
	PrimaryRetryAfter time.Duration
}

// DualStore writes to the primary first and mirrors to the fallback in the
// background. While the primary is unreachable every operation runs against
// the fallback and writes are tagged pending sync for the Reconciler.
type DualStore struct {
	primary  PrimaryStore
	fallback FallbackStore
	opts     DualStoreOptions
	now      func() time.Time

	downUntil atomic.Int64
	mirrors   sync.WaitGroup
}

func NewDualStore(primary PrimaryStore, fallback FallbackStore, opts DualStoreOptions) *DualStore {
	if opts.PrimaryTimeout <= 0 {
		opts.PrimaryTimeout = 2 * time.Second
	}
	return &DualStore{
		primary:  primary,
		fallback: fallback,
		opts:     opts,
		now:      time.Now,
	}
}

// PrimaryAvailable reports whether the primary is currently tried at all.
func (s *DualStore) PrimaryAvailable() bool {
	return s.now().UnixNano() >= s.downUntil.Load()
}

// Wait blocks until in-flight mirror writes are done.
func (s *DualStore) Wait() {
	s.mirrors.Wait()
}

func (s *DualStore) markDown(op string, err error) {
	log.Printf("Primary %s failed, serving from fallback: %v", op, err)
	s.downUntil.Store(s.now().Add(s.opts.PrimaryRetryAfter).UnixNano())
}

func (s *DualStore) primaryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.PrimaryTimeout)
}

// Save writes rec and returns it as stored. A zero ID gets a fresh id from
// whichever store accepts the write.
func (s *DualStore) Save(ctx context.Context, rec Record) (Record, error) {
	if s.PrimaryAvailable() {
		saved, err := s.saveToPrimary(ctx, rec)
		if err == nil {
			s.mirror(saved)
			return saved, nil
		}
		if ctx.Err() != nil {
			return Record{}, ctx.Err()
		}
		s.markDown("write", err)
	}
	return s.saveToFallback(ctx, rec)
}

func (s *DualStore) saveToPrimary(ctx context.Context, rec Record) (Record, error) {
	pctx, cancel := s.primaryContext(ctx)
	defer cancel()

	switch {
	case rec.ID == 0:
		id, err := s.primary.NextID(pctx, rec.Kind)
		if err != nil {
			return Record{}, err
		}
		rec.ID = id
		rec.Origin = OriginPrimary
	case rec.Origin == "":
		existing, err := s.primary.FindByID(pctx, rec.Kind, rec.ID)
		switch {
		case err == nil:
			rec.Origin = existing.Origin
		case errors.Is(err, domain.ErrNotFound):
			rec.Origin = OriginPrimary
		default:
			return Record{}, err
		}
	}

	rec.PendingSync = false
	if err := s.primary.Upsert(pctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *DualStore) saveToFallback(ctx context.Context, rec Record) (Record, error) {
	switch {
	case rec.ID == 0:
		id, err := s.fallback.NextID(ctx, rec.Kind)
		if err != nil {
			return Record{}, unavailable(err)
		}
		rec.ID = id
		rec.Origin = OriginFallback
	case rec.Origin == "":
		existing, err := s.fallback.FindByID(ctx, rec.Kind, rec.ID)
		switch {
		case err == nil:
			rec.Origin = existing.Origin
		case errors.Is(err, domain.ErrNotFound):
			rec.Origin = OriginFallback
		default:
			return Record{}, unavailable(err)
		}
	}

	rec.PendingSync = true
	if err := s.fallback.Upsert(ctx, rec); err != nil {
		return Record{}, unavailable(err)
	}
	return rec, nil
}

// mirror copies a committed primary write to the fallback without blocking
// the caller. Failures are left for the next reconciliation pass.
func (s *DualStore) mirror(rec Record) {
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.PrimaryTimeout)
		defer cancel()

		if err := s.fallback.Replace(ctx, rec); err != nil {
			log.Printf("Fallback mirror of %s/%d failed: %v", rec.Kind, rec.ID, err)
		}
	}()
}

func (s *DualStore) mirrorDelete(kind domain.Kind, id int) {
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.PrimaryTimeout)
		defer cancel()

		if err := s.fallback.Delete(ctx, kind, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Printf("Fallback mirror delete of %s/%d failed: %v", kind, id, err)
		}
	}()
}

func (s *DualStore) FindByID(ctx context.Context, kind domain.Kind, id int) (Record, error) {
	if s.PrimaryAvailable() {
		pctx, cancel := s.primaryContext(ctx)
		rec, err := s.primary.FindByID(pctx, kind, id)
		cancel()

		switch {
		case err == nil:
			if pending, ok := s.pendingNewer(ctx, kind, id, rec.UpdatedAt); ok {
				return pending, nil
			}
			return rec, nil
		case errors.Is(err, domain.ErrNotFound):
			if pending, ok := s.pendingNewer(ctx, kind, id, time.Time{}); ok {
				return pending, nil
			}
			return Record{}, domain.ErrNotFound
		case ctx.Err() != nil:
			return Record{}, ctx.Err()
		default:
			s.markDown("read", err)
		}
	}

	rec, err := s.fallback.FindByID(ctx, kind, id)
	if errors.Is(err, domain.ErrNotFound) {
		return Record{}, domain.ErrNotFound
	}
	if err != nil {
		return Record{}, unavailable(err)
	}
	return rec, nil
}

// pendingNewer returns the fallback copy when it holds an offline write that
// has not reached the primary yet.
func (s *DualStore) pendingNewer(ctx context.Context, kind domain.Kind, id int, than time.Time) (Record, bool) {
	rec, err := s.fallback.FindByID(ctx, kind, id)
	if err != nil || !rec.PendingSync || !rec.UpdatedAt.After(than) {
		return Record{}, false
	}
	return rec, true
}

func (s *DualStore) FindAll(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]Record, error) {
	if s.PrimaryAvailable() {
		pctx, cancel := s.primaryContext(ctx)
		records, err := s.primary.FindAll(pctx, kind, filter)
		cancel()

		if err == nil {
			return s.overlayPending(ctx, kind, filter, records), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.markDown("list", err)
	}

	records, err := s.fallback.FindAll(ctx, kind, filter)
	if err != nil {
		return nil, unavailable(err)
	}
	return records, nil
}

func (s *DualStore) overlayPending(ctx context.Context, kind domain.Kind, filter domain.Filter, records []Record) []Record {
	pending, err := s.fallback.FindPending(ctx, kind)
	if err != nil {
		log.Printf("Fallback pending lookup for %s failed: %v", kind, err)
		return records
	}
	if len(pending) == 0 {
		return records
	}

	byID := make(map[int]Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	for _, rec := range pending {
		current, ok := byID[rec.ID]
		if ok && !rec.UpdatedAt.After(current.UpdatedAt) {
			continue
		}
		// A newer offline write wins, even when it no longer matches the filter.
		delete(byID, rec.ID)
		if !rec.Deleted && matches(rec, filter) {
			byID[rec.ID] = rec
		}
	}

	merged := make([]Record, 0, len(byID))
	for _, rec := range byID {
		merged = append(merged, rec)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged
}

func (s *DualStore) Delete(ctx context.Context, kind domain.Kind, id int) error {
	if s.PrimaryAvailable() {
		pctx, cancel := s.primaryContext(ctx)
		err := s.primary.Delete(pctx, kind, id)
		cancel()

		switch {
		case err == nil:
			s.mirrorDelete(kind, id)
			return nil
		case errors.Is(err, domain.ErrNotFound):
			if _, ok := s.pendingNewer(ctx, kind, id, time.Time{}); !ok {
				return domain.ErrNotFound
			}
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			s.markDown("delete", err)
		}
	}

	err := s.fallback.Tombstone(ctx, kind, id, s.now())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}

var _ Backend = (*DualStore)(nil)
