package tests

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/locks"
	"tableside/booking-svc/internal/service"
	"tableside/booking-svc/internal/storage"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// downPrimary fails every call, as a Postgres that is not running would.
type downPrimary struct{}

func (downPrimary) Ping(context.Context) error { return errConnRefused }
func (downPrimary) NextID(context.Context, domain.Kind) (int, error) {
	return 0, errConnRefused
}
func (downPrimary) Upsert(context.Context, storage.Record) error { return errConnRefused }
func (downPrimary) FindByID(context.Context, domain.Kind, int) (storage.Record, error) {
	return storage.Record{}, errConnRefused
}
func (downPrimary) FindAll(context.Context, domain.Kind, domain.Filter) ([]storage.Record, error) {
	return nil, errConnRefused
}
func (downPrimary) Delete(context.Context, domain.Kind, int) error { return errConnRefused }
func (downPrimary) FindRows(context.Context, domain.Kind) ([]storage.Record, error) {
	return nil, errConnRefused
}
func (downPrimary) DeleteRow(context.Context, domain.Kind, int64) error { return errConnRefused }

// offlineStore is a DualStore running on its SQLite fallback only.
func offlineStore(t *testing.T) *storage.DualStore {
	t.Helper()
	fallback, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "fallback.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { fallback.Close() })

	store := storage.NewDualStore(downPrimary{}, fallback, storage.DualStoreOptions{
		PrimaryTimeout:    time.Second,
		PrimaryRetryAfter: time.Hour,
	})
	t.Cleanup(store.Wait)
	return store
}

type bookingFixture struct {
	store        *storage.DualStore
	reservations *service.ReservationService
	availability *service.AvailabilityService
	ledger       *service.ClientLedger
}

func newBookingFixture(t *testing.T, defaultMax int) *bookingFixture {
	t.Helper()
	store := offlineStore(t)
	locker := locks.NewKeyed()

	reservations := storage.NewReservations(store)
	availability := service.NewAvailabilityService(storage.NewAvailabilityRules(store), reservations, locker, defaultMax)
	ledger := service.NewClientLedger(storage.NewClients(store), locker)

	return &bookingFixture{
		store:        store,
		reservations: service.NewReservationService(reservations, availability, ledger, nil, locker),
		availability: availability,
		ledger:       ledger,
	}
}

func reservationInput(date, clock string) service.CreateReservationInput {
	return service.CreateReservationInput{
		CustomerName:  "Ana Souza",
		CustomerEmail: "ana@example.com",
		PartySize:     2,
		Date:          date,
		Time:          clock,
	}
}

func intPtr(v int) *int { return &v }
