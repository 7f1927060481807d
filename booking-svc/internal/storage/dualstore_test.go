package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/booking-svc/internal/domain"
)

func newTestDualStore(t *testing.T, retryAfter time.Duration) (*DualStore, *memPrimary, *SQLiteStore) {
	t.Helper()
	primary := newMemPrimary()
	fallback := createTestSQLite(t)
	store := NewDualStore(primary, fallback, DualStoreOptions{
		PrimaryTimeout:    time.Second,
		PrimaryRetryAfter: retryAfter,
	})
	t.Cleanup(store.Wait)
	return store, primary, fallback
}

func TestDualStore_SaveMirrorsPrimaryWrites(t *testing.T) {
	store, primary, fallback := newTestDualStore(t, 0)
	ctx := context.Background()

	saved, err := store.Save(ctx, testRecord(domain.KindOrder, 0, "pending", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 1, saved.ID)
	assert.Equal(t, OriginPrimary, saved.Origin)
	assert.False(t, saved.PendingSync)
	assert.Len(t, primary.rowsFor(domain.KindOrder, 1), 1)

	store.Wait()
	mirrored, err := fallback.FindByID(ctx, domain.KindOrder, 1)
	require.NoError(t, err)
	assert.Equal(t, "pending", mirrored.Status)
	assert.False(t, mirrored.PendingSync)
}

func TestDualStore_SaveFallsBackWhenPrimaryDown(t *testing.T) {
	store, primary, fallback := newTestDualStore(t, time.Hour)
	ctx := context.Background()
	primary.setDown(true)

	saved, err := store.Save(ctx, testRecord(domain.KindReservation, 0, "pending", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, FallbackIDBase+1, saved.ID)
	assert.Equal(t, OriginFallback, saved.Origin)
	assert.True(t, saved.PendingSync)
	assert.False(t, store.PrimaryAvailable())

	pending, err := fallback.FindPending(ctx, domain.KindReservation)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	got, err := store.FindByID(ctx, domain.KindReservation, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
}

func TestDualStore_SkipsPrimaryUntilRetry(t *testing.T) {
	store, primary, _ := newTestDualStore(t, time.Hour)
	ctx := context.Background()

	primary.setDown(true)
	_, err := store.Save(ctx, testRecord(domain.KindOrder, 0, "pending", time.Now()))
	require.NoError(t, err)

	primary.setDown(false)
	saved, err := store.Save(ctx, testRecord(domain.KindOrder, 0, "pending", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, OriginFallback, saved.Origin)
	assert.Empty(t, primary.rowsFor(domain.KindOrder, saved.ID))

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.True(t, store.PrimaryAvailable())
}

func TestDualStore_BothStoresDown(t *testing.T) {
	store, primary, fallback := newTestDualStore(t, 0)
	ctx := context.Background()
	primary.setDown(true)
	require.NoError(t, fallback.Close())

	_, err := store.Save(ctx, testRecord(domain.KindOrder, 0, "pending", time.Now()))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = store.FindByID(ctx, domain.KindOrder, 1)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = store.FindAll(ctx, domain.KindOrder, domain.Filter{})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestDualStore_UpdateKeepsOrigin(t *testing.T) {
	store, primary, _ := newTestDualStore(t, 0)
	ctx := context.Background()
	at := time.Now().UTC()

	fromFallback := testRecord(domain.KindOrder, 4, "pending", at)
	fromFallback.Origin = OriginFallback
	require.NoError(t, primary.Upsert(ctx, fromFallback))

	saved, err := store.Save(ctx, testRecord(domain.KindOrder, 4, "confirmed", at.Add(time.Second)))
	require.NoError(t, err)
	assert.Equal(t, OriginFallback, saved.Origin)

	rows := primary.rowsFor(domain.KindOrder, 4)
	require.Len(t, rows, 1)
	assert.Equal(t, "confirmed", rows[0].Status)
}

func TestDualStore_ReadsPreferNewerOfflineWrites(t *testing.T) {
	store, primary, _ := newTestDualStore(t, 0)
	ctx := context.Background()
	at := time.Now().UTC()

	_, err := store.Save(ctx, testRecord(domain.KindReservation, 0, "pending", at))
	require.NoError(t, err)
	_, err = store.Save(ctx, testRecord(domain.KindReservation, 0, "pending", at))
	require.NoError(t, err)
	store.Wait()

	primary.setDown(true)
	_, err = store.Save(ctx, testRecord(domain.KindReservation, 1, "cancelled", at.Add(time.Minute)))
	require.NoError(t, err)
	primary.setDown(false)

	got, err := store.FindByID(ctx, domain.KindReservation, 1)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)

	active, err := store.FindAll(ctx, domain.KindReservation, domain.Filter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].ID)

	all, err := store.FindAll(ctx, domain.KindReservation, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cancelled", all[0].Status)
}

func TestDualStore_Delete(t *testing.T) {
	store, primary, fallback := newTestDualStore(t, 0)
	ctx := context.Background()

	saved, err := store.Save(ctx, testRecord(domain.KindClient, 0, "", time.Now()))
	require.NoError(t, err)
	store.Wait()

	require.NoError(t, store.Delete(ctx, domain.KindClient, saved.ID))
	store.Wait()
	assert.Empty(t, primary.rowsFor(domain.KindClient, saved.ID))
	_, err = fallback.FindByID(ctx, domain.KindClient, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, domain.KindClient, saved.ID), domain.ErrNotFound)
}

func TestDualStore_DeleteWhilePrimaryDownLeavesTombstone(t *testing.T) {
	store, primary, fallback := newTestDualStore(t, 0)
	ctx := context.Background()

	saved, err := store.Save(ctx, testRecord(domain.KindOrder, 0, "pending", time.Now()))
	require.NoError(t, err)
	store.Wait()

	primary.setDown(true)
	require.NoError(t, store.Delete(ctx, domain.KindOrder, saved.ID))

	_, err = store.FindByID(ctx, domain.KindOrder, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := fallback.FindPending(ctx, domain.KindOrder)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Deleted)
}

func TestDualStore_CancelledContext(t *testing.T) {
	store, _, _ := newTestDualStore(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindByID(ctx, domain.KindOrder, 1)
	assert.Error(t, err)
}
