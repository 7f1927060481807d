package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/booking-svc/internal/domain"
)

func TestOpenSQLite_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fallback.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path)
		require.NoError(t, err, "open %d", i)
		require.NoError(t, s.Close())
	}
}

func TestSQLiteStore_NextIDIsMonotonic(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()

	for want := FallbackIDBase + 1; want <= FallbackIDBase+3; want++ {
		id, err := s.NextID(ctx, domain.KindOrder)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	id, err := s.NextID(ctx, domain.KindReservation)
	require.NoError(t, err)
	assert.Equal(t, FallbackIDBase+1, id, "counters are per kind")
}

func TestSQLiteStore_UpsertRaisesCounter(t *testing.T) {
	tests := []struct {
		name     string
		upserted int
		wantNext int
	}{
		{name: "primary id leaves the fallback range alone", upserted: 41, wantNext: FallbackIDBase + 1},
		{name: "fallback id moves the counter past it", upserted: FallbackIDBase + 41, wantNext: FallbackIDBase + 42},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			s := createTestSQLite(t)
			ctx := context.Background()

			require.NoError(t, s.Upsert(ctx, testRecord(domain.KindOrder, testCase.upserted, "pending", time.Now())))

			id, err := s.NextID(ctx, domain.KindOrder)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantNext, id)
		})
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 18, 30, 0, 123000, time.UTC)

	rec := testRecord(domain.KindReservation, 7, "pending", at)
	rec.Origin = OriginFallback
	rec.PendingSync = true
	require.NoError(t, s.Upsert(ctx, rec))

	got, err := s.FindByID(ctx, domain.KindReservation, 7)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Origin, got.Origin)
	assert.Equal(t, rec.LookupKey, got.LookupKey)
	assert.Equal(t, rec.Status, got.Status)
	assert.JSONEq(t, string(rec.Payload), string(got.Payload))
	assert.True(t, at.Equal(got.UpdatedAt))
	assert.True(t, got.PendingSync)

	_, err = s.FindByID(ctx, domain.KindOrder, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_UpsertKeepsNewerVersion(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Upsert(ctx, testRecord(domain.KindOrder, 1, "confirmed", now)))
	require.NoError(t, s.Upsert(ctx, testRecord(domain.KindOrder, 1, "pending", now.Add(-time.Minute))))

	got, err := s.FindByID(ctx, domain.KindOrder, 1)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)
}

func TestSQLiteStore_FindAllFilters(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()
	now := time.Now()

	first := testRecord(domain.KindReservation, 1, "pending", now)
	second := testRecord(domain.KindReservation, 2, "cancelled", now)
	other := testRecord(domain.KindReservation, 3, "pending", now)
	other.LookupKey = "2026-06-02"
	for _, rec := range []Record{first, second, other} {
		require.NoError(t, s.Upsert(ctx, rec))
	}

	all, err := s.FindAll(ctx, domain.KindReservation, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byDate, err := s.FindAll(ctx, domain.KindReservation, domain.Filter{Key: "2026-06-01"})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	pending, err := s.FindAll(ctx, domain.KindReservation, domain.Filter{Status: "pending", Key: "2026-06-01"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].ID)
}

func TestSQLiteStore_PendingAndMarkSynced(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()
	at := time.Now().UTC()

	rec := testRecord(domain.KindOrder, 5, "pending", at)
	rec.PendingSync = true
	require.NoError(t, s.Upsert(ctx, rec))

	pending, err := s.FindPending(ctx, domain.KindOrder)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// a stale timestamp leaves the flag alone
	require.NoError(t, s.MarkSynced(ctx, domain.KindOrder, 5, at.Add(-time.Second)))
	pending, err = s.FindPending(ctx, domain.KindOrder)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, s.MarkSynced(ctx, domain.KindOrder, 5, at))
	pending, err = s.FindPending(ctx, domain.KindOrder)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := s.FindByID(ctx, domain.KindOrder, 5)
	require.NoError(t, err)
	assert.False(t, got.PendingSync)
}

func TestSQLiteStore_Tombstone(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()
	at := time.Now().UTC()

	require.NoError(t, s.Upsert(ctx, testRecord(domain.KindOrder, 9, "pending", at)))

	deletedAt := at.Add(time.Second)
	require.NoError(t, s.Tombstone(ctx, domain.KindOrder, 9, deletedAt))

	_, err := s.FindByID(ctx, domain.KindOrder, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := s.FindPending(ctx, domain.KindOrder)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Deleted)

	require.NoError(t, s.MarkSynced(ctx, domain.KindOrder, 9, pending[0].UpdatedAt))
	pending, err = s.FindPending(ctx, domain.KindOrder)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, s.Tombstone(ctx, domain.KindOrder, 9, deletedAt), domain.ErrNotFound)
}

func TestSQLiteStore_ReplaceSkipsPendingWrites(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()
	at := time.Now().UTC()

	offline := testRecord(domain.KindOrder, 3, "confirmed", at)
	offline.PendingSync = true
	require.NoError(t, s.Upsert(ctx, offline))

	require.NoError(t, s.Replace(ctx, testRecord(domain.KindOrder, 3, "cancelled", at.Add(-time.Hour))))
	got, err := s.FindByID(ctx, domain.KindOrder, 3)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)

	require.NoError(t, s.MarkSynced(ctx, domain.KindOrder, 3, at))
	require.NoError(t, s.Replace(ctx, testRecord(domain.KindOrder, 3, "completed", at.Add(-time.Hour))))
	got, err = s.FindByID(ctx, domain.KindOrder, 3)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status, "older copies are ignored")

	require.NoError(t, s.Replace(ctx, testRecord(domain.KindOrder, 3, "cancelled", at.Add(time.Hour))))
	got, err = s.FindByID(ctx, domain.KindOrder, 3)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testRecord(domain.KindClient, 2, "", time.Now())))
	require.NoError(t, s.Delete(ctx, domain.KindClient, 2))
	assert.ErrorIs(t, s.Delete(ctx, domain.KindClient, 2), domain.ErrNotFound)
}
