package storage

import (
	"context"
	"time"

	"tableside/booking-svc/internal/domain"
)

// Origin names the store that assigned a record's id.
type Origin string

const (
	OriginPrimary  Origin = "primary"
	OriginFallback Origin = "fallback"
)

// FallbackIDBase starts the id range the fallback assigns from. The primary
// counts below it, so records created on either side during an outage never
// share an id.
const FallbackIDBase = 1_000_000_000

// Record is the storage envelope shared by both stores. Payload holds the
// JSON encoded entity, the remaining fields are indexed columns.
type Record struct {
	Kind      domain.Kind
	ID        int
	RowID     int64
	Origin    Origin
	LookupKey string
	Status    string
	Payload   []byte
	UpdatedAt time.Time

	// Fallback only.
	PendingSync bool
	Deleted     bool
}

func matches(rec Record, filter domain.Filter) bool {
	if filter.Status != "" && rec.Status != filter.Status {
		return false
	}
	if filter.Key != "" && rec.LookupKey != filter.Key {
		return false
	}
	return true
}

// RecordStore is the leaf repository, implemented by PostgresStore and SQLiteStore.
type RecordStore interface {
	NextID(ctx context.Context, kind domain.Kind) (int, error)
	Upsert(ctx context.Context, rec Record) error
	FindByID(ctx context.Context, kind domain.Kind, id int) (Record, error)
	FindAll(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]Record, error)
	Delete(ctx context.Context, kind domain.Kind, id int) error
	Ping(ctx context.Context) error
}

type PrimaryStore interface {
	RecordStore
	// FindRows returns every row of a kind, duplicates included.
	FindRows(ctx context.Context, kind domain.Kind) ([]Record, error)
	DeleteRow(ctx context.Context, kind domain.Kind, rowID int64) error
}

type FallbackStore interface {
	RecordStore
	// FindPending returns records written while the primary was down, tombstones included.
	FindPending(ctx context.Context, kind domain.Kind) ([]Record, error)
	MarkSynced(ctx context.Context, kind domain.Kind, id int, updatedAt time.Time) error
	Tombstone(ctx context.Context, kind domain.Kind, id int, at time.Time) error
	// Replace overwrites the local copy unless it is newer or a pending offline write.
	Replace(ctx context.Context, rec Record) error
}
