package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"tableside/booking-svc/internal/domain"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PostgresStore is the primary store. A logical id may exist once per origin,
// so a fallback-created record synced back never overwrites a different
// primary record that got the same id while the stores were apart.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *PostgresStore) NextID(ctx context.Context, kind domain.Kind) (int, error) {
	var id int
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO record_counters (kind, next_id) VALUES ($1, 2)
		ON CONFLICT (kind) DO UPDATE SET next_id = record_counters.next_id + 1
		RETURNING next_id - 1
	`, string(kind)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", kind, err)
	}
	return id, nil
}

func (r *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert %s/%d: begin tx: %w", rec.Kind, rec.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (kind, id, origin, lookup_key, status, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, id, origin) DO UPDATE SET
			lookup_key = EXCLUDED.lookup_key,
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
		WHERE records.updated_at <= EXCLUDED.updated_at
	`, string(rec.Kind), rec.ID, string(rec.Origin), rec.LookupKey, rec.Status,
		string(rec.Payload), rec.UpdatedAt); err != nil {
		return fmt.Errorf("upsert %s/%d: %w", rec.Kind, rec.ID, err)
	}

	// Synced fallback ids keep their own range and never move the counter.
	if rec.ID < FallbackIDBase {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO record_counters (kind, next_id) VALUES ($1, $2)
			ON CONFLICT (kind) DO UPDATE SET next_id = GREATEST(record_counters.next_id, EXCLUDED.next_id)
		`, string(rec.Kind), rec.ID+1); err != nil {
			return fmt.Errorf("upsert %s/%d: raise counter: %w", rec.Kind, rec.ID, err)
		}
	}

	return tx.Commit()
}

const postgresColumns = `row_id, id, origin, lookup_key, status, payload, updated_at`

// FindByID returns the canonical row: latest update, then highest row id.
func (r *PostgresStore) FindByID(ctx context.Context, kind domain.Kind, id int) (Record, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+postgresColumns+`
		FROM records
		WHERE kind = $1 AND id = $2
		ORDER BY updated_at DESC, row_id DESC
		LIMIT 1
	`, string(kind), id)

	rec, err := scanPostgresRecord(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, domain.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("find %s/%d: %w", kind, id, err)
	}
	return rec, nil
}

// FindAll applies the filter to the canonical row of each id, never to a
// stale duplicate.
func (r *PostgresStore) FindAll(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+postgresColumns+`
		FROM (
			SELECT DISTINCT ON (id) `+postgresColumns+`
			FROM records
			WHERE kind = $1
			ORDER BY id, updated_at DESC, row_id DESC
		) canonical
		WHERE ($2 = '' OR status = $2) AND ($3 = '' OR lookup_key = $3)
		ORDER BY id
	`, string(kind), filter.Status, filter.Key)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return collectPostgresRecords(rows, kind)
}

func (r *PostgresStore) FindRows(ctx context.Context, kind domain.Kind) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+postgresColumns+`
		FROM records
		WHERE kind = $1
		ORDER BY id, row_id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list rows %s: %w", kind, err)
	}
	return collectPostgresRecords(rows, kind)
}

func (r *PostgresStore) Delete(ctx context.Context, kind domain.Kind, id int) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM records WHERE kind = $1 AND id = $2", string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s/%d: %w", kind, id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresStore) DeleteRow(ctx context.Context, kind domain.Kind, rowID int64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM records WHERE kind = $1 AND row_id = $2", string(kind), rowID)
	if err != nil {
		return fmt.Errorf("delete %s row %d: %w", kind, rowID, err)
	}
	return nil
}

func scanPostgresRecord(row rowScanner, kind domain.Kind) (Record, error) {
	var (
		rec       Record
		origin    string
		payload   []byte
		updatedAt time.Time
	)
	if err := row.Scan(&rec.RowID, &rec.ID, &origin, &rec.LookupKey, &rec.Status, &payload, &updatedAt); err != nil {
		return Record{}, err
	}
	rec.Kind = kind
	rec.Origin = Origin(origin)
	rec.Payload = payload
	rec.UpdatedAt = updatedAt.UTC()
	return rec, nil
}

func collectPostgresRecords(rows *sql.Rows, kind domain.Kind) ([]Record, error) {
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanPostgresRecord(rows, kind)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ PrimaryStore = (*PostgresStore)(nil)
