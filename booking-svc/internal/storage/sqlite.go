package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tableside/booking-svc/internal/domain"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteStore is the local fallback store. One row per (kind, id) plus a
// next-id counter per kind for the ids it assigns itself.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the fallback database at path.
//
// The database runs in WAL mode with a single connection, so every write is
// serialized and reads never see a half written record.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create fallback dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open fallback database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect fallback database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply fallback schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// NextID hands out ids above FallbackIDBase only.
func (s *SQLiteStore) NextID(ctx context.Context, kind domain.Kind) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO record_counters (kind, next_id) VALUES (?, ?)
		ON CONFLICT (kind) DO UPDATE SET next_id = MAX(record_counters.next_id, excluded.next_id - 1) + 1
		RETURNING next_id - 1
	`, string(kind), FallbackIDBase+2).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", kind, err)
	}
	return id, nil
}

// Upsert writes rec keyed by (kind, id). An older version never replaces a
// newer one, so out of order mirror writes are harmless.
func (s *SQLiteStore) Upsert(ctx context.Context, rec Record) error {
	return s.write(ctx, rec, `
		INSERT INTO records (kind, id, origin, lookup_key, status, payload, updated_at, pending_sync, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			origin = excluded.origin,
			lookup_key = excluded.lookup_key,
			status = excluded.status,
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			pending_sync = excluded.pending_sync,
			deleted = excluded.deleted
		WHERE excluded.updated_at >= records.updated_at
	`)
}

// Replace is Upsert for copies that originate in the primary: a pending
// offline write is never clobbered by one.
func (s *SQLiteStore) Replace(ctx context.Context, rec Record) error {
	rec.PendingSync = false
	rec.Deleted = false
	return s.write(ctx, rec, `
		INSERT INTO records (kind, id, origin, lookup_key, status, payload, updated_at, pending_sync, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			origin = excluded.origin,
			lookup_key = excluded.lookup_key,
			status = excluded.status,
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			pending_sync = 0,
			deleted = 0
		WHERE records.pending_sync = 0 AND excluded.updated_at >= records.updated_at
	`)
}

func (s *SQLiteStore) write(ctx context.Context, rec Record, query string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert %s/%d: begin tx: %w", rec.Kind, rec.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query,
		string(rec.Kind), rec.ID, string(rec.Origin), rec.LookupKey, rec.Status,
		string(rec.Payload), rec.UpdatedAt.UnixNano(), rec.PendingSync, rec.Deleted,
	); err != nil {
		return fmt.Errorf("upsert %s/%d: %w", rec.Kind, rec.ID, err)
	}

	if rec.ID >= FallbackIDBase {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO record_counters (kind, next_id) VALUES (?, ?)
			ON CONFLICT (kind) DO UPDATE SET next_id = MAX(record_counters.next_id, excluded.next_id)
		`, string(rec.Kind), rec.ID+1); err != nil {
			return fmt.Errorf("upsert %s/%d: raise counter: %w", rec.Kind, rec.ID, err)
		}
	}

	return tx.Commit()
}

const sqliteColumns = `row_id, kind, id, origin, lookup_key, status, payload, updated_at, pending_sync, deleted`

func (s *SQLiteStore) FindByID(ctx context.Context, kind domain.Kind, id int) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM records
		WHERE kind = ? AND id = ? AND deleted = 0
	`, string(kind), id)

	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, domain.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("find %s/%d: %w", kind, id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) FindAll(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM records
		WHERE kind = ? AND deleted = 0
			AND (? = '' OR status = ?)
			AND (? = '' OR lookup_key = ?)
		ORDER BY id
	`, string(kind), filter.Status, filter.Status, filter.Key, filter.Key)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return collectSQLiteRecords(rows)
}

func (s *SQLiteStore) FindPending(ctx context.Context, kind domain.Kind) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM records
		WHERE kind = ? AND pending_sync = 1
		ORDER BY id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list pending %s: %w", kind, err)
	}
	return collectSQLiteRecords(rows)
}

// MarkSynced clears the pending flag unless the record changed after it was
// read for syncing. Synced tombstones are removed for good.
func (s *SQLiteStore) MarkSynced(ctx context.Context, kind domain.Kind, id int, updatedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark synced %s/%d: begin tx: %w", kind, id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM records WHERE kind = ? AND id = ? AND deleted = 1 AND updated_at = ?
	`, string(kind), id, updatedAt.UnixNano()); err != nil {
		return fmt.Errorf("mark synced %s/%d: %w", kind, id, err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE records SET pending_sync = 0 WHERE kind = ? AND id = ? AND updated_at = ?
	`, string(kind), id, updatedAt.UnixNano()); err != nil {
		return fmt.Errorf("mark synced %s/%d: %w", kind, id, err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Tombstone(ctx context.Context, kind domain.Kind, id int, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE records SET deleted = 1, pending_sync = 1, updated_at = ?
		WHERE kind = ? AND id = ? AND deleted = 0
	`, at.UnixNano(), string(kind), id)
	if err != nil {
		return fmt.Errorf("tombstone %s/%d: %w", kind, id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, kind domain.Kind, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s/%d: %w", kind, id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		kind      string
		origin    string
		payload   string
		updatedAt int64
	)
	if err := row.Scan(&rec.RowID, &kind, &rec.ID, &origin, &rec.LookupKey, &rec.Status,
		&payload, &updatedAt, &rec.PendingSync, &rec.Deleted); err != nil {
		return Record{}, err
	}
	rec.Kind = domain.Kind(kind)
	rec.Origin = Origin(origin)
	rec.Payload = []byte(payload)
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return rec, nil
}

func collectSQLiteRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ FallbackStore = (*SQLiteStore)(nil)
