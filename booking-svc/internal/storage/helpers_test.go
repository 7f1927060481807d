package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"tableside/booking-svc/internal/domain"
)

var errPrimaryDown = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

// createTestSQLite opens a fallback store in a temp dir.
func createTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "fallback.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// memPrimary is an in-memory primary with a (kind, id, origin) unique key and
// a switch to simulate an outage.
type memPrimary struct {
	mu       sync.Mutex
	rows     []Record
	nextRow  int64
	counters map[domain.Kind]int
	down     bool
}

func newMemPrimary() *memPrimary {
	return &memPrimary{counters: make(map[domain.Kind]int)}
}

func (m *memPrimary) setDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

// insertRow adds a raw row, bypassing the unique key, to seed duplicates.
func (m *memPrimary) insertRow(rec Record) Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRow++
	rec.RowID = m.nextRow
	m.rows = append(m.rows, rec)
	return rec
}

func (m *memPrimary) rowsFor(kind domain.Kind, id int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.rows {
		if rec.Kind == kind && rec.ID == id {
			out = append(out, rec)
		}
	}
	return out
}

func (m *memPrimary) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errPrimaryDown
	}
	return nil
}

func (m *memPrimary) NextID(ctx context.Context, kind domain.Kind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return 0, errPrimaryDown
	}
	m.counters[kind]++
	return m.counters[kind], nil
}

func (m *memPrimary) Upsert(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errPrimaryDown
	}
	if rec.ID < FallbackIDBase && m.counters[rec.Kind] < rec.ID {
		m.counters[rec.Kind] = rec.ID
	}
	for i, row := range m.rows {
		if row.Kind == rec.Kind && row.ID == rec.ID && row.Origin == rec.Origin {
			if !row.UpdatedAt.After(rec.UpdatedAt) {
				rec.RowID = row.RowID
				m.rows[i] = rec
			}
			return nil
		}
	}
	m.nextRow++
	rec.RowID = m.nextRow
	m.rows = append(m.rows, rec)
	return nil
}

func (m *memPrimary) canonical(kind domain.Kind) map[int]Record {
	groups := make(map[int][]Record)
	for _, rec := range m.rows {
		if rec.Kind == kind {
			groups[rec.ID] = append(groups[rec.ID], rec)
		}
	}
	out := make(map[int]Record, len(groups))
	for id, group := range groups {
		out[id] = Canonical(group)
	}
	return out
}

func (m *memPrimary) FindByID(ctx context.Context, kind domain.Kind, id int) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return Record{}, errPrimaryDown
	}
	rec, ok := m.canonical(kind)[id]
	if !ok {
		return Record{}, domain.ErrNotFound
	}
	return rec, nil
}

func (m *memPrimary) FindAll(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errPrimaryDown
	}
	var out []Record
	for _, rec := range m.canonical(kind) {
		if matches(rec, filter) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPrimary) FindRows(ctx context.Context, kind domain.Kind) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errPrimaryDown
	}
	var out []Record
	for _, rec := range m.rows {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memPrimary) Delete(ctx context.Context, kind domain.Kind, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errPrimaryDown
	}
	kept := m.rows[:0]
	removed := 0
	for _, rec := range m.rows {
		if rec.Kind == kind && rec.ID == id {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.rows = kept
	if removed == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *memPrimary) DeleteRow(ctx context.Context, kind domain.Kind, rowID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errPrimaryDown
	}
	kept := m.rows[:0]
	for _, rec := range m.rows {
		if rec.Kind == kind && rec.RowID == rowID {
			continue
		}
		kept = append(kept, rec)
	}
	m.rows = kept
	return nil
}

var _ PrimaryStore = (*memPrimary)(nil)

func testRecord(kind domain.Kind, id int, status string, at time.Time) Record {
	return Record{
		Kind:      kind,
		ID:        id,
		LookupKey: "2026-06-01",
		Status:    status,
		Payload:   []byte(`{"status":"` + status + `"}`),
		UpdatedAt: at,
	}
}
