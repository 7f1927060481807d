package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tableside/booking-svc/internal/domain"
)

type Entity interface {
	EntityID() int
	SetEntityID(id int)
	LookupKey() string
	EntityStatus() string
	Touched() time.Time
}

// Backend is the record level contract a Collection persists through.
type Backend interface {
	Save(ctx context.Context, rec Record) (Record, error)
	FindByID(ctx context.Context, kind domain.Kind, id int) (Record, error)
	FindAll(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]Record, error)
	Delete(ctx context.Context, kind domain.Kind, id int) error
}

// Collection is the typed repository for one entity kind. Entities are kept
// as JSON payloads; the record id is authoritative over the payload's.
type Collection[T any, PT interface {
	*T
	Entity
}] struct {
	kind    domain.Kind
	backend Backend
}

func NewCollection[T any, PT interface {
	*T
	Entity
}](kind domain.Kind, backend Backend) *Collection[T, PT] {
	return &Collection[T, PT]{kind: kind, backend: backend}
}

func (c *Collection[T, PT]) Kind() domain.Kind {
	return c.kind
}

// Create stores entity and sets its id. An entity that already carries an id
// is upserted under that id.
func (c *Collection[T, PT]) Create(ctx context.Context, entity PT) (int, error) {
	rec, err := c.encode(entity)
	if err != nil {
		return 0, err
	}
	saved, err := c.backend.Save(ctx, rec)
	if err != nil {
		return 0, err
	}
	entity.SetEntityID(saved.ID)
	return saved.ID, nil
}

func (c *Collection[T, PT]) Update(ctx context.Context, entity PT) error {
	if entity.EntityID() <= 0 {
		return domain.Invalid("id", "is required for update")
	}
	rec, err := c.encode(entity)
	if err != nil {
		return err
	}
	_, err = c.backend.Save(ctx, rec)
	return err
}

func (c *Collection[T, PT]) FindByID(ctx context.Context, id int) (PT, error) {
	rec, err := c.backend.FindByID(ctx, c.kind, id)
	if err != nil {
		return nil, err
	}
	return c.decode(rec)
}

func (c *Collection[T, PT]) FindAll(ctx context.Context, filter domain.Filter) ([]T, error) {
	records, err := c.backend.FindAll(ctx, c.kind, filter)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(records))
	for _, rec := range records {
		entity, err := c.decode(rec)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}

func (c *Collection[T, PT]) Delete(ctx context.Context, id int) error {
	return c.backend.Delete(ctx, c.kind, id)
}

func (c *Collection[T, PT]) encode(entity PT) (Record, error) {
	payload, err := json.Marshal(entity)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", c.kind, err)
	}
	return Record{
		Kind:      c.kind,
		ID:        entity.EntityID(),
		LookupKey: entity.LookupKey(),
		Status:    entity.EntityStatus(),
		Payload:   payload,
		UpdatedAt: entity.Touched(),
	}, nil
}

func (c *Collection[T, PT]) decode(rec Record) (PT, error) {
	if len(rec.Payload) == 0 {
		return nil, errors.New("empty payload for " + string(c.kind))
	}
	var entity T
	if err := json.Unmarshal(rec.Payload, &entity); err != nil {
		return nil, fmt.Errorf("decode %s/%d: %w", c.kind, rec.ID, err)
	}
	ptr := PT(&entity)
	ptr.SetEntityID(rec.ID)
	return ptr, nil
}

func NewOrders(backend Backend) *Collection[domain.Order, *domain.Order] {
	return NewCollection[domain.Order](domain.KindOrder, backend)
}

func NewReservations(backend Backend) *Collection[domain.Reservation, *domain.Reservation] {
	return NewCollection[domain.Reservation](domain.KindReservation, backend)
}

func NewAvailabilityRules(backend Backend) *Collection[domain.AvailabilityRule, *domain.AvailabilityRule] {
	return NewCollection[domain.AvailabilityRule](domain.KindAvailability, backend)
}

func NewClients(backend Backend) *Collection[domain.Client, *domain.Client] {
	return NewCollection[domain.Client](domain.KindClient, backend)
}
