package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/booking-svc/internal/domain"
)

func TestCollection_OrderRoundTrip(t *testing.T) {
	store, _, _ := newTestDualStore(t, 0)
	orders := NewOrders(store)
	ctx := context.Background()

	table := 4
	order := &domain.Order{
		Items: []domain.OrderItem{
			{MenuItemID: 1, Name: "Gazpacho", Price: decimal.RequireFromString("10.00"), Quantity: 2},
		},
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		OrderType:     domain.OrderTypeDineIn,
		TableNumber:   &table,
		Discount:      decimal.NewFromInt(5),
		Status:        domain.StatusPending,
	}
	order.RecalculateTotal()
	order.Touch(time.Now())

	id, err := orders.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, id, order.ID)

	got, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, order.CustomerEmail, got.CustomerEmail)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(15)), "total = %s", got.Total)
	require.NotNil(t, got.TableNumber)
	assert.Equal(t, 4, *got.TableNumber)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(10)))
	assert.True(t, order.UpdatedAt.Equal(got.UpdatedAt))

	byEmail, err := orders.FindAll(ctx, domain.Filter{Key: "ana@example.com"})
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)
}

func TestCollection_Update(t *testing.T) {
	store, _, _ := newTestDualStore(t, 0)
	rules := NewAvailabilityRules(store)
	ctx := context.Background()

	rule := &domain.AvailabilityRule{Date: "2026-06-01", IsAvailable: true, MaxReservations: 2}
	rule.Touch(time.Now())
	_, err := rules.Create(ctx, rule)
	require.NoError(t, err)

	rule.IsAvailable = false
	rule.BlockedReason = "private event"
	rule.Touch(time.Now().Add(time.Second))
	require.NoError(t, rules.Update(ctx, rule))

	found, err := rules.FindAll(ctx, domain.Filter{Key: "2026-06-01"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.False(t, found[0].IsAvailable)
	assert.Equal(t, "private event", found[0].BlockedReason)
}

func TestCollection_UpdateRequiresID(t *testing.T) {
	store, _, _ := newTestDualStore(t, 0)
	clients := NewClients(store)

	err := clients.Update(context.Background(), &domain.Client{Email: "ana@example.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCollection_RecordIDWins(t *testing.T) {
	store, primary, _ := newTestDualStore(t, 0)
	reservations := NewReservations(store)
	ctx := context.Background()

	rec := testRecord(domain.KindReservation, 9, "pending", time.Now())
	rec.Origin = OriginPrimary
	rec.Payload = []byte(`{"id":3,"date":"2026-06-01","status":"pending"}`)
	require.NoError(t, primary.Upsert(ctx, rec))

	got, err := reservations.FindByID(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, got.ID)
	assert.Equal(t, "2026-06-01", got.Date)
}

func TestCollection_NotFound(t *testing.T) {
	store, _, _ := newTestDualStore(t, 0)
	orders := NewOrders(store)

	_, err := orders.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, orders.Delete(context.Background(), 42), domain.ErrNotFound)
}
