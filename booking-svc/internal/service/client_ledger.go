package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/locks"
)

// ClientEvent is one real order or reservation by a consenting customer.
type ClientEvent struct {
	Email        string
	Name         string
	Phone        string
	Orders       int
	Spent        decimal.Decimal
	Reservations int
}

// ClientLedger is the only writer of client records. Emails are matched
// exactly as given.
type ClientLedger struct {
	clients ClientRepository
	locker  locks.Locker

	Now func() time.Time
}

func NewClientLedger(clients ClientRepository, locker locks.Locker) *ClientLedger {
	return &ClientLedger{clients: clients, locker: locker, Now: time.Now}
}

// Upsert applies event to the client keyed by its email, creating the client
// on first sight. The order or reservation behind the event is already
// stored, so failures are logged and swallowed.
func (l *ClientLedger) Upsert(ctx context.Context, event ClientEvent) {
	if event.Email == "" {
		return
	}
	if err := l.upsert(ctx, event); err != nil {
		log.Printf("Error updating client %s: %v", event.Email, err)
	}
}

func (l *ClientLedger) upsert(ctx context.Context, event ClientEvent) error {
	unlock, err := l.locker.Lock(ctx, locks.ClientKey(event.Email))
	if err != nil {
		return err
	}
	defer unlock()

	existing, err := l.clients.FindAll(ctx, domain.Filter{Key: event.Email})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		client := &domain.Client{
			Email:             event.Email,
			Name:              event.Name,
			Phone:             event.Phone,
			MarketingConsent:  true,
			TotalOrders:       event.Orders,
			TotalSpent:        event.Spent,
			TotalReservations: event.Reservations,
		}
		client.Touch(l.Now())
		_, err := l.clients.Create(ctx, client)
		return err
	}

	client := existing[0]
	if event.Name != "" {
		client.Name = event.Name
	}
	if event.Phone != "" {
		client.Phone = event.Phone
	}
	client.MarketingConsent = true
	client.TotalOrders += event.Orders
	client.TotalSpent = client.TotalSpent.Add(event.Spent)
	client.TotalReservations += event.Reservations
	client.Touch(l.Now())
	return l.clients.Update(ctx, &client)
}

// Clients lists client records, optionally narrowed to one email.
func (l *ClientLedger) Clients(ctx context.Context, email string) ([]domain.Client, error) {
	return l.clients.FindAll(ctx, domain.Filter{Key: email})
}
