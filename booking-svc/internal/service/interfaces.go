package service

import (
	"context"

	"github.com/shopspring/decimal"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/storage"
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	TransitionOrder(ctx context.Context, id int, target domain.Status, discount *decimal.Decimal) (*domain.Order, error)
	AdjustDiscount(ctx context.Context, id int, discount decimal.Decimal) (*domain.Order, error)
	FindOrder(ctx context.Context, id int) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.Filter) ([]domain.Order, error)
	OrderQRCode(ctx context.Context, id int) ([]byte, error)
}

type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	TransitionReservation(ctx context.Context, id int, target domain.Status) (*domain.Reservation, error)
	AssignTable(ctx context.Context, id int, table int) (*domain.Reservation, error)
	FindReservation(ctx context.Context, id int) (*domain.Reservation, error)
	ListReservations(ctx context.Context, filter domain.Filter) ([]domain.Reservation, error)
}

type AvailabilityServiceInterface interface {
	BlockDate(ctx context.Context, date, reason string) error
	UnblockDate(ctx context.Context, date string) error
	SetHours(ctx context.Context, input HoursInput) (*domain.AvailabilityRule, error)
	Rule(ctx context.Context, date string) (*domain.AvailabilityRule, error)
	ListRules(ctx context.Context) ([]domain.AvailabilityRule, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (int, error)
	Update(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int) (*domain.Order, error)
	FindAll(ctx context.Context, filter domain.Filter) ([]domain.Order, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (int, error)
	Update(ctx context.Context, reservation *domain.Reservation) error
	FindByID(ctx context.Context, id int) (*domain.Reservation, error)
	FindAll(ctx context.Context, filter domain.Filter) ([]domain.Reservation, error)
}

type AvailabilityRepository interface {
	Create(ctx context.Context, rule *domain.AvailabilityRule) (int, error)
	Update(ctx context.Context, rule *domain.AvailabilityRule) error
	FindAll(ctx context.Context, filter domain.Filter) ([]domain.AvailabilityRule, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (int, error)
	Update(ctx context.Context, client *domain.Client) error
	FindAll(ctx context.Context, filter domain.Filter) ([]domain.Client, error)
}

type MenuLookup interface {
	MenuItem(ctx context.Context, id int) (domain.MenuItem, error)
}

// Notifier is told about committed changes. Failures never undo the change.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}

type ClientUpdater interface {
	Upsert(ctx context.Context, event ClientEvent)
}

type ClientDirectory interface {
	Clients(ctx context.Context, email string) ([]domain.Client, error)
}

type Reconciler interface {
	Run(ctx context.Context) (domain.ReconcileReport, error)
}

var (
	_ OrderServiceInterface        = (*OrderService)(nil)
	_ ReservationServiceInterface  = (*ReservationService)(nil)
	_ AvailabilityServiceInterface = (*AvailabilityService)(nil)
	_ ClientUpdater                = (*ClientLedger)(nil)
	_ ClientDirectory              = (*ClientLedger)(nil)
	_ QRGenerator                  = (*OrderLinkQR)(nil)

	_ OrderRepository        = (*storage.Collection[domain.Order, *domain.Order])(nil)
	_ ReservationRepository  = (*storage.Collection[domain.Reservation, *domain.Reservation])(nil)
	_ AvailabilityRepository = (*storage.Collection[domain.AvailabilityRule, *domain.AvailabilityRule])(nil)
	_ ClientRepository       = (*storage.Collection[domain.Client, *domain.Client])(nil)
	_ MenuLookup             = (*storage.CachedMenu)(nil)
	_ Notifier               = (*storage.KafkaPublisher)(nil)
	_ Reconciler             = (*storage.Reconciler)(nil)
)
