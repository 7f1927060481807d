package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/service"
)

type OrderService struct {
	mock.Mock
}

func (m *OrderService) order(ret mock.Arguments) (*domain.Order, error) {
	var order *domain.Order
	if v := ret.Get(0); v != nil {
		order = v.(*domain.Order)
	}
	return order, ret.Error(1)
}

func (m *OrderService) CreateOrder(ctx context.Context, input service.CreateOrderInput) (*domain.Order, error) {
	return m.order(m.Called(ctx, input))
}

func (m *OrderService) TransitionOrder(ctx context.Context, id int, target domain.Status, discount *decimal.Decimal) (*domain.Order, error) {
	return m.order(m.Called(ctx, id, target, discount))
}

func (m *OrderService) AdjustDiscount(ctx context.Context, id int, discount decimal.Decimal) (*domain.Order, error) {
	return m.order(m.Called(ctx, id, discount))
}

func (m *OrderService) FindOrder(ctx context.Context, id int) (*domain.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *OrderService) ListOrders(ctx context.Context, filter domain.Filter) ([]domain.Order, error) {
	ret := m.Called(ctx, filter)
	var orders []domain.Order
	if v := ret.Get(0); v != nil {
		orders = v.([]domain.Order)
	}
	return orders, ret.Error(1)
}

func (m *OrderService) OrderQRCode(ctx context.Context, id int) ([]byte, error) {
	ret := m.Called(ctx, id)
	var png []byte
	if v := ret.Get(0); v != nil {
		png = v.([]byte)
	}
	return png, ret.Error(1)
}

func NewOrderService(t testingT) *OrderService {
	m := &OrderService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type ReservationService struct {
	mock.Mock
}

func (m *ReservationService) reservation(ret mock.Arguments) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	if v := ret.Get(0); v != nil {
		reservation = v.(*domain.Reservation)
	}
	return reservation, ret.Error(1)
}

func (m *ReservationService) CreateReservation(ctx context.Context, input service.CreateReservationInput) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, input))
}

func (m *ReservationService) TransitionReservation(ctx context.Context, id int, target domain.Status) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id, target))
}

func (m *ReservationService) AssignTable(ctx context.Context, id int, table int) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id, table))
}

func (m *ReservationService) FindReservation(ctx context.Context, id int) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *ReservationService) ListReservations(ctx context.Context, filter domain.Filter) ([]domain.Reservation, error) {
	ret := m.Called(ctx, filter)
	var reservations []domain.Reservation
	if v := ret.Get(0); v != nil {
		reservations = v.([]domain.Reservation)
	}
	return reservations, ret.Error(1)
}

func NewReservationService(t testingT) *ReservationService {
	m := &ReservationService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type AvailabilityService struct {
	mock.Mock
}

func (m *AvailabilityService) BlockDate(ctx context.Context, date, reason string) error {
	return m.Called(ctx, date, reason).Error(0)
}

func (m *AvailabilityService) UnblockDate(ctx context.Context, date string) error {
	return m.Called(ctx, date).Error(0)
}

func (m *AvailabilityService) SetHours(ctx context.Context, input service.HoursInput) (*domain.AvailabilityRule, error) {
	ret := m.Called(ctx, input)
	var rule *domain.AvailabilityRule
	if v := ret.Get(0); v != nil {
		rule = v.(*domain.AvailabilityRule)
	}
	return rule, ret.Error(1)
}

func (m *AvailabilityService) Rule(ctx context.Context, date string) (*domain.AvailabilityRule, error) {
	ret := m.Called(ctx, date)
	var rule *domain.AvailabilityRule
	if v := ret.Get(0); v != nil {
		rule = v.(*domain.AvailabilityRule)
	}
	return rule, ret.Error(1)
}

func (m *AvailabilityService) ListRules(ctx context.Context) ([]domain.AvailabilityRule, error) {
	ret := m.Called(ctx)
	var rules []domain.AvailabilityRule
	if v := ret.Get(0); v != nil {
		rules = v.([]domain.AvailabilityRule)
	}
	return rules, ret.Error(1)
}

func NewAvailabilityService(t testingT) *AvailabilityService {
	m := &AvailabilityService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
