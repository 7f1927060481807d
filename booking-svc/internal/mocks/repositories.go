package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tableside/booking-svc/internal/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Create(ctx context.Context, order *domain.Order) (int, error) {
	ret := m.Called(ctx, order)
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Order) (int, error)); ok {
		return rf(ctx, order)
	}
	return ret.Int(0), ret.Error(1)
}

func (m *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	ret := m.Called(ctx, id)
	var order *domain.Order
	if v := ret.Get(0); v != nil {
		order = v.(*domain.Order)
	}
	return order, ret.Error(1)
}

func (m *OrderRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.Order, error) {
	ret := m.Called(ctx, filter)
	var orders []domain.Order
	if v := ret.Get(0); v != nil {
		orders = v.([]domain.Order)
	}
	return orders, ret.Error(1)
}

func NewOrderRepository(t testingT) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type ReservationRepository struct {
	mock.Mock
}

func (m *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (int, error) {
	ret := m.Called(ctx, reservation)
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Reservation) (int, error)); ok {
		return rf(ctx, reservation)
	}
	return ret.Int(0), ret.Error(1)
}

func (m *ReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *ReservationRepository) FindByID(ctx context.Context, id int) (*domain.Reservation, error) {
	ret := m.Called(ctx, id)
	var reservation *domain.Reservation
	if v := ret.Get(0); v != nil {
		reservation = v.(*domain.Reservation)
	}
	return reservation, ret.Error(1)
}

func (m *ReservationRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.Reservation, error) {
	ret := m.Called(ctx, filter)
	var reservations []domain.Reservation
	if v := ret.Get(0); v != nil {
		reservations = v.([]domain.Reservation)
	}
	return reservations, ret.Error(1)
}

func NewReservationRepository(t testingT) *ReservationRepository {
	m := &ReservationRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type AvailabilityRepository struct {
	mock.Mock
}

func (m *AvailabilityRepository) Create(ctx context.Context, rule *domain.AvailabilityRule) (int, error) {
	ret := m.Called(ctx, rule)
	return ret.Int(0), ret.Error(1)
}

func (m *AvailabilityRepository) Update(ctx context.Context, rule *domain.AvailabilityRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *AvailabilityRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.AvailabilityRule, error) {
	ret := m.Called(ctx, filter)
	var rules []domain.AvailabilityRule
	if v := ret.Get(0); v != nil {
		rules = v.([]domain.AvailabilityRule)
	}
	return rules, ret.Error(1)
}

func NewAvailabilityRepository(t testingT) *AvailabilityRepository {
	m := &AvailabilityRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type ClientRepository struct {
	mock.Mock
}

func (m *ClientRepository) Create(ctx context.Context, client *domain.Client) (int, error) {
	ret := m.Called(ctx, client)
	return ret.Int(0), ret.Error(1)
}

func (m *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *ClientRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.Client, error) {
	ret := m.Called(ctx, filter)
	var clients []domain.Client
	if v := ret.Get(0); v != nil {
		clients = v.([]domain.Client)
	}
	return clients, ret.Error(1)
}

func NewClientRepository(t testingT) *ClientRepository {
	m := &ClientRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
