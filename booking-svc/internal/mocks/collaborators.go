package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/service"
)

type MenuLookup struct {
	mock.Mock
}

func (m *MenuLookup) MenuItem(ctx context.Context, id int) (domain.MenuItem, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(domain.MenuItem), ret.Error(1)
}

func NewMenuLookup(t testingT) *MenuLookup {
	m := &MenuLookup{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, event domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func NewNotifier(t testingT) *Notifier {
	m := &Notifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type ClientUpdater struct {
	mock.Mock
}

func (m *ClientUpdater) Upsert(ctx context.Context, event service.ClientEvent) {
	m.Called(ctx, event)
}

func NewClientUpdater(t testingT) *ClientUpdater {
	m := &ClientUpdater{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type QRGenerator struct {
	mock.Mock
}

func (m *QRGenerator) Generate(orderID int) ([]byte, error) {
	ret := m.Called(orderID)
	var png []byte
	if v := ret.Get(0); v != nil {
		png = v.([]byte)
	}
	return png, ret.Error(1)
}

func NewQRGenerator(t testingT) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type Reconciler struct {
	mock.Mock
}

func (m *Reconciler) Run(ctx context.Context) (domain.ReconcileReport, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(domain.ReconcileReport), ret.Error(1)
}

func NewReconciler(t testingT) *Reconciler {
	m := &Reconciler{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type ClientDirectory struct {
	mock.Mock
}

func (m *ClientDirectory) Clients(ctx context.Context, email string) ([]domain.Client, error) {
	ret := m.Called(ctx, email)
	var clients []domain.Client
	if v := ret.Get(0); v != nil {
		clients = v.([]domain.Client)
	}
	return clients, ret.Error(1)
}

func NewClientDirectory(t testingT) *ClientDirectory {
	m := &ClientDirectory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
