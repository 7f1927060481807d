package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/locks"
)

type OrderItemInput struct {
	MenuItemID int `json:"menu_item_id"`
	Quantity   int `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName     string           `json:"customer_name"`
	CustomerEmail    string           `json:"customer_email"`
	OrderType        string           `json:"order_type"`
	TableNumber      *int             `json:"table_number"`
	Notes            string           `json:"notes"`
	MarketingConsent bool             `json:"marketing_consent"`
	Discount         decimal.Decimal  `json:"discount"`
	Items            []OrderItemInput `json:"items"`
}

func (in CreateOrderInput) validate() error {
	if err := validateContact(in.CustomerName, in.CustomerEmail, in.MarketingConsent); err != nil {
		return err
	}
	switch in.OrderType {
	case domain.OrderTypeDineIn, domain.OrderTypeTakeout, domain.OrderTypeDelivery:
	default:
		return domain.Invalid("order_type", "must be dine_in, takeout or delivery")
	}
	if in.TableNumber != nil && *in.TableNumber <= 0 {
		return domain.Invalid("table_number", "must be positive")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("items", "at least one item is required")
	}
	for i, item := range in.Items {
		if item.Quantity <= 0 {
			return domain.Invalid("items["+strconv.Itoa(i)+"].quantity", "must be positive")
		}
	}
	if in.Discount.IsNegative() {
		return domain.Invalid("discount", "must not be negative")
	}
	return nil
}

type OrderService struct {
	orders   OrderRepository
	menu     MenuLookup
	clients  ClientUpdater
	notifier Notifier
	qr       QRGenerator
	locker   locks.Locker

	Now func() time.Time
}

// NewOrderService accepts a nil notifier.
func NewOrderService(orders OrderRepository, menu MenuLookup, clients ClientUpdater, notifier Notifier, qr QRGenerator, locker locks.Locker) *OrderService {
	return &OrderService{
		orders:   orders,
		menu:     menu,
		clients:  clients,
		notifier: notifier,
		qr:       qr,
		locker:   locker,
		Now:      time.Now,
	}
}

// CreateOrder prices every line from the menu as it is right now; later menu
// changes never touch the stored order.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for i, line := range input.Items {
		dish, err := s.menu.MenuItem(ctx, line.MenuItemID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalid("items["+strconv.Itoa(i)+"].menu_item_id", "unknown menu item "+strconv.Itoa(line.MenuItemID))
		}
		if err != nil {
			return nil, fmt.Errorf("menu lookup %d: %w", line.MenuItemID, err)
		}
		items = append(items, domain.OrderItem{
			MenuItemID: dish.ID,
			Name:       dish.Name,
			Price:      dish.Price,
			Quantity:   line.Quantity,
		})
	}

	order := &domain.Order{
		Items:            items,
		CustomerName:     input.CustomerName,
		CustomerEmail:    input.CustomerEmail,
		OrderType:        input.OrderType,
		TableNumber:      input.TableNumber,
		Notes:            input.Notes,
		MarketingConsent: input.MarketingConsent,
		Discount:         input.Discount,
		Status:           domain.StatusPending,
	}
	order.RecalculateTotal()
	order.Touch(s.Now())

	if _, err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if order.MarketingConsent && s.clients != nil {
		s.clients.Upsert(ctx, ClientEvent{
			Email:  order.CustomerEmail,
			Name:   order.CustomerName,
			Orders: 1,
			Spent:  order.Total,
		})
	}
	s.notify(ctx, domain.EventOrderCreated, order)

	return order, nil
}

// TransitionOrder moves the order to target. A non-nil discount is applied
// in the same write and the total recomputed. Unknown targets are refused
// like any other edge outside the table.
func (s *OrderService) TransitionOrder(ctx context.Context, id int, target domain.Status, discount *decimal.Decimal) (*domain.Order, error) {
	if discount != nil && discount.IsNegative() {
		return nil, domain.Invalid("discount", "must not be negative")
	}

	unlock, err := s.locker.Lock(ctx, locks.OrderKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Transition(order.Status, target); err != nil {
		return nil, err
	}

	order.Status = target
	if discount != nil {
		order.Discount = *discount
	}
	order.RecalculateTotal()
	order.Touch(s.Now())

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notify(ctx, domain.EventOrderStatusChanged, order)
	return order, nil
}

// AdjustDiscount changes the discount of an order that is still open.
func (s *OrderService) AdjustDiscount(ctx context.Context, id int, discount decimal.Decimal) (*domain.Order, error) {
	if discount.IsNegative() {
		return nil, domain.Invalid("discount", "must not be negative")
	}

	unlock, err := s.locker.Lock(ctx, locks.OrderKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, &domain.TransitionError{From: order.Status, To: order.Status}
	}

	order.Discount = discount
	order.RecalculateTotal()
	order.Touch(s.Now())

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) FindOrder(ctx context.Context, id int) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.Filter) ([]domain.Order, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.orders.FindAll(ctx, filter)
}

// OrderQRCode renders a PNG linking to the order's public page.
func (s *OrderService) OrderQRCode(ctx context.Context, id int) ([]byte, error) {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return nil, err
	}
	png, err := s.qr.Generate(id)
	if err != nil {
		return nil, fmt.Errorf("generate qr code for order %d: %w", id, err)
	}
	return png, nil
}

func (s *OrderService) notify(ctx context.Context, eventType string, order *domain.Order) {
	if s.notifier == nil {
		return
	}
	event := domain.Event{Type: eventType, Order: order, Timestamp: s.Now().UTC()}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Printf("Error publishing %s for order %d: %v", eventType, order.ID, err)
	}
}
