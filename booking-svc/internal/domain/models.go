package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultMaxReservations = 50

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeout  = "takeout"
	OrderTypeDelivery = "delivery"
)

type Order struct {
	ID               int             `json:"id"`
	Items            []OrderItem     `json:"items"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	OrderType        string          `json:"order_type"`
	TableNumber      *int            `json:"table_number,omitempty"`
	Notes            string          `json:"notes"`
	MarketingConsent bool            `json:"marketing_consent"`
	Discount         decimal.Decimal `json:"discount"`
	Total            decimal.Decimal `json:"total"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type OrderItem struct {
	MenuItemID int             `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// Subtotal is the sum of price times quantity over all lines.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// RecalculateTotal keeps Total at max(0, subtotal - discount).
func (o *Order) RecalculateTotal() {
	total := o.Subtotal().Sub(o.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total
}

type Reservation struct {
	ID               int       `json:"id"`
	CustomerName     string    `json:"customer_name"`
	CustomerEmail    string    `json:"customer_email"`
	CustomerPhone    string    `json:"customer_phone"`
	PartySize        int       `json:"party_size"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	SpecialRequests  string    `json:"special_requests"`
	MarketingConsent bool      `json:"marketing_consent"`
	TableNumber      *int      `json:"table_number,omitempty"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type AvailabilityRule struct {
	ID              int       `json:"id"`
	Date            string    `json:"date"`
	IsAvailable     bool      `json:"is_available"`
	OpenTime        string    `json:"open_time,omitempty"`
	CloseTime       string    `json:"close_time,omitempty"`
	MaxReservations int       `json:"max_reservations"`
	BlockedReason   string    `json:"blocked_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Capacity falls back to the default when the rule leaves it unset.
func (r *AvailabilityRule) Capacity(fallback int) int {
	if r == nil || r.MaxReservations <= 0 {
		return fallback
	}
	return r.MaxReservations
}

type Client struct {
	ID                int             `json:"id"`
	Email             string          `json:"email"`
	Name              string          `json:"name"`
	Phone             string          `json:"phone,omitempty"`
	MarketingConsent  bool            `json:"marketing_consent"`
	TotalOrders       int             `json:"total_orders"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	TotalReservations int             `json:"total_reservations"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type MenuItem struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Filter narrows list queries. Key is the customer email for orders and
// clients and the calendar date for reservations and availability rules.
type Filter struct {
	Status string
	Key    string
}

type ReconcileReport struct {
	DuplicatesFound int           `json:"duplicates_found"`
	RecordsRemoved  int           `json:"records_removed"`
	Synced          int           `json:"synced"`
	Skipped         int           `json:"skipped"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
}
