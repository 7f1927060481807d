package domain

import "time"

const (
	EventOrderCreated             = "order_created"
	EventOrderStatusChanged       = "order_status_changed"
	EventReservationCreated       = "reservation_created"
	EventReservationStatusChanged = "reservation_status_changed"
)

// BookingEvent is the message booking-svc publishes after a committed change.
type BookingEvent struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Order       *OrderPayload       `json:"order,omitempty"`
	Reservation *ReservationPayload `json:"reservation,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

type OrderPayload struct {
	ID            int    `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	OrderType     string `json:"order_type"`
	Total         string `json:"total"`
	Status        string `json:"status"`
}

type ReservationPayload struct {
	ID            int    `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	PartySize     int    `json:"party_size"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	TableNumber   *int   `json:"table_number,omitempty"`
	Status        string `json:"status"`
}

type Email struct {
	To      string
	Subject string
	Body    string
}
