package domain

import (
	"strconv"
	"time"
)

const (
	EventOrderCreated             = "order_created"
	EventOrderStatusChanged       = "order_status_changed"
	EventReservationCreated       = "reservation_created"
	EventReservationStatusChanged = "reservation_status_changed"
)

// Event is published after a state change has been persisted.
type Event struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Order       *Order       `json:"order,omitempty"`
	Reservation *Reservation `json:"reservation,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Key keeps events of one entity on one partition.
func (e Event) Key() string {
	switch {
	case e.Order != nil:
		return "order:" + strconv.Itoa(e.Order.ID)
	case e.Reservation != nil:
		return "reservation:" + strconv.Itoa(e.Reservation.ID)
	}
	return e.Type
}
