package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"tableside/notify-svc/internal/domain"
)

type Consumer struct {
	Reader MessageReader
	Mailer Mailer
	Sent   SentLog
}

func NewConsumer(reader MessageReader, mailer Mailer, sent SentLog) *Consumer {
	return &Consumer{
		Reader: reader,
		Mailer: mailer,
		Sent:   sent,
	}
}

// Start reads events until ctx is done.
func (c *Consumer) Start(ctx context.Context) {
	log.Println("Starting Notification Service consumer...")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v", err)
			continue
		}

		var event domain.BookingEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.ProcessEvent(ctx, event)
	}
}

func (c *Consumer) ProcessEvent(ctx context.Context, event domain.BookingEvent) {
	email, ok := compose(event)
	if !ok {
		return
	}

	first, err := c.Sent.MarkSent(ctx, event.ID)
	if err != nil {
		log.Printf("Error checking event %s, sending anyway: %v", event.ID, err)
	} else if !first {
		log.Printf("Skipping duplicate event %s", event.ID)
		return
	}

	if err := c.Mailer.Send(ctx, email); err != nil {
		log.Printf("Error sending %s mail to %s: %v", event.Type, email.To, err)
		return
	}
	log.Printf("Sent %s mail for event %s", event.Type, event.ID)
}

// compose builds the guest mail for event. Events without a recipient, or
// of an unknown type, produce none.
func compose(event domain.BookingEvent) (domain.Email, bool) {
	switch event.Type {
	case domain.EventOrderCreated, domain.EventOrderStatusChanged:
		order := event.Order
		if order == nil || order.CustomerEmail == "" {
			return domain.Email{}, false
		}
		subject := fmt.Sprintf("Order #%d is %s", order.ID, order.Status)
		if event.Type == domain.EventOrderCreated {
			subject = fmt.Sprintf("We received your order #%d", order.ID)
		}
		return domain.Email{
			To:      order.CustomerEmail,
			Subject: subject,
			Body: fmt.Sprintf("Hi %s,\n\nYour %s order #%d is %s. Total: %s.\n",
				order.CustomerName, order.OrderType, order.ID, order.Status, order.Total),
		}, true

	case domain.EventReservationCreated, domain.EventReservationStatusChanged:
		r := event.Reservation
		if r == nil || r.CustomerEmail == "" {
			return domain.Email{}, false
		}
		subject := fmt.Sprintf("Reservation on %s is %s", r.Date, r.Status)
		if event.Type == domain.EventReservationCreated {
			subject = fmt.Sprintf("We received your reservation for %s", r.Date)
		}
		body := fmt.Sprintf("Hi %s,\n\nYour table for %d on %s at %s is %s.\n",
			r.CustomerName, r.PartySize, r.Date, r.Time, r.Status)
		if r.TableNumber != nil {
			body += fmt.Sprintf("Table: %d\n", *r.TableNumber)
		}
		return domain.Email{To: r.CustomerEmail, Subject: subject, Body: body}, true
	}
	return domain.Email{}, false
}
