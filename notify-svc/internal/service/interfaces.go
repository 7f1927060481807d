package service

import (
	"context"

	"github.com/segmentio/kafka-go"

	"tableside/notify-svc/internal/domain"
	"tableside/notify-svc/internal/storage"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

// SentLog remembers which events were already mailed, so a redelivered
// message does not mail the guest twice.
type SentLog interface {
	MarkSent(ctx context.Context, eventID string) (first bool, err error)
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	ProcessEvent(ctx context.Context, event domain.BookingEvent)
}

var (
	_ MessageReader     = (*kafka.Reader)(nil)
	_ SentLog           = (*storage.SentLog)(nil)
	_ Mailer            = LogMailer{}
	_ ConsumerInterface = (*Consumer)(nil)
)
