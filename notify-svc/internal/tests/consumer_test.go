package tests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tableside/notify-svc/internal/domain"
	"tableside/notify-svc/internal/mocks"
	"tableside/notify-svc/internal/service"
)

func confirmedOrder() domain.BookingEvent {
	return domain.BookingEvent{
		ID:   "evt-1",
		Type: domain.EventOrderStatusChanged,
		Order: &domain.OrderPayload{
			ID:            7,
			CustomerName:  "Ana",
			CustomerEmail: "ana@example.com",
			OrderType:     "takeout",
			Total:         "15",
			Status:        "confirmed",
		},
	}
}

func TestConsumer_ProcessEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     domain.BookingEvent
		setupMock func(sent *mocks.SentLog, mailer *mocks.Mailer)
	}{
		{
			name:  "order confirmed",
			event: confirmedOrder(),
			setupMock: func(sent *mocks.SentLog, mailer *mocks.Mailer) {
				sent.On("MarkSent", mock.Anything, "evt-1").Return(true, nil).Once()
				mailer.On("Send", mock.Anything, mock.MatchedBy(func(e domain.Email) bool {
					return e.To == "ana@example.com" && e.Subject == "Order #7 is confirmed" &&
						strings.Contains(e.Body, "Total: 15")
				})).Return(nil).Once()
			},
		},
		{
			name: "reservation created",
			event: domain.BookingEvent{
				ID:   "evt-2",
				Type: domain.EventReservationCreated,
				Reservation: &domain.ReservationPayload{
					ID:            3,
					CustomerName:  "Ana",
					CustomerEmail: "ana@example.com",
					PartySize:     4,
					Date:          "2026-06-01",
					Time:          "19:00",
					Status:        "pending",
				},
			},
			setupMock: func(sent *mocks.SentLog, mailer *mocks.Mailer) {
				sent.On("MarkSent", mock.Anything, "evt-2").Return(true, nil).Once()
				mailer.On("Send", mock.Anything, mock.MatchedBy(func(e domain.Email) bool {
					return e.Subject == "We received your reservation for 2026-06-01"
				})).Return(nil).Once()
			},
		},
		{
			name:  "duplicate delivery",
			event: confirmedOrder(),
			setupMock: func(sent *mocks.SentLog, mailer *mocks.Mailer) {
				sent.On("MarkSent", mock.Anything, "evt-1").Return(false, nil).Once()
			},
		},
		{
			name:  "sent log down still mails",
			event: confirmedOrder(),
			setupMock: func(sent *mocks.SentLog, mailer *mocks.Mailer) {
				sent.On("MarkSent", mock.Anything, "evt-1").Return(false, errors.New("redis: connection refused")).Once()
				mailer.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "mailer error",
			event: confirmedOrder(),
			setupMock: func(sent *mocks.SentLog, mailer *mocks.Mailer) {
				sent.On("MarkSent", mock.Anything, "evt-1").Return(true, nil).Once()
				mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp timeout")).Once()
			},
		},
		{
			name: "walk-in without email",
			event: domain.BookingEvent{
				ID:    "evt-3",
				Type:  domain.EventOrderCreated,
				Order: &domain.OrderPayload{ID: 8, CustomerName: "Walk-in"},
			},
			setupMock: func(sent *mocks.SentLog, mailer *mocks.Mailer) {},
		},
		{
			name:      "unknown type",
			event:     domain.BookingEvent{ID: "evt-4", Type: "menu_updated"},
			setupMock: func(sent *mocks.SentLog, mailer *mocks.Mailer) {},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			sent := mocks.NewSentLog(t)
			mailer := mocks.NewMailer(t)
			testCase.setupMock(sent, mailer)

			consumer := service.NewConsumer(nil, mailer, sent)
			consumer.ProcessEvent(context.Background(), testCase.event)
		})
	}
}

func TestConsumer_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := mocks.NewMessageReader(t)
	mailer := mocks.NewMailer(t)
	sent := mocks.NewSentLog(t)

	reader.On("ReadMessage", mock.Anything).Return(kafka.Message{Value: []byte(`{not json`)}, nil).Once()
	reader.On("ReadMessage", mock.Anything).Return(kafka.Message{
		Value: []byte(`{"id":"evt-9","type":"reservation_status_changed","reservation":{"id":3,"customer_email":"ana@example.com","date":"2026-06-01","table_number":5,"status":"confirmed"}}`),
	}, nil).Once()
	reader.On("ReadMessage", mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(kafka.Message{}, context.Canceled).Once()

	sent.On("MarkSent", mock.Anything, "evt-9").Return(true, nil).Once()
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(e domain.Email) bool {
		return e.Subject == "Reservation on 2026-06-01 is confirmed" && strings.Contains(e.Body, "Table: 5")
	})).Return(nil).Once()

	service.NewConsumer(reader, mailer, sent).Start(ctx)

	assert.Error(t, ctx.Err())
}
