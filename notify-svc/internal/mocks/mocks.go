package mocks

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"

	"tableside/notify-svc/internal/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, email domain.Email) error {
	return m.Called(ctx, email).Error(0)
}

func NewMailer(t testingT) *Mailer {
	m := &Mailer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type SentLog struct {
	mock.Mock
}

func (m *SentLog) MarkSent(ctx context.Context, eventID string) (bool, error) {
	ret := m.Called(ctx, eventID)
	return ret.Bool(0), ret.Error(1)
}

func NewSentLog(t testingT) *SentLog {
	m := &SentLog{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MessageReader struct {
	mock.Mock
}

func (m *MessageReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(kafka.Message), ret.Error(1)
}

func NewMessageReader(t testingT) *MessageReader {
	m := &MessageReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
