package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("3").
		WithEventType("booking.created").
		WithSource("rooms").
		WithValue(map[string]int{"room_number": 3}).
		Build()
	require.NoError(t, err)
	return msg
}

func TestPublish_WritesMessage(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriters(w, nil, "room-bookings", "")

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))

	require.Len(t, w.messages, 1)
	got := w.messages[0]
	assert.Equal(t, "3", string(got.Key))
	assert.JSONEq(t, `{"room_number":3}`, string(got.Value))
	assert.Equal(t, "booking.created", headerValue(got, HeaderEventType))
	assert.NotEmpty(t, headerValue(got, HeaderEventID))
}

func TestPublish_RejectsInvalidMessages(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "room-bookings", "")

	err := p.Publish(context.Background(), Message{Value: []byte("{}")})
	assert.ErrorIs(t, err, ErrEmptyKey)

	err = p.Publish(context.Background(), Message{Key: "1"})
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestPublish_FailureGoesToDLQ(t *testing.T) {
	writeErr := errors.New("connection refused")
	w := &fakeWriter{err: writeErr}
	dlq := &fakeWriter{}
	p := NewProducerWithWriters(w, dlq, "room-bookings", "room-bookings-dlq")

	err := p.Publish(context.Background(), buildMessage(t))
	require.ErrorIs(t, err, writeErr)

	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "room-bookings", headerValue(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, "connection refused", headerValue(dlq.messages[0], "dlq-error"))
}

func TestPublish_MiddlewareOrder(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "room-bookings", "")

	var calls []string
	for _, name := range []string{"outer", "inner"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			calls = append(calls, name)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	dlq := &fakeWriter{}
	p := NewProducerWithWriters(w, dlq, "room-bookings", "room-bookings-dlq")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.True(t, dlq.closed)

	err := p.Publish(context.Background(), buildMessage(t))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("1").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}
