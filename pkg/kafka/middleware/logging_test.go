package kafka_middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"roomallot/pkg/kafka"
	"roomallot/pkg/logger"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafkago.Message
	err      error
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }

func bookingMessage(t *testing.T) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("3").
		WithEventID("evt-1").
		WithEventType("booking.created").
		WithCorrelationID("req-42").
		WithValue(map[string]int{"room_number": 3}).
		Build()
	require.NoError(t, err)
	return msg
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggingProducerMiddleware_PassesMessageThrough(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: logger.DEBUG, Format: logger.JSON})

	w := &stubWriter{}
	p := kafka.NewProducerWithWriters(w, nil, "room-bookings", "")
	p.Use(LoggingProducerMiddleware(log))

	require.NoError(t, p.Publish(context.Background(), bookingMessage(t)))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "3", string(w.messages[0].Key))

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "Publishing booking event", lines[0]["msg"])
	assert.Equal(t, "Published booking event", lines[1]["msg"])
	assert.Equal(t, "INFO", lines[1]["level"])
	assert.Equal(t, "room-bookings", lines[1]["topic"])
	assert.Equal(t, "evt-1", lines[1]["event_id"])
	assert.Equal(t, "booking.created", lines[1]["event_type"])
	assert.Equal(t, "req-42", lines[1]["correlation_id"])
	assert.Contains(t, lines[1], "duration_ms")
}

func TestLoggingProducerMiddleware_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: logger.INFO, Format: logger.JSON})

	brokerDown := errors.New("broker down")
	p := kafka.NewProducerWithWriters(&stubWriter{err: brokerDown}, nil, "room-bookings", "")
	p.Use(LoggingProducerMiddleware(log))

	err := p.Publish(context.Background(), bookingMessage(t))
	assert.ErrorIs(t, err, brokerDown)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Failed to publish booking event", lines[0]["msg"])
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "broker down", lines[0]["error"])
	assert.Equal(t, "req-42", lines[0]["correlation_id"])
}
