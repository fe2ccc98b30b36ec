package kafka_middleware

import (
	"context"
	"time"

	"roomallot/pkg/kafka"
	"roomallot/pkg/logger"
)

// LoggingProducerMiddleware logs every publish with the event headers that
// let a booking event be traced back to the request that caused it.
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"correlation_id", msg.GetCorrelationID(),
		}
		log.Debug("Publishing booking event", attrs...)

		start := time.Now()
		err := next(ctx, msg)
		attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())

		if err != nil {
			log.Error("Failed to publish booking event", append(attrs, "error", err)...)
			return err
		}
		log.Info("Published booking event", attrs...)
		return nil
	}
}
