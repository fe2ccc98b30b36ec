package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("kafka: publish on closed producer")
	ErrInvalidMessage = errors.New("kafka: invalid message")

	// Booking events are keyed by room, so a message without a key would
	// lose per-room ordering.
	ErrEmptyKey   = errors.New("kafka: message key is required")
	ErrEmptyValue = errors.New("kafka: message value is required")
)
