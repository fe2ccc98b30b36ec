package errors

import "errors"

var (
	ErrNotAvailable = errors.New("room is not available for the given time range")

	ErrIndexOutOfRange = errors.New("booking index out of range")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrInvalidRoom = errors.New("room number out of range")

	ErrInvalidChairs = errors.New("chairs cannot be negative")
)
