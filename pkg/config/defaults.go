package config

import "time"

// RoomCount is the number of bookable rooms, numbered 1..RoomCount.
const RoomCount = 25

const (
	DefaultEnvFile = ".env"
	DefaultPort    = "8080"

	DefaultLogLevel    = "info"
	DefaultCLILogLevel = "warn"
	DefaultLogFormat   = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingEventsTopic = "room-bookings"

	// DateTimeLayout is the wall-clock format used for console input and output.
	DateTimeLayout = "2006-01-02 15:04"
)
