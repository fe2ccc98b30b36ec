package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	roomserrors "roomallot/internal/rooms/errors"
	"roomallot/internal/rooms/events"
	"roomallot/internal/rooms/validator"
	"roomallot/pkg/config"
	apperrors "roomallot/pkg/errors"
	"roomallot/pkg/model"
	"roomallot/pkg/sanitizer"
)

type BookingService interface {
	Book(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	Update(ctx context.Context, index int, req *model.BookingRequest) (*model.Booking, error)
	IsAvailable(ctx context.Context, room int, start, end time.Time) (bool, error)
	AvailableRoomCount(ctx context.Context) int
	BookedCount(ctx context.Context) int
	List(ctx context.Context) []model.Booking
	RoomSchedule(ctx context.Context, room int) ([]model.Interval, error)
	Stats(ctx context.Context) model.RoomStats
}

// Ledger is the booking store the service drives; *ledger.Ledger
// satisfies it.
type Ledger interface {
	Book(host string, start, end time.Time, chairs, room int) (model.Booking, error)
	UpdateBooking(index int, host string, start, end time.Time, chairs, room int) (model.Booking, error)
	IsAvailable(room int, start, end time.Time) bool
	AvailableRoomCount() int
	BookedCount() int
	ListBookings() []model.Booking
	RoomSchedule(room int) []model.Interval
	RoomCount() int
}

// Observer receives booking outcomes; *metrics.Metrics satisfies it.
type Observer interface {
	ObserveBooking(operation, result string)
	SetLedgerSize(touchedRooms, bookings int)
}

type nopObserver struct{}

func (nopObserver) ObserveBooking(string, string) {}

func (nopObserver) SetLedgerSize(int, int) {}

type Option func(*bookingService)

func WithMetrics(observer Observer) Option {
	return func(s *bookingService) {
		if observer != nil {
			s.observer = observer
		}
	}
}

type bookingService struct {
	ledger    Ledger
	validator *validator.BookingValidator
	publisher events.Publisher
	observer  Observer
	cfg       *config.Config
}

func NewBookingService(
	ledger Ledger,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &bookingService{
		ledger:    ledger,
		validator: validator,
		publisher: publisher,
		observer:  nopObserver{},
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) Book(ctx context.Context, req *model.BookingRequest) (booking *model.Booking, err error) {
	defer func() { s.observe("book", err) }()

	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	created, err := s.ledger.Book(req.Host, req.StartTime, req.EndTime, req.Chairs, req.RoomNumber)
	if err != nil {
		s.cfg.Log.Warn("Booking rejected",
			"room_number", req.RoomNumber,
			"start_time", req.StartTime,
			"end_time", req.EndTime,
			"error", err,
		)
		return nil, s.mapLedgerError(err, -1)
	}
	booking = &created

	s.cfg.Log.Info("Booking created successfully",
		"index", booking.Index,
		"room_number", booking.RoomNumber,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publish(ctx, events.TypeBookingCreated, *booking)
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, index int, req *model.BookingRequest) (booking *model.Booking, err error) {
	defer func() { s.observe("update", err) }()

	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	updated, err := s.ledger.UpdateBooking(index, req.Host, req.StartTime, req.EndTime, req.Chairs, req.RoomNumber)
	if err != nil {
		s.cfg.Log.Warn("Booking update rejected",
			"index", index,
			"room_number", req.RoomNumber,
			"error", err,
		)
		return nil, s.mapLedgerError(err, index)
	}
	booking = &updated

	s.cfg.Log.Info("Booking updated successfully",
		"index", booking.Index,
		"room_number", booking.RoomNumber,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publish(ctx, events.TypeBookingUpdated, *booking)
	return booking, nil
}

func (s *bookingService) IsAvailable(ctx context.Context, room int, start, end time.Time) (bool, error) {
	if err := s.validateRoom(room); err != nil {
		return false, err
	}
	if !end.After(start) {
		return false, s.mapLedgerError(roomserrors.ErrInvalidTimeRange, -1)
	}

	available := s.ledger.IsAvailable(room, start, end)
	s.cfg.Log.Debug("Availability checked",
		"room_number", room,
		"start_time", start,
		"end_time", end,
		"available", available,
	)
	return available, nil
}

func (s *bookingService) AvailableRoomCount(ctx context.Context) int {
	return s.ledger.AvailableRoomCount()
}

func (s *bookingService) BookedCount(ctx context.Context) int {
	return s.ledger.BookedCount()
}

func (s *bookingService) List(ctx context.Context) []model.Booking {
	return s.ledger.ListBookings()
}

func (s *bookingService) RoomSchedule(ctx context.Context, room int) ([]model.Interval, error) {
	if err := s.validateRoom(room); err != nil {
		return nil, err
	}
	return s.ledger.RoomSchedule(room), nil
}

func (s *bookingService) Stats(ctx context.Context) model.RoomStats {
	return model.RoomStats{
		AvailableRooms: s.ledger.AvailableRoomCount(),
		BookedRooms:    s.ledger.BookedCount(),
	}
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Host = sanitizer.NormalizeHost(req.Host)
}

func (s *bookingService) validate(req *model.BookingRequest) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		details := map[string]any{"error": err.Error()}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details["fields"] = verrs
		}
		return apperrors.Validation("Booking validation failed", details).WithCause(err)
	}
	return nil
}

func (s *bookingService) validateRoom(room int) error {
	if room < 1 || room > s.ledger.RoomCount() {
		return apperrors.Validation(
			fmt.Sprintf("Room number must be between 1 and %d", s.ledger.RoomCount()),
			map[string]any{"room_number": room},
		).WithCause(roomserrors.ErrInvalidRoom)
	}
	return nil
}

func (s *bookingService) mapLedgerError(err error, index int) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotAvailable):
		return apperrors.Conflict("Room is not available for the given time range").WithCause(err)
	case errors.Is(err, roomserrors.ErrIndexOutOfRange):
		return apperrors.NotFoundWithID("Booking", strconv.Itoa(index)).WithCause(err)
	case errors.Is(err, roomserrors.ErrInvalidRoom),
		errors.Is(err, roomserrors.ErrInvalidChairs),
		errors.Is(err, roomserrors.ErrInvalidTimeRange):
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()}).WithCause(err)
	default:
		return apperrors.Internal("Failed to apply booking", err)
	}
}

func (s *bookingService) observe(operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case apperrors.HasCode(err, apperrors.CodeConflict):
		result = "conflict"
	case apperrors.HasCode(err, apperrors.CodeNotFound):
		result = "not_found"
	case apperrors.HasCode(err, apperrors.CodeValidation):
		result = "invalid"
	default:
		result = "error"
	}
	s.observer.ObserveBooking(operation, result)
	s.observer.SetLedgerSize(s.ledger.RoomCount()-s.ledger.AvailableRoomCount(), s.ledger.BookedCount())
}

// publish never fails the caller: the ledger has already accepted the
// booking by the time the event goes out.
func (s *bookingService) publish(ctx context.Context, eventType string, booking model.Booking) {
	event := events.BookingEvent{
		Type:       eventType,
		Booking:    booking,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"index", booking.Index,
			"error", err,
		)
	}
}
