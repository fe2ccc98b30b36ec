package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	roomserrors "roomallot/internal/rooms/errors"
	"roomallot/pkg/model"
)

// Ledger owns the ordered booking sequence and, per room, the intervals
// already reserved. It is safe for concurrent use.
//
// Every room schedule carries its own mutex, and the overlap check and the
// write it guards run while holding it, so two callers can never both see a
// slot as free and book it twice. Locks are taken in this order: room
// schedules by ascending room number, then mu.
type Ledger struct {
	roomCount int

	mu        sync.RWMutex
	bookings  []model.Booking
	schedules map[int]*schedule
}

// schedule holds the reserved intervals of one room keyed by the index of
// the booking that owns them.
type schedule struct {
	mu    sync.Mutex
	slots map[int]model.Interval
}

func New(roomCount int) *Ledger {
	return &Ledger{
		roomCount: roomCount,
		schedules: make(map[int]*schedule),
	}
}

// Book reserves room for [start, end) and appends the booking to the
// sequence. It fails with ErrNotAvailable when the range overlaps a booking
// already held on that room.
func (l *Ledger) Book(host string, start, end time.Time, chairs, room int) (model.Booking, error) {
	if err := l.validate(start, end, chairs, room); err != nil {
		return model.Booking{}, err
	}
	candidate := model.Interval{Start: start, End: end}

	sched := l.scheduleFor(room)
	sched.mu.Lock()
	defer sched.mu.Unlock()

	if sched.conflicts(candidate, -1) {
		return model.Booking{}, fmt.Errorf("room %d: %w", room, roomserrors.ErrNotAvailable)
	}

	l.mu.Lock()
	booking := model.Booking{
		Index:      len(l.bookings),
		Host:       host,
		StartTime:  start,
		EndTime:    end,
		Chairs:     chairs,
		RoomNumber: room,
		CreatedAt:  time.Now(),
	}
	l.bookings = append(l.bookings, booking)
	l.mu.Unlock()

	sched.slots[booking.Index] = candidate
	return booking, nil
}

// UpdateBooking overwrites the booking at index in place. The booking's
// previous interval is released from its old room and the new one is
// reserved on the target room; the booking never conflicts with itself.
func (l *Ledger) UpdateBooking(index int, host string, start, end time.Time, chairs, room int) (model.Booking, error) {
	if err := l.validate(start, end, chairs, room); err != nil {
		return model.Booking{}, err
	}
	candidate := model.Interval{Start: start, End: end}

	for {
		oldRoom, err := l.roomOf(index)
		if err != nil {
			return model.Booking{}, err
		}

		source := l.scheduleFor(oldRoom)
		target := l.scheduleFor(room)
		unlock := lockPair(oldRoom, source, room, target)

		// A concurrent update may have moved the booking before we got the locks.
		if current, _ := l.roomOf(index); current != oldRoom {
			unlock()
			continue
		}

		if target.conflicts(candidate, index) {
			unlock()
			return model.Booking{}, fmt.Errorf("room %d: %w", room, roomserrors.ErrNotAvailable)
		}

		l.mu.Lock()
		b := &l.bookings[index]
		b.Host = host
		b.StartTime = start
		b.EndTime = end
		b.Chairs = chairs
		b.RoomNumber = room
		b.UpdatedAt = time.Now()
		updated := *b
		l.mu.Unlock()

		delete(source.slots, index)
		target.slots[index] = candidate
		unlock()
		return updated, nil
	}
}

// IsAvailable reports whether [start, end) is free on room.
func (l *Ledger) IsAvailable(room int, start, end time.Time) bool {
	sched := l.lookup(room)
	if sched == nil {
		return true
	}

	sched.mu.Lock()
	defer sched.mu.Unlock()
	return !sched.conflicts(model.Interval{Start: start, End: end}, -1)
}

// AvailableRoomCount is the number of rooms that have never held a booking.
// A room stays counted as used after its bookings are moved elsewhere.
func (l *Ledger) AvailableRoomCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.roomCount - len(l.schedules)
}

func (l *Ledger) BookedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bookings)
}

func (l *Ledger) ListBookings() []model.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Booking, len(l.bookings))
	copy(out, l.bookings)
	return out
}

// RoomSchedule returns the intervals currently reserved on room, ordered
// by start time.
func (l *Ledger) RoomSchedule(room int) []model.Interval {
	sched := l.lookup(room)
	if sched == nil {
		return []model.Interval{}
	}

	sched.mu.Lock()
	out := make([]model.Interval, 0, len(sched.slots))
	for _, slot := range sched.slots {
		out = append(out, slot)
	}
	sched.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].End.Before(out[j].End)
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func (l *Ledger) RoomCount() int {
	return l.roomCount
}

func (l *Ledger) validate(start, end time.Time, chairs, room int) error {
	if room < 1 || room > l.roomCount {
		return fmt.Errorf("room %d not in [1,%d]: %w", room, l.roomCount, roomserrors.ErrInvalidRoom)
	}
	if chairs < 0 {
		return fmt.Errorf("chairs %d: %w", chairs, roomserrors.ErrInvalidChairs)
	}
	if !end.After(start) {
		return roomserrors.ErrInvalidTimeRange
	}
	return nil
}

func (l *Ledger) roomOf(index int) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.bookings) {
		return 0, fmt.Errorf("index %d with %d bookings: %w", index, len(l.bookings), roomserrors.ErrIndexOutOfRange)
	}
	return l.bookings[index].RoomNumber, nil
}

// scheduleFor returns the schedule of room, creating it on first use. Only
// mutating calls that are about to insert an interval create schedules.
func (l *Ledger) scheduleFor(room int) *schedule {
	l.mu.Lock()
	defer l.mu.Unlock()

	sched, ok := l.schedules[room]
	if !ok {
		sched = &schedule{slots: make(map[int]model.Interval)}
		l.schedules[room] = sched
	}
	return sched
}

func (l *Ledger) lookup(room int) *schedule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.schedules[room]
}

func (s *schedule) conflicts(candidate model.Interval, skipIndex int) bool {
	for index, slot := range s.slots {
		if index == skipIndex {
			continue
		}
		if slot.Overlaps(candidate) {
			return true
		}
	}
	return false
}

func lockPair(roomA int, a *schedule, roomB int, b *schedule) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	if roomB < roomA {
		a, b = b, a
	}
	a.mu.Lock()
	b.mu.Lock()
	return func() {
		b.mu.Unlock()
		a.mu.Unlock()
	}
}
