package ledger

import (
	"sync"
	"testing"
	"time"

	roomserrors "roomallot/internal/rooms/errors"
	"roomallot/pkg/model"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoomCount = 25

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.Local)
}

var ignoreTimestamps = cmpopts.IgnoreFields(model.Booking{}, "CreatedAt", "UpdatedAt")

func TestBook_RejectsSameSlot(t *testing.T) {
	l := New(testRoomCount)

	booking, err := l.Book("Ana", at(9, 0), at(10, 0), 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, booking.Index)
	assert.Equal(t, 1, l.BookedCount())

	assert.False(t, l.IsAvailable(3, at(9, 0), at(10, 0)))

	_, err = l.Book("Bo", at(9, 0), at(10, 0), 4, 3)
	require.ErrorIs(t, err, roomserrors.ErrNotAvailable)
	assert.Equal(t, 1, l.BookedCount())
}

func TestBook_AdjacentSlotsBothSucceed(t *testing.T) {
	l := New(testRoomCount)

	_, err := l.Book("a", at(9, 0), at(10, 0), 1, 5)
	require.NoError(t, err)
	assert.True(t, l.IsAvailable(5, at(10, 0), at(11, 0)))

	second, err := l.Book("b", at(10, 0), at(11, 0), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, 2, l.BookedCount())
}

func TestIsAvailable_OverlapRules(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("host", at(9, 0), at(11, 0), 2, 1)
	require.NoError(t, err)

	tests := []struct {
		name       string
		room       int
		start, end time.Time
		want       bool
	}{
		{name: "inside", room: 1, start: at(10, 0), end: at(10, 30), want: false},
		{name: "overlapping start", room: 1, start: at(8, 0), end: at(9, 30), want: false},
		{name: "touching start", room: 1, start: at(8, 0), end: at(9, 0), want: true},
		{name: "touching end", room: 1, start: at(11, 0), end: at(12, 0), want: true},
		{name: "other room", room: 2, start: at(9, 0), end: at(11, 0), want: true},
		{name: "untouched room", room: 25, start: at(0, 0), end: at(23, 0), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.IsAvailable(tt.room, tt.start, tt.end))
		})
	}
}

func TestIsAvailable_DoesNotTouchRoom(t *testing.T) {
	l := New(testRoomCount)

	assert.True(t, l.IsAvailable(9, at(9, 0), at(10, 0)))
	assert.Equal(t, testRoomCount, l.AvailableRoomCount())
}

func TestBook_Validation(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		chairs     int
		room       int
		wantErr    error
	}{
		{name: "room zero", start: at(9, 0), end: at(10, 0), room: 0, wantErr: roomserrors.ErrInvalidRoom},
		{name: "room above range", start: at(9, 0), end: at(10, 0), room: 26, wantErr: roomserrors.ErrInvalidRoom},
		{name: "negative chairs", start: at(9, 0), end: at(10, 0), chairs: -1, room: 1, wantErr: roomserrors.ErrInvalidChairs},
		{name: "empty range", start: at(9, 0), end: at(9, 0), room: 1, wantErr: roomserrors.ErrInvalidTimeRange},
		{name: "inverted range", start: at(10, 0), end: at(9, 0), room: 1, wantErr: roomserrors.ErrInvalidTimeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(testRoomCount)
			_, err := l.Book("host", tt.start, tt.end, tt.chairs, tt.room)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, l.BookedCount())
			assert.Equal(t, testRoomCount, l.AvailableRoomCount())
		})
	}
}

func TestAvailableRoomCount(t *testing.T) {
	l := New(testRoomCount)
	assert.Equal(t, 25, l.AvailableRoomCount())

	_, err := l.Book("a", at(9, 0), at(10, 0), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 24, l.AvailableRoomCount())

	_, err = l.Book("b", at(11, 0), at(12, 0), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 24, l.AvailableRoomCount())

	_, err = l.Book("c", at(11, 0), at(12, 0), 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 23, l.AvailableRoomCount())
}

func TestUpdateBooking_InPlace(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("Ana", at(9, 0), at(10, 0), 10, 3)
	require.NoError(t, err)
	_, err = l.Book("Bo", at(9, 0), at(10, 0), 2, 4)
	require.NoError(t, err)

	updated, err := l.UpdateBooking(0, "Ana B", at(14, 0), at(15, 0), 12, 6)
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.IsZero())

	want := []model.Booking{
		{Index: 0, Host: "Ana B", StartTime: at(14, 0), EndTime: at(15, 0), Chairs: 12, RoomNumber: 6},
		{Index: 1, Host: "Bo", StartTime: at(9, 0), EndTime: at(10, 0), Chairs: 2, RoomNumber: 4},
	}
	if diff := cmp.Diff(want, l.ListBookings(), ignoreTimestamps); diff != "" {
		t.Errorf("ListBookings() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, l.BookedCount())
}

func TestUpdateBooking_ReleasesOldSlot(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("Ana", at(9, 0), at(10, 0), 10, 3)
	require.NoError(t, err)

	_, err = l.UpdateBooking(0, "Ana", at(9, 0), at(10, 0), 10, 4)
	require.NoError(t, err)

	assert.True(t, l.IsAvailable(3, at(9, 0), at(10, 0)))
	assert.False(t, l.IsAvailable(4, at(9, 0), at(10, 0)))
	assert.Empty(t, l.RoomSchedule(3))
	// room 3 was used once and stays counted
	assert.Equal(t, 23, l.AvailableRoomCount())
}

func TestUpdateBooking_MayOverlapItself(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("Ana", at(9, 0), at(10, 0), 10, 3)
	require.NoError(t, err)

	_, err = l.UpdateBooking(0, "Ana", at(9, 30), at(10, 30), 10, 3)
	require.NoError(t, err)

	want := []model.Interval{{Start: at(9, 30), End: at(10, 30)}}
	if diff := cmp.Diff(want, l.RoomSchedule(3)); diff != "" {
		t.Errorf("RoomSchedule(3) mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateBooking_ConflictLeavesStateUnchanged(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("Ana", at(9, 0), at(10, 0), 10, 3)
	require.NoError(t, err)
	_, err = l.Book("Bo", at(11, 0), at(12, 0), 2, 3)
	require.NoError(t, err)
	before := l.ListBookings()

	_, err = l.UpdateBooking(1, "Bo", at(9, 30), at(11, 30), 2, 3)
	require.ErrorIs(t, err, roomserrors.ErrNotAvailable)

	if diff := cmp.Diff(before, l.ListBookings()); diff != "" {
		t.Errorf("bookings changed after failed update (-before +after):\n%s", diff)
	}
	assert.Len(t, l.RoomSchedule(3), 2)
}

func TestUpdateBooking_IndexOutOfRange(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("Ana", at(9, 0), at(10, 0), 10, 3)
	require.NoError(t, err)
	before := l.ListBookings()

	for _, index := range []int{-1, 1, 42} {
		_, err := l.UpdateBooking(index, "x", at(13, 0), at(14, 0), 1, 5)
		require.ErrorIs(t, err, roomserrors.ErrIndexOutOfRange, "index %d", index)
	}

	if diff := cmp.Diff(before, l.ListBookings()); diff != "" {
		t.Errorf("bookings changed after failed update (-before +after):\n%s", diff)
	}
	assert.Equal(t, 24, l.AvailableRoomCount())
}

func TestListBookings_ReturnsCopy(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("Ana", at(9, 0), at(10, 0), 10, 3)
	require.NoError(t, err)

	list := l.ListBookings()
	list[0].Host = "mutated"

	assert.Equal(t, "Ana", l.ListBookings()[0].Host)
}

func TestRoomSchedule_Sorted(t *testing.T) {
	l := New(testRoomCount)
	for _, hour := range []int{15, 9, 12} {
		_, err := l.Book("h", at(hour, 0), at(hour+1, 0), 1, 2)
		require.NoError(t, err)
	}

	want := []model.Interval{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(12, 0), End: at(13, 0)},
		{Start: at(15, 0), End: at(16, 0)},
	}
	if diff := cmp.Diff(want, l.RoomSchedule(2)); diff != "" {
		t.Errorf("RoomSchedule(2) mismatch (-want +got):\n%s", diff)
	}
}

func TestBook_ConcurrentSameSlotAdmitsOne(t *testing.T) {
	l := New(testRoomCount)

	const callers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.Book("racer", at(9, 0), at(10, 0), 1, 11); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, l.BookedCount())
}

func TestUpdateBooking_ConcurrentCrossRoomMoves(t *testing.T) {
	l := New(testRoomCount)
	_, err := l.Book("a", at(9, 0), at(10, 0), 1, 1)
	require.NoError(t, err)
	_, err = l.Book("b", at(9, 0), at(10, 0), 1, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, _ = l.UpdateBooking(0, "a", at(9, 0), at(10, 0), 1, 1+i%2)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, _ = l.UpdateBooking(1, "b", at(9, 0), at(10, 0), 1, 2-i%2)
		}
	}()
	wg.Wait()

	bookings := l.ListBookings()
	require.Len(t, bookings, 2)
	assert.NotEqual(t, bookings[0].RoomNumber, bookings[1].RoomNumber)
	assert.Len(t, l.RoomSchedule(1), 1)
	assert.Len(t, l.RoomSchedule(2), 1)
}
