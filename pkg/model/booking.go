package model

import (
	"time"
)

type Booking struct {
	Index      int       `json:"index"`
	Host       string    `json:"host"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Chairs     int       `json:"chairs"`
	RoomNumber int       `json:"room_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// BookingRequest carries the caller supplied fields of a booking, used for
// both creation and in-place updates.
type BookingRequest struct {
	Host       string    `json:"host" validate:"required,min=1,max=100"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Chairs     int       `json:"chairs" validate:"min=0"`
	RoomNumber int       `json:"room_number" validate:"required,min=1,max=25"`
}
