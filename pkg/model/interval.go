package model

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// Overlaps reports whether the two ranges share any instant. Touching
// endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

type RoomStats struct {
	AvailableRooms int `json:"available_rooms"`
	BookedRooms    int `json:"booked_rooms"`
}
