package entity

import (
	"sort"
	"time"

	"seat-reservation/pkg/utils"
)

// SeatStatus is the booking-driven state axis. It is what the hardware
// LED mirrors.
type SeatStatus string

const (
	SeatStatusFree            SeatStatus = "free"
	SeatStatusReserved        SeatStatus = "reserved"
	SeatStatusUpcoming        SeatStatus = "upcoming"
	SeatStatusAwaitingCheckin SeatStatus = "awaiting_checkin"
	SeatStatusOccupied        SeatStatus = "occupied"
)

// PhysicalStatus is the sensor-driven state axis, independent of the
// booking state. Only the IR presence sensor writes it.
type PhysicalStatus string

const (
	PhysicalStatusFree     PhysicalStatus = "free"
	PhysicalStatusOccupied PhysicalStatus = "occupied"
)

// TimeSlot is a half-open [StartSlot, EndSlot) interval of 30-minute slots.
type TimeSlot struct {
	StartSlot int `json:"start_slot"`
	EndSlot   int `json:"end_slot"`
}

type Seat struct {
	SeatID         string         `db:"seat_id"`
	Status         SeatStatus     `db:"status"`
	PhysicalStatus PhysicalStatus `db:"physical_status"`
	// TodayBookings mirrors the intervals of all confirmed bookings for
	// this seat, sorted by start slot. Kept on the seat row so overlap
	// checks do not need a second query.
	TodayBookings []TimeSlot `db:"today_bookings"`
	// NextBookingStart is the start instant of the earliest future
	// interval in TodayBookings, or nil. Recomputed on every mutation
	// of TodayBookings.
	NextBookingStart *time.Time `db:"next_booking_start_time"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// DefaultSeatIDs are the 12 physical desks in the reading room.
var DefaultSeatIDs = []string{
	"A1", "A2", "A3", "A4",
	"B1", "B2", "B3", "B4",
	"C1", "C2", "C3", "C4",
}

// AddInterval inserts an interval and keeps TodayBookings sorted by start.
func (s *Seat) AddInterval(ts TimeSlot) {
	s.TodayBookings = append(s.TodayBookings, ts)
	sort.Slice(s.TodayBookings, func(i, j int) bool {
		return s.TodayBookings[i].StartSlot < s.TodayBookings[j].StartSlot
	})
}

// RemoveInterval removes the first interval equal to ts.
func (s *Seat) RemoveInterval(ts TimeSlot) {
	for i, existing := range s.TodayBookings {
		if existing == ts {
			s.TodayBookings = append(s.TodayBookings[:i], s.TodayBookings[i+1:]...)
			return
		}
	}
}

// RecomputeNextStart refreshes NextBookingStart from TodayBookings
// relative to now. Must be called after every interval mutation.
func (s *Seat) RecomputeNextStart(now time.Time) {
	nowSlot := utils.CurrentSlot(now)
	for _, ts := range s.TodayBookings {
		if ts.StartSlot > nowSlot {
			start := utils.SlotToTime(ts.StartSlot, now)
			s.NextBookingStart = &start
			return
		}
	}
	s.NextBookingStart = nil
}

// FirstActiveOrFuture returns the earliest interval that has not fully
// elapsed yet (its end is still ahead of the current slot).
func (s *Seat) FirstActiveOrFuture(nowSlot int) (TimeSlot, bool) {
	for _, ts := range s.TodayBookings {
		if ts.EndSlot > nowSlot {
			return ts, true
		}
	}
	return TimeSlot{}, false
}

// HasFutureInterval reports whether any interval starts after nowSlot.
func (s *Seat) HasFutureInterval(nowSlot int) bool {
	for _, ts := range s.TodayBookings {
		if ts.StartSlot > nowSlot {
			return true
		}
	}
	return false
}

// HasActiveOrFutureInterval reports whether any interval is still live.
func (s *Seat) HasActiveOrFutureInterval(nowSlot int) bool {
	_, ok := s.FirstActiveOrFuture(nowSlot)
	return ok
}
