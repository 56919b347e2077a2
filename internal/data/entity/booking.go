package entity

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	// BookingStatusCancelled exists for a future audit trail. Every
	// termination path today hard-deletes the row instead of flipping
	// the status, so nothing writes this value yet.
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	BookingID   string        `db:"booking_id"`
	SeatID      string        `db:"seat_id"`
	StudentID   string        `db:"student_id"`
	StartSlot   int           `db:"start_slot"`
	EndSlot     int           `db:"end_slot"`
	PinCodeHash string        `db:"pin_code_hash"`
	CreatedAt   time.Time     `db:"created_at"`
	Status      BookingStatus `db:"status"`
}

// Interval returns the booking's slot interval.
func (b *Booking) Interval() TimeSlot {
	return TimeSlot{StartSlot: b.StartSlot, EndSlot: b.EndSlot}
}

// Contains reports whether slot falls inside [StartSlot, EndSlot).
func (b *Booking) Contains(slot int) bool {
	return b.StartSlot <= slot && slot < b.EndSlot
}
