package utils

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// The operating day is divided into 48 half-hour slots, UTC.
// Slot n covers [midnight + 30n min, midnight + 30(n+1) min).
const (
	SlotsPerDay  = 48
	SlotDuration = 30 * time.Minute

	// CheckinWindow is how long after a booking starts the PIN must be
	// entered before the booking is timed out.
	CheckinWindow = 30 * time.Minute

	// UpcomingLead is how far before a booking starts the seat is marked
	// upcoming (LED goes yellow on the hardware side).
	UpcomingLead = 10 * time.Minute
)

// SlotToTime returns the wall-clock start of the given slot on ref's day (UTC).
func SlotToTime(slot int, ref time.Time) time.Time {
	midnight := ref.UTC().Truncate(24 * time.Hour)
	return midnight.Add(time.Duration(slot) * SlotDuration)
}

// CurrentSlot returns the slot index that contains ref.
func CurrentSlot(ref time.Time) int {
	t := ref.UTC()
	return (t.Hour()*60 + t.Minute()) / 30
}

// SlotsOverlap reports whether two slot intervals conflict. Adjacent
// intervals (aEnd == bStart) are also treated as conflicting, so
// back-to-back bookings on the same seat are rejected. The hardware
// relies on this exact boundary behaviour.
func SlotsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aEnd >= bStart && bEnd >= aStart
}

// ==================== PIN ====================

// HashPIN returns a one-way digest of the 4-digit PIN. The plaintext is
// never persisted.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPIN checks a plaintext PIN against a stored digest.
func VerifyPIN(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
