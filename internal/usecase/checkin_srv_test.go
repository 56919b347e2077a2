package usecase

import (
	"context"
	"testing"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIn_Success(t *testing.T) {
	f := newFixture(t)
	// Active booking [18, 24) with nowSlot 19, seat waiting for the PIN.
	f.seedSeat(t, "A1", entity.SeatStatusAwaitingCheckin, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 18, EndSlot: 24})
	f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 18, 24)

	err := f.checkin.CheckIn(context.Background(), "A1", "4921")
	require.NoError(t, err)

	seat := f.getSeat(t, "A1")
	assert.Equal(t, entity.SeatStatusOccupied, seat.Status)
	assert.Equal(t, "A1=occupied", f.pub.last())

	// The booking itself is untouched by check-in.
	booking, err := f.repo.Booking.FindByID(context.Background(), "BK0000A1")
	require.NoError(t, err)
	assert.NotNil(t, booking)
}

func TestCheckIn_UnknownSeat(t *testing.T) {
	f := newFixture(t)

	err := f.checkin.CheckIn(context.Background(), "Z9", "4921")
	assert.True(t, utils.IsKind(err, utils.ErrNotFound))
}

func TestCheckIn_SeatNotAwaiting(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusFree)
	f.seedSeat(t, "B1", entity.SeatStatusReserved, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 30, EndSlot: 34})
	f.seedSeat(t, "C1", entity.SeatStatusOccupied, entity.PhysicalStatusOccupied,
		entity.TimeSlot{StartSlot: 18, EndSlot: 24})

	for _, seatID := range []string{"A1", "B1", "C1"} {
		err := f.checkin.CheckIn(context.Background(), seatID, "4921")
		assert.True(t, utils.IsKind(err, utils.ErrConflict), "seat %s", seatID)
	}
}

func TestCheckIn_WrongPIN(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusAwaitingCheckin, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 18, EndSlot: 24})
	f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 18, 24)

	err := f.checkin.CheckIn(context.Background(), "A1", "0000")
	assert.True(t, utils.IsKind(err, utils.ErrAuthorization))

	// Seat stays awaiting; the student may retry.
	assert.Equal(t, entity.SeatStatusAwaitingCheckin, f.getSeat(t, "A1").Status)
}

func TestCheckIn_NoActiveBooking(t *testing.T) {
	f := newFixture(t)
	// Seat stuck in awaiting_checkin but the covering booking is gone.
	f.seedSeat(t, "A1", entity.SeatStatusAwaitingCheckin, entity.PhysicalStatusFree)

	err := f.checkin.CheckIn(context.Background(), "A1", "4921")
	assert.True(t, utils.IsKind(err, utils.ErrAuthorization))
}

func TestSetPhysicalStatus(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusReserved, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 30, EndSlot: 34})

	err := f.seat.SetPhysicalStatus(context.Background(), "A1", entity.PhysicalStatusOccupied)
	require.NoError(t, err)

	seat := f.getSeat(t, "A1")
	assert.Equal(t, entity.PhysicalStatusOccupied, seat.PhysicalStatus)
	// The booking-driven axis is untouched.
	assert.Equal(t, entity.SeatStatusReserved, seat.Status)

	// Same value again is a no-op, unknown seat is not found.
	require.NoError(t, f.seat.SetPhysicalStatus(context.Background(), "A1", entity.PhysicalStatusOccupied))
	err = f.seat.SetPhysicalStatus(context.Background(), "Z9", entity.PhysicalStatusFree)
	assert.True(t, utils.IsKind(err, utils.ErrNotFound))
}

func TestGetSeats(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "B1", entity.SeatStatusFree, entity.PhysicalStatusFree)
	f.seedSeat(t, "A1", entity.SeatStatusReserved, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 20, EndSlot: 24})

	seats, err := f.seat.GetSeats(context.Background())
	require.NoError(t, err)
	require.Len(t, seats, 2)

	// Sorted by seat id.
	assert.Equal(t, "A1", seats[0].SeatID)
	assert.Equal(t, "reserved", seats[0].Status)
	require.NotNil(t, seats[0].NextBookingStartTime)
	assert.Equal(t, "2025-03-12T10:00:00Z", *seats[0].NextBookingStartTime)

	assert.Equal(t, "B1", seats[1].SeatID)
	assert.Equal(t, "free", seats[1].Status)
	assert.Nil(t, seats[1].NextBookingStartTime)
}
