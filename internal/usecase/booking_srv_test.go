package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/request"
	"seat-reservation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReq(seatID string, start, end int) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		SeatID:    seatID,
		StudentID: "S2021001",
		StartSlot: start,
		EndSlot:   end,
		PinCode:   "4921",
	}
}

func TestCreateBooking_Success(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusFree)

	resp, err := f.booking.CreateBooking(context.Background(), createReq("A1", 20, 24))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "A1", resp.SeatID)
	assert.Equal(t, "S2021001", resp.StudentID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Regexp(t, `^BK[0-9A-F]{6}$`, resp.BookingID)

	seat := f.getSeat(t, "A1")
	assert.Equal(t, entity.SeatStatusReserved, seat.Status)
	assert.Equal(t, []entity.TimeSlot{{StartSlot: 20, EndSlot: 24}}, seat.TodayBookings)
	require.NotNil(t, seat.NextBookingStart)
	assert.Equal(t, "10:00", seat.NextBookingStart.Format("15:04"))

	// All four lifecycle timers registered.
	assert.Equal(t, []string{
		"activate_" + resp.BookingID,
		"checkin_timeout_" + resp.BookingID,
		"expire_" + resp.BookingID,
		"upcoming_" + resp.BookingID,
	}, f.sched.Pending())

	assert.Equal(t, "A1=reserved", f.pub.last())

	// The stored PIN is a digest, never the plaintext.
	stored, err := f.repo.Booking.FindByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "4921", stored.PinCodeHash)
	assert.True(t, utils.VerifyPIN("4921", stored.PinCodeHash))
}

func TestCreateBooking_ValidationFailures(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusFree)

	cases := []struct {
		name string
		req  *request.CreateBookingRequest
	}{
		{"missing seat", &request.CreateBookingRequest{StudentID: "S1", StartSlot: 20, EndSlot: 24, PinCode: "4921"}},
		{"short pin", &request.CreateBookingRequest{SeatID: "A1", StudentID: "S1", StartSlot: 20, EndSlot: 24, PinCode: "12"}},
		{"non-numeric pin", &request.CreateBookingRequest{SeatID: "A1", StudentID: "S1", StartSlot: 20, EndSlot: 24, PinCode: "12ab"}},
		{"slot out of range", &request.CreateBookingRequest{SeatID: "A1", StudentID: "S1", StartSlot: 50, EndSlot: 52, PinCode: "4921"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.booking.CreateBooking(context.Background(), tc.req)
			assert.True(t, utils.IsKind(err, utils.ErrValidation), "expected validation error, got %v", err)
		})
	}
}

func TestCreateBooking_EmptyAndPastRanges(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusFree)

	// start == end is an empty interval
	_, err := f.booking.CreateBooking(context.Background(), createReq("A1", 20, 20))
	assert.True(t, utils.IsKind(err, utils.ErrValidation))

	// nowSlot is 19: the current slot and anything earlier is gone
	_, err = f.booking.CreateBooking(context.Background(), createReq("A1", 19, 24))
	assert.True(t, utils.IsKind(err, utils.ErrValidation))

	_, err = f.booking.CreateBooking(context.Background(), createReq("A1", 10, 14))
	assert.True(t, utils.IsKind(err, utils.ErrValidation))
}

func TestCreateBooking_UnknownSeat(t *testing.T) {
	f := newFixture(t)

	_, err := f.booking.CreateBooking(context.Background(), createReq("Z9", 20, 24))
	assert.True(t, utils.IsKind(err, utils.ErrNotFound))
}

func TestCreateBooking_OverlapConflicts(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusReserved, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 22, EndSlot: 26})

	// Plain overlap
	_, err := f.booking.CreateBooking(context.Background(), createReq("A1", 20, 24))
	assert.True(t, utils.IsKind(err, utils.ErrConflict))

	// Back-to-back: new booking ends exactly where the existing starts
	_, err = f.booking.CreateBooking(context.Background(), createReq("A1", 20, 22))
	assert.True(t, utils.IsKind(err, utils.ErrConflict))

	// Back-to-back the other way
	_, err = f.booking.CreateBooking(context.Background(), createReq("A1", 26, 30))
	assert.True(t, utils.IsKind(err, utils.ErrConflict))

	// A clear gap is fine
	resp, err := f.booking.CreateBooking(context.Background(), createReq("A1", 28, 32))
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestCreateBooking_PhysicallyOccupiedBlocks(t *testing.T) {
	f := newFixture(t)
	// Someone sat down without a reservation: no intervals, sensor occupied.
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusOccupied)

	// With no interval to bound it, the block runs to end of day.
	_, err := f.booking.CreateBooking(context.Background(), createReq("A1", 21, 25))
	assert.True(t, utils.IsKind(err, utils.ErrConflict))

	_, err = f.booking.CreateBooking(context.Background(), createReq("A1", 44, 48))
	assert.True(t, utils.IsKind(err, utils.ErrConflict))
}

func TestCreateBooking_PhysicallyOccupiedBoundedByInterval(t *testing.T) {
	f := newFixture(t)
	// The sitter's own booking runs [18, 24); the block ends with it.
	f.seedSeat(t, "B1", entity.SeatStatusOccupied, entity.PhysicalStatusOccupied,
		entity.TimeSlot{StartSlot: 18, EndSlot: 24})

	// Inside the blocked range
	_, err := f.booking.CreateBooking(context.Background(), createReq("B1", 24, 28))
	assert.True(t, utils.IsKind(err, utils.ErrConflict))

	// After the block (and clear of the interval) is bookable
	resp, err := f.booking.CreateBooking(context.Background(), createReq("B1", 26, 30))
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

// failingSeatRepo makes Update fail so the compensating path runs.
type failingSeatRepo struct {
	repository.SeatRepository
}

func (r *failingSeatRepo) Update(ctx context.Context, seat *entity.Seat) error {
	return errors.New("connection reset")
}

func TestCreateBooking_SeatUpdateFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusFree)
	f.repo.Seat = &failingSeatRepo{SeatRepository: f.repo.Seat}

	_, err := f.booking.CreateBooking(context.Background(), createReq("A1", 20, 24))
	require.Error(t, err)

	// The half-created booking must be gone again.
	bookings, err := f.repo.Booking.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.Empty(t, f.sched.Pending())
}

func TestCancelBooking_NotFound(t *testing.T) {
	f := newFixture(t)

	err := f.booking.CancelBooking(context.Background(), "BK000000", &request.CancelBookingRequest{
		StudentID: "S2021001", PinCode: "4921",
	})
	assert.True(t, utils.IsKind(err, utils.ErrNotFound))
}

func TestCancelBooking_CredentialMismatch(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusReserved, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 20, EndSlot: 24})
	f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 20, 24)

	// Wrong student
	err := f.booking.CancelBooking(context.Background(), "BK0000A1", &request.CancelBookingRequest{
		StudentID: "S2021999", PinCode: "4921",
	})
	assert.True(t, utils.IsKind(err, utils.ErrAuthorization))

	// Wrong PIN
	err = f.booking.CancelBooking(context.Background(), "BK0000A1", &request.CancelBookingRequest{
		StudentID: "S2021001", PinCode: "0000",
	})
	assert.True(t, utils.IsKind(err, utils.ErrAuthorization))

	// The booking survives failed attempts.
	booking, err := f.repo.Booking.FindByID(context.Background(), "BK0000A1")
	require.NoError(t, err)
	assert.NotNil(t, booking)
}

func TestCancelBooking_LastIntervalFreesSeat(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusReserved, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 20, EndSlot: 24})
	booking := f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 20, 24)
	f.lifecycle.RegisterBookingTimers(booking)

	err := f.booking.CancelBooking(context.Background(), "BK0000A1", &request.CancelBookingRequest{
		StudentID: "S2021001", PinCode: "4921",
	})
	require.NoError(t, err)

	seat := f.getSeat(t, "A1")
	assert.Equal(t, entity.SeatStatusFree, seat.Status)
	assert.Empty(t, seat.TodayBookings)
	assert.Nil(t, seat.NextBookingStart)

	// Hard delete, and every timer torn down.
	stored, err := f.repo.Booking.FindByID(context.Background(), "BK0000A1")
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Empty(t, f.sched.Pending())

	assert.Equal(t, "A1=free", f.pub.last())
}

func TestCancelBooking_OtherFutureIntervalKeepsReserved(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusReserved, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 20, EndSlot: 24},
		entity.TimeSlot{StartSlot: 30, EndSlot: 34})
	f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 30, 34)

	published := f.pub.count()
	err := f.booking.CancelBooking(context.Background(), "BK0000A1", &request.CancelBookingRequest{
		StudentID: "S2021001", PinCode: "4921",
	})
	require.NoError(t, err)

	seat := f.getSeat(t, "A1")
	assert.Equal(t, entity.SeatStatusReserved, seat.Status)
	assert.Equal(t, []entity.TimeSlot{{StartSlot: 20, EndSlot: 24}}, seat.TodayBookings)

	// Status unchanged, so nothing was broadcast.
	assert.Equal(t, published, f.pub.count())
}

func TestCancelBooking_ActiveOccupiedFreesDespiteLaterInterval(t *testing.T) {
	f := newFixture(t)
	// Student checked in on [18, 24) and now cancels; a later booking
	// exists but the seat itself empties right now.
	f.seedSeat(t, "A1", entity.SeatStatusOccupied, entity.PhysicalStatusOccupied,
		entity.TimeSlot{StartSlot: 18, EndSlot: 24},
		entity.TimeSlot{StartSlot: 30, EndSlot: 34})
	f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 18, 24)

	err := f.booking.CancelBooking(context.Background(), "BK0000A1", &request.CancelBookingRequest{
		StudentID: "S2021001", PinCode: "4921",
	})
	require.NoError(t, err)

	seat := f.getSeat(t, "A1")
	assert.Equal(t, entity.SeatStatusFree, seat.Status)
	assert.Equal(t, "A1=free", f.pub.last())
}

func TestCancelBooking_UpcomingRecomputes(t *testing.T) {
	f := newFixture(t)
	// Seat went upcoming for the booking starting at slot 20; cancelling
	// that one leaves only the slot-30 booking, which is not imminent.
	f.seedSeat(t, "A1", entity.SeatStatusUpcoming, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 20, EndSlot: 24},
		entity.TimeSlot{StartSlot: 30, EndSlot: 34})
	f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 20, 24)

	err := f.booking.CancelBooking(context.Background(), "BK0000A1", &request.CancelBookingRequest{
		StudentID: "S2021001", PinCode: "4921",
	})
	require.NoError(t, err)

	seat := f.getSeat(t, "A1")
	assert.Equal(t, entity.SeatStatusReserved, seat.Status)
	require.NotNil(t, seat.NextBookingStart)
	assert.Equal(t, "15:00", seat.NextBookingStart.Format("15:04"))
}

func TestCancelBooking_UpcomingLastIntervalFrees(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusUpcoming, entity.PhysicalStatusFree,
		entity.TimeSlot{StartSlot: 20, EndSlot: 24})
	f.seedBooking(t, "BK0000A1", "A1", "S2021001", "4921", 20, 24)

	err := f.booking.CancelBooking(context.Background(), "BK0000A1", &request.CancelBookingRequest{
		StudentID: "S2021001", PinCode: "4921",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SeatStatusFree, f.getSeat(t, "A1").Status)
}

func TestGetBookings(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusFree)
	for i := 0; i < 3; i++ {
		f.seedBooking(t, fmt.Sprintf("BK00000%d", i), "A1", "S2021001", "4921", 20+4*i, 22+4*i)
	}

	all, err := f.booking.GetBookings(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetStudentBookings(t *testing.T) {
	f := newFixture(t)
	f.seedSeat(t, "A1", entity.SeatStatusFree, entity.PhysicalStatusFree)
	f.seedBooking(t, "BK000001", "A1", "S2021001", "4921", 20, 22)
	f.seedBooking(t, "BK000002", "A1", "S2021002", "4921", 24, 26)

	mine, err := f.booking.GetStudentBookings(context.Background(), "S2021001")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "BK000001", mine[0].BookingID)

	none, err := f.booking.GetStudentBookings(context.Background(), "S2099999")
	require.NoError(t, err)
	assert.Empty(t, none)
}
