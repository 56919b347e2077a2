package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/dto/response"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID string, req *request.CancelBookingRequest) error
	GetBookings(ctx context.Context) ([]response.BookingResponse, error)
	GetStudentBookings(ctx context.Context, studentID string) ([]response.BookingResponse, error)
}

type bookingService struct {
	repo      *repository.Repository
	lifecycle LifecycleService
	pub       StatusPublisher
	locks     *seatLocks
	log       *zap.Logger
	now       func() time.Time
}

func NewBookingService(repo *repository.Repository, lifecycle LifecycleService, pub StatusPublisher, locks *seatLocks, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		lifecycle: lifecycle,
		pub:       pub,
		locks:     locks,
		log:       log.With(zap.String("service", "booking")),
		now:       time.Now,
	}
}

// CreateBooking is the admission gate: a request only becomes a Booking
// after the slot range, the seat's existing intervals and the physical
// occupancy block all pass.
func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := s.now()
	nowSlot := utils.CurrentSlot(now)

	if req.StartSlot >= req.EndSlot {
		return nil, utils.NewValidationError("start_slot must be less than end_slot (minimum one 30-minute slot)")
	}
	if req.StartSlot <= nowSlot {
		return nil, utils.NewValidationError("cannot book a time slot that has already started or passed")
	}

	unlock := s.locks.Lock(req.SeatID)
	defer unlock()

	seat, err := s.repo.Seat.FindByID(ctx, req.SeatID)
	if err != nil {
		return nil, fmt.Errorf("load seat: %w", err)
	}
	if seat == nil {
		return nil, utils.NewNotFoundError("seat %s not found", req.SeatID)
	}

	// Overlap against the seat's confirmed intervals
	for _, ts := range seat.TodayBookings {
		if utils.SlotsOverlap(req.StartSlot, req.EndSlot, ts.StartSlot, ts.EndSlot) {
			return nil, utils.NewConflictError("seat %s is already booked during that period", req.SeatID)
		}
	}

	// A person physically present without a reservation blocks the seat
	// until the nearest live interval closes (or end of day if none).
	if seat.PhysicalStatus == entity.PhysicalStatusOccupied {
		blockedEnd := utils.SlotsPerDay
		if ts, ok := seat.FirstActiveOrFuture(nowSlot); ok {
			blockedEnd = ts.EndSlot
		}
		if utils.SlotsOverlap(req.StartSlot, req.EndSlot, nowSlot+1, blockedEnd) {
			return nil, utils.NewConflictError("seat %s is physically occupied during that period", req.SeatID)
		}
	}

	pinHash, err := utils.HashPIN(req.PinCode)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	booking := &entity.Booking{
		BookingID:   utils.GenerateBookingID(),
		SeatID:      req.SeatID,
		StudentID:   req.StudentID,
		StartSlot:   req.StartSlot,
		EndSlot:     req.EndSlot,
		PinCodeHash: pinHash,
		CreatedAt:   now,
		Status:      entity.BookingStatusConfirmed,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	prev := seat.Status
	seat.AddInterval(booking.Interval())
	seat.RecomputeNextStart(now)
	if seat.Status == entity.SeatStatusFree {
		seat.Status = entity.SeatStatusReserved
	}

	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		// Roll the booking back so the store never holds a booking the
		// seat does not mirror.
		if delErr := s.repo.Booking.Delete(ctx, booking.BookingID); delErr != nil {
			s.log.Error("Compensating delete failed, seat mirror inconsistent",
				zap.Error(delErr),
				zap.String("booking_id", booking.BookingID),
			)
		}
		return nil, fmt.Errorf("update seat: %w", err)
	}

	s.lifecycle.RegisterBookingTimers(booking)

	if seat.Status != prev {
		s.pub.PublishSeatStatus(seat.SeatID, seat.Status)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.BookingID),
		zap.String("seat_id", booking.SeatID),
		zap.String("student_id", booking.StudentID),
		zap.Int("start_slot", booking.StartSlot),
		zap.Int("end_slot", booking.EndSlot),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// CancelBooking terminates a booking on the student's request. The
// caller has to present the matching student id and PIN; a single
// generic failure covers both so nothing leaks about which was wrong.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, req *request.CancelBookingRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return utils.NewNotFoundError("booking %s not found", bookingID)
	}

	if booking.StudentID != req.StudentID || !utils.VerifyPIN(req.PinCode, booking.PinCodeHash) {
		return utils.NewAuthorizationError("student id or PIN does not match booking %s", bookingID)
	}

	unlock := s.locks.Lock(booking.SeatID)
	defer unlock()

	if err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	s.lifecycle.CancelBookingTimers(bookingID)

	seat, err := s.repo.Seat.FindByID(ctx, booking.SeatID)
	if err != nil {
		return fmt.Errorf("load seat: %w", err)
	}
	if seat == nil {
		s.log.Error("Cancelled booking references unknown seat",
			zap.String("booking_id", bookingID),
			zap.String("seat_id", booking.SeatID),
		)
		return nil
	}

	now := s.now()
	nowSlot := utils.CurrentSlot(now)
	prev := seat.Status

	seat.RemoveInterval(booking.Interval())
	seat.RecomputeNextStart(now)
	seat.Status = statusAfterCancel(seat, booking.Interval(), prev, nowSlot)

	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		return fmt.Errorf("update seat: %w", err)
	}

	if seat.Status != prev {
		s.pub.PublishSeatStatus(seat.SeatID, seat.Status)
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("seat_id", booking.SeatID),
	)
	return nil
}

// statusAfterCancel decides the seat's booking-driven state once the
// cancelled interval has been removed from TodayBookings.
func statusAfterCancel(seat *entity.Seat, cancelled entity.TimeSlot, prev entity.SeatStatus, nowSlot int) entity.SeatStatus {
	if !seat.HasActiveOrFutureInterval(nowSlot) {
		return entity.SeatStatusFree
	}

	active := cancelled.StartSlot <= nowSlot && nowSlot < cancelled.EndSlot
	if active && (prev == entity.SeatStatusAwaitingCheckin || prev == entity.SeatStatusOccupied) {
		return entity.SeatStatusFree
	}

	if prev == entity.SeatStatusUpcoming && triggeredUpcoming(seat, cancelled, nowSlot) {
		if seat.HasFutureInterval(nowSlot) {
			return entity.SeatStatusReserved
		}
		return entity.SeatStatusFree
	}

	return prev
}

// triggeredUpcoming reports whether the cancelled interval is the one
// whose approach put the seat into upcoming: it starts in the future and
// no remaining interval starts earlier.
func triggeredUpcoming(seat *entity.Seat, cancelled entity.TimeSlot, nowSlot int) bool {
	if cancelled.StartSlot <= nowSlot {
		return false
	}
	for _, ts := range seat.TodayBookings {
		if ts.StartSlot > nowSlot && ts.StartSlot < cancelled.StartSlot {
			return false
		}
	}
	return true
}

// ==================== LISTINGS ====================

func (s *bookingService) GetBookings(ctx context.Context) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}
	return toBookingResponses(bookings), nil
}

func (s *bookingService) GetStudentBookings(ctx context.Context, studentID string) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student bookings: %w", err)
	}
	return toBookingResponses(bookings), nil
}

func toBookingResponses(bookings []*entity.Booking) []response.BookingResponse {
	responses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = response.BookingToResponse(booking)
	}
	return responses
}
