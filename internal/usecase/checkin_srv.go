package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type CheckinService interface {
	CheckIn(ctx context.Context, seatID string, pinCode string) error
}

type checkinService struct {
	repo  *repository.Repository
	pub   StatusPublisher
	locks *seatLocks
	log   *zap.Logger
	now   func() time.Time
}

func NewCheckinService(repo *repository.Repository, pub StatusPublisher, locks *seatLocks, log *zap.Logger) CheckinService {
	return &checkinService{
		repo:  repo,
		pub:   pub,
		locks: locks,
		log:   log.With(zap.String("service", "checkin")),
		now:   time.Now,
	}
}

// CheckIn confirms presence at the seat with the booking's PIN. Only a
// seat sitting in awaiting_checkin accepts one; the PIN is verified
// against the booking whose interval covers the current slot.
func (s *checkinService) CheckIn(ctx context.Context, seatID string, pinCode string) error {
	unlock := s.locks.Lock(seatID)
	defer unlock()

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil {
		return fmt.Errorf("load seat: %w", err)
	}
	if seat == nil {
		return utils.NewNotFoundError("seat %s not found", seatID)
	}

	if seat.Status != entity.SeatStatusAwaitingCheckin {
		return utils.NewConflictError("seat %s is not awaiting check-in", seatID)
	}

	nowSlot := utils.CurrentSlot(s.now())
	booking, err := s.repo.Booking.FindActiveForSeat(ctx, seatID, nowSlot)
	if err != nil {
		return fmt.Errorf("load active booking: %w", err)
	}
	if booking == nil || !utils.VerifyPIN(pinCode, booking.PinCodeHash) {
		return utils.NewAuthorizationError("incorrect PIN for seat %s", seatID)
	}

	seat.Status = entity.SeatStatusOccupied
	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		return fmt.Errorf("update seat: %w", err)
	}

	s.pub.PublishSeatStatus(seat.SeatID, seat.Status)

	s.log.Info("Check-in accepted",
		zap.String("seat_id", seatID),
		zap.String("booking_id", booking.BookingID),
	)
	return nil
}
