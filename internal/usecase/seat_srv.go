package usecase

import (
	"context"
	"fmt"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/response"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type SeatService interface {
	GetSeats(ctx context.Context) ([]response.SeatResponse, error)
	SetPhysicalStatus(ctx context.Context, seatID string, status entity.PhysicalStatus) error
}

type seatService struct {
	repo  *repository.Repository
	locks *seatLocks
	log   *zap.Logger
}

func NewSeatService(repo *repository.Repository, locks *seatLocks, log *zap.Logger) SeatService {
	return &seatService{
		repo:  repo,
		locks: locks,
		log:   log.With(zap.String("service", "seat")),
	}
}

func (s *seatService) GetSeats(ctx context.Context) ([]response.SeatResponse, error) {
	seats, err := s.repo.Seat.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get seats: %w", err)
	}

	responses := make([]response.SeatResponse, len(seats))
	for i, seat := range seats {
		responses[i] = response.SeatToResponse(seat)
	}
	return responses, nil
}

// SetPhysicalStatus records what the IR sensor sees. The physical axis
// never touches the booking-driven status; it only influences admission
// of new bookings.
func (s *seatService) SetPhysicalStatus(ctx context.Context, seatID string, status entity.PhysicalStatus) error {
	unlock := s.locks.Lock(seatID)
	defer unlock()

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil {
		return fmt.Errorf("load seat: %w", err)
	}
	if seat == nil {
		return utils.NewNotFoundError("seat %s not found", seatID)
	}

	if seat.PhysicalStatus == status {
		return nil
	}

	seat.PhysicalStatus = status
	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		return fmt.Errorf("update seat: %w", err)
	}

	s.log.Info("Physical status changed",
		zap.String("seat_id", seatID),
		zap.String("physical_status", string(status)),
	)
	return nil
}
