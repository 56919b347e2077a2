package repository

import (
	"context"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"go.uber.org/zap"
)

type SeatRepository interface {
	FindByID(ctx context.Context, seatID string) (*entity.Seat, error)
	FindAll(ctx context.Context) ([]*entity.Seat, error)
	Update(ctx context.Context, seat *entity.Seat) error
	CreateBatch(ctx context.Context, seats []*entity.Seat) error
	Count(ctx context.Context) (int64, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, bookingID string) (*entity.Booking, error)
	FindAll(ctx context.Context) ([]*entity.Booking, error)
	FindBySeatID(ctx context.Context, seatID string) ([]*entity.Booking, error)
	FindByStudentID(ctx context.Context, studentID string) ([]*entity.Booking, error)
	FindByStatus(ctx context.Context, status entity.BookingStatus) ([]*entity.Booking, error)
	// FindActiveForSeat returns the confirmed booking on the seat whose
	// interval contains the given slot, or nil.
	FindActiveForSeat(ctx context.Context, seatID string, slot int) (*entity.Booking, error)
	// FindEndedBefore returns bookings whose end slot has fully elapsed
	// (end_slot <= slot).
	FindEndedBefore(ctx context.Context, slot int) ([]*entity.Booking, error)
	Delete(ctx context.Context, bookingID string) error
}

type Repository struct {
	Seat    SeatRepository
	Booking BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Seat:    NewSeatRepository(db, log),
		Booking: NewBookingRepository(db, log),
	}
}
