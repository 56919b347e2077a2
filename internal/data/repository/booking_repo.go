package repository

import (
	"context"
	"fmt"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `booking_id, seat_id, student_id, start_slot, end_slot, pin_code_hash, created_at, status`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (booking_id, seat_id, student_id, start_slot, end_slot, pin_code_hash, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		booking.BookingID,
		booking.SeatID,
		booking.StudentID,
		booking.StartSlot,
		booking.EndSlot,
		booking.PinCodeHash,
		booking.CreatedAt,
		booking.Status,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.BookingID),
			zap.String("seat_id", booking.SeatID),
		)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, bookingID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at`
	return r.queryBookings(ctx, query)
}

func (r *bookingRepository) FindBySeatID(ctx context.Context, seatID string) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE seat_id = $1 ORDER BY start_slot`
	return r.queryBookings(ctx, query, seatID)
}

func (r *bookingRepository) FindByStudentID(ctx context.Context, studentID string) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE student_id = $1 ORDER BY start_slot`
	return r.queryBookings(ctx, query, studentID)
}

func (r *bookingRepository) FindByStatus(ctx context.Context, status entity.BookingStatus) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 ORDER BY start_slot`
	return r.queryBookings(ctx, query, status)
}

func (r *bookingRepository) FindActiveForSeat(ctx context.Context, seatID string, slot int) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE seat_id = $1 AND status = $2 AND start_slot <= $3 AND end_slot > $3
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, seatID, entity.BookingStatusConfirmed, slot))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active booking",
			zap.Error(err),
			zap.String("seat_id", seatID),
			zap.Int("slot", slot),
		)
		return nil, fmt.Errorf("failed to find active booking: %w", err)
	}

	return booking, nil
}

func (r *bookingRepository) FindEndedBefore(ctx context.Context, slot int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE end_slot <= $1 ORDER BY end_slot`
	return r.queryBookings(ctx, query, slot)
}

func (r *bookingRepository) Delete(ctx context.Context, bookingID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE booking_id = $1`, bookingID)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.BookingID,
		&booking.SeatID,
		&booking.StudentID,
		&booking.StartSlot,
		&booking.EndSlot,
		&booking.PinCodeHash,
		&booking.CreatedAt,
		&booking.Status,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
