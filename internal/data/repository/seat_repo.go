package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) FindByID(ctx context.Context, seatID string) (*entity.Seat, error) {
	query := `
		SELECT seat_id, status, physical_status, today_bookings, next_booking_start_time, updated_at
		FROM seats
		WHERE seat_id = $1
	`

	seat, err := scanSeat(r.db.QueryRow(ctx, query, seatID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat by ID",
			zap.Error(err),
			zap.String("seat_id", seatID),
		)
		return nil, fmt.Errorf("failed to find seat: %w", err)
	}

	return seat, nil
}

func (r *seatRepository) FindAll(ctx context.Context) ([]*entity.Seat, error) {
	query := `
		SELECT seat_id, status, physical_status, today_bookings, next_booking_start_time, updated_at
		FROM seats
		ORDER BY seat_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find seats", zap.Error(err))
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, nil
}

func (r *seatRepository) Update(ctx context.Context, seat *entity.Seat) error {
	bookingsJSON, err := json.Marshal(seat.TodayBookings)
	if err != nil {
		return fmt.Errorf("failed to encode today bookings: %w", err)
	}

	query := `
		UPDATE seats
		SET status = $2, physical_status = $3, today_bookings = $4, next_booking_start_time = $5, updated_at = NOW()
		WHERE seat_id = $1
	`

	result, err := r.db.Exec(ctx, query,
		seat.SeatID,
		seat.Status,
		seat.PhysicalStatus,
		bookingsJSON,
		seat.NextBookingStart,
	)

	if err != nil {
		r.log.Error("Failed to update seat",
			zap.Error(err),
			zap.String("seat_id", seat.SeatID),
		)
		return fmt.Errorf("failed to update seat: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("seat not found")
	}

	return nil
}

func (r *seatRepository) CreateBatch(ctx context.Context, seats []*entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// Build batch insert
	query := `INSERT INTO seats (seat_id, status, physical_status, today_bookings, next_booking_start_time, updated_at) VALUES `
	args := []interface{}{}

	for i, seat := range seats {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, NOW())",
			i*5+1, i*5+2, i*5+3, i*5+4, i*5+5)

		bookingsJSON, err := json.Marshal(seat.TodayBookings)
		if err != nil {
			return fmt.Errorf("failed to encode today bookings: %w", err)
		}

		args = append(args,
			seat.SeatID,
			seat.Status,
			seat.PhysicalStatus,
			bookingsJSON,
			seat.NextBookingStart,
		)
	}

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to create batch seats",
			zap.Error(err),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("failed to create batch seats: %w", err)
	}

	return nil
}

func (r *seatRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM seats`).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count seats", zap.Error(err))
		return 0, fmt.Errorf("failed to count seats: %w", err)
	}
	return count, nil
}

// scanSeat reads one seat row, decoding the JSONB interval mirror.
func scanSeat(row pgx.Row) (*entity.Seat, error) {
	var seat entity.Seat
	var bookingsJSON []byte

	err := row.Scan(
		&seat.SeatID,
		&seat.Status,
		&seat.PhysicalStatus,
		&bookingsJSON,
		&seat.NextBookingStart,
		&seat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(bookingsJSON) > 0 {
		if err := json.Unmarshal(bookingsJSON, &seat.TodayBookings); err != nil {
			return nil, fmt.Errorf("failed to decode today bookings: %w", err)
		}
	}

	return &seat, nil
}
