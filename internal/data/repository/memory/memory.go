// Package memory holds in-memory implementations of the repository
// interfaces. They back the unit tests and the broker-less local mode;
// semantics match the Postgres repositories (copy-on-read, nil for a
// missing row).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
)

// NewRepository returns a Repository backed entirely by process memory.
func NewRepository() *repository.Repository {
	return &repository.Repository{
		Seat:    NewSeatRepository(),
		Booking: NewBookingRepository(),
	}
}

// ==================== SEATS ====================

type seatRepository struct {
	mu    sync.RWMutex
	seats map[string]*entity.Seat
}

func NewSeatRepository() repository.SeatRepository {
	return &seatRepository{seats: make(map[string]*entity.Seat)}
}

func (r *seatRepository) FindByID(ctx context.Context, seatID string) (*entity.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seat, ok := r.seats[seatID]
	if !ok {
		return nil, nil
	}
	return copySeat(seat), nil
}

func (r *seatRepository) FindAll(ctx context.Context) ([]*entity.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seats := make([]*entity.Seat, 0, len(r.seats))
	for _, seat := range r.seats {
		seats = append(seats, copySeat(seat))
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatID < seats[j].SeatID })
	return seats, nil
}

func (r *seatRepository) Update(ctx context.Context, seat *entity.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seats[seat.SeatID]; !ok {
		return fmt.Errorf("seat not found")
	}
	r.seats[seat.SeatID] = copySeat(seat)
	return nil
}

func (r *seatRepository) CreateBatch(ctx context.Context, seats []*entity.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, seat := range seats {
		r.seats[seat.SeatID] = copySeat(seat)
	}
	return nil
}

func (r *seatRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.seats)), nil
}

func copySeat(s *entity.Seat) *entity.Seat {
	dup := *s
	dup.TodayBookings = append([]entity.TimeSlot(nil), s.TodayBookings...)
	if s.NextBookingStart != nil {
		next := *s.NextBookingStart
		dup.NextBookingStart = &next
	}
	return &dup
}

// ==================== BOOKINGS ====================

type bookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*entity.Booking
}

func NewBookingRepository() repository.BookingRepository {
	return &bookingRepository{bookings: make(map[string]*entity.Booking)}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.BookingID]; ok {
		return fmt.Errorf("booking already exists")
	}
	dup := *booking
	r.bookings[booking.BookingID] = &dup
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, bookingID string) (*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	dup := *booking
	return &dup, nil
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return true }), nil
}

func (r *bookingRepository) FindBySeatID(ctx context.Context, seatID string) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.SeatID == seatID }), nil
}

func (r *bookingRepository) FindByStudentID(ctx context.Context, studentID string) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.StudentID == studentID }), nil
}

func (r *bookingRepository) FindByStatus(ctx context.Context, status entity.BookingStatus) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.Status == status }), nil
}

func (r *bookingRepository) FindActiveForSeat(ctx context.Context, seatID string, slot int) (*entity.Booking, error) {
	matches := r.filter(func(b *entity.Booking) bool {
		return b.SeatID == seatID && b.Status == entity.BookingStatusConfirmed && b.Contains(slot)
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *bookingRepository) FindEndedBefore(ctx context.Context, slot int) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.EndSlot <= slot }), nil
}

func (r *bookingRepository) Delete(ctx context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[bookingID]; !ok {
		return fmt.Errorf("booking not found")
	}
	delete(r.bookings, bookingID)
	return nil
}

func (r *bookingRepository) filter(keep func(*entity.Booking) bool) []*entity.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []*entity.Booking
	for _, b := range r.bookings {
		if keep(b) {
			dup := *b
			bookings = append(bookings, &dup)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartSlot < bookings[j].StartSlot
	})
	return bookings
}
