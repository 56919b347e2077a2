package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/data/repository/memory"
	"seat-reservation/internal/scheduler"
	"seat-reservation/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testNow is 09:40 UTC: slot 19, so slot 20 (10:00) is the nearest
// bookable one.
var testNow = time.Date(2025, 3, 12, 9, 40, 0, 0, time.UTC)

type fakePublisher struct {
	mu        sync.Mutex
	published []string
}

func (p *fakePublisher) PublishSeatStatus(seatID string, status entity.SeatStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, seatID+"="+string(status))
}

func (p *fakePublisher) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) == 0 {
		return ""
	}
	return p.published[len(p.published)-1]
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type fixture struct {
	repo      *repository.Repository
	sched     *scheduler.Scheduler
	pub       *fakePublisher
	booking   *bookingService
	checkin   *checkinService
	seat      *seatService
	lifecycle *lifecycleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memory.NewRepository()
	clock := func() time.Time { return testNow }
	sched := scheduler.NewWithClock(zap.NewNop(), clock)
	t.Cleanup(sched.Shutdown)

	pub := &fakePublisher{}
	locks := newSeatLocks()

	lifecycle := &lifecycleService{
		repo:  repo,
		sched: sched,
		pub:   pub,
		locks: locks,
		cfg: utils.SchedulerConfig{
			BroadcastInterval: time.Minute,
			CleanupInterval:   time.Minute,
		},
		log: zap.NewNop(),
		now: clock,
	}

	return &fixture{
		repo:  repo,
		sched: sched,
		pub:   pub,
		booking: &bookingService{
			repo:      repo,
			lifecycle: lifecycle,
			pub:       pub,
			locks:     locks,
			log:       zap.NewNop(),
			now:       clock,
		},
		checkin: &checkinService{
			repo:  repo,
			pub:   pub,
			locks: locks,
			log:   zap.NewNop(),
			now:   clock,
		},
		seat: &seatService{
			repo:  repo,
			locks: locks,
			log:   zap.NewNop(),
		},
		lifecycle: lifecycle,
	}
}

func (f *fixture) seedSeat(t *testing.T, seatID string, status entity.SeatStatus, physical entity.PhysicalStatus, intervals ...entity.TimeSlot) {
	t.Helper()

	seat := &entity.Seat{
		SeatID:         seatID,
		Status:         status,
		PhysicalStatus: physical,
	}
	for _, ts := range intervals {
		seat.AddInterval(ts)
	}
	seat.RecomputeNextStart(testNow)

	require.NoError(t, f.repo.Seat.CreateBatch(context.Background(), []*entity.Seat{seat}))
}

func (f *fixture) seedBooking(t *testing.T, bookingID, seatID, studentID, pin string, startSlot, endSlot int) *entity.Booking {
	t.Helper()

	hash, err := utils.HashPIN(pin)
	require.NoError(t, err)

	booking := &entity.Booking{
		BookingID:   bookingID,
		SeatID:      seatID,
		StudentID:   studentID,
		StartSlot:   startSlot,
		EndSlot:     endSlot,
		PinCodeHash: hash,
		CreatedAt:   testNow,
		Status:      entity.BookingStatusConfirmed,
	}
	require.NoError(t, f.repo.Booking.Create(context.Background(), booking))
	return booking
}

func (f *fixture) getSeat(t *testing.T, seatID string) *entity.Seat {
	t.Helper()

	seat, err := f.repo.Seat.FindByID(context.Background(), seatID)
	require.NoError(t, err)
	require.NotNil(t, seat)
	return seat
}
