package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/scheduler"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

// LifecycleService drives the seat state machine. Four deadline timers
// exist per booking:
//
//	upcoming        start - 10 min   free/reserved -> upcoming
//	activate        start            -> awaiting_checkin
//	checkin_timeout start + 30 min   no PIN entered -> booking dropped
//	expire          end              booking dropped, seat freed
//
// It also owns startup recovery and the periodic maintenance jobs.
type LifecycleService interface {
	RegisterBookingTimers(booking *entity.Booking)
	CancelBookingTimers(bookingID string)
	Recover(ctx context.Context) error
	StartMaintenance(ctx context.Context)
}

type lifecycleService struct {
	repo  *repository.Repository
	sched *scheduler.Scheduler
	pub   StatusPublisher
	locks *seatLocks
	cfg   utils.SchedulerConfig
	log   *zap.Logger
	now   func() time.Time
}

func NewLifecycleService(repo *repository.Repository, sched *scheduler.Scheduler, pub StatusPublisher, locks *seatLocks, cfg utils.SchedulerConfig, log *zap.Logger) LifecycleService {
	return &lifecycleService{
		repo:  repo,
		sched: sched,
		pub:   pub,
		locks: locks,
		cfg:   cfg,
		log:   log.With(zap.String("service", "lifecycle")),
		now:   time.Now,
	}
}

// ==================== TIMER KEYS ====================

func upcomingKey(bookingID string) string       { return "upcoming_" + bookingID }
func activateKey(bookingID string) string       { return "activate_" + bookingID }
func checkinTimeoutKey(bookingID string) string { return "checkin_timeout_" + bookingID }
func expireKey(bookingID string) string         { return "expire_" + bookingID }

// ==================== REGISTRATION ====================

func (s *lifecycleService) RegisterBookingTimers(booking *entity.Booking) {
	now := s.now()
	startAt := utils.SlotToTime(booking.StartSlot, now)
	endAt := utils.SlotToTime(booking.EndSlot, now)
	bookingID, seatID := booking.BookingID, booking.SeatID

	s.sched.Schedule(upcomingKey(bookingID), startAt.Add(-utils.UpcomingLead), func() {
		s.markUpcoming(bookingID, seatID)
	})
	s.sched.Schedule(activateKey(bookingID), startAt, func() {
		s.activateBooking(bookingID, seatID)
	})
	s.sched.Schedule(checkinTimeoutKey(bookingID), startAt.Add(utils.CheckinWindow), func() {
		s.timeoutCheckin(bookingID, seatID)
	})
	s.sched.Schedule(expireKey(bookingID), endAt, func() {
		s.expireBooking(bookingID, seatID)
	})
}

func (s *lifecycleService) CancelBookingTimers(bookingID string) {
	// Best effort: a timer that already fired or never existed is fine.
	s.sched.Cancel(upcomingKey(bookingID))
	s.sched.Cancel(activateKey(bookingID))
	s.sched.Cancel(checkinTimeoutKey(bookingID))
	s.sched.Cancel(expireKey(bookingID))
}

// ==================== TIMER CALLBACKS ====================

func jobContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// markUpcoming fires 10 minutes before start. Only a seat still sitting
// in free/reserved moves; a seat already awaiting check-in or occupied
// by an earlier booking is left alone.
func (s *lifecycleService) markUpcoming(bookingID, seatID string) {
	ctx, cancel := jobContext()
	defer cancel()
	unlock := s.locks.Lock(seatID)
	defer unlock()

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil || seat == nil {
		s.log.Error("Upcoming timer could not load seat", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	if seat.Status != entity.SeatStatusFree && seat.Status != entity.SeatStatusReserved {
		return
	}

	seat.Status = entity.SeatStatusUpcoming
	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		s.log.Error("Failed to mark seat upcoming", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	s.pub.PublishSeatStatus(seatID, seat.Status)
	s.log.Info("Seat upcoming",
		zap.String("booking_id", bookingID),
		zap.String("seat_id", seatID),
	)
}

// activateBooking fires at start: the seat waits for the PIN.
func (s *lifecycleService) activateBooking(bookingID, seatID string) {
	ctx, cancel := jobContext()
	defer cancel()
	unlock := s.locks.Lock(seatID)
	defer unlock()

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Activation timer could not load booking", zap.Error(err), zap.String("booking_id", bookingID))
		return
	}
	if booking == nil || booking.Status != entity.BookingStatusConfirmed {
		return
	}

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil || seat == nil {
		s.log.Error("Activation timer could not load seat", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	seat.Status = entity.SeatStatusAwaitingCheckin
	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		s.log.Error("Failed to activate booking", zap.Error(err), zap.String("booking_id", bookingID))
		return
	}

	s.pub.PublishSeatStatus(seatID, seat.Status)
	s.log.Info("Booking active, awaiting check-in",
		zap.String("booking_id", bookingID),
		zap.String("seat_id", seatID),
	)
}

// timeoutCheckin fires 30 minutes after start. A seat still awaiting
// check-in loses its booking; the student never showed up.
func (s *lifecycleService) timeoutCheckin(bookingID, seatID string) {
	ctx, cancel := jobContext()
	defer cancel()
	unlock := s.locks.Lock(seatID)
	defer unlock()

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Timeout timer could not load booking", zap.Error(err), zap.String("booking_id", bookingID))
		return
	}
	if booking == nil || booking.Status != entity.BookingStatusConfirmed {
		return
	}

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil || seat == nil {
		s.log.Error("Timeout timer could not load seat", zap.Error(err), zap.String("seat_id", seatID))
		return
	}
	if seat.Status != entity.SeatStatusAwaitingCheckin {
		return
	}

	if err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		s.log.Error("Failed to drop timed-out booking", zap.Error(err), zap.String("booking_id", bookingID))
		return
	}

	now := s.now()
	seat.RemoveInterval(booking.Interval())
	seat.RecomputeNextStart(now)
	seat.Status = entity.SeatStatusFree
	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		s.log.Error("Failed to free seat after timeout", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	// The booking is gone, its expiry must not fire.
	s.sched.Cancel(expireKey(bookingID))

	s.pub.PublishSeatStatus(seatID, seat.Status)
	s.log.Warn("Check-in window expired, booking dropped",
		zap.String("booking_id", bookingID),
		zap.String("seat_id", seatID),
	)
}

// expireBooking fires at end regardless of seat state.
func (s *lifecycleService) expireBooking(bookingID, seatID string) {
	ctx, cancel := jobContext()
	defer cancel()
	unlock := s.locks.Lock(seatID)
	defer unlock()

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Expiry timer could not load booking", zap.Error(err), zap.String("booking_id", bookingID))
		return
	}
	if booking == nil {
		// Already terminated through another path.
		return
	}

	if err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		s.log.Error("Failed to delete expired booking", zap.Error(err), zap.String("booking_id", bookingID))
		return
	}

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil || seat == nil {
		s.log.Error("Expiry timer could not load seat", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	seat.RemoveInterval(booking.Interval())
	seat.RecomputeNextStart(s.now())
	seat.Status = entity.SeatStatusFree
	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		s.log.Error("Failed to free seat after expiry", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	s.pub.PublishSeatStatus(seatID, seat.Status)
	s.log.Info("Booking expired",
		zap.String("booking_id", bookingID),
		zap.String("seat_id", seatID),
	)
}

// ==================== RECOVERY ====================

// Recover reconciles persisted bookings with the freshly created (empty)
// scheduler. Runs once at startup, before MQTT subscriptions and HTTP
// intake, so nothing can interleave with it. Afterwards every live
// booking holds exactly the timers it would have had without the
// restart, and every booking that fully elapsed while the process was
// down is cleaned up once.
func (s *lifecycleService) Recover(ctx context.Context) error {
	bookings, err := s.repo.Booking.FindByStatus(ctx, entity.BookingStatusConfirmed)
	if err != nil {
		return fmt.Errorf("load confirmed bookings: %w", err)
	}

	now := s.now()
	var expired, restored int
	for _, booking := range bookings {
		startAt := utils.SlotToTime(booking.StartSlot, now)
		endAt := utils.SlotToTime(booking.EndSlot, now)

		switch {
		case !endAt.After(now):
			// Window fully elapsed while we were down.
			s.cleanupEndedBooking(booking.BookingID, booking.SeatID)
			expired++

		case startAt.After(now):
			// Not started yet: full timer set.
			s.RegisterBookingTimers(booking)
			restored++

		default:
			// Inside the active window: only deadlines still ahead.
			bookingID, seatID := booking.BookingID, booking.SeatID
			if now.Before(startAt.Add(utils.CheckinWindow)) {
				s.sched.Schedule(checkinTimeoutKey(bookingID), startAt.Add(utils.CheckinWindow), func() {
					s.timeoutCheckin(bookingID, seatID)
				})
			}
			s.sched.Schedule(expireKey(bookingID), endAt, func() {
				s.expireBooking(bookingID, seatID)
			})
			restored++
		}
	}

	s.log.Info("Recovery complete",
		zap.Int("bookings", len(bookings)),
		zap.Int("restored", restored),
		zap.Int("expired", expired),
	)
	return nil
}

// ==================== MAINTENANCE ====================

// StartMaintenance launches the periodic jobs: the seat status broadcast
// (hardware resync) and the ended-booking sweep (catches bookings whose
// expiry timer never fired). Both run until ctx is cancelled; a failed
// run is logged and never stops the next one.
func (s *lifecycleService) StartMaintenance(ctx context.Context) {
	go s.runEvery(ctx, s.cfg.BroadcastInterval, s.broadcastStatus)
	go s.runEvery(ctx, s.cfg.CleanupInterval, s.cleanupEnded)
}

func (s *lifecycleService) runEvery(ctx context.Context, interval time.Duration, job func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *lifecycleService) broadcastStatus(ctx context.Context) {
	seats, err := s.repo.Seat.FindAll(ctx)
	if err != nil {
		s.log.Error("Status broadcast failed", zap.Error(err))
		return
	}

	for _, seat := range seats {
		s.pub.PublishSeatStatus(seat.SeatID, seat.Status)
	}
}

func (s *lifecycleService) cleanupEnded(ctx context.Context) {
	nowSlot := utils.CurrentSlot(s.now())
	bookings, err := s.repo.Booking.FindEndedBefore(ctx, nowSlot)
	if err != nil {
		s.log.Error("Ended-booking sweep failed", zap.Error(err))
		return
	}

	for _, booking := range bookings {
		s.cleanupEndedBooking(booking.BookingID, booking.SeatID)
	}

	if len(bookings) > 0 {
		s.log.Info("Swept ended bookings", zap.Int("count", len(bookings)))
	}
}

// cleanupEndedBooking removes a fully elapsed booking and refreshes the
// seat's derived fields. Unlike the expiry timer it does not force the
// seat to free while another interval is still live, so a sweep can
// never stomp a seat occupied by a later booking.
func (s *lifecycleService) cleanupEndedBooking(bookingID, seatID string) {
	ctx, cancel := jobContext()
	defer cancel()
	unlock := s.locks.Lock(seatID)
	defer unlock()

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil || booking == nil {
		return
	}

	if err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		s.log.Error("Failed to delete ended booking", zap.Error(err), zap.String("booking_id", bookingID))
		return
	}
	s.CancelBookingTimers(bookingID)

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil || seat == nil {
		s.log.Error("Cleanup could not load seat", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	now := s.now()
	seat.RemoveInterval(booking.Interval())
	seat.RecomputeNextStart(now)
	if !seat.HasActiveOrFutureInterval(utils.CurrentSlot(now)) {
		seat.Status = entity.SeatStatusFree
	}
	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		s.log.Error("Failed to update seat after cleanup", zap.Error(err), zap.String("seat_id", seatID))
		return
	}

	s.pub.PublishSeatStatus(seatID, seat.Status)
	s.log.Info("Ended booking cleaned up",
		zap.String("booking_id", bookingID),
		zap.String("seat_id", seatID),
	)
}
