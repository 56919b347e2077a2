package usecase

import (
	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/scheduler"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

// StatusPublisher broadcasts the booking-driven seat state to the
// hardware. Implemented by the MQTT client; the services only ever see
// this interface.
type StatusPublisher interface {
	PublishSeatStatus(seatID string, status entity.SeatStatus)
}

type Service struct {
	Seat      SeatService
	Booking   BookingService
	Checkin   CheckinService
	Lifecycle LifecycleService
}

func NewService(repo *repository.Repository, sched *scheduler.Scheduler, pub StatusPublisher, config *utils.Config, log *zap.Logger) *Service {
	locks := newSeatLocks()
	lifecycle := NewLifecycleService(repo, sched, pub, locks, config.Scheduler, log)

	return &Service{
		Seat:      NewSeatService(repo, locks, log),
		Booking:   NewBookingService(repo, lifecycle, pub, locks, log),
		Checkin:   NewCheckinService(repo, pub, locks, log),
		Lifecycle: lifecycle,
	}
}
