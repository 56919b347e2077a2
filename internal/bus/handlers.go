package bus

import (
	"context"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

// PresenceHandler translates IR sensor payloads into physical seat
// status updates.
func PresenceHandler(seats usecase.SeatService, log *zap.Logger) HandlerFunc {
	log = log.With(zap.String("handler", "presence"))

	return func(ctx context.Context, seatID, payload string) {
		var status entity.PhysicalStatus
		switch payload {
		case "occupied":
			status = entity.PhysicalStatusOccupied
		case "free":
			status = entity.PhysicalStatusFree
		default:
			log.Warn("Unknown presence payload",
				zap.String("seat_id", seatID),
				zap.String("payload", payload),
			)
			return
		}

		if err := seats.SetPhysicalStatus(ctx, seatID, status); err != nil {
			log.Warn("Presence update failed",
				zap.Error(err),
				zap.String("seat_id", seatID),
			)
		}
	}
}

// CheckinHandler forwards keypad PIN entries to the check-in flow. A
// rejected PIN is normal operation (wrong seat, typo, no booking), so
// service-level failures log at info.
func CheckinHandler(checkin usecase.CheckinService, log *zap.Logger) HandlerFunc {
	log = log.With(zap.String("handler", "checkin"))

	return func(ctx context.Context, seatID, payload string) {
		if err := checkin.CheckIn(ctx, seatID, payload); err != nil {
			if _, ok := utils.KindOf(err); ok {
				log.Info("Check-in rejected",
					zap.String("seat_id", seatID),
					zap.String("reason", err.Error()),
				)
				return
			}
			log.Error("Check-in failed",
				zap.Error(err),
				zap.String("seat_id", seatID),
			)
		}
	}
}
