package adaptor

import (
	"net/http"

	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Seat    *SeatHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Seat:    NewSeatHandler(service.Seat, service.Checkin, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}

// respondServiceError maps a service error onto the HTTP envelope.
// Errors without a kind are internal and get a generic 500 so nothing
// about the failure leaks to the client.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	kind, ok := utils.KindOf(err)
	if !ok {
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" rejected",
		zap.Error(err),
		zap.String("operation", operation))

	switch kind {
	case utils.ErrValidation:
		utils.ResponseUnprocessable(w, err.Error(), nil)
	case utils.ErrNotFound:
		utils.ResponseNotFound(w, err.Error())
	case utils.ErrConflict:
		utils.ResponseConflict(w, err.Error())
	case utils.ErrAuthorization:
		utils.ResponseForbidden(w, err.Error())
	default:
		utils.ResponseInternalError(w, "Internal server error")
	}
}
