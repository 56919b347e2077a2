package adaptor

import (
	"encoding/json"
	"net/http"

	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SeatHandler struct {
	seats   usecase.SeatService
	checkin usecase.CheckinService
	log     *zap.Logger
}

func NewSeatHandler(seats usecase.SeatService, checkin usecase.CheckinService, log *zap.Logger) *SeatHandler {
	return &SeatHandler{
		seats:   seats,
		checkin: checkin,
		log:     log.With(zap.String("handler", "seat")),
	}
}

// GetSeats handles GET /api/seats
func (h *SeatHandler) GetSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.seats.GetSeats(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err, "get seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// CheckIn handles POST /api/seats/{seatID}/checkin. Same flow the
// keypad uses, exposed over HTTP for kiosks and testing.
func (h *SeatHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	seatID := chi.URLParam(r, "seatID")
	if seatID == "" {
		utils.ResponseBadRequest(w, "Seat ID is required", nil)
		return
	}

	var req request.CheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.checkin.CheckIn(r.Context(), seatID, req.PinCode); err != nil {
		respondServiceError(w, h.log, err, "check in")
		return
	}

	utils.ResponseSuccess(w, "checked in", nil)
}
