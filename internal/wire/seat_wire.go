package wire

import (
	"seat-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSeat(r chi.Router, seatHandler *adaptor.SeatHandler) {
	// GET /api/seats - current state of every seat
	r.Get("/api/seats", seatHandler.GetSeats)

	// POST /api/seats/{seatID}/checkin - confirm presence with the booking PIN
	r.Post("/api/seats/{seatID}/checkin", seatHandler.CheckIn)
}
