package wire

import (
	"seat-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// POST /api/bookings - reserve a seat for a slot range
	r.Post("/api/bookings", bookingHandler.CreateBooking)

	// GET /api/bookings - list all confirmed bookings
	r.Get("/api/bookings", bookingHandler.GetBookings)

	// GET /api/students/{studentID}/bookings - one student's bookings
	r.Get("/api/students/{studentID}/bookings", bookingHandler.GetStudentBookings)

	// DELETE /api/bookings/{bookingID} - cancel with student id + PIN
	r.Delete("/api/bookings/{bookingID}", bookingHandler.CancelBooking)
}
