package response

import (
	"time"

	"seat-reservation/internal/data/entity"
)

type BookingResponse struct {
	BookingID string `json:"booking_id"`
	SeatID    string `json:"seat_id"`
	StudentID string `json:"student_id"`
	StartSlot int    `json:"start_slot"`
	EndSlot   int    `json:"end_slot"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		BookingID: booking.BookingID,
		SeatID:    booking.SeatID,
		StudentID: booking.StudentID,
		StartSlot: booking.StartSlot,
		EndSlot:   booking.EndSlot,
		CreatedAt: booking.CreatedAt.Format(time.RFC3339),
		Status:    string(booking.Status),
	}
}
