package response

import (
	"time"

	"seat-reservation/internal/data/entity"
)

type TimeSlotResponse struct {
	StartSlot int `json:"start_slot"`
	EndSlot   int `json:"end_slot"`
}

type SeatResponse struct {
	SeatID         string             `json:"seat_id"`
	Status         string             `json:"status"`
	PhysicalStatus string             `json:"physical_status"`
	TodayBookings  []TimeSlotResponse `json:"today_bookings"`
	// NextBookingStartTime is RFC 3339, or null when nothing is ahead.
	NextBookingStartTime *string `json:"next_booking_start_time"`
}

func SeatToResponse(seat *entity.Seat) SeatResponse {
	slots := make([]TimeSlotResponse, len(seat.TodayBookings))
	for i, ts := range seat.TodayBookings {
		slots[i] = TimeSlotResponse{StartSlot: ts.StartSlot, EndSlot: ts.EndSlot}
	}

	var nextStart *string
	if seat.NextBookingStart != nil {
		formatted := seat.NextBookingStart.Format(time.RFC3339)
		nextStart = &formatted
	}

	return SeatResponse{
		SeatID:               seat.SeatID,
		Status:               string(seat.Status),
		PhysicalStatus:       string(seat.PhysicalStatus),
		TodayBookings:        slots,
		NextBookingStartTime: nextStart,
	}
}
