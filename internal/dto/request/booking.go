package request

type CreateBookingRequest struct {
	SeatID    string `json:"seat_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	StartSlot int    `json:"start_slot" validate:"min=0,max=47"`
	EndSlot   int    `json:"end_slot" validate:"min=1,max=48"`
	PinCode   string `json:"pin_code" validate:"required,len=4,numeric"`
}

type CancelBookingRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	PinCode   string `json:"pin_code" validate:"required,len=4,numeric"`
}
