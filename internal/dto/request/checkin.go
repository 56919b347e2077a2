package request

type CheckinRequest struct {
	PinCode string `json:"pin_code" validate:"required,len=4,numeric"`
}
