package dto

// DeclareHolidayRequest is the payload for declaring a holiday.
type DeclareHolidayRequest struct {
	DeclarationType string   `json:"declaration_type" validate:"required"`
	StartDate       string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	CarID           *string  `json:"car_id,omitempty"`
	Slots           []string `json:"slots,omitempty"`
	Reason          string   `json:"reason" validate:"required"`
}
