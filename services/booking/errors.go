package booking

import "net/http"

// Error is a booking failure with the wire shape the frontend expects:
// a human-readable message plus a machine-readable code.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidName = &Error{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_NAME",
		Message: "Full name must include first and last name",
	}
	ErrInvalidEmail = &Error{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_EMAIL",
		Message: "Email address is not valid",
	}
	ErrNoTimeslots = &Error{
		Status:  http.StatusBadRequest,
		Code:    "NO_TIMESLOTS",
		Message: "At least one timeslot is required",
	}
	ErrBadTimeslot = &Error{
		Status:  http.StatusBadRequest,
		Code:    "BAD_TIMESLOT",
		Message: "Timeslot is not valid",
	}
	ErrOutsideHours = &Error{
		Status:  http.StatusBadRequest,
		Code:    "OUTSIDE_OPENING_HOURS",
		Message: "Requested time is outside opening hours",
	}
	ErrSlotTaken = &Error{
		Status:  http.StatusConflict,
		Code:    "SLOT_TAKEN",
		Message: "Slot taken",
	}
)
