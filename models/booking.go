package models

import "time"

// BookingUser identifies the person a booking is made for.
type BookingUser struct {
	Email    string `bson:"email" json:"email"`
	FullName string `bson:"full_name" json:"full_name"`
}

// Timeslot is a single bookable hour, addressed by its slot identifier
// ("YYYY-MM-DDTh", hour 0-23).
type Timeslot struct {
	StartTime string `bson:"start_time" json:"start_time"`
}

// BookingRequest is the wire format of a booking creation request.
type BookingRequest struct {
	User      BookingUser `json:"user"`
	Timeslots []Timeslot  `json:"timeslots"`
}

// Booking represents a confirmed booking record.
type Booking struct {
	ID        string    `bson:"id" json:"id"`                 // Unique booking identifier (UUID)
	Email     string    `bson:"email" json:"email"`           // Booker's email address
	FullName  string    `bson:"full_name" json:"full_name"`   // Booker's full name
	Date      string    `bson:"date" json:"date"`             // Booking date in "YYYY-MM-DD" format
	Hours     []int     `bson:"hours" json:"hours"`           // Booked hours, ascending
	Timeslots []string  `bson:"timeslots" json:"timeslots"`   // Raw slot identifiers as submitted
	CreatedAt time.Time `bson:"created_at" json:"created_at"` // Timestamp when booking was created
	Reminded  bool      `bson:"reminded" json:"reminded"`     // Whether a reminder email has gone out
}

// BookingResponse is returned by the booking creation endpoint on success.
type BookingResponse struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Timeslots []string `json:"timeslots"`
}

// ReminderPayload is the queued task payload for booking emails.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Date      string `json:"date"`
	TimeRange string `json:"timeRange"`
	Kind      string `json:"kind"` // "confirmation" or "reminder"
}
