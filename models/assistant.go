package models

// AssistantRequest is the payload coming from the frontend into /api/ai/chat.
type AssistantRequest struct {
	UserID string `json:"user_id"` // unique visitor identifier
	Text   string `json:"text"`    // visitor's message (voice→text or typed)
}

// AssistantResponse is what the chat handler returns to the frontend.
type AssistantResponse struct {
	Intent       string `json:"intent"`              // "chat" or "book"
	ResponseText string `json:"response"`            // natural-language reply
	BookingID    string `json:"bookingId,omitempty"` // set once a booking has been created
}

// AssistantContext is the per-visitor slot-filling state kept between
// messages of a booking conversation.
type AssistantContext struct {
	BookingStep int      `json:"bookingStep"` // 0 = not booking
	FullName    string   `json:"fullName"`
	Email       string   `json:"email"`
	Timeslots   []string `json:"timeslots"`
}
