package confirmation

import "errors"

var (
	// ErrNotEditing rejects an action on a confirmation that has already
	// moved past the editing state.
	ErrNotEditing = errors.New("confirmation is no longer editable")
	// ErrSubmitInFlight rejects actions while a submission is awaiting the
	// booking endpoint.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrUnknownField rejects updates to a field the form does not have.
	ErrUnknownField = errors.New("unknown form field")
	// ErrSessionNotFound means the confirmation session id is unknown or has
	// expired.
	ErrSessionNotFound = errors.New("confirmation session not found")
)
