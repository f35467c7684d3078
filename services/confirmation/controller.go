package confirmation

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dialoguecafe/services/dictation"
	"dialoguecafe/services/schedule"
)

// State is the controller's position in the confirmation flow.
type State int

const (
	// StateEditing: fields are open for typing and dictation.
	StateEditing State = iota
	// StateSubmitting: a booking request is awaiting the remote endpoint.
	StateSubmitting
	// StateRedirecting: terminal; the visitor is handed off to the next page.
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Redirect targets.
const (
	RedirectLanding      = "landing"
	RedirectBookingEntry = "booking"
)

// Redirect is the outbound navigation payload of a finished confirmation.
type Redirect struct {
	Target    string `json:"target"`
	BookingID string `json:"bookingId,omitempty"`
	Email     string `json:"email,omitempty"`
}

// FieldErrors flags which identity fields failed the validation gate on the
// last submit attempt.
type FieldErrors struct {
	Name  bool `json:"name"`
	Email bool `json:"email"`
}

// Snapshot is a point-in-time copy of controller state for rendering.
type Snapshot struct {
	State        State
	Details      schedule.Details
	Name         string
	Email        string
	FieldErrors  FieldErrors
	ErrorMessage string
	Recording    dictation.Field // empty when no dictation session is live
	Redirect     *Redirect
}

// Controller drives one confirmation flow: it owns the form fields, the
// single optional dictation session, the validation gate, and the
// submission, as an explicit state machine
// Editing -> Submitting -> {Redirecting | Editing-with-error}.
type Controller struct {
	capture   *dictation.Capture
	submitter Submitter
	logger    *zap.Logger

	// One idempotency key per confirmation: a retry after an ambiguous
	// failure replays the same create instead of double-booking.
	idempotencyKey string

	mu           sync.Mutex
	state        State
	slots        []string
	details      schedule.Details
	name         string
	email        string
	fieldErrors  FieldErrors
	errorMessage string
	redirect     *Redirect
}

// NewController builds a controller for a slot selection. A nil or empty
// selection is allowed and renders the no-selection placeholders; malformed
// or cross-date selections are rejected outright.
func NewController(slots []string, capture *dictation.Capture, submitter Submitter, logger *zap.Logger) (*Controller, error) {
	details, err := schedule.FormatSelection(slots)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		capture:        capture,
		submitter:      submitter,
		logger:         logger,
		idempotencyKey: uuid.New().String(),
		state:          StateEditing,
		slots:          append([]string(nil), slots...),
		details:        details,
	}, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        c.state,
		Details:      c.details,
		Name:         c.name,
		Email:        c.email,
		FieldErrors:  c.fieldErrors,
		ErrorMessage: c.errorMessage,
		Redirect:     c.redirect,
	}
	if field, ok := c.capture.Recording(); ok {
		snap.Recording = field
	}
	return snap
}

// SetField applies a typed field update.
func (c *Controller) SetField(field dictation.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return c.notEditableLocked()
	}
	return c.setFieldLocked(field, value)
}

func (c *Controller) setFieldLocked(field dictation.Field, value string) error {
	switch field {
	case dictation.FieldName:
		c.name = value
	case dictation.FieldEmail:
		c.email = value
	default:
		return ErrUnknownField
	}
	return nil
}

// StartDictation begins a voice capture for one field. Any session already
// recording is superseded first. The returned channel closes once the
// session resolves.
func (c *Controller) StartDictation(ctx context.Context, field dictation.Field, audio []byte) (<-chan struct{}, error) {
	c.mu.Lock()
	if c.state != StateEditing {
		defer c.mu.Unlock()
		return nil, c.notEditableLocked()
	}
	if !dictation.ValidField(field) {
		c.mu.Unlock()
		return nil, ErrUnknownField
	}
	c.mu.Unlock()

	return c.capture.Start(ctx, field, audio, c.applyTranscript)
}

// applyTranscript writes a finished dictation result into its field. A
// result landing after the flow left editing is dropped.
func (c *Controller) applyTranscript(field dictation.Field, transcript string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return
	}
	if err := c.setFieldLocked(field, transcript); err != nil {
		c.logger.Warn("dropping transcript for unknown field", zap.String("field", string(field)))
	}
}

// StopDictation terminates the active dictation session, if any.
func (c *Controller) StopDictation() {
	c.capture.Stop()
}

// Submit runs the submit transition: stop dictation, clear prior errors,
// validate, and only then contact the booking endpoint. On success the
// controller is left redirecting with the booking id; on failure it returns
// to editing with a page-level message and the field values intact.
func (c *Controller) Submit(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrSubmitInFlight
	case StateRedirecting:
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrNotEditing
	}

	// Dictation and submission are mutually exclusive.
	c.capture.Stop()

	c.errorMessage = ""
	c.fieldErrors = FieldErrors{
		Name:  !ValidateFullName(c.name),
		Email: !ValidateEmail(c.email),
	}
	if c.fieldErrors.Name || c.fieldErrors.Email {
		defer c.mu.Unlock()
		return c.snapshotLocked(), nil
	}

	c.state = StateSubmitting
	req := SubmitRequest{
		FullName:       strings.TrimSpace(c.name),
		Email:          strings.TrimSpace(c.email),
		Timeslots:      append([]string(nil), c.slots...),
		IdempotencyKey: c.idempotencyKey,
	}
	c.mu.Unlock()

	result := c.submitter.Submit(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if result.OK {
		c.state = StateRedirecting
		c.redirect = &Redirect{Target: RedirectLanding, BookingID: result.BookingID, Email: req.Email}
		c.logger.Info("booking confirmed", zap.String("bookingId", result.BookingID))
	} else {
		c.state = StateEditing
		c.errorMessage = result.Message
		c.logger.Warn("booking submission rejected", zap.String("message", result.Message))
	}
	return c.snapshotLocked(), nil
}

// Cancel abandons the confirmation: dictation is force-stopped, field state
// is discarded, and the visitor is sent back to the booking entry point.
func (c *Controller) Cancel() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return c.snapshotLocked(), c.notEditableLocked()
	}
	c.capture.Stop()
	c.state = StateRedirecting
	c.name = ""
	c.email = ""
	c.fieldErrors = FieldErrors{}
	c.errorMessage = ""
	c.redirect = &Redirect{Target: RedirectBookingEntry}
	return c.snapshotLocked(), nil
}

// Close is the teardown hook: whatever state the flow is in, an active
// dictation session is stopped so no callback can fire afterwards.
func (c *Controller) Close() {
	c.capture.Close()
}

func (c *Controller) notEditableLocked() error {
	if c.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	return ErrNotEditing
}
