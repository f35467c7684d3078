package confirmation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"dialoguecafe/models"
)

// GenericSubmitFailure is the page-level message shown when the booking
// endpoint fails without a message of its own.
const GenericSubmitFailure = "Failed to create booking"

// SubmitRequest carries the validated identity and slot selection of one
// submission attempt.
type SubmitRequest struct {
	FullName       string
	Email          string
	Timeslots      []string
	IdempotencyKey string
}

// Result is the interpreted outcome of a submission attempt.
type Result struct {
	OK        bool
	BookingID string
	Message   string
}

// Submitter sends a booking creation request to the remote endpoint. A
// single attempt per call; retrying is the caller's decision.
type Submitter interface {
	Submit(ctx context.Context, req SubmitRequest) Result
}

// HTTPSubmitter posts bookings to {baseURL}/create-booking.
type HTTPSubmitter struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPSubmitter builds a submitter with a hard per-request timeout so a
// dead endpoint cannot leave a confirmation stuck in the submitting state.
func NewHTTPSubmitter(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSubmitter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, req SubmitRequest) Result {
	payload := models.BookingRequest{
		User: models.BookingUser{
			Email:    strings.TrimSpace(req.Email),
			FullName: strings.TrimSpace(req.FullName),
		},
	}
	for _, slot := range req.Timeslots {
		payload.Timeslots = append(payload.Timeslots, models.Timeslot{StartTime: slot})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/create-booking", bytes.NewReader(body))
	if err != nil {
		return Result{Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		// Transport failures surface with the underlying error's message.
		s.logger.Warn("booking submission failed", zap.Error(err))
		return Result{Message: err.Error()}
	}
	defer resp.Body.Close()

	return interpretResponse(resp)
}

func interpretResponse(resp *http.Response) Result {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Message: err.Error()}
	}

	var parsed struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && parseErr == nil && parsed.ID != "" {
		return Result{OK: true, BookingID: parsed.ID}
	}

	message := parsed.Message
	if parseErr != nil || message == "" {
		message = GenericSubmitFailure
	}
	return Result{Message: message}
}
