package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"dialoguecafe/models"
	"dialoguecafe/services/booking"
	"dialoguecafe/services/confirmation"
	"dialoguecafe/services/dictation"
	"dialoguecafe/services/schedule"
)

// systemPrompt frames free-form questions for the generator.
const systemPrompt = `You are the assistant for Dialogue Hub's British Sign Language Cafe.
Help visitors with information about the cafe, BSL queries, accessibility needs, and bookings.
Opening hours: Monday to Thursday 08:00-17:00, Friday 08:00-13:00, closed weekends.
Answer briefly and warmly.`

// Service is the conversational assistant.
type Service interface {
	ProcessUserInput(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error)
}

// DefaultAssistantService drives a slot-filling booking conversation and
// falls back to the generator for everything else.
type DefaultAssistantService struct {
	CtxStore   *RedisContextStore
	BookingSvc booking.Service
	Gemini     Generator // nil when no API key is configured
	Logger     *zap.Logger
}

// Booking conversation steps.
const (
	stepIdle = iota
	stepAskName
	stepAskEmail
	stepAskWhen
)

var bookingIntent = regexp.MustCompile(`(?i)\b(book|booking|reserve|reservation|table)\b`)

func (s *DefaultAssistantService) ProcessUserInput(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error) {
	actx, err := s.CtxStore.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}

	text := strings.TrimSpace(req.Text)

	if strings.EqualFold(text, "cancel") && actx.BookingStep != stepIdle {
		if err := s.CtxStore.Clear(ctx, req.UserID); err != nil {
			return nil, fmt.Errorf("clear context: %w", err)
		}
		return &models.AssistantResponse{Intent: "chat", ResponseText: "No problem, I've cancelled that. Anything else I can help with?"}, nil
	}

	if actx.BookingStep != stepIdle {
		return s.continueBooking(ctx, req, actx, text)
	}

	if bookingIntent.MatchString(text) {
		actx.BookingStep = stepAskName
		if err := s.CtxStore.Set(ctx, req.UserID, actx); err != nil {
			return nil, fmt.Errorf("save context: %w", err)
		}
		return &models.AssistantResponse{
			Intent:       "book",
			ResponseText: "I'd love to book you a table. What's your full name?",
		}, nil
	}

	return s.chat(ctx, text)
}

func (s *DefaultAssistantService) continueBooking(ctx context.Context, req models.AssistantRequest, actx *models.AssistantContext, text string) (*models.AssistantResponse, error) {
	switch actx.BookingStep {
	case stepAskName:
		if !confirmation.ValidateFullName(text) {
			return &models.AssistantResponse{
				Intent:       "book",
				ResponseText: "I'll need your first and last name for the booking. What's your full name?",
			}, nil
		}
		actx.FullName = text
		actx.BookingStep = stepAskEmail
		if err := s.CtxStore.Set(ctx, req.UserID, actx); err != nil {
			return nil, fmt.Errorf("save context: %w", err)
		}
		return &models.AssistantResponse{
			Intent:       "book",
			ResponseText: fmt.Sprintf("Thanks %s! What's your email address?", actx.FullName),
		}, nil

	case stepAskEmail:
		// Spoken email often arrives as "alice at example dot com".
		email := dictation.NormalizeTranscript(dictation.FieldEmail, text)
		if !confirmation.ValidateEmail(email) {
			return &models.AssistantResponse{
				Intent:       "book",
				ResponseText: "That doesn't look like an email address. Could you give it again?",
			}, nil
		}
		actx.Email = email
		actx.BookingStep = stepAskWhen
		if err := s.CtxStore.Set(ctx, req.UserID, actx); err != nil {
			return nil, fmt.Errorf("save context: %w", err)
		}
		return &models.AssistantResponse{
			Intent:       "book",
			ResponseText: "When would you like to come? Please give a date and time, like \"2024-06-10 from 14 to 16\".",
		}, nil

	case stepAskWhen:
		slots, err := parseWhen(text)
		if err != nil {
			return &models.AssistantResponse{
				Intent:       "book",
				ResponseText: "Sorry, I couldn't read that. Please give a date and hours, like \"2024-06-10 from 14 to 16\".",
			}, nil
		}

		bookingReq := models.BookingRequest{
			User: models.BookingUser{Email: actx.Email, FullName: actx.FullName},
		}
		for _, slot := range slots {
			bookingReq.Timeslots = append(bookingReq.Timeslots, models.Timeslot{StartTime: slot})
		}

		created, err := s.BookingSvc.Create(ctx, bookingReq, "")
		if err != nil {
			var bookingErr *booking.Error
			if errors.As(err, &bookingErr) {
				// Recoverable: explain and let the visitor pick again.
				return &models.AssistantResponse{
					Intent:       "book",
					ResponseText: fmt.Sprintf("%s. Would another time work?", bookingErr.Message),
				}, nil
			}
			return nil, err
		}

		if err := s.CtxStore.Clear(ctx, req.UserID); err != nil {
			s.logger().Warn("failed to clear assistant context", zap.Error(err))
		}
		details, _ := schedule.FormatSelection(created.Timeslots)
		return &models.AssistantResponse{
			Intent:       "book",
			BookingID:    created.ID,
			ResponseText: fmt.Sprintf("All booked! Your table is confirmed for %s, %s. A confirmation is on its way to %s.", details.Date, details.TimeRange, created.Email),
		}, nil
	}

	return nil, fmt.Errorf("unknown booking step %d", actx.BookingStep)
}

func (s *DefaultAssistantService) chat(ctx context.Context, text string) (*models.AssistantResponse, error) {
	if s.Gemini == nil {
		return &models.AssistantResponse{
			Intent:       "chat",
			ResponseText: "I can help you book a table at Dialogue Cafe. We're open Monday to Thursday 08:00-17:00 and Friday 08:00-13:00.",
		}, nil
	}

	reply, err := s.Gemini.GenerateContent(ctx, systemPrompt+"\n\nVisitor: "+text)
	if err != nil {
		s.logger().Warn("generator failed", zap.Error(err))
		return &models.AssistantResponse{
			Intent:       "chat",
			ResponseText: "Sorry, I'm having trouble answering right now. I can still help you book a table.",
		}, nil
	}
	return &models.AssistantResponse{Intent: "chat", ResponseText: reply}, nil
}

var (
	datePattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	rangePattern = regexp.MustCompile(`\b(\d{1,2})(?::00)?\s*(?:-|to|until)\s*(\d{1,2})(?::00)?\b`)
	hourPattern  = regexp.MustCompile(`\b(?:at\s+)?(\d{1,2})(?::00)?\b`)
)

// parseWhen extracts a date and hour range from free text and expands it
// into hourly slot identifiers. A range "14 to 16" means the visitor leaves
// at 16:00, so it expands to the hours 14 and 15.
func parseWhen(text string) ([]string, error) {
	date := datePattern.FindString(text)
	if date == "" {
		return nil, fmt.Errorf("no date in %q", text)
	}
	rest := strings.Replace(text, date, "", 1)

	if m := rangePattern.FindStringSubmatch(rest); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		if to <= from {
			return nil, fmt.Errorf("empty hour range in %q", text)
		}
		var slots []string
		for h := from; h < to; h++ {
			slots = append(slots, fmt.Sprintf("%sT%d", date, h))
		}
		return slots, nil
	}

	if m := hourPattern.FindStringSubmatch(rest); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return []string{fmt.Sprintf("%sT%d", date, hour)}, nil
	}

	return nil, fmt.Errorf("no time in %q", text)
}

func (s *DefaultAssistantService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
