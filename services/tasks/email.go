package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"dialoguecafe/models"
)

// TypeBookingEmail is the queued task for booking emails, both the
// immediate confirmation and the reminder before the visit.
const TypeBookingEmail = "booking:email"

// Email payload kinds.
const (
	KindConfirmation = "confirmation"
	KindReminder     = "reminder"
)

// reminderLead is how long before the booked slot the reminder fires.
const reminderLead = time.Hour

// NewBookingEmailTask builds a queued email task firing at the given time.
func NewBookingEmailTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingEmail, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}

// Notifier enqueues booking emails. It implements booking.Notifier.
type Notifier struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewNotifier builds a notifier over the queue's redis connection.
func NewNotifier(redisOpt asynq.RedisClientOpt, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{client: asynq.NewClient(redisOpt), logger: logger}
}

// Close releases the underlying queue connection.
func (n *Notifier) Close() error {
	return n.client.Close()
}

// BookingCreated queues the confirmation email immediately and a reminder
// one hour before the booked slot. Enqueue failures are logged, never
// propagated: the booking itself has already been committed.
func (n *Notifier) BookingCreated(ctx context.Context, booking *models.Booking, timeRange string) {
	payload := models.ReminderPayload{
		BookingID: booking.ID,
		Email:     booking.Email,
		FullName:  booking.FullName,
		Date:      booking.Date,
		TimeRange: timeRange,
	}

	payload.Kind = KindConfirmation
	n.enqueue(ctx, payload, time.Now())

	fireAt, ok := reminderTime(booking)
	if !ok {
		return
	}
	payload.Kind = KindReminder
	n.enqueue(ctx, payload, fireAt)
}

func (n *Notifier) enqueue(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) {
	task, opts, err := NewBookingEmailTask(payload, fireAt)
	if err != nil {
		n.logger.Error("failed to build booking email task", zap.Error(err))
		return
	}
	if _, err := n.client.EnqueueContext(ctx, task, opts...); err != nil {
		n.logger.Error("failed to enqueue booking email",
			zap.String("kind", payload.Kind),
			zap.String("bookingId", payload.BookingID),
			zap.Error(err))
		return
	}
	n.logger.Debug("queued booking email",
		zap.String("kind", payload.Kind),
		zap.String("bookingId", payload.BookingID),
		zap.Time("fireAt", fireAt))
}

// reminderTime computes when the reminder for a booking should fire, or
// ok=false when the slot is already too close.
func reminderTime(booking *models.Booking) (time.Time, bool) {
	if len(booking.Hours) == 0 {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", booking.Date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	start := day.Add(time.Duration(booking.Hours[0]) * time.Hour)
	fireAt := start.Add(-reminderLead)
	if fireAt.Before(time.Now()) {
		return time.Time{}, false
	}
	return fireAt, true
}

// ComposeEmail renders the email for a queued payload.
func ComposeEmail(payload models.ReminderPayload) (subject, body string) {
	switch payload.Kind {
	case KindReminder:
		subject = "Reminder: your visit to Dialogue Cafe"
		body = fmt.Sprintf("Hi %s,\n\nA reminder that your table at Dialogue Cafe is booked for %s, %s.\n\nSee you soon!",
			payload.FullName, payload.Date, payload.TimeRange)
	default:
		subject = "Your Dialogue Cafe booking is confirmed"
		body = fmt.Sprintf("Hi %s,\n\nYour table at Dialogue Cafe is confirmed for %s, %s.\nBooking reference: %s\n\nSee you soon!",
			payload.FullName, payload.Date, payload.TimeRange, payload.BookingID)
	}
	return subject, body
}
