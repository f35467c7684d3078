package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "dialoguecafe/database/repository/booking"
	"dialoguecafe/models"
	"dialoguecafe/services/confirmation"
	"dialoguecafe/services/schedule"
)

const (
	idempotencyPrefix = "booking:idem:"
	idempotencyTTL    = 24 * time.Hour
)

// Notifier is told about freshly created bookings so confirmation and
// reminder emails can be queued. Implementations must not block.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *models.Booking, timeRange string)
}

// Service creates cafe bookings.
type Service interface {
	Create(ctx context.Context, req models.BookingRequest, idempotencyKey string) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
}

// DefaultBookingService implements Service over the mongo repository, with
// redis-backed idempotency keys.
type DefaultBookingService struct {
	Repo        bookingRepo.Repository
	CacheClient *redis.Client
	Notifier    Notifier
	Logger      *zap.Logger
}

// Create validates and persists a booking. A replayed idempotency key
// returns the originally created booking instead of double-booking.
func (s *DefaultBookingService) Create(ctx context.Context, req models.BookingRequest, idempotencyKey string) (*models.Booking, error) {
	fullName := strings.TrimSpace(req.User.FullName)
	email := strings.TrimSpace(req.User.Email)

	if !confirmation.ValidateFullName(fullName) {
		return nil, ErrInvalidName
	}
	if !confirmation.ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Timeslots) == 0 {
		return nil, ErrNoTimeslots
	}

	ids := make([]string, len(req.Timeslots))
	for i, ts := range req.Timeslots {
		ids[i] = ts.StartTime
	}
	slots, err := schedule.ValidateSelection(ids)
	if err != nil {
		if errors.Is(err, schedule.ErrOutsideOpeningHours) {
			return nil, ErrOutsideHours
		}
		return nil, ErrBadTimeslot
	}

	if idempotencyKey != "" {
		if existing, err := s.replay(ctx, idempotencyKey); err == nil && existing != nil {
			s.logger().Info("replayed booking for idempotency key",
				zap.String("bookingId", existing.ID))
			return existing, nil
		}
	}

	taken, err := s.Repo.FindBySlots(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if len(taken) > 0 {
		return nil, ErrSlotTaken
	}

	hours := make([]int, len(slots))
	for i, slot := range slots {
		hours[i] = slot.Hour
	}
	sort.Ints(hours)

	booking := &models.Booking{
		ID:        uuid.New().String(),
		Email:     email,
		FullName:  fullName,
		Date:      slots[0].Date.Format("2006-01-02"),
		Hours:     hours,
		Timeslots: ids,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, booking); err != nil {
		// The unique slot index is the authority: a concurrent creation can
		// slip past the availability check above, and the loser lands here.
		if errors.Is(err, bookingRepo.ErrDuplicateSlot) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if idempotencyKey != "" && s.CacheClient != nil {
		if err := s.CacheClient.Set(ctx, idempotencyPrefix+idempotencyKey, booking.ID, idempotencyTTL).Err(); err != nil {
			s.logger().Warn("failed to store idempotency key", zap.Error(err))
		}
	}

	if s.Notifier != nil {
		details, _ := schedule.FormatSelection(ids)
		s.Notifier.BookingCreated(ctx, booking, details.TimeRange)
	}

	s.logger().Info("booking created",
		zap.String("bookingId", booking.ID),
		zap.String("date", booking.Date),
		zap.Ints("hours", booking.Hours))
	return booking, nil
}

// Get fetches a booking by id.
func (s *DefaultBookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, id)
}

// replay resolves an idempotency key to the booking it originally created.
func (s *DefaultBookingService) replay(ctx context.Context, key string) (*models.Booking, error) {
	if s.CacheClient == nil {
		return nil, nil
	}
	id, err := s.CacheClient.Get(ctx, idempotencyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
