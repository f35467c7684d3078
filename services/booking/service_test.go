package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "dialoguecafe/database/repository/booking"
	"dialoguecafe/models"
)

type memRepo struct {
	mu       sync.Mutex
	bookings []*models.Booking
	findHook func() // runs after an availability scan, before it returns
}

// Create mirrors the unique multikey slot index: an insert holding an
// already-booked slot fails atomically.
func (r *memRepo) Create(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		for _, held := range existing.Timeslots {
			for _, want := range b.Timeslots {
				if held == want {
					return bookingRepo.ErrDuplicateSlot
				}
			}
		}
	}
	r.bookings = append(r.bookings, b)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *memRepo) FindBySlots(ctx context.Context, slots []string) ([]models.Booking, error) {
	r.mu.Lock()
	var hits []models.Booking
	for _, b := range r.bookings {
		for _, held := range b.Timeslots {
			for _, want := range slots {
				if held == want {
					hits = append(hits, *b)
				}
			}
		}
	}
	r.mu.Unlock()
	if r.findHook != nil {
		r.findHook()
	}
	return hits, nil
}

func (r *memRepo) MarkReminded(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			b.Reminded = true
			return nil
		}
	}
	return bookingRepo.ErrNotFound
}

type memNotifier struct {
	created []string
}

func (n *memNotifier) BookingCreated(ctx context.Context, b *models.Booking, timeRange string) {
	n.created = append(n.created, b.ID)
}

func newTestService(t *testing.T) (*DefaultBookingService, *memRepo, *memNotifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo := &memRepo{}
	notifier := &memNotifier{}
	svc := &DefaultBookingService{
		Repo:        repo,
		CacheClient: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Notifier:    notifier,
	}
	return svc, repo, notifier
}

func validRequest() models.BookingRequest {
	// 2024-01-01 is a Monday.
	return models.BookingRequest{
		User: models.BookingUser{Email: "alice@example.com", FullName: "Alice Smith"},
		Timeslots: []models.Timeslot{
			{StartTime: "2024-01-01T15"},
			{StartTime: "2024-01-01T14"},
		},
	}
}

func TestCreate(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	booking, err := svc.Create(context.Background(), validRequest(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, "2024-01-01", booking.Date)
	assert.Equal(t, []int{14, 15}, booking.Hours, "hours are stored sorted")
	assert.Equal(t, "Alice Smith", booking.FullName)
	require.Len(t, repo.bookings, 1)
	assert.Equal(t, []string{booking.ID}, notifier.created)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.BookingRequest)
		wantErr *Error
	}{
		{"single-word name", func(r *models.BookingRequest) { r.User.FullName = "Alice" }, ErrInvalidName},
		{"bad email", func(r *models.BookingRequest) { r.User.Email = "a.b.co" }, ErrInvalidEmail},
		{"no slots", func(r *models.BookingRequest) { r.Timeslots = nil }, ErrNoTimeslots},
		{"malformed slot", func(r *models.BookingRequest) { r.Timeslots[0].StartTime = "bogus" }, ErrBadTimeslot},
		{"cross-date selection", func(r *models.BookingRequest) { r.Timeslots[0].StartTime = "2024-01-02T14" }, ErrBadTimeslot},
		{"before opening", func(r *models.BookingRequest) {
			r.Timeslots = []models.Timeslot{{StartTime: "2024-01-01T7"}}
		}, ErrOutsideHours},
		{"friday afternoon", func(r *models.BookingRequest) {
			r.Timeslots = []models.Timeslot{{StartTime: "2024-01-05T14"}}
		}, ErrOutsideHours},
		{"weekend", func(r *models.BookingRequest) {
			r.Timeslots = []models.Timeslot{{StartTime: "2024-01-06T10"}}
		}, ErrOutsideHours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), req, "")
			assert.Equal(t, tt.wantErr, err)
			assert.Empty(t, repo.bookings)
		})
	}
}

func TestCreate_SlotTaken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), validRequest(), "")
	require.NoError(t, err)

	req := validRequest()
	req.User.Email = "bob@example.com"
	req.User.FullName = "Bob Jones"
	_, err = svc.Create(context.Background(), req, "")
	assert.Equal(t, ErrSlotTaken, err)
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	svc, repo, _ := newTestService(t)

	// Hold both callers after their availability check so each sees the slot
	// as free; only the insert decides the winner.
	release := make(chan struct{})
	var checked sync.WaitGroup
	checked.Add(2)
	repo.findHook = func() {
		checked.Done()
		<-release
	}

	errs := make(chan error, 2)
	for _, key := range []string{"key-a", "key-b"} {
		go func(key string) {
			_, err := svc.Create(context.Background(), validRequest(), key)
			errs <- err
		}(key)
	}
	checked.Wait()
	close(release)

	results := []error{<-errs, <-errs}
	if results[0] != nil {
		results[0], results[1] = results[1], results[0]
	}
	require.NoError(t, results[0])
	assert.Equal(t, ErrSlotTaken, results[1])
	assert.Len(t, repo.bookings, 1)
}

func TestCreate_IdempotencyReplay(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	first, err := svc.Create(context.Background(), validRequest(), "key-1")
	require.NoError(t, err)

	// The same key replays the original booking even though its slots now
	// read as taken.
	second, err := svc.Create(context.Background(), validRequest(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.bookings, 1)
	assert.Len(t, notifier.created, 1)

	// A different key sees the conflict.
	_, err = svc.Create(context.Background(), validRequest(), "key-2")
	assert.Equal(t, ErrSlotTaken, err)
}
