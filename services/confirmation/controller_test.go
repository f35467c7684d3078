package confirmation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialoguecafe/services/dictation"
	"dialoguecafe/services/schedule"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	result   Result
	requests []SubmitRequest
}

func (f *fakeSubmitter) Submit(ctx context.Context, req SubmitRequest) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result
}

func (f *fakeSubmitter) calls() []SubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SubmitRequest(nil), f.requests...)
}

type stubRecognizer struct {
	transcript string
	release    chan struct{}
}

func (s *stubRecognizer) Recognize(ctx context.Context, audio []byte, cfg dictation.Config) (string, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.transcript, nil
}

type stubProvider struct{ rec dictation.Recognizer }

func (s *stubProvider) Recognizer() (dictation.Recognizer, error) {
	if s.rec == nil {
		return nil, dictation.ErrUnavailable
	}
	return s.rec, nil
}

func newTestController(t *testing.T, slots []string, sub Submitter, rec dictation.Recognizer) *Controller {
	t.Helper()
	capture := dictation.NewCapture(&stubProvider{rec: rec}, "en-GB", nil)
	ctrl, err := NewController(slots, capture, sub, nil)
	require.NoError(t, err)
	return ctrl
}

func TestNewController_FormatsSelection(t *testing.T) {
	ctrl := newTestController(t, []string{"2024-01-01T14"}, &fakeSubmitter{}, nil)
	snap := ctrl.Snapshot()
	assert.Equal(t, StateEditing, snap.State)
	assert.Equal(t, "Monday, 01 Jan 2024", snap.Details.Date)
	assert.Equal(t, "14:00 - 15:00", snap.Details.TimeRange)

	empty := newTestController(t, nil, &fakeSubmitter{}, nil)
	snap = empty.Snapshot()
	assert.Equal(t, schedule.NoDateSelected, snap.Details.Date)
	assert.Equal(t, schedule.NoTimeSelected, snap.Details.TimeRange)
}

func TestNewController_RejectsBadSelection(t *testing.T) {
	capture := dictation.NewCapture(&stubProvider{}, "en-GB", nil)
	_, err := NewController([]string{"bogus"}, capture, &fakeSubmitter{}, nil)
	assert.ErrorIs(t, err, schedule.ErrMalformedSlot)

	_, err = NewController([]string{"2024-01-01T9", "2024-01-02T9"}, capture, &fakeSubmitter{}, nil)
	assert.ErrorIs(t, err, schedule.ErrCrossDate)
}

func TestSubmit_ValidationGateBlocksNetwork(t *testing.T) {
	sub := &fakeSubmitter{}
	ctrl := newTestController(t, []string{"2024-01-01T14"}, sub, nil)
	require.NoError(t, ctrl.SetField(dictation.FieldName, "Alice"))
	require.NoError(t, ctrl.SetField(dictation.FieldEmail, "not-an-email"))

	snap, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateEditing, snap.State)
	assert.True(t, snap.FieldErrors.Name)
	assert.True(t, snap.FieldErrors.Email)
	assert.Empty(t, sub.calls(), "invalid form must not reach the network")
}

func TestSubmit_Success(t *testing.T) {
	sub := &fakeSubmitter{result: Result{OK: true, BookingID: "bk-42"}}
	ctrl := newTestController(t, []string{"2024-01-01T14", "2024-01-01T15"}, sub, nil)
	require.NoError(t, ctrl.SetField(dictation.FieldName, "Alice Smith"))
	require.NoError(t, ctrl.SetField(dictation.FieldEmail, "alice@example.com"))

	snap, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateRedirecting, snap.State)
	require.NotNil(t, snap.Redirect)
	assert.Equal(t, RedirectLanding, snap.Redirect.Target)
	assert.Equal(t, "bk-42", snap.Redirect.BookingID)
	assert.Equal(t, "alice@example.com", snap.Redirect.Email)

	calls := sub.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"2024-01-01T14", "2024-01-01T15"}, calls[0].Timeslots)
	assert.NotEmpty(t, calls[0].IdempotencyKey)

	// Terminal: further edits and submits are rejected.
	assert.ErrorIs(t, ctrl.SetField(dictation.FieldName, "x"), ErrNotEditing)
	_, err = ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestSubmit_FailureKeepsFields(t *testing.T) {
	sub := &fakeSubmitter{result: Result{Message: "Slot taken"}}
	ctrl := newTestController(t, []string{"2024-01-01T14"}, sub, nil)
	require.NoError(t, ctrl.SetField(dictation.FieldName, "Alice Smith"))
	require.NoError(t, ctrl.SetField(dictation.FieldEmail, "alice@example.com"))

	snap, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateEditing, snap.State)
	assert.Equal(t, "Slot taken", snap.ErrorMessage)
	assert.Equal(t, "Alice Smith", snap.Name)
	assert.Equal(t, "alice@example.com", snap.Email)

	// Retrying reuses the same idempotency key.
	snap, err = ctrl.Submit(context.Background())
	require.NoError(t, err)
	calls := sub.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].IdempotencyKey, calls[1].IdempotencyKey)
}

func TestSubmit_StopsActiveDictation(t *testing.T) {
	rec := &stubRecognizer{transcript: "late bird", release: make(chan struct{})}
	sub := &fakeSubmitter{result: Result{OK: true, BookingID: "bk-1"}}
	ctrl := newTestController(t, []string{"2024-01-01T14"}, sub, rec)
	require.NoError(t, ctrl.SetField(dictation.FieldName, "Alice Smith"))
	require.NoError(t, ctrl.SetField(dictation.FieldEmail, "alice@example.com"))

	done, err := ctrl.StartDictation(context.Background(), dictation.FieldName, []byte("wav"))
	require.NoError(t, err)
	assert.Equal(t, dictation.FieldName, ctrl.Snapshot().Recording)

	snap, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRedirecting, snap.State)

	// The superseded session resolves without overwriting anything.
	close(rec.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dictation session did not resolve")
	}
	assert.Equal(t, "Alice Smith", ctrl.Snapshot().Name)
}

func TestDictation_PopulatesField(t *testing.T) {
	rec := &stubRecognizer{transcript: "bob at example dot com"}
	ctrl := newTestController(t, []string{"2024-01-01T14"}, &fakeSubmitter{}, rec)

	done, err := ctrl.StartDictation(context.Background(), dictation.FieldEmail, []byte("wav"))
	require.NoError(t, err)
	<-done

	snap := ctrl.Snapshot()
	assert.Equal(t, "bob@example.com", snap.Email)
	assert.Empty(t, snap.Recording)
}

func TestDictation_CapabilityUnavailable(t *testing.T) {
	ctrl := newTestController(t, []string{"2024-01-01T14"}, &fakeSubmitter{}, nil)

	_, err := ctrl.StartDictation(context.Background(), dictation.FieldName, []byte("wav"))
	assert.ErrorIs(t, err, dictation.ErrUnavailable)
	// No state change: the form stays editable.
	assert.Equal(t, StateEditing, ctrl.Snapshot().State)
}

func TestCancel(t *testing.T) {
	ctrl := newTestController(t, []string{"2024-01-01T14"}, &fakeSubmitter{}, nil)
	require.NoError(t, ctrl.SetField(dictation.FieldName, "Alice Smith"))

	snap, err := ctrl.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StateRedirecting, snap.State)
	require.NotNil(t, snap.Redirect)
	assert.Equal(t, RedirectBookingEntry, snap.Redirect.Target)
	assert.Empty(t, snap.Redirect.BookingID)
	assert.Empty(t, snap.Name, "cancel discards field state")
}

func TestClose_TearsDownDictation(t *testing.T) {
	rec := &stubRecognizer{transcript: "dangling", release: make(chan struct{})}
	ctrl := newTestController(t, []string{"2024-01-01T14"}, &fakeSubmitter{}, rec)

	done, err := ctrl.StartDictation(context.Background(), dictation.FieldName, []byte("wav"))
	require.NoError(t, err)

	ctrl.Close()
	close(rec.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dictation session did not resolve")
	}
	assert.Empty(t, ctrl.Snapshot().Name, "no callback may fire after teardown")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	defer r.Shutdown()

	ctrl := newTestController(t, nil, &fakeSubmitter{}, nil)
	id := r.Add(ctrl)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	_, err = r.Get("unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	r.Remove(id)
	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_ExpiryClosesController(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	defer r.Shutdown()

	rec := &stubRecognizer{transcript: "orphan", release: make(chan struct{})}
	ctrl := newTestController(t, []string{"2024-01-01T14"}, &fakeSubmitter{}, rec)
	id := r.Add(ctrl)

	done, err := ctrl.StartDictation(context.Background(), dictation.FieldName, []byte("wav"))
	require.NoError(t, err)
	assert.Equal(t, dictation.FieldName, ctrl.Snapshot().Recording)

	// Sweep past the deadline: the session is dropped and its controller
	// closed, which stops the in-flight dictation.
	r.expire(time.Now().Add(2 * time.Minute))

	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, ctrl.Snapshot().Recording)

	// The stopped session resolves without writing its late result.
	close(rec.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dictation session did not resolve")
	}
	assert.Empty(t, ctrl.Snapshot().Name)
}
