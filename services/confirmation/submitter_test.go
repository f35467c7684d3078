package confirmation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialoguecafe/models"
)

func TestHTTPSubmitter_Success(t *testing.T) {
	var got models.BookingRequest
	var gotIdempotency string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create-booking", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotIdempotency = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "bk-123"})
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second, nil)
	result := s.Submit(context.Background(), SubmitRequest{
		FullName:       "  Alice Smith  ",
		Email:          " alice@example.com ",
		Timeslots:      []string{"2024-01-01T14", "2024-01-01T15"},
		IdempotencyKey: "key-1",
	})

	assert.True(t, result.OK)
	assert.Equal(t, "bk-123", result.BookingID)
	assert.Equal(t, "key-1", gotIdempotency)
	assert.Equal(t, "Alice Smith", got.User.FullName)
	assert.Equal(t, "alice@example.com", got.User.Email)
	require.Len(t, got.Timeslots, 2)
	assert.Equal(t, "2024-01-01T14", got.Timeslots[0].StartTime)
}

func TestHTTPSubmitter_EndpointRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "Slot taken"})
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second, nil)
	result := s.Submit(context.Background(), SubmitRequest{FullName: "Alice Smith", Email: "a@b.co"})

	assert.False(t, result.OK)
	assert.Equal(t, "Slot taken", result.Message)
}

func TestHTTPSubmitter_FailureWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second, nil)
	result := s.Submit(context.Background(), SubmitRequest{FullName: "Alice Smith", Email: "a@b.co"})

	assert.False(t, result.OK)
	assert.Equal(t, GenericSubmitFailure, result.Message)
}

func TestHTTPSubmitter_SuccessStatusWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second, nil)
	result := s.Submit(context.Background(), SubmitRequest{FullName: "Alice Smith", Email: "a@b.co"})

	assert.False(t, result.OK)
	assert.Equal(t, GenericSubmitFailure, result.Message)
}

func TestHTTPSubmitter_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	s := NewHTTPSubmitter(srv.URL, time.Second, nil)
	result := s.Submit(context.Background(), SubmitRequest{FullName: "Alice Smith", Email: "a@b.co"})

	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Message)
}
