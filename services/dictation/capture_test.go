package dictation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	transcript string
	err        error
	release    chan struct{} // when set, Recognize blocks until released or cancelled
}

func (f *fakeRecognizer) Recognize(ctx context.Context, audio []byte, cfg Config) (string, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.transcript, f.err
}

type fakeProvider struct {
	rec Recognizer
	err error
}

func (p *fakeProvider) Recognizer() (Recognizer, error) {
	return p.rec, p.err
}

type resultSink struct {
	mu      sync.Mutex
	results []string
}

func (s *resultSink) deliver(field Field, transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, string(field)+"="+transcript)
}

func (s *resultSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.results...)
}

func TestCapture_DeliversNormalizedResult(t *testing.T) {
	sink := &resultSink{}
	c := NewCapture(&fakeProvider{rec: &fakeRecognizer{transcript: "alice at example dot com"}}, "en-GB", nil)

	done, err := c.Start(context.Background(), FieldEmail, []byte("wav"), sink.deliver)
	require.NoError(t, err)
	<-done

	assert.Equal(t, []string{"email=alice@example.com"}, sink.all())
	_, recording := c.Recording()
	assert.False(t, recording)
}

func TestCapture_Unavailable(t *testing.T) {
	sink := &resultSink{}
	c := NewCapture(Unavailable{}, "", nil)

	_, err := c.Start(context.Background(), FieldName, []byte("wav"), sink.deliver)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, recording := c.Recording()
	assert.False(t, recording)
}

func TestCapture_StartSupersedesActiveSession(t *testing.T) {
	sink := &resultSink{}
	first := &fakeRecognizer{transcript: "stale", release: make(chan struct{})}
	provider := &fakeProvider{rec: first}
	c := NewCapture(provider, "en-GB", nil)

	firstDone, err := c.Start(context.Background(), FieldName, []byte("wav"), sink.deliver)
	require.NoError(t, err)
	field, recording := c.Recording()
	require.True(t, recording)
	require.Equal(t, FieldName, field)

	// A second start for another field stops the first session before the
	// new one begins; at most one field ever records.
	provider.rec = &fakeRecognizer{transcript: "Bob Jones"}
	secondDone, err := c.Start(context.Background(), FieldEmail, []byte("wav"), sink.deliver)
	require.NoError(t, err)
	field, recording = c.Recording()
	require.True(t, recording)
	assert.Equal(t, FieldEmail, field)

	// Release the superseded session; its late result must be discarded.
	close(first.release)
	<-firstDone
	<-secondDone

	assert.Equal(t, []string{"email=BobJones"}, sink.all())
}

func TestCapture_StopDiscardsLateResult(t *testing.T) {
	sink := &resultSink{}
	rec := &fakeRecognizer{transcript: "too late", release: make(chan struct{})}
	c := NewCapture(&fakeProvider{rec: rec}, "en-GB", nil)

	done, err := c.Start(context.Background(), FieldName, []byte("wav"), sink.deliver)
	require.NoError(t, err)

	c.Stop()
	_, recording := c.Recording()
	assert.False(t, recording)

	close(rec.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not resolve after stop")
	}
	assert.Empty(t, sink.all())

	// Stop is idempotent.
	c.Stop()
}

func TestCapture_RecognitionErrorResetsState(t *testing.T) {
	sink := &resultSink{}
	c := NewCapture(&fakeProvider{rec: &fakeRecognizer{err: assert.AnError}}, "en-GB", nil)

	done, err := c.Start(context.Background(), FieldEmail, []byte("wav"), sink.deliver)
	require.NoError(t, err)
	<-done

	assert.Empty(t, sink.all())
	_, recording := c.Recording()
	assert.False(t, recording)
}

func TestCapture_CloseStopsActiveSession(t *testing.T) {
	sink := &resultSink{}
	rec := &fakeRecognizer{transcript: "dangling", release: make(chan struct{})}
	c := NewCapture(&fakeProvider{rec: rec}, "en-GB", nil)

	done, err := c.Start(context.Background(), FieldName, []byte("wav"), sink.deliver)
	require.NoError(t, err)

	c.Close()
	close(rec.release)
	<-done

	assert.Empty(t, sink.all())
	_, recording := c.Recording()
	assert.False(t, recording)
}
