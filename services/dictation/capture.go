package dictation

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ResultFunc receives the normalized transcript of a finished session.
type ResultFunc func(field Field, transcript string)

type session struct {
	field  Field
	gen    uint64
	cancel context.CancelFunc
}

// Capture owns at most one live dictation session at a time. Starting a new
// session supersedes the previous one synchronously, and a session that was
// stopped or superseded never delivers its result: each session carries a
// generation number that must still match on delivery.
type Capture struct {
	provider Provider
	locale   string
	logger   *zap.Logger

	mu     sync.Mutex
	gen    uint64
	active *session
}

// NewCapture builds a capture manager over the given speech provider.
func NewCapture(provider Provider, locale string, logger *zap.Logger) *Capture {
	if locale == "" {
		locale = "en-GB"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capture{provider: provider, locale: locale, logger: logger}
}

// Recording reports which field, if any, currently owns a session.
func (c *Capture) Recording() (Field, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.field, true
}

// Start begins a one-shot recognition of audio for the given field. Any
// session already running is stopped first. The returned channel closes when
// the session resolves, whether with a transcript, an error, or a
// cancellation; deliver is invoked only in the transcript case.
//
// A capability failure (ErrUnavailable) is returned immediately and leaves
// the capture state untouched.
func (c *Capture) Start(ctx context.Context, field Field, audio []byte, deliver ResultFunc) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.provider.Recognizer()
	if err != nil {
		return nil, err
	}

	c.stopLocked()

	c.gen++
	sctx, cancel := context.WithCancel(ctx)
	s := &session{field: field, gen: c.gen, cancel: cancel}
	c.active = s

	done := make(chan struct{})
	go c.run(sctx, rec, s, audio, deliver, done)
	return done, nil
}

func (c *Capture) run(ctx context.Context, rec Recognizer, s *session, audio []byte, deliver ResultFunc, done chan<- struct{}) {
	defer close(done)

	transcript, err := rec.Recognize(ctx, audio, Config{Locale: c.locale, MaxAlternatives: 1})

	c.mu.Lock()
	if c.active == nil || c.active.gen != s.gen {
		// Stopped or superseded while the recognizer was running; the late
		// result must not be honoured.
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.mu.Unlock()

	if err != nil {
		// Recognition failures reset capture state without touching the
		// field; the visitor simply retries.
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("dictation failed", zap.String("field", string(s.field)), zap.Error(err))
		}
		return
	}

	deliver(s.field, NormalizeTranscript(s.field, transcript))
}

// Stop terminates the active session, if any. Idempotent.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Capture) stopLocked() {
	if c.active != nil {
		c.active.cancel()
		c.active = nil
	}
}

// Close releases the capture on teardown. An active session never outlives
// its owner.
func (c *Capture) Close() {
	c.Stop()
}
