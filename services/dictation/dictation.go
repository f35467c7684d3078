package dictation

import (
	"context"
	"errors"
)

// Field names a confirmation form field a dictation session can target.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
)

// ValidField reports whether f is a dictatable form field.
func ValidField(f Field) bool {
	return f == FieldName || f == FieldEmail
}

var (
	// ErrUnavailable means no speech-recognition backend is configured on
	// this deployment. Typed input remains the fallback.
	ErrUnavailable = errors.New("speech recognition is not available")
	// ErrBadAudio means the uploaded audio could not be decoded.
	ErrBadAudio = errors.New("audio could not be decoded")
)

// Config configures a single recognition run. Sessions are one-shot: no
// interim results, one alternative.
type Config struct {
	Locale          string // BCP-47 language tag, e.g. "en-GB"
	MaxAlternatives int
}

// Recognizer performs one-shot speech-to-text on a WAV payload.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, cfg Config) (string, error)
}

// Provider abstracts the platform speech capability so the confirmation flow
// can be exercised without a real backend. Recognizer returns ErrUnavailable
// when the capability is absent.
type Provider interface {
	Recognizer() (Recognizer, error)
}

// Unavailable is the Provider for deployments without a speech backend.
type Unavailable struct{}

func (Unavailable) Recognizer() (Recognizer, error) {
	return nil, ErrUnavailable
}
