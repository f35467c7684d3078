package dictation

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	speech "cloud.google.com/go/speech/apiv1"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

const (
	// MaxAudioBytes caps a single dictation upload (one short utterance).
	MaxAudioBytes = 5 * 1024 * 1024

	sampleRateHertz = 16000
)

// GoogleProvider exposes Google Cloud Speech-to-Text as the dictation
// backend. The capability is unavailable when no service account is
// configured or ffmpeg is missing from PATH.
type GoogleProvider struct {
	CredentialsFile string
}

func (p *GoogleProvider) Recognizer() (Recognizer, error) {
	if p.CredentialsFile == "" {
		return nil, ErrUnavailable
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, ErrUnavailable
	}
	return &googleRecognizer{credentialsFile: p.CredentialsFile}, nil
}

type googleRecognizer struct {
	credentialsFile string
}

func (r *googleRecognizer) Recognize(ctx context.Context, audio []byte, cfg Config) (string, error) {
	if len(audio) == 0 || len(audio) > MaxAudioBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrBadAudio, len(audio))
	}

	converted, err := convertAudio(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadAudio, err)
	}

	client, err := speech.NewClient(ctx, option.WithCredentialsFile(r.credentialsFile))
	if err != nil {
		return "", fmt.Errorf("failed to initialize speech client: %w", err)
	}
	defer client.Close()

	maxAlternatives := int32(cfg.MaxAlternatives)
	if maxAlternatives < 1 {
		maxAlternatives = 1
	}
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   sampleRateHertz,
			LanguageCode:      cfg.Locale,
			MaxAlternatives:   maxAlternatives,
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: converted,
			},
		},
	}

	resp, err := client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	// One-shot capture: the top alternative of the first result is the
	// transcript.
	if len(resp.Results) == 0 || len(resp.Results[0].Alternatives) == 0 {
		return "", nil
	}
	return resp.Results[0].Alternatives[0].Transcript, nil
}

// convertAudio shells out to ffmpeg to re-encode arbitrary WAV input as
// LINEAR16 16kHz mono, the format the recognition config declares.
func convertAudio(ctx context.Context, audio []byte) ([]byte, error) {
	input, err := os.CreateTemp("", "dictation-*.wav")
	if err != nil {
		return nil, err
	}
	defer os.Remove(input.Name())
	defer input.Close()

	if _, err := input.Write(audio); err != nil {
		return nil, err
	}

	output, err := os.CreateTemp("", "dictation-converted-*.wav")
	if err != nil {
		return nil, err
	}
	defer os.Remove(output.Name())
	defer output.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", input.Name(),
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", fmt.Sprint(sampleRateHertz),
		output.Name(),
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}

	return os.ReadFile(output.Name())
}
