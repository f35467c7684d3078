package dictation

import (
	"regexp"
	"strings"
)

var (
	spokenAt   = regexp.MustCompile(`(?i)\bat\b`)
	spokenDot  = regexp.MustCompile(`(?i)\bdot\b`)
	whitespace = regexp.MustCompile(`\s+`)
)

// NormalizeTranscript post-processes a raw transcript for its target field.
// Email dictation maps the spoken words "at" and "dot" to their symbols and
// strips all whitespace, so "alice at example dot com" becomes
// "alice@example.com". Other fields are only trimmed.
func NormalizeTranscript(field Field, transcript string) string {
	t := strings.TrimSpace(transcript)
	if field != FieldEmail {
		return t
	}
	t = spokenAt.ReplaceAllString(t, "@")
	t = spokenDot.ReplaceAllString(t, ".")
	return whitespace.ReplaceAllString(t, "")
}
