package confirmation

import (
	"regexp"
	"strings"
)

// emailPattern requires one @-delimited local/domain split and at least one
// dot in the domain. Deliberately looser than RFC 5322.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s is a syntactically plausible address.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateFullName reports whether s holds at least two space-separated
// tokens, the first-plus-last-name heuristic. No character-class or length
// constraints beyond that.
func ValidateFullName(s string) bool {
	return len(strings.Fields(strings.TrimSpace(s))) >= 2
}
