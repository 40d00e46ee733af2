package session

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxFieldLength caps each sanitized naming field.
const MaxFieldLength = 80

// Sanitize makes a naming field safe for use in a folder name. Surrounding
// whitespace is stripped, every run of characters outside [A-Za-z0-9_.-] is
// replaced by a single underscore, and the result is truncated to
// MaxFieldLength bytes. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(value))
	inRun := false
	for _, r := range value {
		if isNameRune(r) {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('_')
			inRun = true
		}
	}

	out := b.String()
	if len(out) > MaxFieldLength {
		out = out[:MaxFieldLength]
	}
	return out
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '.':
		return true
	default:
		return false
	}
}

// ParseSequence converts operator text into a sequence number. Values below
// one are accepted here and clamped by Manager.Create.
func ParseSequence(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, &ValidationError{Field: "sequence", Reason: fmt.Sprintf("%q is not a number", text)}
	}
	return n, nil
}
