package types

import (
	"strings"
	"time"

	ierr "github.com/psaworks/psa/internal/errors"
)

// TimestampLayout is the canonical fixed width UTC representation used at the
// API and storage boundary. Values in this layout sort lexicographically in
// chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the canonical layout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO 8601 UTC timestamp. Milliseconds are optional
// but the value must be in UTC and end with "Z".
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "Z") {
		return time.Time{}, ierr.NewErrorf("timestamp %q is not in UTC", s).
			WithHint("Timestamps must be UTC and end with 'Z', e.g. 2024-01-01T00:00:00.000Z").
			Mark(ierr.ErrValidation)
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("Invalid timestamp %q", s).
			Mark(ierr.ErrValidation)
	}
	return t.UTC(), nil
}
