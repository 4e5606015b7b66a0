package feed

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// NormalizeDate parses an RFC 2822 or RFC 3339 timestamp and formats the
// calendar date in the timestamp's own offset.
func NormalizeDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)

	if t, err := mail.ParseDate(value); err == nil {
		return t.Format(DateLayout), nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(DateLayout), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnparsableDate, raw)
}
