package common

import (
	"fmt"
	"time"
)

// FormatAge renders the time since unix seconds ts as "5m", "3h", "2d".
// A zero timestamp renders as "?".
func FormatAge(ts int64, now time.Time) string {
	if ts == 0 {
		return "?"
	}
	d := now.Sub(time.Unix(ts, 0))
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

// Plural returns "1 comment" or "3 comments".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
