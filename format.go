package otpflow

import (
	"fmt"
	"strings"
)

// FormatCountdown renders whole seconds as "M:SS" for the compact code-expiry
// display. Negative input clamps to "0:00".
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatRateLimitCountdown renders whole seconds as a long-form human string
// ("1 hour and 1 minute"). Zero renders as "0 seconds", singular units drop
// the trailing "s", and a zero-second component is omitted whenever an hour
// component is present.
func FormatRateLimitCountdown(seconds int) string {
	if seconds <= 0 {
		return "0 seconds"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, pluralize(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, pluralize(minutes, "minute"))
	}
	if secs > 0 && hours == 0 {
		parts = append(parts, pluralize(secs, "second"))
	}

	return strings.Join(parts, " and ")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
