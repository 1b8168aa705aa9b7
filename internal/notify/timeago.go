package notify

import (
	"fmt"
	"time"
)

// timeAgo buckets the age of a notification into a relative label:
// whole days, then hours, then minutes, then "Just now". Singular
// units are never pluralized ("1 hour", "2 hours").
func timeAgo(createdAt, now time.Time) string {
	diff := now.Sub(createdAt)

	hours := int(diff.Hours())
	minutes := int(diff.Minutes())
	days := hours / 24

	switch {
	case days > 0:
		return pluralize(days, "day")
	case hours > 0:
		return pluralize(hours, "hour")
	case minutes > 0:
		return pluralize(minutes, "minute")
	default:
		return "Just now"
	}
}

// pluralize formats a count with its unit, adding "s" past one.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
