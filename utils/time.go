package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned for unparseable or out-of-bounds seek targets.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// FormatDuration formats a track duration as M:SS or H:MM:SS.
func FormatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ParseTimestamp parses "ss", "mm:ss" or "h:mm:ss" into a duration.
// Negative or unparseable input returns ErrInvalidTimestamp.
func ParseTimestamp(text string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) > 3 {
		return 0, ErrInvalidTimestamp
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, ErrInvalidTimestamp
		}
		total = total*60 + n
	}

	return time.Duration(total) * time.Second, nil
}
