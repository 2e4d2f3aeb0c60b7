package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID for tracking
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateID returns a fresh entity identifier
func GenerateID() string {
	return uuid.NewString()
}

// FormatDuration formats a duration to a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// CloneStrings copies a string slice, normalising nil to an empty slice so JSON renders []
func CloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// RoundMean returns the mean of values rounded half away from zero, or 0 for no values
func RoundMean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

