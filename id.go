package signal

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh UUID v4 string, used as a Signal's default id.
func NewID() string {
	return uuid.New().String()
}

// Now returns the current time formatted as ISO-8601 (RFC3339) in UTC,
// used as a Signal's default time.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
