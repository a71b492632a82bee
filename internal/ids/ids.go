// Package ids allocates identifiers for newly written sessions.
package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// NewSessionID returns a time-ordered UUIDv7, the format Codex uses for
// session ids. It falls back to a random UUIDv4 if the clock source fails.
func NewSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewSuffix returns a random token for file names that exhausted the numeric
// collision suffixes.
func NewSuffix() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return id.String(), nil
}
