package service

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
