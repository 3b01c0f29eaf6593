package gallery

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies build timestamps.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator produces build IDs.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces time-ordered UUIDv7 build IDs, so IDs from one host
// sort in the order builds started. It falls back to a random UUID if the
// v7 generator fails.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
