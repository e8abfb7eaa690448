package usecase

import (
	"strconv"
	"time"

	"ArticlesAggregator/internal/ports"
)

// TimestampIDs issues millisecond Unix timestamps as article identifiers.
// Two writes within the same millisecond receive the same ID.
type TimestampIDs struct {
	Clock func() time.Time
}

var _ ports.IDGenerator = TimestampIDs{}

// NewID returns the current time in milliseconds, formatted in base 10.
func (g TimestampIDs) NewID() string {
	now := time.Now
	if g.Clock != nil {
		now = g.Clock
	}
	return strconv.FormatInt(now().UnixMilli(), 10)
}
