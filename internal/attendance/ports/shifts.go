package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ShiftLocation struct {
	Latitude       float64
	Longitude      float64
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	BreakMinutes   int
}

// ShiftDirectory answers the cross-service location query against the Shifts
// service. Implementations carry a bounded timeout and surface any transport
// failure or unsuccessful answer as an error so the workflow can reject the
// request instead of trusting a default location.
type ShiftDirectory interface {
	GetShiftLocation(ctx context.Context, shiftID uuid.UUID) (ShiftLocation, error)
}
