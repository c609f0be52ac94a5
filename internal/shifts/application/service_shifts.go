package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/domain"
)

func (s *Service) GetShift(ctx context.Context, id uuid.UUID) (ShiftView, error) {
	shift, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return ShiftView{}, err
	}
	return toShiftView(shift), nil
}

// GetShiftLocation answers the attendance service's location query. The
// answer is always well-formed; a missing shift becomes an unsuccessful
// answer rather than a transport error so the caller can distinguish "shift
// unknown" from "shifts service down".
func (s *Service) GetShiftLocation(ctx context.Context, shiftID uuid.UUID) ShiftLocationAnswer {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ShiftLocationAnswer{ErrorMessage: "shift not found"}
		}
		s.logger.ErrorContext(ctx, "location lookup failed",
			"module", "shifts",
			"layer", "application",
			"operation", "get_shift_location",
			"outcome", "failure",
			"shift_id", shiftID,
			"error", err,
		)
		return ShiftLocationAnswer{ErrorMessage: "could not resolve shift location"}
	}
	return ShiftLocationAnswer{
		Success: true,
		Location: &LocationPayload{
			Latitude:       shift.Latitude,
			Longitude:      shift.Longitude,
			ScheduledStart: shift.ScheduledStart,
			ScheduledEnd:   shift.ScheduledEnd,
			BreakMinutes:   shift.BreakMinutes,
		},
	}
}
