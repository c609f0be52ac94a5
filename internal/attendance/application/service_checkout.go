package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/attendance/ports"
	"github.com/guardpoint/workforce/internal/eventbus"
)

// CheckOut closes the CHECKED_IN -> CHECKED_OUT transition. The persistence
// layer applies the update conditionally on the current status, so a losing
// concurrent request surfaces as "already checked out" instead of a double
// transition.
func (s *Service) CheckOut(ctx context.Context, cmd CheckOutCommand) (AttendanceOutcome, error) {
	if err := s.validateShape(cmd); err != nil {
		return AttendanceOutcome{}, err
	}

	rec, err := s.records.GetByAssignment(ctx, cmd.GuardID, cmd.ShiftAssignmentID, cmd.ShiftID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return reject(RejectNoCheckIn, "no check-in found for this shift assignment"), nil
		}
		return AttendanceOutcome{}, err
	}
	switch rec.Status {
	case domain.StatusCheckedIn:
	case domain.StatusCheckedOut:
		return reject(RejectAlreadyCheckedOut, "already checked out for this shift assignment"), nil
	default:
		return reject(RejectInvalidState, "attendance is not in a checked-in state"), nil
	}
	if rec.CheckInTime == nil {
		// A CHECKED_IN row without a check-in time is corrupt data, not a
		// workflow the guard can complete.
		return reject(RejectMissingCheckInTime, "attendance record is missing its check-in time"), nil
	}

	if err := s.checkVerifyAttemptBudget(ctx, cmd.GuardID); err != nil {
		return AttendanceOutcome{}, err
	}

	verified, outcome := s.verifyFace(ctx, cmd, domain.BiometricEventCheckOut)
	if outcome != nil {
		return *outcome, nil
	}

	located, outcome := s.locateAndFence(ctx, cmd, verified.Confidence)
	if outcome != nil {
		return *outcome, nil
	}

	now := s.nowFn()
	summary := domain.SummarizeWork(*rec.CheckInTime, now, located.Location.ScheduledEnd, rec.BreakDurationMinutes)

	imageURL, err := s.storage.UploadImage(ctx, evidenceKey(cmd.GuardID, "check-out"), cmd.ImageContentType, cmd.Image)
	if err != nil {
		out := reject(RejectEvidenceUploadFailed, "could not store check-out evidence, try again")
		out.FaceMatchScore = &verified.Confidence
		out.DistanceFromSite = &located.Distance
		return out, nil
	}

	event, err := s.buildOutboxEvent(eventbus.EventCheckedOut, cmd.ShiftAssignmentID.String(), now, checkedOutEventData{
		GuardID:                   cmd.GuardID.String(),
		ShiftAssignmentID:         cmd.ShiftAssignmentID.String(),
		ShiftID:                   cmd.ShiftID.String(),
		CheckOutTime:              now,
		FaceMatchScore:            verified.Confidence,
		DistanceFromSite:          located.Distance,
		ActualWorkDurationMinutes: summary.ActualWorkMinutes,
		BreakDurationMinutes:      rec.BreakDurationMinutes,
		NetWorkMinutes:            summary.NetWorkMinutes,
		TotalHours:                summary.TotalHours,
		IsEarlyLeave:              summary.IsEarlyLeave,
		EarlyLeaveMinutes:         summary.EarlyLeaveMinutes,
		HasOvertime:               summary.HasOvertime,
		OvertimeMinutes:           summary.OvertimeMinutes,
	})
	if err != nil {
		return AttendanceOutcome{}, err
	}

	updated, err := s.records.ApplyCheckOut(ctx, ports.CheckOutRecordParams{
		RecordID:       rec.ID,
		CheckOutTime:   now,
		Latitude:       cmd.Latitude,
		Longitude:      cmd.Longitude,
		Accuracy:       cmd.Accuracy,
		DistanceMeters: located.Distance,
		FaceScore:      verified.Confidence,
		ImageURL:       imageURL,
		Summary:        summary,
	}, event)
	if err != nil {
		if errors.Is(err, domain.ErrStateConflict) {
			// A concurrent check-out won the conditional update.
			return reject(RejectAlreadyCheckedOut, "already checked out for this shift assignment"), nil
		}
		return AttendanceOutcome{}, err
	}

	s.logVerification(ctx, cmd.GuardID, domain.BiometricEventCheckOut, verified.TemplateURL, verified.Confidence, true)

	return AttendanceOutcome{
		Accepted:         true,
		Message:          "checked out",
		FaceMatchScore:   &verified.Confidence,
		DistanceFromSite: &located.Distance,
		Record:           toAttendanceView(updated),
	}, nil
}

// MarkIncomplete is the manual-ops escape hatch for shifts that never reached
// a check-out. It is a terminal transition and only valid from CHECKED_IN.
func (s *Service) MarkIncomplete(ctx context.Context, id uuid.UUID) (*AttendanceView, error) {
	rec, err := s.records.MarkIncomplete(ctx, id, s.nowFn())
	if err != nil {
		return nil, err
	}
	return toAttendanceView(rec), nil
}

// GetAttendance returns a single record view.
func (s *Service) GetAttendance(ctx context.Context, id uuid.UUID) (*AttendanceView, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAttendanceView(rec), nil
}
