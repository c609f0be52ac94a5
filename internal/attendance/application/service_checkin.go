package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/attendance/ports"
	"github.com/guardpoint/workforce/internal/eventbus"
	"github.com/guardpoint/workforce/internal/geo"
)

// CheckIn runs the full check-in workflow. Expected refusals come back as a
// rejected AttendanceOutcome; the error return is reserved for malformed input
// and unexpected faults.
func (s *Service) CheckIn(ctx context.Context, cmd CheckInCommand) (AttendanceOutcome, error) {
	if err := s.validateShape(cmd); err != nil {
		return AttendanceOutcome{}, err
	}

	existing, err := s.records.GetByAssignment(ctx, cmd.GuardID, cmd.ShiftAssignmentID, cmd.ShiftID)
	switch {
	case err == nil:
		if existing.Status == domain.StatusCheckedIn || existing.Status == domain.StatusCheckedOut {
			return reject(RejectDuplicateCheckIn, "attendance already recorded for this shift assignment"), nil
		}
	case !errors.Is(err, domain.ErrNotFound):
		return AttendanceOutcome{}, err
	}

	if err := s.checkVerifyAttemptBudget(ctx, cmd.GuardID); err != nil {
		return AttendanceOutcome{}, err
	}

	verified, outcome := s.verifyFace(ctx, cmd, domain.BiometricEventCheckIn)
	if outcome != nil {
		return *outcome, nil
	}

	located, outcome := s.locateAndFence(ctx, cmd, verified.Confidence)
	if outcome != nil {
		return *outcome, nil
	}

	now := s.nowFn()
	isLate, lateMinutes := domain.Lateness(located.Location.ScheduledStart, now)

	imageURL, err := s.storage.UploadImage(ctx, evidenceKey(cmd.GuardID, "check-in"), cmd.ImageContentType, cmd.Image)
	if err != nil {
		out := reject(RejectEvidenceUploadFailed, "could not store check-in evidence, try again")
		out.FaceMatchScore = &verified.Confidence
		out.DistanceFromSite = &located.Distance
		return out, nil
	}

	event, err := s.buildOutboxEvent(eventbus.EventCheckedIn, cmd.ShiftAssignmentID.String(), now, checkedInEventData{
		GuardID:           cmd.GuardID.String(),
		ShiftAssignmentID: cmd.ShiftAssignmentID.String(),
		ShiftID:           cmd.ShiftID.String(),
		CheckInTime:       now,
		ConfirmedAt:       now,
		IsLate:            isLate,
		LateMinutes:       lateMinutes,
		FaceMatchScore:    verified.Confidence,
		DistanceFromSite:  located.Distance,
	})
	if err != nil {
		return AttendanceOutcome{}, err
	}

	rec, err := s.records.ApplyCheckIn(ctx, ports.CheckInRecordParams{
		GuardID:           cmd.GuardID,
		ShiftAssignmentID: cmd.ShiftAssignmentID,
		ShiftID:           cmd.ShiftID,
		CheckInTime:       now,
		Latitude:          cmd.Latitude,
		Longitude:         cmd.Longitude,
		Accuracy:          cmd.Accuracy,
		DistanceMeters:    located.Distance,
		FaceScore:         verified.Confidence,
		ImageURL:          imageURL,
		IsLate:            isLate,
		LateMinutes:       lateMinutes,
		BreakMinutes:      located.Location.BreakMinutes,
	}, event)
	if err != nil {
		return AttendanceOutcome{}, err
	}

	s.logVerification(ctx, cmd.GuardID, domain.BiometricEventCheckIn, verified.TemplateURL, verified.Confidence, true)

	return AttendanceOutcome{
		Accepted:         true,
		Message:          "checked in",
		FaceMatchScore:   &verified.Confidence,
		DistanceFromSite: &located.Distance,
		Record:           toAttendanceView(rec),
	}, nil
}

func (s *Service) validateShape(cmd CheckInCommand) error {
	if err := domain.ValidateIdentifiers(cmd.GuardID, cmd.ShiftAssignmentID, cmd.ShiftID); err != nil {
		return err
	}
	if err := domain.ValidateProbeImage(len(cmd.Image), cmd.ImageContentType); err != nil {
		return err
	}
	return domain.ValidateCoordinates(cmd.Latitude, cmd.Longitude)
}

type verifiedFace struct {
	TemplateURL string
	Confidence  float64
	Quality     float64
}

// verifyFace resolves the enrolled template and runs the gateway match.
// A nil outcome means all biometric gates passed.
func (s *Service) verifyFace(ctx context.Context, cmd CheckInCommand, eventType domain.BiometricEventType) (verifiedFace, *AttendanceOutcome) {
	templateURL, err := s.templateForGuard(ctx, cmd.GuardID)
	if err != nil {
		out := reject(RejectNoBiometricTemplate, "no verified face enrollment found, register faces first")
		return verifiedFace{}, &out
	}

	result, err := s.gateway.Verify(ctx, ports.VerifyFaceRequest{
		GuardID:     cmd.GuardID,
		ImageBase64: encodeProbe(cmd.Image),
		TemplateURL: templateURL,
		EventType:   string(eventType),
	})
	if err != nil {
		// Fail closed: an unreachable gateway is never a pass.
		out := reject(RejectVerificationUnavail, "face verification is temporarily unavailable")
		return verifiedFace{}, &out
	}
	if !result.FaceDetected {
		s.logVerification(ctx, cmd.GuardID, eventType, templateURL, result.Confidence, false)
		out := reject(RejectFaceNotDetected, "no face detected in the submitted image")
		return verifiedFace{}, &out
	}
	if result.FaceQuality < s.cfg.MinFaceQuality {
		s.logVerification(ctx, cmd.GuardID, eventType, templateURL, result.Confidence, false)
		out := reject(RejectLowFaceQuality,
			fmt.Sprintf("face quality %.0f below required %.0f", result.FaceQuality, s.cfg.MinFaceQuality))
		out.FaceMatchScore = &result.Confidence
		return verifiedFace{}, &out
	}
	if !result.IsMatch || result.Confidence < s.cfg.MinMatchConfidence {
		s.logVerification(ctx, cmd.GuardID, eventType, templateURL, result.Confidence, false)
		out := reject(RejectLowMatchConfidence,
			fmt.Sprintf("face match %.0f%% below required %.0f%%", result.Confidence*100, s.cfg.MinMatchConfidence*100))
		out.FaceMatchScore = &result.Confidence
		return verifiedFace{}, &out
	}
	return verifiedFace{TemplateURL: templateURL, Confidence: result.Confidence, Quality: result.FaceQuality}, nil
}

type locatedShift struct {
	Location ports.ShiftLocation
	Distance float64
}

// locateAndFence queries the Shifts service for authoritative coordinates and
// applies the geofence. faceScore rides along so geofence rejections still
// carry the biometric signal.
func (s *Service) locateAndFence(ctx context.Context, cmd CheckInCommand, faceScore float64) (locatedShift, *AttendanceOutcome) {
	loc, err := s.shifts.GetShiftLocation(ctx, cmd.ShiftID)
	if err != nil {
		out := reject(RejectLocationUnavailable, "cannot verify shift location, try again")
		out.FaceMatchScore = &faceScore
		return locatedShift{}, &out
	}
	// A zeroed location is an unset one; accepting it would fence against the
	// Gulf of Guinea.
	if loc.Latitude == 0 && loc.Longitude == 0 {
		out := reject(RejectLocationUnavailable, "shift has no location on record")
		out.FaceMatchScore = &faceScore
		return locatedShift{}, &out
	}

	distance := geo.Distance(cmd.Latitude, cmd.Longitude, loc.Latitude, loc.Longitude)
	if distance > s.cfg.GeofenceRadiusMeters {
		out := reject(RejectOutsideGeofence,
			fmt.Sprintf("distance from site %.0fm exceeds allowed %.0fm", distance, s.cfg.GeofenceRadiusMeters))
		out.FaceMatchScore = &faceScore
		out.DistanceFromSite = &distance
		return locatedShift{}, &out
	}
	return locatedShift{Location: loc, Distance: distance}, nil
}
