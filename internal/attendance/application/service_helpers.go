package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/attendance/ports"
	"github.com/guardpoint/workforce/internal/eventbus"
)

type checkedInEventData struct {
	GuardID           string    `json:"guard_id"`
	ShiftAssignmentID string    `json:"shift_assignment_id"`
	ShiftID           string    `json:"shift_id"`
	CheckInTime       time.Time `json:"check_in_time"`
	ConfirmedAt       time.Time `json:"confirmed_at"`
	IsLate            bool      `json:"is_late"`
	LateMinutes       int       `json:"late_minutes"`
	FaceMatchScore    float64   `json:"face_match_score"`
	DistanceFromSite  float64   `json:"distance_from_site"`
}

type checkedOutEventData struct {
	GuardID                   string    `json:"guard_id"`
	ShiftAssignmentID         string    `json:"shift_assignment_id"`
	ShiftID                   string    `json:"shift_id"`
	CheckOutTime              time.Time `json:"check_out_time"`
	FaceMatchScore            float64   `json:"face_match_score"`
	DistanceFromSite          float64   `json:"distance_from_site"`
	ActualWorkDurationMinutes int       `json:"actual_work_duration_minutes"`
	BreakDurationMinutes      int       `json:"break_duration_minutes"`
	NetWorkMinutes            int       `json:"net_work_minutes"`
	TotalHours                float64   `json:"total_hours"`
	IsEarlyLeave              bool      `json:"is_early_leave"`
	EarlyLeaveMinutes         int       `json:"early_leave_minutes"`
	HasOvertime               bool      `json:"has_overtime"`
	OvertimeMinutes           int       `json:"overtime_minutes"`
}

func (s *Service) buildOutboxEvent(eventType, partitionKey string, occurredAt time.Time, data any) (eventbus.OutboxEvent, error) {
	env, payload, err := eventbus.NewEnvelope(eventType, s.cfg.ServiceName, partitionKey, occurredAt, data)
	if err != nil {
		return eventbus.OutboxEvent{}, err
	}
	eventID, err := uuid.Parse(env.EventID)
	if err != nil {
		eventID = uuid.New()
	}
	return eventbus.OutboxEvent{
		EventID:       eventID,
		EventType:     eventType,
		PartitionKey:  partitionKey,
		Payload:       payload,
		OccurredAt:    occurredAt,
		SchemaVersion: env.SchemaVersion,
	}, nil
}

// templateForGuard resolves the canonical enrolled template reference,
// reading through the cache to spare the database on every verification.
func (s *Service) templateForGuard(ctx context.Context, guardID uuid.UUID) (string, error) {
	key := templateCacheKey(guardID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			return cached, nil
		}
	}
	reg, err := s.biometrics.GetVerifiedRegistration(ctx, guardID)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, reg.RegisteredFaceTemplateURL, s.cfg.TemplateCacheTTL)
	}
	return reg.RegisteredFaceTemplateURL, nil
}

func templateCacheKey(guardID uuid.UUID) string {
	return "attendance:template:" + guardID.String()
}

func (s *Service) checkVerifyAttemptBudget(ctx context.Context, guardID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	key := "attendance:verify_attempts:" + guardID.String()
	count, err := s.cache.IncrWithTTL(ctx, key, s.cfg.VerifyAttemptWindow)
	if err != nil {
		// The limiter is protective, not authoritative; a cache outage must
		// not block attendance.
		return nil
	}
	if count > int64(s.cfg.VerifyAttemptLimit) {
		return fmt.Errorf("%w: too many verification attempts, try again shortly", domain.ErrRateLimitExceeded)
	}
	return nil
}

func (s *Service) logVerification(ctx context.Context, guardID uuid.UUID, eventType domain.BiometricEventType, templateURL string, score float64, passed bool) {
	_ = s.biometrics.AppendVerification(ctx, ports.VerificationLogParams{
		GuardID:     guardID,
		EventType:   eventType,
		TemplateURL: templateURL,
		FaceScore:   score,
		Passed:      passed,
		Now:         s.nowFn(),
	})
}

func evidenceKey(guardID uuid.UUID, event string) string {
	return fmt.Sprintf("attendance/%s/%s/%s.jpg", guardID, event, uuid.NewString())
}

func encodeProbe(image []byte) string {
	return base64.StdEncoding.EncodeToString(image)
}
