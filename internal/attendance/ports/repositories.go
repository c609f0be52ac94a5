package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/eventbus"
)

type CheckInRecordParams struct {
	GuardID           uuid.UUID
	ShiftAssignmentID uuid.UUID
	ShiftID           uuid.UUID
	CheckInTime       time.Time
	Latitude          float64
	Longitude         float64
	Accuracy          *float64
	DistanceMeters    float64
	FaceScore         float64
	ImageURL          string
	IsLate            bool
	LateMinutes       int
	BreakMinutes      int
}

type CheckOutRecordParams struct {
	RecordID       uuid.UUID
	CheckOutTime   time.Time
	Latitude       float64
	Longitude      float64
	Accuracy       *float64
	DistanceMeters float64
	FaceScore      float64
	ImageURL       string
	Summary        domain.WorkSummary
}

// AttendanceRepository persists the state machine. ApplyCheckIn and
// ApplyCheckOut run the record write and the outbox enqueue in one database
// transaction. ApplyCheckOut updates conditionally on status CHECKED_IN and
// returns ErrStateConflict when zero rows were affected, which is what makes
// concurrent check-out requests safe.
type AttendanceRepository interface {
	GetByAssignment(ctx context.Context, guardID, shiftAssignmentID, shiftID uuid.UUID) (domain.AttendanceRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.AttendanceRecord, error)
	ApplyCheckIn(ctx context.Context, params CheckInRecordParams, event eventbus.OutboxEvent) (domain.AttendanceRecord, error)
	ApplyCheckOut(ctx context.Context, params CheckOutRecordParams, event eventbus.OutboxEvent) (domain.AttendanceRecord, error)
	MarkIncomplete(ctx context.Context, id uuid.UUID, at time.Time) (domain.AttendanceRecord, error)
	SoftDeletePendingByAssignment(ctx context.Context, shiftAssignmentID uuid.UUID, at time.Time) (bool, error)
}

type RegistrationParams struct {
	GuardID          uuid.UUID
	TemplateURL      string
	FaceQualityScore float64
	Now              time.Time
}

type VerificationLogParams struct {
	GuardID    uuid.UUID
	EventType  domain.BiometricEventType
	TemplateURL string
	FaceScore  float64
	Passed     bool
	Now        time.Time
}

type BiometricLogRepository interface {
	GetVerifiedRegistration(ctx context.Context, guardID uuid.UUID) (domain.BiometricLog, error)
	UpsertRegistration(ctx context.Context, params RegistrationParams) (domain.BiometricLog, error)
	AppendVerification(ctx context.Context, params VerificationLogParams) error
}

type EventDedupRepository interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
}
