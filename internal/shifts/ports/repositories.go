package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/eventbus"
	"github.com/guardpoint/workforce/internal/shifts/domain"
)

type ShiftRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Shift, error)
}

type LeaveCancellationParams struct {
	GuardID uuid.UUID
	From    time.Time
	To      time.Time
	Reason  string
	Now     time.Time
}

// CancelEventFn builds the outbox event for one cancelled assignment. It is
// invoked inside the cancellation transaction so every cancelled row commits
// together with its event.
type CancelEventFn func(assignment domain.ShiftAssignment) (eventbus.OutboxEvent, error)

type CheckInApplyParams struct {
	AssignmentID uuid.UUID
	ShiftID      uuid.UUID
	CheckInTime  time.Time
	ConfirmedAt  time.Time
}

type CheckOutApplyParams struct {
	AssignmentID  uuid.UUID
	ShiftID       uuid.UUID
	CheckOutTime  time.Time
	WorkedMinutes int
}

// AssignmentRepository owns the assignment state machine and the shift
// counters derived from it. ApplyCheckIn and ApplyCheckOut are conditional
// updates; they report whether the row actually transitioned so callers can
// skip counter increments on redelivered events.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ShiftAssignment, error)
	CancelLeaveOverlapping(ctx context.Context, params LeaveCancellationParams, eventFn CancelEventFn) ([]domain.ShiftAssignment, error)
	ApplyCheckIn(ctx context.Context, params CheckInApplyParams) (bool, error)
	ApplyCheckOut(ctx context.Context, params CheckOutApplyParams) (bool, error)
}

type UserRecordParams struct {
	UserID   uuid.UUID
	Email    string
	FullName string
	Phone    string
	Role     domain.UserRole
	Now      time.Time
}

// PersonnelRepository maintains the denormalized guard/manager caches.
// Deactivation resolves by ID when one is present, by email otherwise.
type PersonnelRepository interface {
	Upsert(ctx context.Context, params UserRecordParams) error
	SoftDelete(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
	DeactivateByID(ctx context.Context, role domain.UserRole, userID uuid.UUID, now time.Time) (bool, error)
	DeactivateByEmail(ctx context.Context, role domain.UserRole, email string, now time.Time) (bool, error)
}

type TemplateImport struct {
	SiteName            string
	Latitude            float64
	Longitude           float64
	StartTime           string
	EndTime             string
	BreakMinutes        int
	RequiredGuardsCount int
	DaysOfWeek          string
}

type TemplateRepository interface {
	ImportForContract(ctx context.Context, contractID uuid.UUID, templates []TemplateImport, now time.Time) (int, error)
}

type SyncAuditParams struct {
	EventType    string
	UserID       uuid.UUID
	Status       domain.SyncStatus
	ErrorMessage string
	DurationMs   int64
	Now          time.Time
}

type SyncAuditRepository interface {
	Append(ctx context.Context, params SyncAuditParams) error
}

type EventDedupRepository interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
}
