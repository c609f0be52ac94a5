// Package domain holds the shifts service's core model: shifts, guard
// assignments, and the denormalized personnel records synced from the
// identity service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "SCHEDULED"
	ShiftActive    ShiftStatus = "ACTIVE"
	ShiftCompleted ShiftStatus = "COMPLETED"
	ShiftCancelled ShiftStatus = "CANCELLED"
)

type Shift struct {
	ID                   uuid.UUID
	SiteName             string
	Latitude             float64
	Longitude            float64
	ScheduledStart       time.Time
	ScheduledEnd         time.Time
	BreakMinutes         int
	RequiredGuardsCount  int
	ConfirmedGuardsCount int
	CheckedInGuardsCount int
	Status               ShiftStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentConfirmed AssignmentStatus = "CONFIRMED"
	AssignmentCheckedIn AssignmentStatus = "CHECKED_IN"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

type ShiftAssignment struct {
	ID            uuid.UUID
	ShiftID       uuid.UUID
	GuardID       uuid.UUID
	Status        AssignmentStatus
	ConfirmedAt   *time.Time
	CheckedInAt   *time.Time
	CheckedOutAt  *time.Time
	WorkedMinutes int
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UserRole string

const (
	RoleGuard   UserRole = "GUARD"
	RoleManager UserRole = "MANAGER"
)

// GuardRecord is the local cache of a guard identity, kept in sync by the
// user.* event consumers.
type GuardRecord struct {
	UserID    uuid.UUID
	Email     string
	FullName  string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ManagerRecord struct {
	UserID    uuid.UUID
	Email     string
	FullName  string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleTemplate is imported when a client contract activates and seeds
// future shift generation.
type ScheduleTemplate struct {
	ID                  uuid.UUID
	ContractID          uuid.UUID
	SiteName            string
	Latitude            float64
	Longitude           float64
	StartTime           string
	EndTime             string
	BreakMinutes        int
	RequiredGuardsCount int
	DaysOfWeek          string
	ImportedAt          time.Time
}

type SyncStatus string

const (
	SyncSuccess SyncStatus = "SUCCESS"
	SyncFailed  SyncStatus = "FAILED"
)

// UserSyncAudit records every consumed user.* event with its outcome and
// processing duration.
type UserSyncAudit struct {
	ID           uuid.UUID
	EventType    string
	UserID       uuid.UUID
	Status       SyncStatus
	ErrorMessage string
	DurationMs   int64
	CreatedAt    time.Time
}
