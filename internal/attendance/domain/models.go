package domain

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	StatusPending    AttendanceStatus = "PENDING"
	StatusCheckedIn  AttendanceStatus = "CHECKED_IN"
	StatusCheckedOut AttendanceStatus = "CHECKED_OUT"
	StatusIncomplete AttendanceStatus = "INCOMPLETE"
)

// IsTerminal reports whether no further transition may leave the status.
func (s AttendanceStatus) IsTerminal() bool {
	return s == StatusCheckedOut || s == StatusIncomplete
}

// AttendanceRecord is the check-in/check-out state machine record for one
// (guard, shift assignment, shift) triple.
type AttendanceRecord struct {
	ID                uuid.UUID
	GuardID           uuid.UUID
	ShiftAssignmentID uuid.UUID
	ShiftID           uuid.UUID
	Status            AttendanceStatus

	CheckInTime           *time.Time
	CheckInLatitude       *float64
	CheckInLongitude      *float64
	CheckInAccuracy       *float64
	CheckInDistanceMeters *float64
	CheckInFaceScore      *float64
	CheckInImageURL       string
	IsLate                bool
	LateMinutes           int

	CheckOutTime           *time.Time
	CheckOutLatitude       *float64
	CheckOutLongitude      *float64
	CheckOutAccuracy       *float64
	CheckOutDistanceMeters *float64
	CheckOutFaceScore      *float64
	CheckOutImageURL       string

	ActualWorkDurationMinutes int
	BreakDurationMinutes      int
	NetWorkMinutes            int
	TotalHours                float64
	IsEarlyLeave              bool
	EarlyLeaveMinutes         int
	HasOvertime               bool
	OvertimeMinutes           int

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type BiometricEventType string

const (
	BiometricEventRegistration BiometricEventType = "REGISTRATION"
	BiometricEventCheckIn      BiometricEventType = "CHECK_IN"
	BiometricEventCheckOut     BiometricEventType = "CHECK_OUT"
)

type VerificationStatus string

const (
	VerificationPassed VerificationStatus = "PASSED"
	VerificationFailed VerificationStatus = "FAILED"
)

// BiometricLog records face enrollment and verification events per guard. The
// single verified REGISTRATION row per guard holds the canonical template
// reference used by every later verification.
type BiometricLog struct {
	ID                        uuid.UUID
	GuardID                   uuid.UUID
	EventType                 BiometricEventType
	RegisteredFaceTemplateURL string
	FaceQualityScore          float64
	VerificationStatus        VerificationStatus
	IsVerified                bool
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}
