package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
)

type Config struct {
	ServiceName          string
	GeofenceRadiusMeters float64
	MinFaceQuality       float64
	MinMatchConfidence   float64
	TemplateCacheTTL     time.Duration
	VerifyAttemptLimit   int
	VerifyAttemptWindow  time.Duration
	EventDedupTTL        time.Duration
}

type CheckInCommand struct {
	GuardID           uuid.UUID
	ShiftAssignmentID uuid.UUID
	ShiftID           uuid.UUID
	Latitude          float64
	Longitude         float64
	Accuracy          *float64
	Image             []byte
	ImageContentType  string
}

type CheckOutCommand = CheckInCommand

// Rejection codes returned in the outcome of the check-in/check-out workflows.
const (
	RejectDuplicateCheckIn      = "DUPLICATE_CHECK_IN"
	RejectNoBiometricTemplate   = "NO_BIOMETRIC_TEMPLATE"
	RejectVerificationUnavail   = "FACE_VERIFICATION_UNAVAILABLE"
	RejectFaceNotDetected       = "FACE_NOT_DETECTED"
	RejectLowFaceQuality        = "LOW_FACE_QUALITY"
	RejectLowMatchConfidence    = "LOW_MATCH_CONFIDENCE"
	RejectLocationUnavailable   = "LOCATION_UNAVAILABLE"
	RejectOutsideGeofence       = "OUTSIDE_GEOFENCE"
	RejectEvidenceUploadFailed  = "EVIDENCE_UPLOAD_FAILED"
	RejectNoCheckIn             = "NO_CHECK_IN"
	RejectAlreadyCheckedOut     = "ALREADY_CHECKED_OUT"
	RejectInvalidState          = "INVALID_STATE"
	RejectMissingCheckInTime    = "MISSING_CHECK_IN_TIME"
)

// AttendanceOutcome is the terminal result of a check-in or check-out attempt.
// Rejections carry the raw signals gathered before the failing step so support
// can explain the refusal to the guard.
type AttendanceOutcome struct {
	Accepted         bool             `json:"accepted"`
	Code             string           `json:"code,omitempty"`
	Message          string           `json:"message,omitempty"`
	FaceMatchScore   *float64         `json:"face_match_score,omitempty"`
	DistanceFromSite *float64         `json:"distance_from_site,omitempty"`
	Record           *AttendanceView  `json:"record,omitempty"`
}

func reject(code, message string) AttendanceOutcome {
	return AttendanceOutcome{Code: code, Message: message}
}

type AttendanceView struct {
	ID                string     `json:"id"`
	GuardID           string     `json:"guard_id"`
	ShiftAssignmentID string     `json:"shift_assignment_id"`
	ShiftID           string     `json:"shift_id"`
	Status            string     `json:"status"`
	CheckInTime       *time.Time `json:"check_in_time,omitempty"`
	CheckInImageURL   string     `json:"check_in_image_url,omitempty"`
	IsLate            bool       `json:"is_late,omitempty"`
	LateMinutes       int        `json:"late_minutes,omitempty"`
	CheckOutTime      *time.Time `json:"check_out_time,omitempty"`
	CheckOutImageURL  string     `json:"check_out_image_url,omitempty"`

	ActualWorkDurationMinutes int     `json:"actual_work_duration_minutes,omitempty"`
	BreakDurationMinutes      int     `json:"break_duration_minutes,omitempty"`
	NetWorkMinutes            int     `json:"net_work_minutes,omitempty"`
	TotalHours                float64 `json:"total_hours,omitempty"`
	IsEarlyLeave              bool    `json:"is_early_leave,omitempty"`
	EarlyLeaveMinutes         int     `json:"early_leave_minutes,omitempty"`
	HasOvertime               bool    `json:"has_overtime,omitempty"`
	OvertimeMinutes           int     `json:"overtime_minutes,omitempty"`
}

func toAttendanceView(rec domain.AttendanceRecord) *AttendanceView {
	return &AttendanceView{
		ID:                rec.ID.String(),
		GuardID:           rec.GuardID.String(),
		ShiftAssignmentID: rec.ShiftAssignmentID.String(),
		ShiftID:           rec.ShiftID.String(),
		Status:            string(rec.Status),
		CheckInTime:       rec.CheckInTime,
		CheckInImageURL:   rec.CheckInImageURL,
		IsLate:            rec.IsLate,
		LateMinutes:       rec.LateMinutes,
		CheckOutTime:      rec.CheckOutTime,
		CheckOutImageURL:  rec.CheckOutImageURL,

		ActualWorkDurationMinutes: rec.ActualWorkDurationMinutes,
		BreakDurationMinutes:      rec.BreakDurationMinutes,
		NetWorkMinutes:            rec.NetWorkMinutes,
		TotalHours:                rec.TotalHours,
		IsEarlyLeave:              rec.IsEarlyLeave,
		EarlyLeaveMinutes:         rec.EarlyLeaveMinutes,
		HasOvertime:               rec.HasOvertime,
		OvertimeMinutes:           rec.OvertimeMinutes,
	}
}

type PoseImage struct {
	ImageBase64 string  `json:"image_base64"`
	PoseType    string  `json:"pose_type"`
	Angle       float64 `json:"angle,omitempty"`
}

type RegisterFacesCommand struct {
	GuardID uuid.UUID
	Images  []PoseImage
}

type FaceRegistrationResponse struct {
	GuardID        string    `json:"guard_id"`
	TemplateURL    string    `json:"template_url"`
	AverageQuality float64   `json:"average_quality"`
	QualityScores  []float64 `json:"quality_scores,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
}
