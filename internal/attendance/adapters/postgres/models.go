package postgres

import (
	"time"

	"github.com/google/uuid"
)

type attendanceModel struct {
	AttendanceID      uuid.UUID `gorm:"column:attendance_id;type:uuid;default:gen_random_uuid();primaryKey"`
	GuardID           uuid.UUID `gorm:"column:guard_id"`
	ShiftAssignmentID uuid.UUID `gorm:"column:shift_assignment_id"`
	ShiftID           uuid.UUID `gorm:"column:shift_id"`
	Status            string    `gorm:"column:status"`

	CheckInTime           *time.Time `gorm:"column:check_in_time"`
	CheckInLatitude       *float64   `gorm:"column:check_in_latitude"`
	CheckInLongitude      *float64   `gorm:"column:check_in_longitude"`
	CheckInAccuracy       *float64   `gorm:"column:check_in_accuracy"`
	CheckInDistanceMeters *float64   `gorm:"column:check_in_distance_meters"`
	CheckInFaceScore      *float64   `gorm:"column:check_in_face_score"`
	CheckInImageURL       string     `gorm:"column:check_in_image_url"`
	IsLate                bool       `gorm:"column:is_late"`
	LateMinutes           int        `gorm:"column:late_minutes"`

	CheckOutTime           *time.Time `gorm:"column:check_out_time"`
	CheckOutLatitude       *float64   `gorm:"column:check_out_latitude"`
	CheckOutLongitude      *float64   `gorm:"column:check_out_longitude"`
	CheckOutAccuracy       *float64   `gorm:"column:check_out_accuracy"`
	CheckOutDistanceMeters *float64   `gorm:"column:check_out_distance_meters"`
	CheckOutFaceScore      *float64   `gorm:"column:check_out_face_score"`
	CheckOutImageURL       string     `gorm:"column:check_out_image_url"`

	ActualWorkDurationMinutes int     `gorm:"column:actual_work_duration_minutes"`
	BreakDurationMinutes      int     `gorm:"column:break_duration_minutes"`
	NetWorkMinutes            int     `gorm:"column:net_work_minutes"`
	TotalHours                float64 `gorm:"column:total_hours"`
	IsEarlyLeave              bool    `gorm:"column:is_early_leave"`
	EarlyLeaveMinutes         int     `gorm:"column:early_leave_minutes"`
	HasOvertime               bool    `gorm:"column:has_overtime"`
	OvertimeMinutes           int     `gorm:"column:overtime_minutes"`

	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

func (attendanceModel) TableName() string { return "attendances" }

type biometricLogModel struct {
	BiometricLogID            uuid.UUID `gorm:"column:biometric_log_id;type:uuid;default:gen_random_uuid();primaryKey"`
	GuardID                   uuid.UUID `gorm:"column:guard_id"`
	EventType                 string    `gorm:"column:event_type"`
	RegisteredFaceTemplateURL string    `gorm:"column:registered_face_template_url"`
	FaceQualityScore          float64   `gorm:"column:face_quality_score"`
	VerificationStatus        string    `gorm:"column:verification_status"`
	IsVerified                bool      `gorm:"column:is_verified"`
	CreatedAt                 time.Time `gorm:"column:created_at"`
	UpdatedAt                 time.Time `gorm:"column:updated_at"`
}

func (biometricLogModel) TableName() string { return "biometric_logs" }

type attendanceOutboxModel struct {
	OutboxID      uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType     string     `gorm:"column:event_type"`
	PartitionKey  string     `gorm:"column:partition_key"`
	Payload       string     `gorm:"column:payload"`
	SchemaVersion string     `gorm:"column:schema_version"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	FirstSeenAt   time.Time  `gorm:"column:first_seen_at"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	RetryCount    int        `gorm:"column:retry_count"`
	LastError     *string    `gorm:"column:last_error"`
	LastErrorAt   *time.Time `gorm:"column:last_error_at"`
}

func (attendanceOutboxModel) TableName() string { return "attendance_outbox" }

type attendanceEventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (attendanceEventDedupModel) TableName() string { return "attendance_event_dedup" }
