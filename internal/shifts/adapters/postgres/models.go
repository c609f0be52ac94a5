package postgres

import (
	"time"

	"github.com/google/uuid"
)

type shiftModel struct {
	ShiftID              uuid.UUID `gorm:"column:shift_id;type:uuid;default:gen_random_uuid();primaryKey"`
	SiteName             string    `gorm:"column:site_name"`
	Latitude             float64   `gorm:"column:latitude"`
	Longitude            float64   `gorm:"column:longitude"`
	ScheduledStart       time.Time `gorm:"column:scheduled_start_time"`
	ScheduledEnd         time.Time `gorm:"column:scheduled_end_time"`
	BreakMinutes         int       `gorm:"column:break_minutes"`
	RequiredGuardsCount  int       `gorm:"column:required_guards_count"`
	ConfirmedGuardsCount int       `gorm:"column:confirmed_guards_count"`
	CheckedInGuardsCount int       `gorm:"column:checked_in_guards_count"`
	Status               string    `gorm:"column:status"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (shiftModel) TableName() string { return "shifts" }

type shiftAssignmentModel struct {
	AssignmentID  uuid.UUID  `gorm:"column:assignment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShiftID       uuid.UUID  `gorm:"column:shift_id"`
	GuardID       uuid.UUID  `gorm:"column:guard_id"`
	Status        string     `gorm:"column:status"`
	ConfirmedAt   *time.Time `gorm:"column:confirmed_at"`
	CheckedInAt   *time.Time `gorm:"column:checked_in_at"`
	CheckedOutAt  *time.Time `gorm:"column:checked_out_at"`
	WorkedMinutes int        `gorm:"column:worked_minutes"`
	CancelReason  string     `gorm:"column:cancel_reason"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (shiftAssignmentModel) TableName() string { return "shift_assignments" }

type userRecordModel struct {
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey"`
	Role      string     `gorm:"column:role"`
	Email     string     `gorm:"column:email"`
	FullName  string     `gorm:"column:full_name"`
	Phone     string     `gorm:"column:phone"`
	IsActive  bool       `gorm:"column:is_active"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

func (userRecordModel) TableName() string { return "user_records" }

type scheduleTemplateModel struct {
	TemplateID          uuid.UUID `gorm:"column:template_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID          uuid.UUID `gorm:"column:contract_id"`
	SiteName            string    `gorm:"column:site_name"`
	Latitude            float64   `gorm:"column:latitude"`
	Longitude           float64   `gorm:"column:longitude"`
	StartTime           string    `gorm:"column:start_time"`
	EndTime             string    `gorm:"column:end_time"`
	BreakMinutes        int       `gorm:"column:break_minutes"`
	RequiredGuardsCount int       `gorm:"column:required_guards_count"`
	DaysOfWeek          string    `gorm:"column:days_of_week"`
	ImportedAt          time.Time `gorm:"column:imported_at"`
}

func (scheduleTemplateModel) TableName() string { return "schedule_templates" }

type userSyncAuditModel struct {
	AuditID      uuid.UUID `gorm:"column:audit_id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType    string    `gorm:"column:event_type"`
	UserID       uuid.UUID `gorm:"column:user_id"`
	Status       string    `gorm:"column:status"`
	ErrorMessage string    `gorm:"column:error_message"`
	DurationMs   int64     `gorm:"column:duration_ms"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userSyncAuditModel) TableName() string { return "user_sync_audit" }

type shiftOutboxModel struct {
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

func (shiftOutboxModel) TableName() string { return "shift_outbox" }

type shiftEventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (shiftEventDedupModel) TableName() string { return "shift_event_dedup" }
