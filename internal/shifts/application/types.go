package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/domain"
)

// ShiftLocationAnswer is the internal contract consumed by the attendance
// service. Success and ErrorMessage mirror the request/response envelope so a
// missing shift degrades to an explicit failure on the caller's side.
type ShiftLocationAnswer struct {
	Success      bool              `json:"success"`
	Location     *LocationPayload  `json:"location,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

type LocationPayload struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	ScheduledStart time.Time `json:"scheduled_start_time"`
	ScheduledEnd   time.Time `json:"scheduled_end_time"`
	BreakMinutes   int       `json:"break_minutes"`
}

type ShiftView struct {
	ID                   string    `json:"id"`
	SiteName             string    `json:"site_name"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	ScheduledStart       time.Time `json:"scheduled_start_time"`
	ScheduledEnd         time.Time `json:"scheduled_end_time"`
	BreakMinutes         int       `json:"break_minutes"`
	RequiredGuardsCount  int       `json:"required_guards_count"`
	ConfirmedGuardsCount int       `json:"confirmed_guards_count"`
	CheckedInGuardsCount int       `json:"checked_in_guards_count"`
	Status               string    `json:"status"`
}

func toShiftView(s domain.Shift) ShiftView {
	return ShiftView{
		ID:                   s.ID.String(),
		SiteName:             s.SiteName,
		Latitude:             s.Latitude,
		Longitude:            s.Longitude,
		ScheduledStart:       s.ScheduledStart,
		ScheduledEnd:         s.ScheduledEnd,
		BreakMinutes:         s.BreakMinutes,
		RequiredGuardsCount:  s.RequiredGuardsCount,
		ConfirmedGuardsCount: s.ConfirmedGuardsCount,
		CheckedInGuardsCount: s.CheckedInGuardsCount,
		Status:               string(s.Status),
	}
}

type CancelLeaveCommand struct {
	GuardID uuid.UUID
	From    time.Time
	To      time.Time
	Reason  string
}

type CancelLeaveResponse struct {
	CancelledCount        int      `json:"cancelled_count"`
	CancelledAssignmentIDs []string `json:"cancelled_assignment_ids"`
}
