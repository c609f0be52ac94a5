package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/eventbus"
	"github.com/guardpoint/workforce/internal/shifts/domain"
	"github.com/guardpoint/workforce/internal/shifts/ports"
)

type checkedInEventData struct {
	GuardID           string    `json:"guard_id"`
	ShiftAssignmentID string    `json:"shift_assignment_id"`
	ShiftID           string    `json:"shift_id"`
	CheckInTime       time.Time `json:"check_in_time"`
	ConfirmedAt       time.Time `json:"confirmed_at"`
	IsLate            bool      `json:"is_late"`
	LateMinutes       int       `json:"late_minutes"`
}

// HandleCheckedIn marks the assignment checked in and bumps the shift
// counters. The assignment update is conditional on checked_in_at still
// being empty; a redelivered event affects zero rows and the counters stay
// untouched.
func (s *Service) HandleCheckedIn(ctx context.Context, payload []byte) error {
	env, err := eventbus.DecodeEnvelope(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, env.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}

	var data checkedInEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("%w: invalid %s payload", domain.ErrInvalidInput, env.EventType)
	}
	assignmentID, err := uuid.Parse(data.ShiftAssignmentID)
	if err != nil {
		return fmt.Errorf("%w: invalid shift_assignment_id", domain.ErrInvalidInput)
	}
	shiftID, err := uuid.Parse(data.ShiftID)
	if err != nil {
		return fmt.Errorf("%w: invalid shift_id", domain.ErrInvalidInput)
	}

	confirmedAt := data.ConfirmedAt
	if confirmedAt.IsZero() {
		confirmedAt = data.CheckInTime
	}
	applied, err := s.assignments.ApplyCheckIn(ctx, ports.CheckInApplyParams{
		AssignmentID: assignmentID,
		ShiftID:      shiftID,
		CheckInTime:  data.CheckInTime,
		ConfirmedAt:  confirmedAt,
	})
	if err != nil {
		return err
	}
	if !applied {
		s.logger.InfoContext(ctx, "check-in already applied",
			"module", "shifts",
			"layer", "application",
			"operation", "handle_checked_in",
			"outcome", "noop",
			"shift_assignment_id", assignmentID,
		)
	}
	_ = s.eventDedup.MarkProcessed(ctx, env.EventID, env.EventType, s.nowFn().Add(s.cfg.EventDedupTTL))
	return nil
}

type checkedOutEventData struct {
	GuardID           string    `json:"guard_id"`
	ShiftAssignmentID string    `json:"shift_assignment_id"`
	ShiftID           string    `json:"shift_id"`
	CheckOutTime      time.Time `json:"check_out_time"`
	NetWorkMinutes    int       `json:"net_work_minutes"`
}

// HandleCheckedOut closes out the assignment with the worked minutes the
// attendance service already computed. Nothing is recomputed here; the event
// is the source of truth.
func (s *Service) HandleCheckedOut(ctx context.Context, payload []byte) error {
	env, err := eventbus.DecodeEnvelope(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, env.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}

	var data checkedOutEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("%w: invalid %s payload", domain.ErrInvalidInput, env.EventType)
	}
	assignmentID, err := uuid.Parse(data.ShiftAssignmentID)
	if err != nil {
		return fmt.Errorf("%w: invalid shift_assignment_id", domain.ErrInvalidInput)
	}
	shiftID, err := uuid.Parse(data.ShiftID)
	if err != nil {
		return fmt.Errorf("%w: invalid shift_id", domain.ErrInvalidInput)
	}

	if _, err := s.assignments.ApplyCheckOut(ctx, ports.CheckOutApplyParams{
		AssignmentID:  assignmentID,
		ShiftID:       shiftID,
		CheckOutTime:  data.CheckOutTime,
		WorkedMinutes: data.NetWorkMinutes,
	}); err != nil {
		return err
	}
	_ = s.eventDedup.MarkProcessed(ctx, env.EventID, env.EventType, s.nowFn().Add(s.cfg.EventDedupTTL))
	return nil
}

type userEventData struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// HandleUserUpserted serves both user.created and user.updated: the cache
// row is keyed by user id, so an upsert covers both cases.
func (s *Service) HandleUserUpserted(ctx context.Context, payload []byte) error {
	return s.syncUser(ctx, payload, func(ctx context.Context, data userEventData, userID uuid.UUID) error {
		role := domain.RoleGuard
		if data.Role == string(domain.RoleManager) {
			role = domain.RoleManager
		}
		return s.personnel.Upsert(ctx, ports.UserRecordParams{
			UserID:   userID,
			Email:    data.Email,
			FullName: data.FullName,
			Phone:    data.Phone,
			Role:     role,
			Now:      s.nowFn(),
		})
	})
}

func (s *Service) HandleUserDeleted(ctx context.Context, payload []byte) error {
	return s.syncUser(ctx, payload, func(ctx context.Context, _ userEventData, userID uuid.UUID) error {
		_, err := s.personnel.SoftDelete(ctx, userID, s.nowFn())
		return err
	})
}

// syncUser runs the shared user.* consumption skeleton: envelope decode,
// dedup, the role-specific apply, and a sync-audit row recording outcome and
// duration regardless of success.
func (s *Service) syncUser(ctx context.Context, payload []byte, apply func(context.Context, userEventData, uuid.UUID) error) error {
	started := s.nowFn()
	env, err := eventbus.DecodeEnvelope(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, env.EventID, started)
	if err != nil {
		return err
	}
	if dup {
		return nil
	}

	var data userEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("%w: invalid %s payload", domain.ErrInvalidInput, env.EventType)
	}
	userID, err := uuid.Parse(data.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user_id", domain.ErrInvalidInput)
	}

	applyErr := apply(ctx, data, userID)
	s.auditUserSync(ctx, env.EventType, userID, applyErr, started)
	if applyErr != nil {
		return applyErr
	}
	_ = s.eventDedup.MarkProcessed(ctx, env.EventID, env.EventType, s.nowFn().Add(s.cfg.EventDedupTTL))
	return nil
}

func (s *Service) auditUserSync(ctx context.Context, eventType string, userID uuid.UUID, applyErr error, started time.Time) {
	params := ports.SyncAuditParams{
		EventType:  eventType,
		UserID:     userID,
		Status:     domain.SyncSuccess,
		DurationMs: s.nowFn().Sub(started).Milliseconds(),
		Now:        s.nowFn(),
	}
	if applyErr != nil {
		params.Status = domain.SyncFailed
		params.ErrorMessage = applyErr.Error()
	}
	if err := s.syncAudit.Append(ctx, params); err != nil {
		s.logger.WarnContext(ctx, "sync audit append failed",
			"module", "shifts",
			"layer", "application",
			"operation", "audit_user_sync",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}

type contractActivatedEventData struct {
	ContractID string `json:"contract_id"`
	Templates  []struct {
		SiteName            string  `json:"site_name"`
		Latitude            float64 `json:"latitude"`
		Longitude           float64 `json:"longitude"`
		StartTime           string  `json:"start_time"`
		EndTime             string  `json:"end_time"`
		BreakMinutes        int     `json:"break_minutes"`
		RequiredGuardsCount int     `json:"required_guards_count"`
		DaysOfWeek          string  `json:"days_of_week"`
	} `json:"templates"`
}

// HandleContractActivated imports the contract's schedule templates. Errors
// propagate to the worker so the bounded retry and dead-letter path apply;
// losing a template import silently would starve shift generation.
func (s *Service) HandleContractActivated(ctx context.Context, payload []byte) error {
	env, err := eventbus.DecodeEnvelope(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, env.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}

	var data contractActivatedEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("%w: invalid %s payload", domain.ErrInvalidInput, env.EventType)
	}
	contractID, err := uuid.Parse(data.ContractID)
	if err != nil {
		return fmt.Errorf("%w: invalid contract_id", domain.ErrInvalidInput)
	}

	templates := make([]ports.TemplateImport, 0, len(data.Templates))
	for _, t := range data.Templates {
		templates = append(templates, ports.TemplateImport{
			SiteName:            t.SiteName,
			Latitude:            t.Latitude,
			Longitude:           t.Longitude,
			StartTime:           t.StartTime,
			EndTime:             t.EndTime,
			BreakMinutes:        t.BreakMinutes,
			RequiredGuardsCount: t.RequiredGuardsCount,
			DaysOfWeek:          t.DaysOfWeek,
		})
	}
	imported, err := s.templates.ImportForContract(ctx, contractID, templates, s.nowFn())
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "schedule templates imported",
		"module", "shifts",
		"layer", "application",
		"operation", "handle_contract_activated",
		"outcome", "success",
		"contract_id", contractID,
		"imported", imported,
	)
	_ = s.eventDedup.MarkProcessed(ctx, env.EventID, env.EventType, s.nowFn().Add(s.cfg.EventDedupTTL))
	return nil
}

type deactivateEventData struct {
	GuardID   string `json:"guard_id,omitempty"`
	ManagerID string `json:"manager_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (s *Service) HandleDeactivateGuard(ctx context.Context, payload []byte) error {
	return s.deactivate(ctx, payload, domain.RoleGuard)
}

func (s *Service) HandleDeactivateManager(ctx context.Context, payload []byte) error {
	return s.deactivate(ctx, payload, domain.RoleManager)
}

// deactivate resolves the variant key once at the boundary: a usable ID wins,
// otherwise the email is the lookup key. A record that matches neither is
// logged and swallowed; retrying cannot make it appear.
func (s *Service) deactivate(ctx context.Context, payload []byte, role domain.UserRole) error {
	env, err := eventbus.DecodeEnvelope(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, env.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}

	var data deactivateEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("%w: invalid %s payload", domain.ErrInvalidInput, env.EventType)
	}
	rawID := data.GuardID
	if role == domain.RoleManager {
		rawID = data.ManagerID
	}
	userID, _ := uuid.Parse(rawID)

	var found bool
	switch {
	case userID != uuid.Nil:
		found, err = s.personnel.DeactivateByID(ctx, role, userID, s.nowFn())
	case data.Email != "":
		found, err = s.personnel.DeactivateByEmail(ctx, role, data.Email, s.nowFn())
	default:
		return fmt.Errorf("%w: deactivate event carries neither id nor email", domain.ErrInvalidInput)
	}
	if err != nil {
		return err
	}
	if !found {
		s.logger.WarnContext(ctx, "deactivation target not found",
			"module", "shifts",
			"layer", "application",
			"operation", "deactivate",
			"outcome", "noop",
			"role", role,
			"user_id", rawID,
			"email", data.Email,
		)
	}
	_ = s.eventDedup.MarkProcessed(ctx, env.EventID, env.EventType, s.nowFn().Add(s.cfg.EventDedupTTL))
	return nil
}
