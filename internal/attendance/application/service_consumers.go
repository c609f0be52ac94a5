package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/eventbus"
)

type assignmentCancelledEventData struct {
	ShiftAssignmentID string `json:"shift_assignment_id"`
	ShiftID           string `json:"shift_id"`
	GuardID           string `json:"guard_id"`
	Reason            string `json:"reason,omitempty"`
}

// HandleAssignmentCancelled soft-deletes a still-pending attendance record
// when the Shifts service cancels the underlying assignment. Records already
// checked in are left for manual ops to resolve.
func (s *Service) HandleAssignmentCancelled(ctx context.Context, payload []byte) error {
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

	var data assignmentCancelledEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("%w: invalid %s payload", domain.ErrInvalidInput, env.EventType)
	}
	assignmentID, err := uuid.Parse(data.ShiftAssignmentID)
	if err != nil {
		return fmt.Errorf("%w: invalid shift_assignment_id", domain.ErrInvalidInput)
	}

	if _, err := s.records.SoftDeletePendingByAssignment(ctx, assignmentID, s.nowFn()); err != nil {
		return err
	}
	_ = s.eventDedup.MarkProcessed(ctx, env.EventID, env.EventType, s.nowFn().Add(s.cfg.EventDedupTTL))
	return nil
}
