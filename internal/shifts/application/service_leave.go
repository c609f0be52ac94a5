package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/eventbus"
	"github.com/guardpoint/workforce/internal/shifts/domain"
	"github.com/guardpoint/workforce/internal/shifts/ports"
)

type assignmentCancelledEventData struct {
	ShiftAssignmentID string    `json:"shift_assignment_id"`
	ShiftID           string    `json:"shift_id"`
	GuardID           string    `json:"guard_id"`
	Reason            string    `json:"reason"`
	CancelledAt       time.Time `json:"cancelled_at"`
}

// CancelLeave cancels every still-active assignment of the guard that
// overlaps the leave window. The cancellations, the shift counter
// decrements, and the fan-out of one cancellation event per assignment all
// commit in a single transaction.
func (s *Service) CancelLeave(ctx context.Context, cmd CancelLeaveCommand) (CancelLeaveResponse, error) {
	if cmd.GuardID == uuid.Nil {
		return CancelLeaveResponse{}, domain.InvalidInput("guard_id is required")
	}
	if cmd.From.IsZero() || cmd.To.IsZero() {
		return CancelLeaveResponse{}, domain.InvalidInput("leave window is required")
	}
	if !cmd.To.After(cmd.From) {
		return CancelLeaveResponse{}, domain.InvalidInput("leave end must be after leave start")
	}

	now := s.nowFn()
	cancelled, err := s.assignments.CancelLeaveOverlapping(ctx, ports.LeaveCancellationParams{
		GuardID: cmd.GuardID,
		From:    cmd.From,
		To:      cmd.To,
		Reason:  cmd.Reason,
		Now:     now,
	}, func(assignment domain.ShiftAssignment) (eventbus.OutboxEvent, error) {
		return s.buildOutboxEvent(eventbus.EventAssignmentCancelled, assignment.GuardID.String(), now, assignmentCancelledEventData{
			ShiftAssignmentID: assignment.ID.String(),
			ShiftID:           assignment.ShiftID.String(),
			GuardID:           assignment.GuardID.String(),
			Reason:            cmd.Reason,
			CancelledAt:       now,
		})
	})
	if err != nil {
		return CancelLeaveResponse{}, err
	}

	resp := CancelLeaveResponse{CancelledCount: len(cancelled)}
	for _, assignment := range cancelled {
		resp.CancelledAssignmentIDs = append(resp.CancelledAssignmentIDs, assignment.ID.String())
	}
	s.logger.InfoContext(ctx, "leave cancellation applied",
		"module", "shifts",
		"layer", "application",
		"operation", "cancel_leave",
		"outcome", "success",
		"guard_id", cmd.GuardID,
		"cancelled_count", resp.CancelledCount,
	)
	return resp, nil
}

func (s *Service) buildOutboxEvent(eventType, partitionKey string, occurredAt time.Time, data any) (eventbus.OutboxEvent, error) {
	env, payload, err := eventbus.NewEnvelope(eventType, s.cfg.ServiceName, partitionKey, occurredAt, data)
	if err != nil {
		return eventbus.OutboxEvent{}, err
	}
	eventID, err := uuid.Parse(env.EventID)
	if err != nil {
		eventID = uuid.New()
	}
	return eventbus.OutboxEvent{
		EventID:       eventID,
		EventType:     eventType,
		PartitionKey:  partitionKey,
		Payload:       payload,
		OccurredAt:    occurredAt,
		SchemaVersion: env.SchemaVersion,
	}, nil
}
