package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/domain"
	"github.com/guardpoint/workforce/internal/shifts/ports"
	"gorm.io/gorm"
)

type assignmentRepository struct {
	db *gorm.DB
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ShiftAssignment, error) {
	var rec shiftAssignmentModel
	err := r.db.WithContext(ctx).Where("assignment_id = ?", id).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShiftAssignment{}, domain.ErrNotFound
		}
		return domain.ShiftAssignment{}, err
	}
	return toDomainAssignment(rec), nil
}

// CancelLeaveOverlapping cancels every ASSIGNED/CONFIRMED assignment of the
// guard whose shift window overlaps the leave interval. Counter decrements
// and the per-assignment outbox events commit in the same transaction as the
// cancellations.
func (r *assignmentRepository) CancelLeaveOverlapping(ctx context.Context, params ports.LeaveCancellationParams, eventFn ports.CancelEventFn) ([]domain.ShiftAssignment, error) {
	var cancelled []domain.ShiftAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []shiftAssignmentModel
		err := tx.
			Joins("JOIN shifts ON shifts.shift_id = shift_assignments.shift_id").
			Where("shift_assignments.guard_id = ?", params.GuardID).
			Where("shift_assignments.status IN ?", []string{
				string(domain.AssignmentAssigned),
				string(domain.AssignmentConfirmed),
			}).
			Where("shifts.scheduled_start_time < ? AND shifts.scheduled_end_time > ?", params.To, params.From).
			Find(&rows).Error
		if err != nil {
			return err
		}

		for _, row := range rows {
			wasConfirmed := row.Status == string(domain.AssignmentConfirmed)
			res := tx.Model(&shiftAssignmentModel{}).
				Where("assignment_id = ? AND status = ?", row.AssignmentID, row.Status).
				Updates(map[string]any{
					"status":        string(domain.AssignmentCancelled),
					"cancel_reason": params.Reason,
					"updated_at":    params.Now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Lost a race with another state change; skip this row.
				continue
			}
			if wasConfirmed {
				if err := tx.Model(&shiftModel{}).
					Where("shift_id = ? AND confirmed_guards_count > 0", row.ShiftID).
					Updates(map[string]any{
						"confirmed_guards_count": gorm.Expr("confirmed_guards_count - 1"),
						"updated_at":             params.Now,
					}).Error; err != nil {
					return err
				}
			}

			row.Status = string(domain.AssignmentCancelled)
			row.CancelReason = params.Reason
			row.UpdatedAt = params.Now
			assignment := toDomainAssignment(row)

			event, eventErr := eventFn(assignment)
			if eventErr != nil {
				return eventErr
			}
			if err := enqueueOutbox(tx, event); err != nil {
				return err
			}
			cancelled = append(cancelled, assignment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ApplyCheckIn transitions the assignment to CHECKED_IN conditionally on
// checked_in_at still being empty, then bumps the shift counters only when
// that update touched a row. Redelivered events therefore cannot double
// count.
func (r *assignmentRepository) ApplyCheckIn(ctx context.Context, params ports.CheckInApplyParams) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&shiftAssignmentModel{}).
			Where("assignment_id = ? AND checked_in_at IS NULL", params.AssignmentID).
			Updates(map[string]any{
				"status":        string(domain.AssignmentCheckedIn),
				"checked_in_at": params.CheckInTime,
				"updated_at":    params.CheckInTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if err := tx.Model(&shiftModel{}).
			Where("shift_id = ?", params.ShiftID).
			Updates(map[string]any{
				"checked_in_guards_count": gorm.Expr("checked_in_guards_count + 1"),
				"updated_at":              params.CheckInTime,
			}).Error; err != nil {
			return err
		}

		// Checking in implies confirmation; the confirmed counter follows the
		// same affected-row guard.
		res = tx.Model(&shiftAssignmentModel{}).
			Where("assignment_id = ? AND confirmed_at IS NULL", params.AssignmentID).
			Update("confirmed_at", params.ConfirmedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := tx.Model(&shiftModel{}).
				Where("shift_id = ?", params.ShiftID).
				Updates(map[string]any{
					"confirmed_guards_count": gorm.Expr("confirmed_guards_count + 1"),
					"updated_at":             params.CheckInTime,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return applied, err
}

// ApplyCheckOut closes the assignment with the worked minutes carried by the
// event, conditional on checked_out_at still being empty.
func (r *assignmentRepository) ApplyCheckOut(ctx context.Context, params ports.CheckOutApplyParams) (bool, error) {
	res := r.db.WithContext(ctx).Model(&shiftAssignmentModel{}).
		Where("assignment_id = ? AND checked_out_at IS NULL", params.AssignmentID).
		Updates(map[string]any{
			"status":         string(domain.AssignmentCompleted),
			"checked_out_at": params.CheckOutTime,
			"worked_minutes": params.WorkedMinutes,
			"updated_at":     params.CheckOutTime,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

var _ ports.AssignmentRepository = (*assignmentRepository)(nil)
