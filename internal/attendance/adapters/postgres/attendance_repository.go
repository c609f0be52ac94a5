package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/attendance/ports"
	"github.com/guardpoint/workforce/internal/eventbus"
	"gorm.io/gorm"
)

type attendanceRepository struct {
	db *gorm.DB
}

func (r *attendanceRepository) GetByAssignment(ctx context.Context, guardID, shiftAssignmentID, shiftID uuid.UUID) (domain.AttendanceRecord, error) {
	var rec attendanceModel
	err := r.db.WithContext(ctx).
		Where("guard_id = ? AND shift_assignment_id = ? AND shift_id = ? AND deleted_at IS NULL",
			guardID, shiftAssignmentID, shiftID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AttendanceRecord{}, domain.ErrNotFound
		}
		return domain.AttendanceRecord{}, err
	}
	return toDomainAttendance(rec), nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.AttendanceRecord, error) {
	var rec attendanceModel
	err := r.db.WithContext(ctx).
		Where("attendance_id = ? AND deleted_at IS NULL", id).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AttendanceRecord{}, domain.ErrNotFound
		}
		return domain.AttendanceRecord{}, err
	}
	return toDomainAttendance(rec), nil
}

// ApplyCheckIn writes the CHECKED_IN record and its outbox row in one
// transaction. A pre-seeded PENDING row is promoted in place; otherwise the
// row is created here. The partial unique index on the triple turns a lost
// create race into ErrConflict.
func (r *attendanceRepository) ApplyCheckIn(ctx context.Context, params ports.CheckInRecordParams, event eventbus.OutboxEvent) (domain.AttendanceRecord, error) {
	var out attendanceModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&attendanceModel{}).
			Where("guard_id = ? AND shift_assignment_id = ? AND shift_id = ? AND status = ? AND deleted_at IS NULL",
				params.GuardID, params.ShiftAssignmentID, params.ShiftID, string(domain.StatusPending)).
			Updates(checkInColumns(params))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			rec := attendanceModel{
				GuardID:           params.GuardID,
				ShiftAssignmentID: params.ShiftAssignmentID,
				ShiftID:           params.ShiftID,
				CreatedAt:         params.CheckInTime,
			}
			applyCheckInFields(&rec, params)
			if err := tx.Create(&rec).Error; err != nil {
				if isUniqueViolation(err) {
					return domain.ErrConflict
				}
				return err
			}
		}
		if err := tx.
			Where("guard_id = ? AND shift_assignment_id = ? AND shift_id = ? AND deleted_at IS NULL",
				params.GuardID, params.ShiftAssignmentID, params.ShiftID).
			Take(&out).Error; err != nil {
			return err
		}
		return enqueueOutbox(tx, event)
	})
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	return toDomainAttendance(out), nil
}

// ApplyCheckOut performs the conditional CHECKED_IN -> CHECKED_OUT update and
// verifies the affected row count before the outbox enqueue commits. Zero
// rows means a concurrent check-out already won.
func (r *attendanceRepository) ApplyCheckOut(ctx context.Context, params ports.CheckOutRecordParams, event eventbus.OutboxEvent) (domain.AttendanceRecord, error) {
	var out attendanceModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&attendanceModel{}).
			Where("attendance_id = ? AND status = ? AND deleted_at IS NULL",
				params.RecordID, string(domain.StatusCheckedIn)).
			Updates(map[string]any{
				"status":                       string(domain.StatusCheckedOut),
				"check_out_time":               params.CheckOutTime,
				"check_out_latitude":           params.Latitude,
				"check_out_longitude":          params.Longitude,
				"check_out_accuracy":           params.Accuracy,
				"check_out_distance_meters":    params.DistanceMeters,
				"check_out_face_score":         params.FaceScore,
				"check_out_image_url":          params.ImageURL,
				"actual_work_duration_minutes": params.Summary.ActualWorkMinutes,
				"net_work_minutes":             params.Summary.NetWorkMinutes,
				"total_hours":                  params.Summary.TotalHours,
				"is_early_leave":               params.Summary.IsEarlyLeave,
				"early_leave_minutes":          params.Summary.EarlyLeaveMinutes,
				"has_overtime":                 params.Summary.HasOvertime,
				"overtime_minutes":             params.Summary.OvertimeMinutes,
				"updated_at":                   params.CheckOutTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrStateConflict
		}
		if err := tx.Where("attendance_id = ?", params.RecordID).Take(&out).Error; err != nil {
			return err
		}
		return enqueueOutbox(tx, event)
	})
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	return toDomainAttendance(out), nil
}

func (r *attendanceRepository) MarkIncomplete(ctx context.Context, id uuid.UUID, at time.Time) (domain.AttendanceRecord, error) {
	res := r.db.WithContext(ctx).Model(&attendanceModel{}).
		Where("attendance_id = ? AND status = ? AND deleted_at IS NULL", id, string(domain.StatusCheckedIn)).
		Updates(map[string]any{
			"status":     string(domain.StatusIncomplete),
			"updated_at": at,
		})
	if res.Error != nil {
		return domain.AttendanceRecord{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.AttendanceRecord{}, domain.ErrStateConflict
	}
	return r.GetByID(ctx, id)
}

func (r *attendanceRepository) SoftDeletePendingByAssignment(ctx context.Context, shiftAssignmentID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&attendanceModel{}).
		Where("shift_assignment_id = ? AND status = ? AND deleted_at IS NULL",
			shiftAssignmentID, string(domain.StatusPending)).
		Updates(map[string]any{
			"deleted_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func checkInColumns(params ports.CheckInRecordParams) map[string]any {
	return map[string]any{
		"status":                   string(domain.StatusCheckedIn),
		"check_in_time":            params.CheckInTime,
		"check_in_latitude":        params.Latitude,
		"check_in_longitude":       params.Longitude,
		"check_in_accuracy":        params.Accuracy,
		"check_in_distance_meters": params.DistanceMeters,
		"check_in_face_score":      params.FaceScore,
		"check_in_image_url":       params.ImageURL,
		"is_late":                  params.IsLate,
		"late_minutes":             params.LateMinutes,
		"break_duration_minutes":   params.BreakMinutes,
		"updated_at":               params.CheckInTime,
	}
}

func applyCheckInFields(rec *attendanceModel, params ports.CheckInRecordParams) {
	rec.Status = string(domain.StatusCheckedIn)
	rec.CheckInTime = &params.CheckInTime
	rec.CheckInLatitude = &params.Latitude
	rec.CheckInLongitude = &params.Longitude
	rec.CheckInAccuracy = params.Accuracy
	rec.CheckInDistanceMeters = &params.DistanceMeters
	rec.CheckInFaceScore = &params.FaceScore
	rec.CheckInImageURL = params.ImageURL
	rec.IsLate = params.IsLate
	rec.LateMinutes = params.LateMinutes
	rec.BreakDurationMinutes = params.BreakMinutes
	rec.UpdatedAt = params.CheckInTime
}
