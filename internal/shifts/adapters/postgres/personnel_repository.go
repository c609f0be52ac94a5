package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/domain"
	"github.com/guardpoint/workforce/internal/shifts/ports"
	"gorm.io/gorm"
)

type personnelRepository struct {
	db *gorm.DB
}

func (r *personnelRepository) Upsert(ctx context.Context, params ports.UserRecordParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userRecordModel{}).
			Where("user_id = ?", params.UserID).
			Updates(map[string]any{
				"role":       string(params.Role),
				"email":      params.Email,
				"full_name":  params.FullName,
				"phone":      params.Phone,
				"is_active":  true,
				"deleted_at": nil,
				"updated_at": params.Now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&userRecordModel{
			UserID:    params.UserID,
			Role:      string(params.Role),
			Email:     params.Email,
			FullName:  params.FullName,
			Phone:     params.Phone,
			IsActive:  true,
			CreatedAt: params.Now,
			UpdatedAt: params.Now,
		}).Error
	})
}

func (r *personnelRepository) SoftDelete(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&userRecordModel{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Updates(map[string]any{
			"is_active":  false,
			"deleted_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *personnelRepository) DeactivateByID(ctx context.Context, role domain.UserRole, userID uuid.UUID, now time.Time) (bool, error) {
	return r.deactivate(ctx, role, "user_id = ?", userID, now)
}

func (r *personnelRepository) DeactivateByEmail(ctx context.Context, role domain.UserRole, email string, now time.Time) (bool, error) {
	return r.deactivate(ctx, role, "email = ?", email, now)
}

func (r *personnelRepository) deactivate(ctx context.Context, role domain.UserRole, cond string, arg any, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&userRecordModel{}).
		Where(cond, arg).
		Where("role = ? AND deleted_at IS NULL", string(role)).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

var _ ports.PersonnelRepository = (*personnelRepository)(nil)
