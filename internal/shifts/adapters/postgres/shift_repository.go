package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/domain"
	"github.com/guardpoint/workforce/internal/shifts/ports"
	"gorm.io/gorm"
)

type shiftRepository struct {
	db *gorm.DB
}

func (r *shiftRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Shift, error) {
	var rec shiftModel
	err := r.db.WithContext(ctx).Where("shift_id = ?", id).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Shift{}, domain.ErrNotFound
		}
		return domain.Shift{}, err
	}
	return toDomainShift(rec), nil
}

var _ ports.ShiftRepository = (*shiftRepository)(nil)
