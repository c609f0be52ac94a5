package postgres

import (
	"context"

	"github.com/guardpoint/workforce/internal/shifts/ports"
	"gorm.io/gorm"
)

type syncAuditRepository struct {
	db *gorm.DB
}

func (r *syncAuditRepository) Append(ctx context.Context, params ports.SyncAuditParams) error {
	rec := userSyncAuditModel{
		EventType:    params.EventType,
		UserID:       params.UserID,
		Status:       string(params.Status),
		ErrorMessage: params.ErrorMessage,
		DurationMs:   params.DurationMs,
		CreatedAt:    params.Now,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

var _ ports.SyncAuditRepository = (*syncAuditRepository)(nil)
