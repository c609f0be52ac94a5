package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/ports"
	"gorm.io/gorm"
)

type templateRepository struct {
	db *gorm.DB
}

// ImportForContract replaces the contract's template set. Re-activation of
// the same contract re-imports cleanly instead of accumulating duplicates.
func (r *templateRepository) ImportForContract(ctx context.Context, contractID uuid.UUID, templates []ports.TemplateImport, now time.Time) (int, error) {
	imported := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", contractID).Delete(&scheduleTemplateModel{}).Error; err != nil {
			return err
		}
		for _, t := range templates {
			rec := scheduleTemplateModel{
				ContractID:          contractID,
				SiteName:            t.SiteName,
				Latitude:            t.Latitude,
				Longitude:           t.Longitude,
				StartTime:           t.StartTime,
				EndTime:             t.EndTime,
				BreakMinutes:        t.BreakMinutes,
				RequiredGuardsCount: t.RequiredGuardsCount,
				DaysOfWeek:          t.DaysOfWeek,
				ImportedAt:          now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

var _ ports.TemplateRepository = (*templateRepository)(nil)
