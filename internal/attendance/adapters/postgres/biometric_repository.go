package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/attendance/ports"
	"gorm.io/gorm"
)

type biometricLogRepository struct {
	db *gorm.DB
}

func (r *biometricLogRepository) GetVerifiedRegistration(ctx context.Context, guardID uuid.UUID) (domain.BiometricLog, error) {
	var rec biometricLogModel
	err := r.db.WithContext(ctx).
		Where("guard_id = ? AND event_type = ? AND is_verified = true",
			guardID, string(domain.BiometricEventRegistration)).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BiometricLog{}, domain.ErrNotFound
		}
		return domain.BiometricLog{}, err
	}
	return toDomainBiometricLog(rec), nil
}

// UpsertRegistration keeps the single canonical REGISTRATION row per guard:
// re-enrollment updates it rather than adding a second.
func (r *biometricLogRepository) UpsertRegistration(ctx context.Context, params ports.RegistrationParams) (domain.BiometricLog, error) {
	var out biometricLogModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&biometricLogModel{}).
			Where("guard_id = ? AND event_type = ?", params.GuardID, string(domain.BiometricEventRegistration)).
			Updates(map[string]any{
				"registered_face_template_url": params.TemplateURL,
				"face_quality_score":           params.FaceQualityScore,
				"verification_status":          string(domain.VerificationPassed),
				"is_verified":                  true,
				"updated_at":                   params.Now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			rec := biometricLogModel{
				GuardID:                   params.GuardID,
				EventType:                 string(domain.BiometricEventRegistration),
				RegisteredFaceTemplateURL: params.TemplateURL,
				FaceQualityScore:          params.FaceQualityScore,
				VerificationStatus:        string(domain.VerificationPassed),
				IsVerified:                true,
				CreatedAt:                 params.Now,
				UpdatedAt:                 params.Now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return tx.
			Where("guard_id = ? AND event_type = ?", params.GuardID, string(domain.BiometricEventRegistration)).
			Take(&out).Error
	})
	if err != nil {
		return domain.BiometricLog{}, err
	}
	return toDomainBiometricLog(out), nil
}

func (r *biometricLogRepository) AppendVerification(ctx context.Context, params ports.VerificationLogParams) error {
	status := domain.VerificationFailed
	if params.Passed {
		status = domain.VerificationPassed
	}
	rec := biometricLogModel{
		GuardID:                   params.GuardID,
		EventType:                 string(params.EventType),
		RegisteredFaceTemplateURL: params.TemplateURL,
		FaceQualityScore:          params.FaceScore,
		VerificationStatus:        string(status),
		IsVerified:                params.Passed,
		CreatedAt:                 params.Now,
		UpdatedAt:                 params.Now,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}
