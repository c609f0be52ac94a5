package application

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/attendance/ports"
)

const requiredPoseImages = 6

// RegisterFaces enrolls a guard with the external recognition service and
// records the canonical template reference. Re-enrollment replaces the
// template on the existing REGISTRATION row.
func (s *Service) RegisterFaces(ctx context.Context, cmd RegisterFacesCommand) (FaceRegistrationResponse, error) {
	if cmd.GuardID == uuid.Nil {
		return FaceRegistrationResponse{}, fmt.Errorf("%w: guard_id is required", domain.ErrInvalidInput)
	}
	if len(cmd.Images) != requiredPoseImages {
		return FaceRegistrationResponse{}, fmt.Errorf("%w: exactly %d pose images are required, got %d",
			domain.ErrInvalidInput, requiredPoseImages, len(cmd.Images))
	}

	enrollImages := make([]ports.EnrollImage, 0, len(cmd.Images))
	seenPoses := make(map[string]struct{}, len(cmd.Images))
	for i, img := range cmd.Images {
		if img.PoseType == "" {
			return FaceRegistrationResponse{}, fmt.Errorf("%w: image %d is missing pose_type", domain.ErrInvalidInput, i)
		}
		if _, dup := seenPoses[img.PoseType]; dup {
			return FaceRegistrationResponse{}, fmt.Errorf("%w: duplicate pose_type %q", domain.ErrInvalidInput, img.PoseType)
		}
		seenPoses[img.PoseType] = struct{}{}
		decoded, err := base64.StdEncoding.DecodeString(img.ImageBase64)
		if err != nil {
			return FaceRegistrationResponse{}, fmt.Errorf("%w: image %d is not valid base64", domain.ErrInvalidInput, i)
		}
		if len(decoded) == 0 {
			return FaceRegistrationResponse{}, fmt.Errorf("%w: image %d is empty", domain.ErrInvalidInput, i)
		}
		if len(decoded) > domain.MaxProbeImageBytes {
			return FaceRegistrationResponse{}, fmt.Errorf("%w: image %d exceeds 10MB", domain.ErrInvalidInput, i)
		}
		enrollImages = append(enrollImages, ports.EnrollImage{
			ImageBase64: img.ImageBase64,
			PoseType:    img.PoseType,
			Angle:       img.Angle,
		})
	}

	result, err := s.gateway.Register(ctx, cmd.GuardID, enrollImages)
	if err != nil {
		return FaceRegistrationResponse{}, fmt.Errorf("%w: face enrollment service", domain.ErrDependencyUnavailable)
	}
	if !result.Success || result.TemplateURL == "" {
		msg := result.Message
		if msg == "" {
			msg = "enrollment rejected by the recognition service"
		}
		return FaceRegistrationResponse{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	}

	now := s.nowFn()
	reg, err := s.biometrics.UpsertRegistration(ctx, ports.RegistrationParams{
		GuardID:          cmd.GuardID,
		TemplateURL:      result.TemplateURL,
		FaceQualityScore: result.AverageQuality,
		Now:              now,
	})
	if err != nil {
		return FaceRegistrationResponse{}, err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, templateCacheKey(cmd.GuardID))
	}

	return FaceRegistrationResponse{
		GuardID:        cmd.GuardID.String(),
		TemplateURL:    reg.RegisteredFaceTemplateURL,
		AverageQuality: result.AverageQuality,
		QualityScores:  result.QualityScores,
		RegisteredAt:   now,
	}, nil
}
