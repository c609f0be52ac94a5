package ports

import (
	"context"

	"github.com/google/uuid"
)

type VerifyFaceRequest struct {
	GuardID     uuid.UUID
	ImageBase64 string
	TemplateURL string
	EventType   string
}

type VerifyFaceResult struct {
	IsMatch      bool
	Confidence   float64
	FaceDetected bool
	FaceQuality  float64
	Message      string
}

type EnrollImage struct {
	ImageBase64 string
	PoseType    string
	Angle       float64
}

type EnrollResult struct {
	Success        bool
	TemplateURL    string
	QualityScores  []float64
	AverageQuality float64
	Message        string
}

// BiometricGateway wraps the external face-recognition service. Callers treat
// any transport or non-success failure as a refusal to verify (fail closed).
type BiometricGateway interface {
	Verify(ctx context.Context, req VerifyFaceRequest) (VerifyFaceResult, error)
	Register(ctx context.Context, guardID uuid.UUID, images []EnrollImage) (EnrollResult, error)
}
