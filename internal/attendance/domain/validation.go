package domain

import (
	"fmt"

	"github.com/google/uuid"
)

const MaxProbeImageBytes = 10 << 20

var allowedProbeMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("%w: latitude must be within [-90, 90]", ErrInvalidInput)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("%w: longitude must be within [-180, 180]", ErrInvalidInput)
	}
	return nil
}

func ValidateProbeImage(size int, contentType string) error {
	if size == 0 {
		return fmt.Errorf("%w: probe image is required", ErrInvalidInput)
	}
	if size > MaxProbeImageBytes {
		return fmt.Errorf("%w: probe image exceeds 10MB", ErrInvalidInput)
	}
	if _, ok := allowedProbeMIMEs[contentType]; !ok {
		return fmt.Errorf("%w: probe image must be image/jpeg or image/png", ErrInvalidInput)
	}
	return nil
}

func ValidateIdentifiers(guardID, shiftAssignmentID, shiftID uuid.UUID) error {
	if guardID == uuid.Nil {
		return fmt.Errorf("%w: guard_id is required", ErrInvalidInput)
	}
	if shiftAssignmentID == uuid.Nil {
		return fmt.Errorf("%w: shift_assignment_id is required", ErrInvalidInput)
	}
	if shiftID == uuid.Nil {
		return fmt.Errorf("%w: shift_id is required", ErrInvalidInput)
	}
	return nil
}
