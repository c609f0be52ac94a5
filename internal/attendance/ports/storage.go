package ports

import "context"

// ObjectStorage stores probe images as check-in/check-out evidence. The URL
// returned is what gets persisted on the attendance record.
type ObjectStorage interface {
	UploadImage(ctx context.Context, key, contentType string, data []byte) (string, error)
}
