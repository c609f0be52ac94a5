package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/eventbus"
	"gorm.io/gorm"
)

// enqueueOutbox writes an outbox row inside the caller's transaction so the
// event exists if and only if the state change commits.
func enqueueOutbox(tx *gorm.DB, event eventbus.OutboxEvent) error {
	rec := shiftOutboxModel{
		OutboxID:      event.EventID,
		EventType:     event.EventType,
		PartitionKey:  event.PartitionKey,
		Payload:       string(event.Payload),
		SchemaVersion: event.SchemaVersion,
		CreatedAt:     event.OccurredAt,
		FirstSeenAt:   event.OccurredAt,
	}
	return tx.Create(&rec).Error
}

type outboxRepository struct {
	db *gorm.DB
}

func (r *outboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]eventbus.OutboxRecord, error) {
	var rows []shiftOutboxModel
	if err := r.db.WithContext(ctx).Where("published_at IS NULL").Order("created_at asc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]eventbus.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventbus.OutboxRecord{
			OutboxID: row.OutboxID, EventType: row.EventType, PartitionKey: row.PartitionKey,
			Payload: []byte(row.Payload), RetryCount: row.RetryCount, PublishedAt: row.PublishedAt,
			LastError: row.LastError, LastErrorAt: row.LastErrorAt, FirstSeenAt: row.FirstSeenAt,
		})
	}
	return out, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&shiftOutboxModel{}).Where("outbox_id = ?", outboxID).Update("published_at", at).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&shiftOutboxModel{}).Where("outbox_id = ?", outboxID).Updates(map[string]any{
		"retry_count":   gorm.Expr("retry_count + 1"),
		"last_error":    errMsg,
		"last_error_at": at,
	}).Error
}

var _ eventbus.OutboxStore = (*outboxRepository)(nil)
