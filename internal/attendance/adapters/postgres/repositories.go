package postgres

import (
	"github.com/guardpoint/workforce/internal/attendance/ports"
	"github.com/guardpoint/workforce/internal/eventbus"
	"gorm.io/gorm"
)

type Repositories struct {
	Records    ports.AttendanceRepository
	Biometrics ports.BiometricLogRepository
	EventDedup ports.EventDedupRepository
	Outbox     eventbus.OutboxStore
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Records:    &attendanceRepository{db: db},
		Biometrics: &biometricLogRepository{db: db},
		EventDedup: &eventDedupRepository{db: db},
		Outbox:     &outboxRepository{db: db},
	}
}
