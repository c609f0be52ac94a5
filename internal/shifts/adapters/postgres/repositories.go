package postgres

import (
	"github.com/guardpoint/workforce/internal/eventbus"
	"github.com/guardpoint/workforce/internal/shifts/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Shifts      ports.ShiftRepository
	Assignments ports.AssignmentRepository
	Personnel   ports.PersonnelRepository
	Templates   ports.TemplateRepository
	SyncAudit   ports.SyncAuditRepository
	EventDedup  ports.EventDedupRepository
	Outbox      eventbus.OutboxStore
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Shifts:      &shiftRepository{db: db},
		Assignments: &assignmentRepository{db: db},
		Personnel:   &personnelRepository{db: db},
		Templates:   &templateRepository{db: db},
		SyncAudit:   &syncAuditRepository{db: db},
		EventDedup:  &eventDedupRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}
