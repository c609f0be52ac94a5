// Package application implements the shifts service workflows: the location
// answer for attendance, bulk leave cancellation, and the event consumers
// that keep assignments, counters, and personnel caches in sync.
package application

import (
	"log/slog"
	"time"

	"github.com/guardpoint/workforce/internal/shifts/ports"
)

type Config struct {
	ServiceName   string
	EventDedupTTL time.Duration
}

type Service struct {
	cfg         Config
	logger      *slog.Logger
	shifts      ports.ShiftRepository
	assignments ports.AssignmentRepository
	personnel   ports.PersonnelRepository
	templates   ports.TemplateRepository
	syncAudit   ports.SyncAuditRepository
	eventDedup  ports.EventDedupRepository
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Logger      *slog.Logger
	Shifts      ports.ShiftRepository
	Assignments ports.AssignmentRepository
	Personnel   ports.PersonnelRepository
	Templates   ports.TemplateRepository
	SyncAudit   ports.SyncAuditRepository
	EventDedup  ports.EventDedupRepository
	Now         func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "shifts-service"
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:         cfg,
		logger:      logger,
		shifts:      deps.Shifts,
		assignments: deps.Assignments,
		personnel:   deps.Personnel,
		templates:   deps.Templates,
		syncAudit:   deps.SyncAudit,
		eventDedup:  deps.EventDedup,
		nowFn:       nowFn,
	}
}
