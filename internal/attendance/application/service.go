package application

import (
	"time"

	"github.com/guardpoint/workforce/internal/attendance/ports"
)

type Service struct {
	cfg        Config
	records    ports.AttendanceRepository
	biometrics ports.BiometricLogRepository
	eventDedup ports.EventDedupRepository
	gateway    ports.BiometricGateway
	storage    ports.ObjectStorage
	shifts     ports.ShiftDirectory
	cache      ports.Cache
	nowFn      func() time.Time
}

type Dependencies struct {
	Config     Config
	Records    ports.AttendanceRepository
	Biometrics ports.BiometricLogRepository
	EventDedup ports.EventDedupRepository
	Gateway    ports.BiometricGateway
	Storage    ports.ObjectStorage
	Shifts     ports.ShiftDirectory
	Cache      ports.Cache
	Now        func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "attendance-service"
	}
	if cfg.GeofenceRadiusMeters <= 0 {
		cfg.GeofenceRadiusMeters = 500
	}
	if cfg.MinFaceQuality <= 0 {
		cfg.MinFaceQuality = 50
	}
	if cfg.MinMatchConfidence <= 0 {
		cfg.MinMatchConfidence = 0.70
	}
	if cfg.TemplateCacheTTL <= 0 {
		cfg.TemplateCacheTTL = 10 * time.Minute
	}
	if cfg.VerifyAttemptLimit <= 0 {
		cfg.VerifyAttemptLimit = 5
	}
	if cfg.VerifyAttemptWindow <= 0 {
		cfg.VerifyAttemptWindow = time.Minute
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:        cfg,
		records:    deps.Records,
		biometrics: deps.Biometrics,
		eventDedup: deps.EventDedup,
		gateway:    deps.Gateway,
		storage:    deps.Storage,
		shifts:     deps.Shifts,
		cache:      deps.Cache,
		nowFn:      nowFn,
	}
}
