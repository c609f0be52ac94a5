// Package bootstrap wires configuration and runtime startup for the
// attendance service binaries.
package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers       []string
	KafkaConsumerGroup string

	BiometricBaseURL string
	BiometricTimeout time.Duration
	ShiftsBaseURL    string
	ShiftsTimeout    time.Duration

	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	StoragePublicURL string

	JWTSecret string

	MaxDBConns int32

	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
	ConsumerPollInterval time.Duration
	ConsumerRetryDelay   time.Duration
	ConsumerMaxAttempts  int

	GeofenceRadiusMeters float64
	MinFaceQuality       float64
	MinMatchConfidence   float64
	TemplateCacheTTL     time.Duration
	VerifyAttemptLimit   int
	VerifyAttemptWindow  time.Duration
	EventDedupTTL        time.Duration
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL        string   `yaml:"postgres_url"`
		RedisURL           string   `yaml:"redis_url"`
		KafkaBrokers       []string `yaml:"kafka_brokers"`
		KafkaConsumerGroup string   `yaml:"kafka_consumer_group"`
		BiometricBaseURL   string   `yaml:"biometric_base_url"`
		ShiftsBaseURL      string   `yaml:"shifts_base_url"`
		StorageEndpoint    string   `yaml:"storage_endpoint"`
		StorageAccessKey   string   `yaml:"storage_access_key"`
		StorageSecretKey   string   `yaml:"storage_secret_key"`
		StorageBucket      string   `yaml:"storage_bucket"`
		StorageUseSSL      bool     `yaml:"storage_use_ssl"`
		StoragePublicURL   string   `yaml:"storage_public_url"`
	} `yaml:"dependencies"`
	Attendance struct {
		GeofenceRadiusMeters float64 `yaml:"geofence_radius_meters"`
		MinFaceQuality       float64 `yaml:"min_face_quality"`
		MinMatchConfidence   float64 `yaml:"min_match_confidence"`
	} `yaml:"attendance"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "attendance-service",
		HTTPPort:             8080,
		KafkaConsumerGroup:   "attendance-service",
		BiometricTimeout:     75 * time.Second,
		ShiftsTimeout:        10 * time.Second,
		StorageBucket:        "attendance-evidence",
		MaxDBConns:           20,
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
		ConsumerPollInterval: 2 * time.Second,
		ConsumerRetryDelay:   5 * time.Second,
		ConsumerMaxAttempts:  5,
		GeofenceRadiusMeters: 500,
		MinFaceQuality:       50,
		MinMatchConfidence:   0.70,
		TemplateCacheTTL:     10 * time.Minute,
		VerifyAttemptLimit:   5,
		VerifyAttemptWindow:  time.Minute,
		EventDedupTTL:        7 * 24 * time.Hour,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaConsumerGroup != "" {
			cfg.KafkaConsumerGroup = f.Dependencies.KafkaConsumerGroup
		}
		if f.Dependencies.BiometricBaseURL != "" {
			cfg.BiometricBaseURL = f.Dependencies.BiometricBaseURL
		}
		if f.Dependencies.ShiftsBaseURL != "" {
			cfg.ShiftsBaseURL = f.Dependencies.ShiftsBaseURL
		}
		if f.Dependencies.StorageEndpoint != "" {
			cfg.StorageEndpoint = f.Dependencies.StorageEndpoint
		}
		cfg.StorageAccessKey = f.Dependencies.StorageAccessKey
		cfg.StorageSecretKey = f.Dependencies.StorageSecretKey
		if f.Dependencies.StorageBucket != "" {
			cfg.StorageBucket = f.Dependencies.StorageBucket
		}
		cfg.StorageUseSSL = f.Dependencies.StorageUseSSL
		cfg.StoragePublicURL = f.Dependencies.StoragePublicURL
		if f.Attendance.GeofenceRadiusMeters > 0 {
			cfg.GeofenceRadiusMeters = f.Attendance.GeofenceRadiusMeters
		}
		if f.Attendance.MinFaceQuality > 0 {
			cfg.MinFaceQuality = f.Attendance.MinFaceQuality
		}
		if f.Attendance.MinMatchConfidence > 0 {
			cfg.MinMatchConfidence = f.Attendance.MinMatchConfidence
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.BiometricBaseURL = envOrDefault("BIOMETRIC_BASE_URL", cfg.BiometricBaseURL)
	cfg.ShiftsBaseURL = envOrDefault("SHIFTS_BASE_URL", cfg.ShiftsBaseURL)
	cfg.StorageEndpoint = envOrDefault("STORAGE_ENDPOINT", cfg.StorageEndpoint)
	cfg.StorageAccessKey = envOrDefault("STORAGE_ACCESS_KEY", cfg.StorageAccessKey)
	cfg.StorageSecretKey = envOrDefault("STORAGE_SECRET_KEY", cfg.StorageSecretKey)
	cfg.StorageBucket = envOrDefault("STORAGE_BUCKET", cfg.StorageBucket)
	cfg.StorageUseSSL = envBool("STORAGE_USE_SSL", cfg.StorageUseSSL)
	cfg.StoragePublicURL = envOrDefault("STORAGE_PUBLIC_URL", cfg.StoragePublicURL)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.BiometricTimeout = time.Duration(envInt("BIOMETRIC_TIMEOUT_SECONDS", int(cfg.BiometricTimeout.Seconds()))) * time.Second
	cfg.ShiftsTimeout = time.Duration(envInt("SHIFTS_TIMEOUT_SECONDS", int(cfg.ShiftsTimeout.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.ConsumerPollInterval = time.Duration(envInt("CONSUMER_POLL_SECONDS", int(cfg.ConsumerPollInterval.Seconds()))) * time.Second
	cfg.ConsumerRetryDelay = time.Duration(envInt("CONSUMER_RETRY_SECONDS", int(cfg.ConsumerRetryDelay.Seconds()))) * time.Second
	cfg.ConsumerMaxAttempts = envInt("CONSUMER_MAX_ATTEMPTS", cfg.ConsumerMaxAttempts)
	cfg.GeofenceRadiusMeters = envFloat("GEOFENCE_RADIUS_METERS", cfg.GeofenceRadiusMeters)
	cfg.MinFaceQuality = envFloat("MIN_FACE_QUALITY", cfg.MinFaceQuality)
	cfg.MinMatchConfidence = envFloat("MIN_MATCH_CONFIDENCE", cfg.MinMatchConfidence)
	cfg.TemplateCacheTTL = time.Duration(envInt("TEMPLATE_CACHE_SECONDS", int(cfg.TemplateCacheTTL.Seconds()))) * time.Second
	cfg.VerifyAttemptLimit = envInt("VERIFY_ATTEMPT_LIMIT", cfg.VerifyAttemptLimit)
	cfg.VerifyAttemptWindow = time.Duration(envInt("VERIFY_ATTEMPT_WINDOW_SECONDS", int(cfg.VerifyAttemptWindow.Seconds()))) * time.Second
	cfg.EventDedupTTL = time.Duration(envInt("EVENT_DEDUP_TTL_HOURS", int(cfg.EventDedupTTL.Hours()))) * time.Hour

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.BiometricBaseURL == "" {
		return Config{}, fmt.Errorf("missing BIOMETRIC_BASE_URL")
	}
	if cfg.ShiftsBaseURL == "" {
		return Config{}, fmt.Errorf("missing SHIFTS_BASE_URL")
	}
	if cfg.StorageEndpoint == "" {
		return Config{}, fmt.Errorf("missing STORAGE_ENDPOINT")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
