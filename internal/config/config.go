package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:unlock.db?_busy_timeout=5000&_journal_mode=WAL"`

	SessionStore        string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"unlock_session"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	RedisAddr           string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"unlock_session"`

	OperatorKey         string        `env:"OPERATOR_KEY"`
	OperatorTokenSecret string        `env:"OPERATOR_TOKEN_SECRET"`
	OperatorTokenTTL    time.Duration `env:"OPERATOR_TOKEN_TTL" envDefault:"30m"`
	OperatorTokenIssuer string        `env:"OPERATOR_TOKEN_ISSUER" envDefault:"one-time-unlock-service"`

	FilesDir        string `env:"FILES_DIR" envDefault:"./protected"`
	CodeLength      int    `env:"CODE_LENGTH" envDefault:"10"`
	CodePrefix      string `env:"CODE_PREFIX"`
	CodeGenerateMax int    `env:"CODE_GENERATE_MAX" envDefault:"10000"`

	OTELServiceName           string        `env:"OTEL_SERVICE_NAME" envDefault:"one-time-unlock-service"`
	OTELEnvironment           string        `env:"OTEL_ENVIRONMENT" envDefault:"local"`
	OTELExporterOTLPEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELExporterOTLPInsecure  bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELMetricsEnabled        bool          `env:"OTEL_METRICS_ENABLED" envDefault:"false"`
	OTELTracingEnabled        bool          `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	OTELLogsEnabled           bool          `env:"OTEL_LOGS_ENABLED" envDefault:"false"`
	OTELMetricsExportInterval time.Duration `env:"OTEL_METRICS_EXPORT_INTERVAL" envDefault:"15s"`
	EnableOTelHTTP            bool          `env:"ENABLE_OTEL_HTTP" envDefault:"false"`

	ReadinessProbeTimeout        time.Duration `env:"READINESS_PROBE_TIMEOUT" envDefault:"1s"`
	ShutdownTimeout              time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"20s"`
	ShutdownHTTPDrainTimeout     time.Duration `env:"SHUTDOWN_HTTP_DRAIN_TIMEOUT" envDefault:"10s"`
	ShutdownObservabilityTimeout time.Duration `env:"SHUTDOWN_OBSERVABILITY_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file, parses the environment and validates the
// result. Variables already present in the environment win over the file.
func Load(envFile string) (*Config, error) {
	return loadAndRecord(envFile, loadScopeServer, (*Config).Validate)
}

// LoadStorage is Load for offline commands that only touch the code store.
// Server-only settings such as the operator key are not required.
func LoadStorage(envFile string) (*Config, error) {
	return loadAndRecord(envFile, loadScopeStorage, (*Config).ValidateStorage)
}

func loadAndRecord(envFile, scope string, validate func(*Config) error) (*Config, error) {
	cfg, err := load(envFile, validate)
	profile := "unknown"
	if cfg != nil {
		profile = cfg.AppEnv
	}
	if err != nil {
		recordConfigLoad(context.Background(), configLoadEvent{profile: profile, scope: scope, outcome: "error", errorClass: classifyConfigLoadError(err)})
		return nil, err
	}
	recordConfigLoad(context.Background(), configLoadEvent{profile: profile, scope: scope, outcome: "success", errorClass: "none"})
	return cfg, nil
}

func load(envFile string, validate func(*Config) error) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.AppEnv = normalizeConfigProfile(c.AppEnv)
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.CodePrefix = strings.TrimSpace(c.CodePrefix)
}

func (c *Config) ValidateStorage() error {
	return errors.Join(c.storageErrors()...)
}

func (c *Config) storageErrors() []error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.CodeLength < 6 || c.CodeLength > 32 {
		errs = append(errs, fmt.Errorf("CODE_LENGTH must be between 6 and 32, got %d", c.CodeLength))
	}
	if c.CodeGenerateMax <= 0 {
		errs = append(errs, errors.New("CODE_GENERATE_MAX must be positive"))
	}
	return errs
}

func (c *Config) Validate() error {
	errs := c.storageErrors()
	if strings.TrimSpace(c.OperatorKey) == "" {
		errs = append(errs, errors.New("OPERATOR_KEY is required"))
	}
	if len(c.OperatorTokenSecret) < 32 {
		errs = append(errs, errors.New("OPERATOR_TOKEN_SECRET must be at least 32 bytes"))
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.SessionStore))
	}
	if c.SessionStore == SessionStoreRedis && strings.TrimSpace(c.RedisAddr) == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when SESSION_STORE=redis"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.OperatorTokenTTL <= 0 {
		errs = append(errs, errors.New("OPERATOR_TOKEN_TTL must be positive"))
	}
	if strings.TrimSpace(c.FilesDir) == "" {
		errs = append(errs, errors.New("FILES_DIR is required"))
	}
	if c.SessionCookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}
