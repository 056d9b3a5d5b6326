package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the complete server configuration. Every field can be set from
// the environment or a .env file.
type Config struct {
	Server  ServerConfig
	License LicenseConfig
	Logging LoggingConfig
	Admin   AdminConfig
	Metrics MetricsConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"8004"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

type LicenseConfig struct {
	TTL           time.Duration `envconfig:"LICENSE_TTL" default:"72h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"24h"`
	KeyLength     int           `envconfig:"KEY_LENGTH" default:"6"`
}

type LoggingConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// AdminConfig gates the /licenses routes. The gate is off while JWTSecret
// is empty.
type AdminConfig struct {
	JWTSecret    string        `envconfig:"ADMIN_JWT_SECRET"`
	PasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
	TokenTTL     time.Duration `envconfig:"ADMIN_TOKEN_TTL" default:"12h"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Load reads the optional env file first and then the process environment.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.License.TTL <= 0 {
		return errors.New("LICENSE_TTL must be positive")
	}
	if c.License.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	if c.License.KeyLength < 4 || c.License.KeyLength > 32 {
		return fmt.Errorf("KEY_LENGTH must be between 4 and 32, got %d", c.License.KeyLength)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	if c.Admin.JWTSecret != "" && c.Admin.PasswordHash == "" {
		return errors.New("ADMIN_PASSWORD_HASH is required when ADMIN_JWT_SECRET is set")
	}
	if c.Admin.JWTSecret != "" && c.Admin.TokenTTL <= 0 {
		return errors.New("ADMIN_TOKEN_TTL must be positive")
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
