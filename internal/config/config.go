package config

import (
	"fmt"
	"time"

	"masar-finance/internal/shared/connection"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Env  string `envconfig:"APP_ENV" default:"development"`
		Port string `envconfig:"PORT" default:"3000"`
	}

	HTTP struct {
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	DB struct {
		Host       string `envconfig:"DB_HOST" default:"localhost"`
		Port       string `envconfig:"DB_PORT" default:"5432"`
		User       string `envconfig:"DB_USER" default:"postgres"`
		Password   string `envconfig:"DB_PASSWORD"`
		Name       string `envconfig:"DB_NAME" default:"masar_finance"`
		SSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
		MaxRetries int    `envconfig:"DB_MAX_RETRIES" default:"5"`
	}

	Redis struct {
		Addr string `envconfig:"REDIS_ADDR"`
	}

	Kafka struct {
		Broker  string `envconfig:"KAFKA_BROKER"`
		GroupID string `envconfig:"KAFKA_GROUP_ID" default:"masar-finance-employee-compensation"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	RBAC struct {
		ModelPath  string `envconfig:"RBAC_MODEL_PATH"`
		PolicyPath string `envconfig:"RBAC_POLICY_PATH"`
	}

	RateLimit struct {
		RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
		Burst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
	}

	Worker struct {
		OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"3s"`
		ReconcileInterval  time.Duration `envconfig:"RECONCILE_INTERVAL" default:"1h"`
	}
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	return connection.PostgresDSN(c.DB.Host, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Port, c.DB.SSLMode)
}

// MigrationURL is the DSN in the URL form golang-migrate expects.
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// RequireAPI checks the settings the HTTP API cannot run without.
func (c *Config) RequireAPI() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// RequireKafka checks the settings the worker and consumer need.
func (c *Config) RequireKafka() error {
	if c.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	return nil
}
