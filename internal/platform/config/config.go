package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Drivers soportados para el store durable.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config agrupa todo lo que main necesita para armar el servicio.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"memory"`
	DBDSN      string `env:"DB_DSN"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"guardianship.db"`

	// RedisURL vacío => cache in-process.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	PageSizeDefault int  `env:"PAGE_SIZE_DEFAULT" envDefault:"20"`
	PageLookahead   bool `env:"PAGE_LOOKAHEAD" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"pet-guardianship"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// FromEnv carga Config desde variables de entorno y valida lo que main no puede adivinar.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("DB_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.PageSizeDefault < 1 || c.PageSizeDefault > 100 {
		return fmt.Errorf("PAGE_SIZE_DEFAULT must be within [1, 100], got %d", c.PageSizeDefault)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	return nil
}

// Warnings lista combinaciones válidas pero riesgosas que main loguea al arrancar.
func (c Config) Warnings() []string {
	var out []string
	if c.DBDriver == DriverMemory {
		out = append(out, "DB_DRIVER=memory keeps data in process: the one-active-guardian rule only holds within a single instance, use sqlite or postgres when running more than one")
	}
	if c.DBDriver != DriverMemory && c.RedisURL == "" && c.CacheTTL > 0 {
		out = append(out, "REDIS_URL is empty: each instance caches on its own and writes on another instance do not invalidate it")
	}
	return out
}

// Addr devuelve la dirección de escucha del server HTTP.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
