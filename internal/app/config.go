package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Constants
const (
	ServiceName = "thermotec-agenda"

	// Error messages
	ErrInvalidDateFormat  = "Invalid date format"
	ErrInvalidMonth       = "Invalid month"
	ErrInvalidDirection   = "Invalid direction"
	ErrInvalidFormat      = "Invalid format"
	ErrInvalidBody        = "Invalid request body"
	ErrInvalidPostalCode  = "Invalid postal code"
	ErrPostalCodeNotFound = "Postal code not found"
	ErrLookupFailed       = "Address lookup failed"
	ErrInvalidReminder    = "Invalid reminder"
	ErrNoAppointments     = "No appointments on this day"
	ErrInternalServer     = "Internal server error"

	ErrFailedToGenerateICS  = "Failed to generate calendar"
	ErrFailedToGenerateCSV  = "Failed to generate CSV"
	ErrFailedToGenerateJSON = "Failed to generate JSON"

	// ICS constants
	ICSProductID = "-//Thermotec//Agenda de Atendimentos//PT"
	ICSDomain    = "agenda.thermotec.com.br"

	// DefaultVisitDuration is the length given to exported visits.
	DefaultVisitDuration = time.Hour

	maxBodyBytes = 1 << 20
)

// Config is read from the environment.
type Config struct {
	Port         int    `env:"HTTP_PORT" envDefault:"8080"`
	Timezone     string `env:"APP_TIMEZONE" envDefault:"America/Sao_Paulo"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	AuthFile     string `env:"AUTH_FILE"`
	BriefingSpec string `env:"BRIEFING_SPEC" envDefault:"0 7 * * *"`

	CEP struct {
		BaseURL   string        `env:"CEP_BASE_URL" envDefault:"https://viacep.com.br/ws"`
		Timeout   time.Duration `env:"CEP_TIMEOUT" envDefault:"5s"`
		CacheSize int           `env:"CEP_CACHE_SIZE" envDefault:"512"`
	}
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("HTTP_PORT must be a valid TCP port (got %d)", cfg.Port)
	}
	if cfg.CEP.Timeout <= 0 {
		return nil, fmt.Errorf("CEP_TIMEOUT must be positive (got %s)", cfg.CEP.Timeout)
	}
	return cfg, nil
}

// Location resolves APP_TIMEZONE; "Local" selects the host zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// BriefingEnabled reports whether the daily briefing job should run.
func (c *Config) BriefingEnabled() bool {
	spec := strings.TrimSpace(c.BriefingSpec)
	return spec != "" && spec != "off"
}
