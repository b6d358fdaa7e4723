// Package config holds the process configuration. Values come from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Config is the complete service configuration. It is built once at startup and
// handed to the storage, notifier and router constructors.
type Config struct {
	Host         string   `env:"LISTEN_HOST"`
	Port         int      `env:"PORT"          envDefault:"8000"`
	GinLogging   string   `env:"GIN_LOGGING"   envDefault:"on"`
	LogLevel     string   `env:"LOG_LEVEL"     envDefault:"INFO"`
	ProjectsFile string   `env:"PROJECTS_FILE"`
	Database     Database `envPrefix:"DB_"`
	SMTP         SMTP     `envPrefix:"SMTP_"`
}

// Database describes the connection target of the contact message store.
// DSN, when set, is passed to the driver verbatim.
type Database struct {
	Driver   string `env:"DRIVER" envDefault:"mysql"`
	Host     string `env:"HOST"   envDefault:"localhost:3306"`
	User     string `env:"USER"`
	Password string `env:"PWD"`
	Name     string `env:"NAME"   envDefault:"portfolio"`
	Path     string `env:"PATH"   envDefault:"portfolio.db"`
	DSN      string `env:"DSN"`
}

// SMTP describes the outbound mail server. Email is both the authenticated
// sender and the operator address that receives notifications.
type SMTP struct {
	Server   string `env:"SERVER"   envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT"     envDefault:"587"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
	Debug    bool   `env:"DEBUG"    envDefault:"true"`
}

// Load reads the configuration from the process environment. Variables found in
// the given files are used where the environment does not define them. Without
// files, a .env in the working directory is read if it exists.
func Load(files ...string) (Config, error) {
	environment := env.ToMap(os.Environ())
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		fromFiles, err := godotenv.Read(files...)
		if err != nil {
			return Config{}, fmt.Errorf("read env files: %w", err)
		}
		for key, value := range fromFiles {
			if _, ok := environment[key]; !ok {
				environment[key] = value
			}
		}
	}
	return Parse(environment)
}

// Parse builds a Config from an explicit set of variables.
func Parse(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid SMTP_PORT %d", c.SMTP.Port))
	}
	return errors.Join(errs...)
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RequestLogging reports whether gin's request logger should be installed.
func (c Config) RequestLogging() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}
