// Package config loads service settings from the environment and an optional config file.
package config

import (
	"fmt"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	App      AppConfig
	Log      LogConfig
	Database DatabaseConfig
	Audit    AuditConfig
}

// AppConfig holds HTTP server settings.
type AppConfig struct {
	Port            int
	Env             string
	ShutdownTimeout time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL              string
	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration
}

// AuditConfig controls the sys_audit trail.
type AuditConfig struct {
	Enabled           bool
	CompressThreshold int
}

// IsDevelopment returns true for the development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}
