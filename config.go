package simplepg

import (
	"fmt"
	"strings"
)

// Mode is the server-wide execution mode, fixed when the process starts.
type Mode string

const (
	// ModeWrite lets each call decide whether read-only policy applies.
	ModeWrite Mode = "write"
	// ModeReadOnly applies read-only policy to every call.
	ModeReadOnly Mode = "readonly"
)

// ParseMode maps a startup token to a Mode. Matching is case-insensitive.
// Empty or unrecognized tokens select ModeWrite.
func ParseMode(token string) Mode {
	if strings.EqualFold(strings.TrimSpace(token), string(ModeReadOnly)) {
		return ModeReadOnly
	}
	return ModeWrite
}

func (m Mode) String() string { return string(m) }

// Config is the base configuration used by library mode via New().
type Config struct {
	Mode Mode `json:"mode"`
}

// ServerConfig embeds Config and adds server-only fields for CLI mode.
type ServerConfig struct {
	Config
	Server  ServerSettings `json:"server"`
	Logging LoggingConfig  `json:"logging"`
}

// ServerSettings holds transport settings for CLI mode.
type ServerSettings struct {
	Transport          string `json:"transport"` // stdio, http
	Port               int    `json:"port"`
	HealthCheckEnabled bool   `json:"health_check_enabled"`
	HealthCheckPath    string `json:"health_check_path"`
	MetricsPath        string `json:"metrics_path"`
}

// LoggingConfig holds logging settings for CLI mode.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stderr, stdout, or file path
}

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Validate checks server settings that New cannot check on its own.
func (c *ServerConfig) Validate() error {
	switch c.Server.Transport {
	case "", TransportStdio:
	case TransportHTTP:
		if c.Server.Port <= 0 {
			return fmt.Errorf("server.port must be > 0 for the http transport")
		}
		if c.Server.HealthCheckEnabled && c.Server.HealthCheckPath == "" {
			return fmt.Errorf("server.health_check_path must be set when health_check_enabled is true")
		}
	default:
		return fmt.Errorf("unknown server.transport %q (expected %q or %q)", c.Server.Transport, TransportStdio, TransportHTTP)
	}
	if c.Mode != "" && c.Mode != ModeReadOnly && c.Mode != ModeWrite {
		return fmt.Errorf("unknown mode %q (expected %q or %q)", c.Mode, ModeReadOnly, ModeWrite)
	}
	return nil
}
