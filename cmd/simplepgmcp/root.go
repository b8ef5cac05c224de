package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	simplepg "github.com/rickchristie/simple-postgres-mcp"
)

var errMissingConnString = errors.New("PostgreSQL connection string is required as first argument")

type serveFunc func(ctx context.Context, connString string, config *simplepg.ServerConfig) error

type serveFlags struct {
	configPath      string
	transport       string
	port            int
	healthCheckPath string
	metricsPath     string
	logLevel        string
	logFormat       string
	logOutput       string
}

// newRootCmd builds the CLI. The connection string and mode are positional,
// everything else comes from flags or an optional JSON config file.
func newRootCmd(serve serveFunc) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "simplepgmcp <connection-string> [readonly|write]",
		Short: "PostgreSQL MCP server exposing a single execute_query tool",
		Long: `simplepgmcp serves one MCP tool, execute_query, that runs a SQL statement
against PostgreSQL and returns the result set as JSON.

The mode argument is "readonly" or "write" (default). In readonly mode every
call is held to read-only policy regardless of its readOnly argument.

If no connection string is given, SIMPLEPG_CONNSTRING is used.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			connString, config, err := resolveServerConfig(cmd, f, args)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), connString, config)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Path to JSON configuration file (or SIMPLEPG_CONFIG_PATH)")
	flags.StringVar(&f.transport, "transport", simplepg.TransportStdio, "Transport to serve MCP on: stdio or http")
	flags.IntVar(&f.port, "port", 8080, "Port for the http transport")
	flags.StringVar(&f.healthCheckPath, "health-check-path", "", "Serve a liveness endpoint at this path (http transport)")
	flags.StringVar(&f.metricsPath, "metrics-path", "", "Serve Prometheus metrics at this path (http transport)")
	flags.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "", "Log format: json or text (default text on a terminal, json otherwise)")
	flags.StringVar(&f.logOutput, "log-output", "stderr", "Log output: stderr, stdout, or a file path")

	return cmd
}

// resolveServerConfig merges the config file, flags, positional arguments, and
// environment. Explicitly set flags override the file.
func resolveServerConfig(cmd *cobra.Command, f *serveFlags, args []string) (string, *simplepg.ServerConfig, error) {
	config := &simplepg.ServerConfig{}

	configPath := f.configPath
	if configPath == "" {
		configPath = os.Getenv("SIMPLEPG_CONFIG_PATH")
	}
	if configPath != "" {
		loaded, err := loadServerConfig(configPath)
		if err != nil {
			return "", nil, err
		}
		config = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("transport") || config.Server.Transport == "" {
		config.Server.Transport = f.transport
	}
	if flags.Changed("port") || config.Server.Port == 0 {
		config.Server.Port = f.port
	}
	if flags.Changed("health-check-path") {
		config.Server.HealthCheckEnabled = f.healthCheckPath != ""
		config.Server.HealthCheckPath = f.healthCheckPath
	}
	if flags.Changed("metrics-path") {
		config.Server.MetricsPath = f.metricsPath
	}
	if flags.Changed("log-level") || config.Logging.Level == "" {
		config.Logging.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		config.Logging.Format = f.logFormat
	}
	if flags.Changed("log-output") || config.Logging.Output == "" {
		config.Logging.Output = f.logOutput
	}

	var connString string
	if len(args) > 0 {
		connString = args[0]
	}
	if connString == "" {
		connString = os.Getenv("SIMPLEPG_CONNSTRING")
	}
	if connString == "" {
		return "", nil, errMissingConnString
	}

	if len(args) > 1 {
		config.Mode = simplepg.ParseMode(args[1])
	} else if config.Mode == "" {
		config.Mode = simplepg.ModeWrite
	}

	if err := config.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return connString, config, nil
}

func loadServerConfig(configPath string) (*simplepg.ServerConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config simplepg.ServerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}
