package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	simplepg "github.com/rickchristie/simple-postgres-mcp"
)

const shutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, connString string, config *simplepg.ServerConfig) error {
	// 1. Setup logger
	logger, err := setupLogger(config.Logging, config.Server.Transport)
	if err != nil {
		return err
	}

	if isTTY(os.Stderr.Fd()) {
		printBanner(os.Stderr, true)
	}

	// 2. Create SimplePg instance (no connection is opened until the first call)
	p := simplepg.New(connString, config.Config, logger)
	defer p.Close(ctx)
	logger.Info().Msgf("PostgreSQL MCP server running in %s mode", strings.ToUpper(p.Mode().String()))

	// 3. Create MCP server with initialize lifecycle logging
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Info().
			Str("client_name", req.Params.ClientInfo.Name).
			Str("client_version", req.Params.ClientInfo.Version).
			Msg("AI agent connected (MCP initialize)")
	})

	mcpServer := server.NewMCPServer("simple-postgresql-mcp-server", version,
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
	)
	simplepg.RegisterMCPTools(mcpServer, p)

	// 4. Serve until interrupted
	if config.Server.Transport == simplepg.TransportHTTP {
		return serveHTTP(ctx, mcpServer, p, config.Server, logger)
	}
	return serveStdio(ctx, mcpServer, logger)
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer, logger zerolog.Logger) error {
	stdioServer := server.NewStdioServer(mcpServer)
	stdioServer.SetErrorLogger(log.New(logger.With().Str("component", "stdio").Logger(), "", 0))

	logger.Info().Msg("Simple PostgreSQL MCP server running on stdio")
	stdin, stdout := simplepg.FilterStdio(mcpServer, os.Stdin, os.Stdout)
	err := stdioServer.Listen(ctx, stdin, stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server failed: %w", err)
	}
	logger.Info().Msg("shutting down")
	return nil
}

func serveHTTP(ctx context.Context, mcpServer *server.MCPServer, p *simplepg.SimplePg, settings simplepg.ServerSettings, logger zerolog.Logger) error {
	streamableServer := simplepg.NewStreamableHTTPServer(mcpServer, p, settings)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	logger.Info().Int("port", settings.Port).Msg("starting simplepgmcp http server")
	if err := streamableServer.Start(settings.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// setupLogger builds the process logger. Logs never go to stdout on the stdio
// transport, since stdout carries the protocol.
func setupLogger(config simplepg.LoggingConfig, transport string) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	switch strings.ToLower(config.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output io.Writer = os.Stderr
	toTerminal := isTTY(os.Stderr.Fd())
	switch {
	case config.Output == "stdout" && transport != simplepg.TransportStdio:
		output = os.Stdout
		toTerminal = isTTY(os.Stdout.Fd())
	case config.Output != "" && config.Output != "stderr" && config.Output != "stdout":
		f, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log output %s: %w", config.Output, err)
		}
		output = f
		toTerminal = false
	}

	if config.Format == "text" || (config.Format == "" && toTerminal) {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}
