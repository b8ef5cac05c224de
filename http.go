package simplepg

import (
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// MCPEndpointPath is where the streamable HTTP transport serves MCP.
const MCPEndpointPath = "/mcp"

// Addr returns the listen address for the http transport.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// NewStreamableHTTPServer builds the stateless streamable HTTP transport, with
// the optional health check and metrics endpoints mounted on the same mux.
// Start it with Start(settings.Addr()).
func NewStreamableHTTPServer(mcpServer *server.MCPServer, p *SimplePg, settings ServerSettings) *server.StreamableHTTPServer {
	mux := http.NewServeMux()

	// Health check endpoint (process liveness only, not DB connectivity)
	if settings.HealthCheckEnabled && settings.HealthCheckPath != "" {
		mux.HandleFunc(settings.HealthCheckPath, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if settings.MetricsPath != "" {
		mux.Handle(settings.MetricsPath, p.MetricsHandler())
	}

	httpSrv := &http.Server{
		Addr:    settings.Addr(),
		Handler: mux,
	}

	streamableServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath(MCPEndpointPath),
		server.WithStateLess(true),
		server.WithStreamableHTTPServer(httpSrv),
	)

	// Start() does not register the handler when a custom *http.Server is provided.
	mux.Handle(MCPEndpointPath, rejectUnknownTools(mcpServer, streamableServer))
	return streamableServer
}
