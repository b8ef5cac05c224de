package simplepg

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rickchristie/simple-postgres-mcp/internal/conn"
)

// RawResult is what a Connector returns for one statement.
type RawResult = conn.Result

// Connector owns the single database connection used by one call.
// Disconnect must be safe to call when nothing is connected.
type Connector interface {
	Connect(ctx context.Context, target string) error
	Query(ctx context.Context, sql string) (*RawResult, error)
	Disconnect()
}

// SimplePg executes statements against one PostgreSQL database.
// All exported methods are safe for concurrent use; calls share a single
// connection slot and run one at a time.
type SimplePg struct {
	target  string
	config  Config
	conn    Connector
	slot    chan struct{}
	metrics *metrics
	logger  zerolog.Logger
}

// Option is a functional option for New().
type Option func(*options)

type options struct {
	connector Connector
}

// WithConnector replaces the default pgx-backed connection manager.
func WithConnector(c Connector) Option {
	return func(o *options) {
		o.connector = c
	}
}

// New creates a new SimplePg instance. No connection is opened until a
// statement is executed. Panics on invalid config.
func New(connString string, config Config, logger zerolog.Logger, opts ...Option) *SimplePg {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if connString == "" {
		panic("simplepg: connString must be non-empty")
	}
	switch config.Mode {
	case "":
		config.Mode = ModeWrite
	case ModeReadOnly, ModeWrite:
	default:
		panic(fmt.Sprintf("simplepg: unknown mode %q", config.Mode))
	}

	connector := o.connector
	if connector == nil {
		connector = conn.NewManager(logger)
	}

	return &SimplePg{
		target:  connString,
		config:  config,
		conn:    connector,
		slot:    make(chan struct{}, 1),
		metrics: newMetrics(),
		logger:  logger,
	}
}

// Mode returns the server-wide mode.
func (p *SimplePg) Mode() Mode {
	return p.config.Mode
}

// Close releases any connection still held. Accepts context for API
// forward-compatibility; it is not used.
func (p *SimplePg) Close(ctx context.Context) {
	p.conn.Disconnect()
}
