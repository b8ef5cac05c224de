// Package conn manages the single database connection used by one query call.
package conn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	// MaxConns caps the pool at one physical connection.
	MaxConns = 1
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout = 5 * time.Second
	// IdleTimeout bounds how long an unused connection stays open.
	IdleTimeout = 10 * time.Second

	probeSQL = "SELECT 1"
)

var (
	// ErrNotConnected is returned by Query when no connection is open.
	ErrNotConnected = errors.New("not connected to database")
	// ErrEmptyQuery is the cause when the server reports an empty statement
	// (blank or comment-only text), which pgx otherwise treats as success.
	ErrEmptyQuery = errors.New("empty query")
)

// ConnectError is returned when the database is unreachable, rejects
// authentication, or fails the liveness probe.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return "failed to connect to database: " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error { return e.Err }

// QueryError is returned when the database accepts the connection but fails the statement.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return "query failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }

// Result is the raw outcome of one statement.
type Result struct {
	Rows     []map[string]interface{}
	RowCount int64
	Command  string
}

// Manager owns at most one open connection at a time. It is not a pool:
// every Connect replaces whatever was open before, and Disconnect returns the
// manager to its zero state.
type Manager struct {
	mu     sync.Mutex
	pool   *pgxpool.Pool
	conn   *pgxpool.Conn
	logger zerolog.Logger
}

// NewManager creates a Manager with no open connection.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{logger: logger}
}

// Connect opens a fresh connection to target and probes it with SELECT 1.
// Any connection left open by an earlier call is closed first. On failure,
// everything acquired so far is released before the error is returned.
func (m *Manager) Connect(ctx context.Context, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		m.logger.Debug().Msg("closing stale database connection")
		m.disconnectLocked()
	}

	poolConfig, err := pgxpool.ParseConfig(target)
	if err != nil {
		return &ConnectError{Err: err}
	}
	poolConfig.MaxConns = MaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = IdleTimeout
	poolConfig.ConnConfig.ConnectTimeout = ConnectTimeout
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return &ConnectError{Err: err}
	}
	m.pool = pool

	c, err := pool.Acquire(ctx)
	if err != nil {
		m.disconnectLocked()
		return &ConnectError{Err: err}
	}
	m.conn = c

	if _, err := c.Exec(ctx, probeSQL); err != nil {
		m.disconnectLocked()
		return &ConnectError{Err: err}
	}

	m.logger.Debug().Msg("database connection opened")
	return nil
}

// Query runs sql on the open connection and collects every row.
func (m *Manager) Query(ctx context.Context, sql string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil, ErrNotConnected
	}

	rows, err := m.conn.Query(ctx, sql)
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	result, err := collectRows(rows)
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	return result, nil
}

// Disconnect releases the connection and closes the pool behind it.
// Calling it with nothing open is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil && m.conn == nil {
		return
	}
	m.disconnectLocked()
	m.logger.Debug().Msg("database connection closed")
}

// Connected reports whether a connection is currently open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

func (m *Manager) disconnectLocked() {
	if m.conn != nil {
		m.conn.Release()
		m.conn = nil
	}
	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
	}
}

// collectRows reads all rows into column-name keyed maps.
func collectRows(rows pgx.Rows) (*Result, error) {
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	resultRows := make([]map[string]interface{}, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tag := rows.CommandTag()
	if tag.String() == "" && len(fieldDescs) == 0 {
		return nil, ErrEmptyQuery
	}
	return &Result{
		Rows:     resultRows,
		RowCount: tag.RowsAffected(),
		Command:  commandName(tag),
	}, nil
}

// commandName returns the leading word of a command tag, e.g. "INSERT" for "INSERT 0 1".
func commandName(tag pgconn.CommandTag) string {
	fields := strings.Fields(tag.String())
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return fields[0]
}
