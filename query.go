package simplepg

import (
	"context"
	"fmt"
	"time"

	"github.com/rickchristie/simple-postgres-mcp/internal/classify"
	"github.com/rickchristie/simple-postgres-mcp/internal/logsql"
)

// Execute runs one statement through the full pipeline: read-only policy,
// connect, execute, disconnect. The connection is always released before
// Execute returns. Every failure is an *ExecutionError.
func (p *SimplePg) Execute(ctx context.Context, input QueryInput) (*QueryResult, error) {
	startTime := time.Now()
	readOnly := p.config.Mode == ModeReadOnly || input.ReadOnly

	// 1. Policy check, before any connection is attempted
	if readOnly && !classify.IsReadOnly(input.Query) {
		return nil, p.handleError(KindPolicy, ErrReadOnlyViolation, startTime, input.Query, readOnly)
	}

	// 2. Take the connection slot (respects context cancellation)
	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, p.handleError(KindConnection, fmt.Errorf("failed to acquire connection slot: %w", ctx.Err()), startTime, input.Query, readOnly)
	}
	defer func() { <-p.slot }()

	// 3. Connect, execute, and always disconnect
	defer p.conn.Disconnect()

	if err := p.conn.Connect(ctx, p.target); err != nil {
		return nil, p.handleError(KindConnection, err, startTime, input.Query, readOnly)
	}

	raw, err := p.conn.Query(ctx, input.Query)
	if err != nil {
		return nil, p.handleError(KindQuery, err, startTime, input.Query, readOnly)
	}
	elapsed := time.Since(startTime)

	result := &QueryResult{
		Success:       true,
		RowCount:      raw.RowCount,
		Rows:          raw.Rows,
		Command:       raw.Command,
		ExecutionTime: elapsed.Milliseconds(),
	}
	if result.Rows == nil {
		result.Rows = []map[string]interface{}{}
	}
	if result.Command == "" {
		result.Command = "UNKNOWN"
	}

	p.metrics.observe(outcomeSuccess, elapsed)
	p.logger.Info().
		Str("sql", logsql.Redact(input.Query, logsql.DefaultMaxLen)).
		Bool("read_only", readOnly).
		Str("command", result.Command).
		Int64("row_count", result.RowCount).
		Dur("duration", elapsed).
		Msg("query executed")

	return result, nil
}

// handleError wraps err with its kind and the time elapsed since the call began.
func (p *SimplePg) handleError(kind ErrorKind, err error, startTime time.Time, sql string, readOnly bool) error {
	elapsed := time.Since(startTime)
	p.metrics.observe(string(kind), elapsed)
	p.logger.Error().
		Err(err).
		Str("kind", string(kind)).
		Str("sql", logsql.Redact(sql, logsql.DefaultMaxLen)).
		Bool("read_only", readOnly).
		Dur("duration", elapsed).
		Msg("query error")
	return &ExecutionError{Kind: kind, Err: err, Elapsed: elapsed}
}
