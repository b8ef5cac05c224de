// Package simplepg runs arbitrary SQL against a PostgreSQL database for AI
// agents through the Model Context Protocol (MCP), with an enforced read-only
// mode.
//
// It exposes one tool, execute_query. Each call opens a fresh connection,
// runs the statement, and closes the connection again, whatever the outcome.
// Nothing is pooled or reused between calls.
//
// # Read-only policy
//
// The server runs in one of two modes, fixed at startup. In [ModeReadOnly]
// every call is held to read-only policy; in [ModeWrite] a call opts in by
// setting readOnly. Under the policy a statement must start with SELECT,
// EXPLAIN, SHOW, WITH, ANALYZE, or DESCRIBE and must not contain INTO,
// FOR UPDATE, or FOR SHARE anywhere in its text. The check is textual, so
// those words inside literals or identifiers also cause a rejection.
// Rejected statements never reach the database.
//
// # Library Usage
//
//	p := simplepg.New(connString, simplepg.Config{Mode: simplepg.ModeReadOnly}, logger)
//	defer p.Close(ctx)
//
//	result, err := p.Execute(ctx, simplepg.QueryInput{Query: "SELECT 1"})
//	if err != nil {
//		var execErr *simplepg.ExecutionError
//		if errors.As(err, &execErr) && execErr.Kind == simplepg.KindPolicy {
//			// rejected before connecting
//		}
//	}
//
//	// Or register as an MCP tool
//	simplepg.RegisterMCPTools(mcpServer, p)
//
// Calls share one connection slot and run one at a time. A caller waiting for
// the slot gives up when its context is cancelled.
package simplepg
