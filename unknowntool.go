package simplepg

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// UnknownToolResponse inspects one JSON-RPC message. When it is a tools/call
// request naming a tool mcpServer does not expose, it returns the
// method-not-found response to send in place of dispatching it. mcp-go itself
// answers such calls with invalid-params.
func UnknownToolResponse(mcpServer *server.MCPServer, msg []byte) ([]byte, bool) {
	var req struct {
		Method string        `json:"method"`
		ID     mcp.RequestId `json:"id"`
		Params struct {
			Name string `json:"name"`
		} `json:"params"`
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		return nil, false
	}
	if req.Method != string(mcp.MethodToolsCall) || req.ID.IsNil() {
		return nil, false
	}
	if mcpServer.GetTool(req.Params.Name) != nil {
		return nil, false
	}

	resp := mcp.NewJSONRPCError(req.ID, mcp.METHOD_NOT_FOUND, fmt.Sprintf("tool '%s' not found", req.Params.Name), nil)
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, false
	}
	return b, true
}

// rejectUnknownTools answers unknown tool calls on the HTTP transport before
// they reach the MCP handler.
func rejectUnknownTools(mcpServer *server.MCPServer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		body, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if resp, ok := UnknownToolResponse(mcpServer, body); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(resp)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// lockedWriter serializes writes so whole responses never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// FilterStdio answers unknown tool calls arriving on in directly on out, and
// forwards every other line through the returned reader. All other output
// must go through the returned writer. The filter stops when in is exhausted.
func FilterStdio(mcpServer *server.MCPServer, in io.Reader, out io.Writer) (io.Reader, io.Writer) {
	pr, pw := io.Pipe()
	lw := &lockedWriter{w: out}

	go func() {
		br := bufio.NewReader(in)
		for {
			line, err := br.ReadBytes('\n')
			if len(line) > 0 {
				if resp, ok := UnknownToolResponse(mcpServer, bytes.TrimSpace(line)); ok {
					lw.Write(append(resp, '\n'))
				} else if _, werr := pw.Write(line); werr != nil {
					return
				}
			}
			if err != nil {
				if err == io.EOF {
					pw.Close()
				} else {
					pw.CloseWithError(err)
				}
				return
			}
		}
	}()

	return pr, lw
}
