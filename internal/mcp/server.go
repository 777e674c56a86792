package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/feudadrien/a11yscan/internal/model"
	"github.com/feudadrien/a11yscan/internal/scan"
)

// Runner is the scan capability the server exposes as tools.
// *scan.Scanner satisfies it; tests substitute a fake.
type Runner interface {
	ScanURL(ctx context.Context, req scan.URLRequest) (*model.ScanResult, error)
	ScanHTML(ctx context.Context, req scan.HTMLRequest) (*model.ScanResult, error)
	ScanFile(ctx context.Context, req scan.FileRequest) (*model.ScanResult, error)
	ScanWithLogin(ctx context.Context, req scan.LoginRequest) (*model.ScanResult, error)
	ScanBatch(ctx context.Context, req scan.BatchRequest) (*model.BatchResult, error)
}

// Server serves MCP requests over a framed stdio transport.
type Server struct {
	runner  Runner
	logger  *slog.Logger
	version string

	in  io.Reader
	out io.Writer

	// outMu serializes response frames. Tool calls run one at a time,
	// but protocol errors can interleave with them.
	outMu sync.Mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets a custom logger. The server logs to stderr-backed
// handlers only; stdout belongs to the protocol.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams overrides the transport streams. Used in tests.
func WithStreams(in io.Reader, out io.Writer) ServerOption {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithVersion sets the version reported during the handshake.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a Server over stdin/stdout for the given runner.
func NewServer(runner Runner, opts ...ServerOption) *Server {
	s := &Server{
		runner:  runner,
		version: "dev",
		in:      os.Stdin,
		out:     os.Stdout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Serve reads framed requests until the stream closes or ctx is
// cancelled. A clean EOF returns nil.
func (s *Server) Serve(ctx context.Context) error {
	reader := bufio.NewReader(s.in)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := ReadMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(nil, codeParseError, "Parse error", err.Error())
			continue
		}

		s.handle(ctx, &req)
	}
}

// handle dispatches one request. Notifications produce no response.
func (s *Server) handle(ctx context.Context, req *Request) {
	s.logger.Debug("handling request", "method", req.Method)

	switch req.Method {
	case "initialize":
		s.sendResult(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: map[string]any{
				"tools": map[string]any{},
			},
			ServerInfo: ServerInfo{
				Name:    "a11yscan",
				Version: s.version,
			},
		})

	case "initialized", "notifications/initialized":
		// Notification, no response needed.

	case "ping":
		s.sendResult(req.ID, map[string]any{})

	case "tools/list":
		s.sendResult(req.ID, map[string]any{"tools": toolDefinitions()})

	case "tools/call":
		var params struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendError(req.ID, codeInvalidParams, "Invalid params", err.Error())
			return
		}

		result := s.callTool(ctx, params.Name, params.Arguments)
		if result == nil {
			s.sendError(req.ID, codeMethodNotFound, "Method not found",
				fmt.Sprintf("unknown tool: %s", params.Name))
			return
		}
		s.sendResult(req.ID, result)

	default:
		s.sendError(req.ID, codeMethodNotFound, "Method not found",
			fmt.Sprintf("unknown method: %s", req.Method))
	}
}

// sendResult writes a successful response frame.
func (s *Server) sendResult(id, result any) {
	s.send(Response{JSONRPC: "2.0", ID: id, Result: result})
}

// sendError writes an error response frame.
func (s *Server) sendError(id any, code int, message string, data any) {
	s.send(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}

func (s *Server) send(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		// The client still deserves an answer for this ID.
		s.logger.Error("failed to marshal response", "error", err)
		data, err = json.Marshal(Response{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   &RPCError{Code: codeInternalError, Message: "Internal error"},
		})
		if err != nil {
			return
		}
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if err := WriteMessage(s.out, data); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
