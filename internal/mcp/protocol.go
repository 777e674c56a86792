package mcp

import "encoding/json"

// protocolVersion is the MCP protocol revision this server speaks.
const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// InitializeResult is the handshake payload.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"` //nolint:tagliatelle // MCP field name
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"` //nolint:tagliatelle // MCP field name
}

// ServerInfo identifies this server to the client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tool describes one callable tool in a tools/list response.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"` //nolint:tagliatelle // MCP field name
}

// Content is one block of a tool call result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the payload of a tools/call response. IsError marks
// tool-level failures (invalid arguments, failed scans); the JSON-RPC
// layer stays successful so the client can read the message.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"` //nolint:tagliatelle // MCP field name
}

// textResult wraps text in a successful tool call result.
func textResult(text string) *CallResult {
	return &CallResult{Content: []Content{{Type: "text", Text: text}}}
}

// errorResult wraps a failure message in a tool error result.
func errorResult(text string) *CallResult {
	return &CallResult{
		Content: []Content{{Type: "text", Text: text}},
		IsError: true,
	}
}
