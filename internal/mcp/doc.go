// Package mcp implements a Model Context Protocol server over stdio.
// It exposes the scan strategies and the result summarizer as tools a
// coding agent can call: scan_url, scan_html, scan_file, scan_batch,
// scan_with_login, and summarize_results.
//
// Messages are JSON-RPC 2.0 framed with Content-Length headers.
// Request validation failures surface as tool errors with readable
// messages; only malformed protocol traffic produces JSON-RPC errors.
package mcp
