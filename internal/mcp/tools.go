package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/feudadrien/a11yscan/internal/config"
	"github.com/feudadrien/a11yscan/internal/model"
	"github.com/feudadrien/a11yscan/internal/report"
	"github.com/feudadrien/a11yscan/internal/scan"
)

// ruleProperties are the rule selection fields shared by every scan
// tool's input schema.
var ruleProperties = map[string]any{
	"ruleset": map[string]any{
		"type":        "string",
		"description": "WCAG specification version: wcag22 (default) or wcag21",
	},
	"level": map[string]any{
		"type":        "string",
		"description": "Conformance level: A, AA (default), or AAA",
	},
	"tags": map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": "Additional rule engine tags, passed through unmodified",
	},
}

// schemaWith builds an object schema from the shared rule properties
// plus tool-specific ones.
func schemaWith(required []string, props map[string]any) map[string]any {
	merged := make(map[string]any, len(ruleProperties)+len(props))
	for k, v := range ruleProperties {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}

	schema := map[string]any{
		"type":       "object",
		"properties": merged,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// toolDefinitions lists the tools this server exposes.
func toolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "scan_url",
			Description: "Run an accessibility scan against a live URL and return the full result",
			InputSchema: schemaWith([]string{"url"}, map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Absolute http(s) URL to scan",
				},
			}),
		},
		{
			Name:        "scan_html",
			Description: "Run an accessibility scan against a raw HTML document",
			InputSchema: schemaWith([]string{"html"}, map[string]any{
				"html": map[string]any{
					"type":        "string",
					"description": "HTML markup to scan",
				},
			}),
		},
		{
			Name:        "scan_file",
			Description: "Run an accessibility scan against a local HTML file",
			InputSchema: schemaWith([]string{"path"}, map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path to the HTML file",
				},
			}),
		},
		{
			Name:        "scan_batch",
			Description: "Scan several URLs in one browser session; returns one entry per URL in request order",
			InputSchema: schemaWith([]string{"urls"}, map[string]any{
				"urls": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Absolute http(s) URLs to scan",
				},
			}),
		},
		{
			Name:        "scan_with_login",
			Description: "Perform a scripted form login, then scan a URL in the authenticated session",
			InputSchema: schemaWith(
				[]string{"url", "login_url", "username", "password",
					"username_selector", "password_selector", "submit_selector"},
				map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "URL to scan after login",
					},
					"login_url": map[string]any{
						"type":        "string",
						"description": "Page carrying the login form",
					},
					"username": map[string]any{
						"type":        "string",
						"description": "Username typed into the form",
					},
					"password": map[string]any{
						"type":        "string",
						"description": "Password typed into the form; never logged or persisted",
					},
					"username_selector": map[string]any{
						"type":        "string",
						"description": "CSS selector of the username input",
					},
					"password_selector": map[string]any{
						"type":        "string",
						"description": "CSS selector of the password input",
					},
					"submit_selector": map[string]any{
						"type":        "string",
						"description": "CSS selector of the submit control",
					},
				}),
		},
		{
			Name:        "summarize_results",
			Description: "Reduce a previously produced scan result to its critical and serious issues",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"result": map[string]any{
						"type":        "object",
						"description": "A scan result produced by one of the scan tools",
					},
				},
				"required": []string{"result"},
			},
		},
	}
}

// ruleArgs are the shared rule selection arguments.
type ruleArgs struct {
	Ruleset string   `json:"ruleset"`
	Level   string   `json:"level"`
	Tags    []string `json:"tags"`
}

// options converts the arguments to scan rule options.
func (a ruleArgs) options() scan.RuleOptions {
	return scan.RuleOptions{Ruleset: a.Ruleset, Level: a.Level, Tags: a.Tags}
}

// callTool runs the named tool. A nil return means the tool does not
// exist; every other failure is a tool error result.
func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) *CallResult {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "scan_url":
		var a struct {
			ruleArgs
			URL string `json:"url"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
		s.logger.Info("tool call", "tool", name, "url", a.URL)
		return s.resultJSON(s.runner.ScanURL(ctx, scan.URLRequest{URL: a.URL, Rules: a.options()}))

	case "scan_html":
		var a struct {
			ruleArgs
			HTML string `json:"html"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
		s.logger.Info("tool call", "tool", name, "bytes", len(a.HTML))
		return s.resultJSON(s.runner.ScanHTML(ctx, scan.HTMLRequest{HTML: a.HTML, Rules: a.options()}))

	case "scan_file":
		var a struct {
			ruleArgs
			Path string `json:"path"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
		s.logger.Info("tool call", "tool", name, "path", a.Path)
		return s.resultJSON(s.runner.ScanFile(ctx, scan.FileRequest{Path: a.Path, Rules: a.options()}))

	case "scan_batch":
		var a struct {
			ruleArgs
			URLs []string `json:"urls"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
		s.logger.Info("tool call", "tool", name, "targets", len(a.URLs))
		return s.resultJSON(s.runner.ScanBatch(ctx, scan.BatchRequest{URLs: a.URLs, Rules: a.options()}))

	case "scan_with_login":
		var a struct {
			ruleArgs
			URL              string `json:"url"`
			LoginURL         string `json:"login_url"`
			Username         string `json:"username"`
			Password         string `json:"password"`
			UsernameSelector string `json:"username_selector"`
			PasswordSelector string `json:"password_selector"`
			SubmitSelector   string `json:"submit_selector"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
		// The password stays out of the log line.
		s.logger.Info("tool call", "tool", name, "url", a.URL, "loginUrl", a.LoginURL, "username", a.Username)
		return s.resultJSON(s.runner.ScanWithLogin(ctx, scan.LoginRequest{
			URL: a.URL,
			Login: config.LoginConfig{
				LoginURL:         a.LoginURL,
				Username:         a.Username,
				Password:         a.Password,
				UsernameSelector: a.UsernameSelector,
				PasswordSelector: a.PasswordSelector,
				SubmitSelector:   a.SubmitSelector,
			},
			Rules: a.options(),
		}))

	case "summarize_results":
		var a struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
		s.logger.Info("tool call", "tool", name)
		return s.summarize(a.Result)

	default:
		return nil
	}
}

// resultJSON renders a scan outcome as indented JSON text content, or
// a tool error when the scan failed.
func (s *Server) resultJSON(v any, err error) *CallResult {
	if err != nil {
		return errorResult(err.Error())
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err))
	}
	return textResult(string(data))
}

// summarize parses a previously produced result and reduces it to the
// severity-ranked digest. Scan tools return raw JSON; this one returns
// the rendered text digest, so a clean result carries the fixed
// no-issues line instead of an empty list.
func (s *Server) summarize(raw json.RawMessage) *CallResult {
	if len(raw) == 0 {
		return errorResult("missing result argument")
	}

	// Tolerate a result passed as a JSON-encoded string.
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return errorResult(fmt.Sprintf("invalid result payload: %v", err))
		}
		raw = json.RawMessage(text)
	}

	result, err := model.ParseScanResult(raw)
	if err != nil {
		return errorResult(err.Error())
	}

	digest := model.NewSummaryDigest(result)

	var buf bytes.Buffer
	if _, err := report.NewSimpleWriter(&buf).WriteDigest(digest); err != nil {
		return errorResult(fmt.Sprintf("failed to render digest: %v", err))
	}
	return textResult(buf.String())
}
