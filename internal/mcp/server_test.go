package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/feudadrien/a11yscan/internal/model"
	"github.com/feudadrien/a11yscan/internal/scan"
)

// fakeRunner answers scan requests with canned results while enforcing
// real request validation, mirroring the scanner's contract.
type fakeRunner struct {
	lastLogin scan.LoginRequest
}

func (f *fakeRunner) ScanURL(_ context.Context, req scan.URLRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &model.ScanResult{
		URL: req.URL,
		Violations: []model.ViolationRecord{
			{ID: "image-alt", Impact: model.ImpactCritical, Tags: []string{"wcag111"}},
		},
	}, nil
}

func (f *fakeRunner) ScanHTML(_ context.Context, req scan.HTMLRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &model.ScanResult{Violations: []model.ViolationRecord{}}, nil
}

func (f *fakeRunner) ScanFile(_ context.Context, req scan.FileRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &model.ScanResult{URL: "file://" + req.Path, Violations: []model.ViolationRecord{}}, nil
}

func (f *fakeRunner) ScanWithLogin(_ context.Context, req scan.LoginRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.lastLogin = req
	return &model.ScanResult{URL: req.URL, Violations: []model.ViolationRecord{}}, nil
}

func (f *fakeRunner) ScanBatch(_ context.Context, req scan.BatchRequest) (*model.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	entries := make([]model.BatchEntry, len(req.URLs))
	for i, u := range req.URLs {
		entries[i] = model.BatchEntry{Target: u, Result: &model.ScanResult{URL: u, Violations: []model.ViolationRecord{}}}
	}
	return &model.BatchResult{Entries: entries}, nil
}

// serve runs the server over in-memory streams until input EOF and
// returns the decoded responses in order.
func serve(t *testing.T, runner Runner, requests ...string) []Response {
	t.Helper()

	var in bytes.Buffer
	for _, req := range requests {
		if err := WriteMessage(&in, []byte(req)); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	srv := NewServer(runner,
		WithStreams(&in, &out),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithVersion("test"),
	)
	if err := srv.Serve(context.Background()); err != nil {
		t.Fatalf("serve failed: %v", err)
	}

	var responses []Response
	r := bufio.NewReader(&out)
	for {
		msg, err := ReadMessage(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read response frame: %v", err)
		}
		var resp Response
		if err := json.Unmarshal(msg, &resp); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		responses = append(responses, resp)
	}
	return responses
}

// callResult re-decodes a tools/call response payload.
func callResult(t *testing.T, resp Response) *CallResult {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("unexpected RPC error: %+v", resp.Error)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatal(err)
	}
	var result CallResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	return &result
}

// TestServerHandshake tests initialize and ping.
func TestServerHandshake(t *testing.T) {
	t.Parallel()

	responses := serve(t, &fakeRunner{},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)

	// The notification gets no response.
	if len(responses) != 2 {
		t.Fatalf("responses = %d, expected 2", len(responses))
	}

	data, err := json.Marshal(responses[0].Result)
	if err != nil {
		t.Fatal(err)
	}
	var init InitializeResult
	if err := json.Unmarshal(data, &init); err != nil {
		t.Fatal(err)
	}
	if init.ServerInfo.Name != "a11yscan" || init.ServerInfo.Version != "test" {
		t.Errorf("server info = %+v", init.ServerInfo)
	}
	if init.ProtocolVersion == "" {
		t.Error("protocol version missing")
	}
}

// TestServerToolsList tests tool discovery.
func TestServerToolsList(t *testing.T) {
	t.Parallel()

	responses := serve(t, &fakeRunner{},
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
	)
	if len(responses) != 1 {
		t.Fatalf("responses = %d", len(responses))
	}

	data, err := json.Marshal(responses[0].Result)
	if err != nil {
		t.Fatal(err)
	}
	var listed struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(data, &listed); err != nil {
		t.Fatal(err)
	}

	expected := []string{"scan_url", "scan_html", "scan_file", "scan_batch", "scan_with_login", "summarize_results"}
	if len(listed.Tools) != len(expected) {
		t.Fatalf("tools = %d, expected %d", len(listed.Tools), len(expected))
	}
	for i, name := range expected {
		if listed.Tools[i].Name != name {
			t.Errorf("tool %d = %q, expected %q", i, listed.Tools[i].Name, name)
		}
		if listed.Tools[i].InputSchema == nil {
			t.Errorf("tool %q missing input schema", name)
		}
	}
}

// TestServerToolCalls tests tool dispatch and error mapping.
func TestServerToolCalls(t *testing.T) {
	t.Parallel()

	t.Run("scan_url returns result JSON", func(t *testing.T) {
		t.Parallel()

		responses := serve(t, &fakeRunner{},
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"scan_url","arguments":{"url":"https://example.com"}}}`,
		)
		result := callResult(t, responses[0])
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
		}

		parsed, err := model.ParseScanResult([]byte(result.Content[0].Text))
		if err != nil {
			t.Fatalf("tool output is not a scan result: %v", err)
		}
		if parsed.URL != "https://example.com" || len(parsed.Violations) != 1 {
			t.Errorf("unexpected result: %+v", parsed)
		}
	})

	t.Run("validation failure becomes tool error", func(t *testing.T) {
		t.Parallel()

		responses := serve(t, &fakeRunner{},
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"scan_url","arguments":{"url":"not-a-url"}}}`,
		)
		result := callResult(t, responses[0])
		if !result.IsError {
			t.Fatal("expected a tool error for an invalid URL")
		}
		if !strings.Contains(result.Content[0].Text, "http(s)") {
			t.Errorf("error text = %q", result.Content[0].Text)
		}
	})

	t.Run("scan_batch keeps request order", func(t *testing.T) {
		t.Parallel()

		responses := serve(t, &fakeRunner{},
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"scan_batch","arguments":{"urls":["https://a.example","https://b.example"]}}}`,
		)
		result := callResult(t, responses[0])
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
		}

		var batch model.BatchResult
		if err := json.Unmarshal([]byte(result.Content[0].Text), &batch); err != nil {
			t.Fatal(err)
		}
		if len(batch.Entries) != 2 || batch.Entries[0].Target != "https://a.example" {
			t.Errorf("unexpected batch: %+v", batch)
		}
	})

	t.Run("scan_with_login forwards credentials", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		responses := serve(t, runner,
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"scan_with_login","arguments":{`+
				`"url":"https://app.example/dash","login_url":"https://app.example/login",`+
				`"username":"alice","password":"hunter2","username_selector":"#u",`+
				`"password_selector":"#p","submit_selector":"#s"}}}`,
		)
		result := callResult(t, responses[0])
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
		}
		if runner.lastLogin.Login.Password != "hunter2" {
			t.Error("password not forwarded to the scanner")
		}
		if strings.Contains(result.Content[0].Text, "hunter2") {
			t.Error("password leaked into the tool result")
		}
	})

	t.Run("summarize_results renders a text digest", func(t *testing.T) {
		t.Parallel()

		payload := `{"url":"https://example.com","violations":[` +
			`{"id":"image-alt","impact":"critical","tags":["wcag111"],"nodes":[{}]},` +
			`{"id":"region","impact":"moderate","nodes":[{}]}]}`
		req := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"summarize_results","arguments":{"result":` + payload + `}}}`

		responses := serve(t, &fakeRunner{}, req)
		result := callResult(t, responses[0])
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
		}

		text := result.Content[0].Text
		if json.Valid([]byte(text)) {
			t.Fatalf("digest should be rendered text, not JSON:\n%s", text)
		}
		for _, want := range []string{
			"Total Violations: 2",
			"[CRITICAL] image-alt",
			"1.1.1",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("digest missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("summarize_results without top issues renders the fixed line", func(t *testing.T) {
		t.Parallel()

		payload := `{"url":"https://example.com","violations":[` +
			`{"id":"region","impact":"moderate","nodes":[{}]}]}`
		req := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"summarize_results","arguments":{"result":` + payload + `}}}`

		responses := serve(t, &fakeRunner{}, req)
		result := callResult(t, responses[0])
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
		}

		text := result.Content[0].Text
		if !strings.Contains(text, model.NoTopIssuesMessage) {
			t.Errorf("digest missing the no-issue line:\n%s", text)
		}
		if !strings.Contains(text, "Total Violations: 1") {
			t.Errorf("lower-impact violations should still be counted:\n%s", text)
		}
	})

	t.Run("summarize_results rejects wrong shape", func(t *testing.T) {
		t.Parallel()

		responses := serve(t, &fakeRunner{},
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"summarize_results","arguments":{"result":{"issues":[]}}}}`,
		)
		result := callResult(t, responses[0])
		if !result.IsError {
			t.Error("expected a tool error for a non-result payload")
		}
	})

	t.Run("unknown tool is a protocol error", func(t *testing.T) {
		t.Parallel()

		responses := serve(t, &fakeRunner{},
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope","arguments":{}}}`,
		)
		if responses[0].Error == nil || responses[0].Error.Code != codeMethodNotFound {
			t.Errorf("expected method-not-found error, got %+v", responses[0])
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		t.Parallel()

		responses := serve(t, &fakeRunner{},
			`{"jsonrpc":"2.0","id":1,"method":"bogus"}`,
		)
		if responses[0].Error == nil || responses[0].Error.Code != codeMethodNotFound {
			t.Errorf("expected method-not-found error, got %+v", responses[0])
		}
	})
}

// TestServerSendInternalError tests the fallback frame written when a
// response payload cannot be encoded.
func TestServerSendInternalError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	srv := NewServer(&fakeRunner{},
		WithStreams(strings.NewReader(""), &out),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	// Channels have no JSON encoding, so marshalling this result fails.
	srv.sendResult(7, make(chan int))

	msg, err := ReadMessage(bufio.NewReader(&out))
	if err != nil {
		t.Fatalf("no fallback frame written: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(msg, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != codeInternalError {
		t.Errorf("expected internal error, got %+v", resp)
	}
	if id, ok := resp.ID.(float64); !ok || id != 7 {
		t.Errorf("fallback frame should keep the request ID, got %v", resp.ID)
	}
}
