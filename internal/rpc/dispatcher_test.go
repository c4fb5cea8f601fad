package rpc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"brain/internal/content"
	"brain/internal/search"
)

// recordingSearcher counts calls and returns canned results.
type recordingSearcher struct {
	results []search.Result
	err     error
	calls   int
	panics  bool
}

func (s *recordingSearcher) Search(keywords []string) ([]search.Result, error) {
	s.calls++
	if s.panics {
		panic("index out of range")
	}
	return s.results, s.err
}

type recordingFetcher struct {
	calls int
}

func (f *recordingFetcher) Fetch(paths []string) (string, error) {
	f.calls++
	return "{}", nil
}

func newDispatcher(t *testing.T, s Searcher, f ContentFetcher) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(s, f, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func roundTrip(t *testing.T, d *Dispatcher, line string) map[string]json.RawMessage {
	t.Helper()
	out, err := json.Marshal(d.HandleLine([]byte(line)))
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if string(fields["jsonrpc"]) != `"2.0"` {
		t.Errorf("jsonrpc = %s", fields["jsonrpc"])
	}
	_, hasResult := fields["result"]
	_, hasError := fields["error"]
	if hasResult == hasError {
		t.Errorf("response must carry exactly one of result and error: %s", out)
	}
	return fields
}

func errorCode(t *testing.T, fields map[string]json.RawMessage) (int, string) {
	t.Helper()
	var e Error
	if err := json.Unmarshal(fields["error"], &e); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return e.Code, e.Message
}

func toolText(t *testing.T, fields map[string]json.RawMessage) string {
	t.Helper()
	var result ToolResult
	if err := json.Unmarshal(fields["result"], &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("content = %+v, want one text item", result.Content)
	}
	return result.Content[0].Text
}

func TestListTools(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t, &recordingSearcher{}, &recordingFetcher{})
	fields := roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"list_tools","params":{}}`)

	if string(fields["id"]) != "1" {
		t.Errorf("id = %s, want 1", fields["id"])
	}
	var list struct {
		Tools []struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"input_schema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(fields["result"], &list); err != nil {
		t.Fatalf("decode tools: %v", err)
	}
	if len(list.Tools) != 2 || list.Tools[0].Name != "search_files" || list.Tools[1].Name != "get_contents" {
		t.Fatalf("tools = %+v", list.Tools)
	}
	for _, tool := range list.Tools {
		if tool.Description == "" || len(tool.InputSchema) == 0 {
			t.Errorf("%s lacks description or schema", tool.Name)
		}
	}
}

func TestSearchFilesEndToEnd(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	note := filepath.Join(root, "notes", "test.org")
	if err := os.MkdirAll(filepath.Dir(note), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(note, []byte("This is a test file.\nAnother test with one keyword.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	engine := search.New(search.Config{Root: root, MaxResults: 5})
	d := newDispatcher(t, engine, content.NewFetcher(nil))

	fields := roundTrip(t, d, `{"jsonrpc":"2.0","id":"s1","method":"call_tool","params":{"name":"search_files","arguments":{"keywords":["test","keyword"]}}}`)
	if string(fields["id"]) != `"s1"` {
		t.Errorf("id = %s", fields["id"])
	}

	text := toolText(t, fields)
	var results []search.Result
	if err := json.Unmarshal([]byte(text), &results); err != nil {
		t.Fatalf("payload is not a result list: %v\n%s", err, text)
	}
	if len(results) != 1 || results[0].Path != note || results[0].Relevance != 3 {
		t.Errorf("results = %+v", results)
	}
	if !strings.Contains(text, "\n  {\n    \"path\": ") {
		t.Errorf("payload should be indented by two spaces:\n%s", text)
	}
}

func TestSearchFilesNoMatchesIsEmptyList(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t, &recordingSearcher{}, &recordingFetcher{})
	fields := roundTrip(t, d, `{"jsonrpc":"2.0","id":2,"method":"call_tool","params":{"name":"search_files","arguments":{"keywords":["nothing"]}}}`)
	if text := toolText(t, fields); text != "[]" {
		t.Errorf("payload = %q, want []", text)
	}
}

func TestGetContentsMissingFile(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t, &recordingSearcher{}, content.NewFetcher(nil))
	fields := roundTrip(t, d, `{"jsonrpc":"2.0","id":3,"method":"call_tool","params":{"name":"get_contents","arguments":{"file_paths":["missing.txt"]}}}`)

	text := toolText(t, fields)
	var contents map[string]string
	if err := json.Unmarshal([]byte(text), &contents); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if contents["missing.txt"] != content.NotFound {
		t.Errorf("contents = %v", contents)
	}
}

func TestRejectedRequestsSkipDomainLogic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		code int
	}{
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`, CodeMethodNotFound},
		{"unknown tool", `{"jsonrpc":"2.0","id":1,"method":"call_tool","params":{"name":"rm","arguments":{}}}`, CodeInvalidParams},
		{"missing keywords", `{"jsonrpc":"2.0","id":1,"method":"call_tool","params":{"name":"search_files","arguments":{}}}`, CodeInvalidParams},
		{"missing file_paths", `{"jsonrpc":"2.0","id":1,"method":"call_tool","params":{"name":"get_contents","arguments":{"file_paths":7}}}`, CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, f := &recordingSearcher{}, &recordingFetcher{}
			d := newDispatcher(t, s, f)
			fields := roundTrip(t, d, tt.line)
			if code, msg := errorCode(t, fields); code != tt.code {
				t.Errorf("code = %d (%s), want %d", code, msg, tt.code)
			}
			if string(fields["id"]) != "1" {
				t.Errorf("id = %s, want 1", fields["id"])
			}
			if s.calls+f.calls != 0 {
				t.Errorf("domain logic ran: search=%d fetch=%d", s.calls, f.calls)
			}
		})
	}
}

func TestParseErrorHasNullID(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t, &recordingSearcher{}, &recordingFetcher{})
	fields := roundTrip(t, d, `{"jsonrpc":"2.0","id":9,"method":`)
	if string(fields["id"]) != "null" {
		t.Errorf("id = %s, want null", fields["id"])
	}
	code, msg := errorCode(t, fields)
	if code != CodeParseError || !strings.HasPrefix(msg, "Parse error: ") {
		t.Errorf("error = %d %q", code, msg)
	}
}

func TestSearchFailureIsInternalError(t *testing.T) {
	t.Parallel()
	s := &recordingSearcher{err: errors.New("knowledge base path does not exist: /nope")}
	d := newDispatcher(t, s, &recordingFetcher{})
	fields := roundTrip(t, d, `{"jsonrpc":"2.0","id":4,"method":"call_tool","params":{"name":"search_files","arguments":{"keywords":["x"]}}}`)

	code, msg := errorCode(t, fields)
	if code != CodeInternalError {
		t.Errorf("code = %d, want %d", code, CodeInternalError)
	}
	if !strings.HasPrefix(msg, "Internal error: ") || !strings.Contains(msg, "/nope") {
		t.Errorf("message = %q", msg)
	}
}

func TestPanicIsInternalError(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t, &recordingSearcher{panics: true}, &recordingFetcher{})
	fields := roundTrip(t, d, `{"jsonrpc":"2.0","id":5,"method":"call_tool","params":{"name":"search_files","arguments":{"keywords":["x"]}}}`)
	if code, _ := errorCode(t, fields); code != CodeInternalError {
		t.Errorf("code = %d, want %d", code, CodeInternalError)
	}
}

func TestExecuteWrapsToolError(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk on fire")
	d := newDispatcher(t, &recordingSearcher{err: cause}, &recordingFetcher{})
	_, err := d.Execute(CallTool{Tool: SearchFiles, Args: SearchArgs{Keywords: []string{"x"}}})

	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Tool != SearchFiles {
		t.Fatalf("err = %v, want *ToolError for search_files", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("err does not wrap cause: %v", err)
	}
}
