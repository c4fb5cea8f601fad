package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"brain/internal/search"
)

// Searcher ranks note files against keywords.
type Searcher interface {
	Search(keywords []string) ([]search.Result, error)
}

// ContentFetcher renders the contents of paths as a text payload.
type ContentFetcher interface {
	Fetch(paths []string) (string, error)
}

// ToolError reports a failure inside a tool after its arguments were
// accepted.
type ToolError struct {
	Tool ToolName
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Dispatcher routes decoded requests to the search engine and content
// fetcher. It owns the catalog and holds no per-request state.
type Dispatcher struct {
	catalog  *Catalog
	searcher Searcher
	fetcher  ContentFetcher
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher over searcher and fetcher. A nil
// logger discards diagnostics.
func NewDispatcher(searcher Searcher, fetcher ContentFetcher, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	catalog, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		catalog:  catalog,
		searcher: searcher,
		fetcher:  fetcher,
		logger:   logger,
	}, nil
}

// Catalog returns the tools this dispatcher serves.
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// HandleLine decodes one request line and returns its response.
func (d *Dispatcher) HandleLine(line []byte) *Response {
	env, perr := DecodeEnvelope(line)
	if perr != nil {
		d.logger.Warn("malformed request", "error", perr.Message)
		return failure(nil, perr)
	}
	return d.Handle(env)
}

// Handle routes a decoded envelope and returns its response. The id is
// echoed as received.
func (d *Dispatcher) Handle(env *Envelope) *Response {
	req, rerr := DecodeRequest(env)
	if rerr != nil {
		d.logger.Debug("request rejected", "method", env.Method, "code", rerr.Code, "error", rerr.Message)
		return failure(env.ID, rerr)
	}

	switch req := req.(type) {
	case ListTools:
		return success(env.ID, ToolList{Tools: d.catalog.Descriptors()})
	case CallTool:
		text, err := d.Execute(req)
		if err != nil {
			d.logger.Warn("tool call failed", "tool", req.Tool, "error", err)
			return failure(env.ID, internalError(err))
		}
		return success(env.ID, textResult(text))
	default:
		return failure(env.ID, methodNotFound())
	}
}

// Execute runs a validated tool call and returns its text payload.
// Failures, including panics, are returned as *ToolError.
func (d *Dispatcher) Execute(call CallTool) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool panicked", "tool", call.Tool, "panic", r)
			err = &ToolError{Tool: call.Tool, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	log := d.logger.With("tool", call.Tool)
	switch args := call.Args.(type) {
	case SearchArgs:
		results, err := d.searcher.Search(args.Keywords)
		if err != nil {
			return "", &ToolError{Tool: call.Tool, Err: err}
		}
		if results == nil {
			results = []search.Result{}
		}
		text, err := prettyJSON(results)
		if err != nil {
			return "", &ToolError{Tool: call.Tool, Err: err}
		}
		log.Debug("search complete", "keywords", len(args.Keywords), "matches", len(results))
		return text, nil
	case ContentsArgs:
		text, err := d.fetcher.Fetch(args.FilePaths)
		if err != nil {
			return "", &ToolError{Tool: call.Tool, Err: err}
		}
		log.Debug("contents fetched", "paths", len(args.FilePaths))
		return text, nil
	default:
		return "", &ToolError{Tool: call.Tool, Err: fmt.Errorf("unsupported arguments %T", call.Args)}
	}
}

func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
