// Package rpc exposes note search and retrieval as tools over a
// newline-delimited JSON-RPC 2.0 protocol.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the protocol version tag written on every response.
const Version = "2.0"

// Error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Method names.
const (
	MethodListTools = "list_tools"
	MethodCallTool  = "call_tool"
)

var nullID = json.RawMessage("null")

// Error is the error object of an error response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func parseError(detail string) *Error {
	return &Error{Code: CodeParseError, Message: "Parse error: " + detail}
}

func methodNotFound() *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found"}
}

func invalidParams(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid parameters: " + fmt.Sprintf(format, args...)}
}

func internalError(err error) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error: " + err.Error()}
}

// Envelope is a decoded request line before method routing.
type Envelope struct {
	ID     json.RawMessage
	Method string
	Params json.RawMessage
}

// Response is a success or error response. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

func success(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

func failure(id json.RawMessage, err *Error) *Response {
	if len(id) == 0 {
		id = nullID
	}
	return &Response{JSONRPC: Version, ID: id, Error: err}
}

// ToolList is the result of list_tools.
type ToolList struct {
	Tools []Descriptor `json:"tools"`
}

// Content is one item of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the result of call_tool.
type ToolResult struct {
	Content []Content `json:"content"`
}

func textResult(text string) ToolResult {
	return ToolResult{Content: []Content{{Type: "text", Text: text}}}
}

// DecodeEnvelope parses one request line. The jsonrpc, id, method and
// params members must all be present.
func DecodeEnvelope(line []byte) (*Envelope, *Error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, parseError(err.Error())
	}
	for _, name := range []string{"jsonrpc", "id", "method", "params"} {
		if _, ok := fields[name]; !ok {
			return nil, parseError(fmt.Sprintf("missing field %q", name))
		}
	}
	var method string
	if err := json.Unmarshal(fields["method"], &method); err != nil {
		return nil, parseError("method must be a string")
	}
	return &Envelope{
		ID:     fields["id"],
		Method: method,
		Params: fields["params"],
	}, nil
}
