package rpc

import (
	"encoding/json"
)

// Request is a routed request: ListTools or CallTool.
type Request interface {
	isRequest()
}

// ListTools asks for the tool catalog.
type ListTools struct{}

// CallTool invokes a tool with validated arguments.
type CallTool struct {
	Tool ToolName
	Args Arguments
}

func (ListTools) isRequest() {}
func (CallTool) isRequest()  {}

// Arguments holds the validated arguments of a tool call: SearchArgs or
// ContentsArgs.
type Arguments interface {
	isArguments()
}

// SearchArgs are the arguments of search_files.
type SearchArgs struct {
	Keywords []string
}

// ContentsArgs are the arguments of get_contents.
type ContentsArgs struct {
	FilePaths []string
}

func (SearchArgs) isArguments()   {}
func (ContentsArgs) isArguments() {}

// DecodeRequest routes an envelope to a Request, validating the params
// each method needs.
func DecodeRequest(env *Envelope) (Request, *Error) {
	switch env.Method {
	case MethodListTools:
		return ListTools{}, nil
	case MethodCallTool:
		return decodeCallTool(env.Params)
	default:
		return nil, methodNotFound()
	}
}

func decodeCallTool(raw json.RawMessage) (Request, *Error) {
	params, err := object(raw, "params")
	if err != nil {
		return nil, err
	}

	var name string
	rawName, ok := params["name"]
	if !ok {
		return nil, invalidParams("missing tool name")
	}
	if json.Unmarshal(rawName, &name) != nil {
		return nil, invalidParams("tool name must be a string")
	}
	tool, ok := LookupTool(name)
	if !ok {
		return nil, invalidParams("unknown tool %q", name)
	}

	rawArgs, ok := params["arguments"]
	if !ok {
		return nil, invalidParams("missing arguments")
	}
	args, err := object(rawArgs, "arguments")
	if err != nil {
		return nil, err
	}

	switch tool {
	case SearchFiles:
		keywords, err := stringArray(args, "keywords")
		if err != nil {
			return nil, err
		}
		return CallTool{Tool: tool, Args: SearchArgs{Keywords: keywords}}, nil
	case GetContents:
		paths, err := stringArray(args, "file_paths")
		if err != nil {
			return nil, err
		}
		return CallTool{Tool: tool, Args: ContentsArgs{FilePaths: paths}}, nil
	default:
		return nil, invalidParams("unknown tool %q", name)
	}
}

// object decodes raw as a JSON object.
func object(raw json.RawMessage, what string) (map[string]json.RawMessage, *Error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, invalidParams("%s must be an object", what)
	}
	return fields, nil
}

// stringArray extracts field as an array, keeping only its string entries.
func stringArray(args map[string]json.RawMessage, field string) ([]string, *Error) {
	raw, ok := args[field]
	if !ok {
		return nil, invalidParams("missing %s", field)
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, invalidParams("%s must be an array", field)
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values, nil
}
