package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolName identifies one of the registered tools.
type ToolName int

const (
	SearchFiles ToolName = iota + 1
	GetContents
)

func (n ToolName) String() string {
	switch n {
	case SearchFiles:
		return "search_files"
	case GetContents:
		return "get_contents"
	}
	return fmt.Sprintf("ToolName(%d)", int(n))
}

// LookupTool maps a wire name to a ToolName.
func LookupTool(name string) (ToolName, bool) {
	switch name {
	case "search_files":
		return SearchFiles, true
	case "get_contents":
		return GetContents, true
	}
	return 0, false
}

// Descriptor is the line-protocol rendering of a tool.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Catalog is the fixed, ordered tool set.
type Catalog struct {
	tools       []mcp.Tool
	descriptors []Descriptor
}

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchFilesTool() mcp.Tool {
	return mcp.NewTool(SearchFiles.String(),
		mcp.WithDescription("Search for relevant files based on keywords"),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithArray("keywords",
			mcp.Required(),
			mcp.Description("Keywords to search for in files"),
			mcp.WithStringItems(),
		),
	)
}

func getContentsTool() mcp.Tool {
	return mcp.NewTool(GetContents.String(),
		mcp.WithDescription("Get contents of specified files"),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithArray("file_paths",
			mcp.Required(),
			mcp.Description("Paths of files to retrieve contents from"),
			mcp.WithStringItems(),
		),
	)
}

// NewCatalog builds the tool set: search_files, then get_contents.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{tools: []mcp.Tool{searchFilesTool(), getContentsTool()}}
	for _, tool := range c.tools {
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encode %s input schema: %w", tool.Name, err)
		}
		c.descriptors = append(c.descriptors, Descriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}
	return c, nil
}

// Tools returns the tool definitions.
func (c *Catalog) Tools() []mcp.Tool {
	return append([]mcp.Tool(nil), c.tools...)
}

// Descriptors returns the tools as rendered by list_tools.
func (c *Catalog) Descriptors() []Descriptor {
	return append([]Descriptor(nil), c.descriptors...)
}
