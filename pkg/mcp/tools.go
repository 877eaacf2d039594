package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolNameParse = "cypher_parse"
	ToolNameFind  = "cypher_find"
	ToolNameKinds = "cypher_kinds"
)

// Parse output formats.
const (
	FormatJSON = "json"
	FormatDump = "dump"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyQuery indicates the query parameter is empty.
	ErrEmptyQuery = errors.New("query parameter is required and must not be empty")
	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = errors.New("format must be json or dump")
	// ErrUnknownKind indicates a kind filter naming no registered kind.
	ErrUnknownKind = errors.New("unknown node kind")
)

// ParseInput is the input schema for cypher_parse.
type ParseInput struct {
	Query  string `json:"query"            jsonschema:"Cypher query text"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or dump"`
}

// FindInput is the input schema for cypher_find.
type FindInput struct {
	Query      string `json:"query"                jsonschema:"Cypher query text"`
	Type       string `json:"type,omitempty"       jsonschema:"exact node kind such as MATCH"`
	Role       string `json:"role,omitempty"       jsonschema:"role under which the parent refers to the node"`
	InstanceOf string `json:"instanceof,omitempty" jsonschema:"kind the node must satisfy such as EXPRESSION"`
	Start      *int   `json:"start,omitempty"      jsonschema:"keep nodes starting at or after this byte offset"`
	End        *int   `json:"end,omitempty"        jsonschema:"keep nodes ending at or before this byte offset"`
}

// KindsInput is the input schema for cypher_kinds.
type KindsInput struct {
	InstanceOf string `json:"instanceof,omitempty" jsonschema:"only list kinds satisfying this kind"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// textResult builds a CallToolResult with plain text content.
func textResult(text string) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, ToolOutput{Data: text}, nil
}

// validateQuery checks common query input constraints. Size limits are
// enforced by the engine.
func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}

	return nil
}
