package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse wraps data as the single text content of a tool result
func createJSONResponse(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %w", err)
	}
	return createTextResponse(string(content)), nil
}

func createTextResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// createErrorResponse reports a tool failure inside the result so the
// client model sees it, rather than as a protocol error
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	response, marshalErr := createJSONResponse(map[string]any{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// parseArguments decodes tool arguments. Missing arguments decode to the zero value.
func parseArguments(raw json.RawMessage, params any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
