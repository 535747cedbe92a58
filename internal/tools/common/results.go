package common

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
)

// FailedResult reports a failed operation to the model as
// "Failed to <op>: <err>".
func FailedResult(op string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", op, err))
}

// JSONResult renders v as indented JSON.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resultError turns the text of an error result back into an error for
// audit logs and spans.
func resultError(result *mcp.CallToolResult) error {
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			return errors.New(tc.Text)
		}
	}
	return errors.New("tool returned an error result")
}
