package setup_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

// SetupSucceeded is the answer of a setup whose token the API accepted.
const SetupSucceeded = "Todoist API token set successfully and connection verified"

// RegisterSetupTools registers setup_todoist.
func RegisterSetupTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	setupTool := mcp.NewTool("setup_todoist",
		mcp.WithDescription("Set the Todoist API token and verify the connection. Replaces any token configured before."),
		mcp.WithString("api_token",
			mcp.Required(),
			mcp.Description("Todoist API token from Settings > Integrations > Developer"),
		),
	)
	s.AddTool(setupTool, common.InstrumentedToolHandler("setup_todoist", sc, handleSetup(sc)))
	return nil
}

// handleSetup installs the new client before verifying it, so a token that
// fails verification still replaces the previous one.
func handleSetup(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token := request.GetString("api_token", "")

		client, err := sc.SetAPIToken(token)
		if err != nil {
			sc.Metrics().RecordClientSetup(ctx, instrumentation.SetupResultRejected)
			return common.FailedResult("set up Todoist", err), nil
		}

		if _, err := client.ListProjects(ctx); err != nil {
			sc.Metrics().RecordClientSetup(ctx, instrumentation.SetupResultRejected)
			sc.Logger().Warn("todoist token verification failed",
				"token", logging.SanitizeToken(token),
				logging.Err(err))
			return common.FailedResult("set up Todoist", err), nil
		}

		sc.Metrics().RecordClientSetup(ctx, instrumentation.SetupResultSuccess)
		return mcp.NewToolResultText(SetupSucceeded), nil
	}
}
