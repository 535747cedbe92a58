package tasks_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

// CompletionResult is what complete_task answers with.
type CompletionResult struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

// RegisterTasksTools registers all task tools with the MCP server. Tools that
// change data are skipped in read-only mode.
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getTasksTool := mcp.NewTool("get_tasks",
		mcp.WithDescription("Get active Todoist tasks, optionally filtered by project"),
		mcp.WithString("project_id",
			mcp.Description("Only return tasks of this project"),
		),
	)
	s.AddTool(getTasksTool, common.InstrumentedToolHandler("get_tasks", sc, handleGetTasks(sc)))

	getTaskTool := mcp.NewTool("get_task",
		mcp.WithDescription("Get a single active Todoist task by ID"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task"),
		),
	)
	s.AddTool(getTaskTool, common.InstrumentedToolHandler("get_task", sc, handleGetTask(sc)))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createTaskTool := mcp.NewTool("create_task",
		mcp.WithDescription("Create a new Todoist task"),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The task text"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project to create the task in (default: Inbox)"),
		),
		mcp.WithArray("labels",
			mcp.Description("Label names to attach"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority from 1 (normal) to 4 (urgent)"),
			mcp.Min(1),
			mcp.Max(4),
			mcp.DefaultNumber(1),
		),
		mcp.WithString("due_string",
			mcp.Description("Natural language due date, e.g. 'tomorrow at 9am'"),
		),
	)
	s.AddTool(createTaskTool, common.InstrumentedToolHandler("create_task", sc, handleCreateTask(sc)))

	updateTaskTool := mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing Todoist task. Only the given fields change."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task"),
		),
		mcp.WithString("content",
			mcp.Description("New task text"),
		),
		mcp.WithString("description",
			mcp.Description("New task description"),
		),
		mcp.WithArray("labels",
			mcp.Description("Replacement label names"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority from 1 (normal) to 4 (urgent)"),
			mcp.Min(1),
			mcp.Max(4),
		),
		mcp.WithString("due_string",
			mcp.Description("Natural language due date"),
		),
	)
	s.AddTool(updateTaskTool, common.InstrumentedToolHandler("update_task", sc, handleUpdateTask(sc)))

	completeTaskTool := mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a Todoist task as completed"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to complete"),
		),
	)
	s.AddTool(completeTaskTool, common.InstrumentedToolHandler("complete_task", sc, handleCompleteTask(sc)))

	completeTasksTool := mcp.NewTool("complete_tasks",
		mcp.WithDescription("Mark several Todoist tasks as completed. Failures are reported per task."),
		mcp.WithArray("task_ids",
			mcp.Required(),
			mcp.Description("IDs of the tasks to complete"),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(completeTasksTool, common.InstrumentedToolHandler("complete_tasks", sc, handleCompleteTasks(sc)))

	reopenTaskTool := mcp.NewTool("reopen_task",
		mcp.WithDescription("Reopen a completed Todoist task"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to reopen"),
		),
	)
	s.AddTool(reopenTaskTool, common.InstrumentedToolHandler("reopen_task", sc, handleReopenTask(sc)))

	deleteTaskTool := mcp.NewTool("delete_task",
		mcp.WithDescription("Permanently delete a Todoist task"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)
	s.AddTool(deleteTaskTool, common.InstrumentedToolHandler("delete_task", sc, handleDeleteTask(sc)))
}

func handleGetTasks(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("get tasks", err), nil
		}

		tasks, err := client.ListTasks(ctx, request.GetString("project_id", ""))
		if err != nil {
			return common.FailedResult("get tasks", err), nil
		}
		return common.JSONResult(tasks)
	}
}

func handleGetTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("get task", err), nil
		}

		task, err := client.GetTask(ctx, request.GetString("task_id", ""))
		if err != nil {
			return common.FailedResult("get task", err), nil
		}
		return common.JSONResult(task)
	}
}

func handleCreateTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("create task", err), nil
		}

		task, err := client.CreateTask(ctx, todoist.CreateTaskRequest{
			Content:   request.GetString("content", ""),
			ProjectID: request.GetString("project_id", ""),
			Labels:    request.GetStringSlice("labels", nil),
			Priority:  todoist.Priority(request.GetInt("priority", int(todoist.PriorityNormal))),
			DueString: request.GetString("due_string", ""),
		})
		if err != nil {
			return common.FailedResult("create task", err), nil
		}
		return common.JSONResult(task)
	}
}

func handleUpdateTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("update task", err), nil
		}

		task, err := client.UpdateTask(ctx, request.GetString("task_id", ""), updateRequestFrom(request))
		if err != nil {
			return common.FailedResult("update task", err), nil
		}
		return common.JSONResult(task)
	}
}

// updateRequestFrom sets only the fields present in the call arguments, so
// an explicit empty label list clears labels while an absent one keeps them.
func updateRequestFrom(request mcp.CallToolRequest) todoist.UpdateTaskRequest {
	args := request.GetArguments()
	var req todoist.UpdateTaskRequest

	if v, ok := args["content"].(string); ok {
		req.Content = &v
	}
	if v, ok := args["description"].(string); ok {
		req.Description = &v
	}
	if v, ok := args["due_string"].(string); ok {
		req.DueString = &v
	}
	if _, ok := args["labels"]; ok {
		labels := request.GetStringSlice("labels", []string{})
		req.Labels = &labels
	}
	if _, ok := args["priority"]; ok {
		p := todoist.Priority(request.GetInt("priority", 0))
		req.Priority = &p
	}
	return req
}

func handleCompleteTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("complete task", err), nil
		}

		taskID := request.GetString("task_id", "")
		if _, err := client.CompleteTask(ctx, taskID); err != nil {
			return common.FailedResult("complete task", err), nil
		}
		return common.JSONResult(CompletionResult{Status: "completed", TaskID: taskID})
	}
}

func handleCompleteTasks(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := batch.ParseStringOrArray(request.GetArguments()["task_ids"], "task_ids")
		if err != nil {
			return common.FailedResult("complete tasks", err), nil
		}

		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("complete tasks", err), nil
		}

		results := batch.ProcessBatch(ctx, ids, func(ctx context.Context, id string) (string, error) {
			if _, err := client.CompleteTask(ctx, id); err != nil {
				return "", err
			}
			return "completed", nil
		})
		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

func handleReopenTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("reopen task", err), nil
		}

		taskID := request.GetString("task_id", "")
		if _, err := client.ReopenTask(ctx, taskID); err != nil {
			return common.FailedResult("reopen task", err), nil
		}
		return common.JSONResult(CompletionResult{Status: "reopened", TaskID: taskID})
	}
}

func handleDeleteTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("delete task", err), nil
		}

		taskID := request.GetString("task_id", "")
		if _, err := client.DeleteTask(ctx, taskID); err != nil {
			return common.FailedResult("delete task", err), nil
		}
		return common.JSONResult(CompletionResult{Status: "deleted", TaskID: taskID})
	}
}
