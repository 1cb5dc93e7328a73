package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/store"
	"github.com/cliky/cliky/types"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server so AI assistants can
work with the stored task list. The server runs over stdin/stdout and
exposes tools for adding, listing, updating, deleting, and completing
tasks. It runs until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(ctx context.Context) error {
	taskStore, err := GetStore()
	if err != nil {
		return fmt.Errorf("failed to initialize task store: %w", err)
	}
	defer func() { _ = taskStore.Close() }()

	impl := &mcp.Implementation{
		Name:    "cliky",
		Version: version,
	}
	server := mcp.NewServer(impl, &mcp.ServerOptions{})

	registerMCPTools(server, taskStore)

	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func registerMCPTools(server *mcp.Server, taskStore store.TaskStore) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add-task",
		Description: "Create a new task. The task is complexity scored on creation and returned with its ID.",
	}, addTaskHandler(taskStore))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list-tasks",
		Description: "List tasks, optionally filtered by status, priority, text search, or complexity.",
	}, listTasksHandler(taskStore))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get-task",
		Description: "Get one task by ID, including its subtasks.",
	}, getTaskHandler(taskStore))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update-task",
		Description: "Update a task's title, description, status, or priority. Only provided fields change.",
	}, updateTaskHandler(taskStore))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete-task",
		Description: "Delete a task by ID.",
	}, deleteTaskHandler(taskStore))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark-done",
		Description: "Mark a task as completed.",
	}, markDoneHandler(taskStore))
}

// taskToResponse converts a task to its MCP wire shape.
func taskToResponse(task models.Task) types.TaskResponse {
	subtasks := make([]types.SubtaskResponse, len(task.Subtasks))
	for i, st := range task.Subtasks {
		subtasks[i] = types.SubtaskResponse{
			ID:          st.ID,
			Title:       st.Title,
			Description: st.Description,
			Status:      string(st.Status),
		}
	}
	return types.TaskResponse{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        string(task.Status),
		Priority:      string(task.Priority),
		Complexity:    task.Complexity,
		EstimatedTime: task.EstimatedTime,
		Dependencies:  task.Dependencies,
		Subtasks:      subtasks,
		CreatedAt:     task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     task.UpdatedAt.Format(time.RFC3339),
	}
}

func logToolCall(toolName string, params interface{}) {
	slog.Debug("mcp tool call", "tool", toolName, "params", params)
}
