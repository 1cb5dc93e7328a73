package cmd

// MCP tools: add, list, get, update, delete, mark-done

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/store"
	"github.com/cliky/cliky/taskstream"
	"github.com/cliky/cliky/types"
)

// addTaskHandler creates a new task
func addTaskHandler(taskStore store.TaskStore) mcp.ToolHandlerFor[types.AddTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.AddTaskParams]) (*mcp.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("add-task", args)

		if strings.TrimSpace(args.Title) == "" {
			return nil, types.NewMCPError(types.CodeMissingTitle, "Task title is required", map[string]interface{}{
				"field": "title",
			})
		}
		if strings.TrimSpace(args.Description) == "" {
			return nil, types.NewMCPError(types.CodeMissingDescription, "Task description is required", map[string]interface{}{
				"field": "description",
			})
		}

		task := models.NewTask("", strings.TrimSpace(args.Title), strings.TrimSpace(args.Description))
		task.Priority = models.NormalizePriority(args.Priority)
		task.Dependencies = args.Dependencies
		task.Complexity = taskstream.Score(*task)

		createdTask, err := taskStore.CreateTask(*task)
		if err != nil {
			return nil, types.WrapMCPError(types.CodeCreateFailed, err, fmt.Sprintf("Failed to create task: %s", err), nil)
		}

		return &mcp.CallToolResultFor[types.TaskResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: fmt.Sprintf("Created task '%s' with ID: %s (complexity %d)", createdTask.Title, createdTask.ID, createdTask.Complexity),
				},
			},
			StructuredContent: taskToResponse(createdTask),
		}, nil
	}
}

// listTasksHandler lists tasks with optional filtering
func listTasksHandler(taskStore store.TaskStore) mcp.ToolHandlerFor[types.ListTasksParams, types.TaskListResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ListTasksParams]) (*mcp.CallToolResultFor[types.TaskListResponse], error) {
		args := params.Arguments
		logToolCall("list-tasks", args)

		filterFn := func(task models.Task) bool {
			if args.Status != "" && string(task.Status) != args.Status {
				return false
			}
			if args.Priority != "" && string(task.Priority) != args.Priority {
				return false
			}
			if args.Complex && !taskstream.IsComplex(task) {
				return false
			}
			if args.Search != "" {
				needle := strings.ToLower(args.Search)
				if !strings.Contains(strings.ToLower(task.Title), needle) &&
					!strings.Contains(strings.ToLower(task.Description), needle) {
					return false
				}
			}
			return true
		}

		tasks, err := taskStore.ListTasks(filterFn, nil)
		if err != nil {
			return nil, types.WrapMCPError(types.CodeListFailed, err, fmt.Sprintf("Failed to list tasks: %s", err), nil)
		}

		response := types.TaskListResponse{
			Tasks: make([]types.TaskResponse, len(tasks)),
			Count: len(tasks),
		}
		for i, t := range tasks {
			response.Tasks[i] = taskToResponse(t)
		}

		return &mcp.CallToolResultFor[types.TaskListResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Found %d tasks", len(tasks))},
			},
			StructuredContent: response,
		}, nil
	}
}

// getTaskHandler retrieves a single task by ID
func getTaskHandler(taskStore store.TaskStore) mcp.ToolHandlerFor[types.GetTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.GetTaskParams]) (*mcp.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("get-task", args)

		task, err := taskStore.GetTask(args.ID)
		if err != nil {
			return nil, types.WrapMCPError(types.CodeTaskNotFound, err, fmt.Sprintf("Task %s not found", args.ID), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcp.CallToolResultFor[types.TaskResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Task %s: %s", task.ID, task.Title)},
			},
			StructuredContent: taskToResponse(task),
		}, nil
	}
}

// updateTaskHandler applies partial updates to a task
func updateTaskHandler(taskStore store.TaskStore) mcp.ToolHandlerFor[types.UpdateTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.UpdateTaskParams]) (*mcp.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("update-task", args)

		if strings.TrimSpace(args.ID) == "" {
			return nil, types.NewMCPError(types.CodeMissingID, "Task ID is required", map[string]interface{}{
				"field": "id",
			})
		}

		updates := make(map[string]interface{})
		if args.Title != "" {
			updates["title"] = args.Title
		}
		if args.Description != "" {
			updates["description"] = args.Description
		}
		if args.Status != "" {
			updates["status"] = args.Status
		}
		if args.Priority != "" {
			updates["priority"] = args.Priority
		}
		if len(updates) == 0 {
			return nil, types.NewMCPError(types.CodeNoUpdates, "Provide at least one field to update", nil)
		}

		task, err := taskStore.UpdateTask(args.ID, updates)
		if err != nil {
			return nil, types.WrapMCPError(types.CodeUpdateFailed, err, fmt.Sprintf("Failed to update task %s: %s", args.ID, err), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcp.CallToolResultFor[types.TaskResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Updated task %s", task.ID)},
			},
			StructuredContent: taskToResponse(task),
		}, nil
	}
}

// deleteTaskHandler removes a task by ID
func deleteTaskHandler(taskStore store.TaskStore) mcp.ToolHandlerFor[types.DeleteTaskParams, types.DeleteTaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.DeleteTaskParams]) (*mcp.CallToolResultFor[types.DeleteTaskResponse], error) {
		args := params.Arguments
		logToolCall("delete-task", args)

		if err := taskStore.DeleteTask(args.ID); err != nil {
			return nil, types.WrapMCPError(types.CodeDeleteFailed, err, fmt.Sprintf("Failed to delete task %s: %s", args.ID, err), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcp.CallToolResultFor[types.DeleteTaskResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Deleted task %s", args.ID)},
			},
			StructuredContent: types.DeleteTaskResponse{ID: args.ID, Deleted: true},
		}, nil
	}
}

// markDoneHandler sets a task's status to completed
func markDoneHandler(taskStore store.TaskStore) mcp.ToolHandlerFor[types.MarkDoneParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.MarkDoneParams]) (*mcp.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("mark-done", args)

		task, err := taskStore.MarkTaskDone(args.ID)
		if err != nil {
			return nil, types.WrapMCPError(types.CodeMarkDoneFailed, err, fmt.Sprintf("Failed to complete task %s: %s", args.ID, err), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcp.CallToolResultFor[types.TaskResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Completed task %s: %s", task.ID, task.Title)},
			},
			StructuredContent: taskToResponse(task),
		}, nil
	}
}
