package types

// MCP tool parameter and response types.

// AddTaskParams for creating a new task
type AddTaskParams struct {
	Title        string   `json:"title" mcp:"Task title (required)"`
	Description  string   `json:"description" mcp:"Task description (required)"`
	Priority     string   `json:"priority,omitempty" mcp:"Task priority: low, medium, high"`
	Dependencies []string `json:"dependencies,omitempty" mcp:"List of task IDs this task depends on"`
}

// ListTasksParams for listing and filtering tasks
type ListTasksParams struct {
	Status   string `json:"status,omitempty" mcp:"Filter by status: todo, in_progress, completed"`
	Priority string `json:"priority,omitempty" mcp:"Filter by priority: low, medium, high"`
	Search   string `json:"search,omitempty" mcp:"Search in title and description"`
	Complex  bool   `json:"complex,omitempty" mcp:"Only return tasks scored complex enough for expansion"`
}

// GetTaskParams for retrieving a specific task
type GetTaskParams struct {
	ID string `json:"id" mcp:"Task ID to retrieve (required)"`
}

// UpdateTaskParams for updating an existing task
type UpdateTaskParams struct {
	ID          string `json:"id" mcp:"Task ID to update (required)"`
	Title       string `json:"title,omitempty" mcp:"New task title"`
	Description string `json:"description,omitempty" mcp:"New task description"`
	Status      string `json:"status,omitempty" mcp:"New task status: todo, in_progress, completed"`
	Priority    string `json:"priority,omitempty" mcp:"New task priority: low, medium, high"`
}

// DeleteTaskParams for deleting a task
type DeleteTaskParams struct {
	ID string `json:"id" mcp:"Task ID to delete (required)"`
}

// MarkDoneParams for marking a task as completed
type MarkDoneParams struct {
	ID string `json:"id" mcp:"Task ID to mark as done (required)"`
}

// SubtaskResponse is the wire shape of a subtask
type SubtaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// TaskResponse is the wire shape of a single task
type TaskResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Status        string            `json:"status"`
	Priority      string            `json:"priority"`
	Complexity    int               `json:"complexity"`
	EstimatedTime string            `json:"estimatedTime,omitempty"`
	Dependencies  []string          `json:"dependencies,omitempty"`
	Subtasks      []SubtaskResponse `json:"subtasks,omitempty"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

// TaskListResponse is returned by list-tasks
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// DeleteTaskResponse is returned by delete-task
type DeleteTaskResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
