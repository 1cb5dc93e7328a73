package store

import "github.com/cliky/cliky/models"

// TaskStore is the persistence collaborator: a small CRUD surface over
// the task records a generation run produces. Implementations own
// locking and durability; callers treat it as opaque.
type TaskStore interface {
	// Initialize configures the store (file path, data format) and must
	// be called before any other operation.
	Initialize(config map[string]string) error

	// CreateTask adds a new task. An empty ID is assigned by the store;
	// a non-empty ID (e.g. from a generation run) is kept so recorded
	// dependencies stay valid.
	CreateTask(task models.Task) (models.Task, error)

	// ReplaceAllTasks atomically swaps the stored list for the given
	// one, preserving its order. Used to persist a finalized run.
	ReplaceAllTasks(tasks []models.Task) error

	// GetTask retrieves a task by id.
	GetTask(id string) (models.Task, error)

	// UpdateTask applies the given field updates to a task and returns
	// the updated record.
	UpdateTask(id string, updates map[string]interface{}) (models.Task, error)

	// SetSubtasks replaces a task's subtasks, leaving every other field
	// untouched. Used by the expansion merge.
	SetSubtasks(id string, subtasks []models.Subtask) (models.Task, error)

	// MarkTaskDone sets a task's status to completed.
	MarkTaskDone(id string) (models.Task, error)

	// DeleteTask removes a task by id.
	DeleteTask(id string) error

	// DeleteAllTasks removes every task. Destructive.
	DeleteAllTasks() error

	// ListTasks returns tasks in stored order, optionally filtered and
	// re-sorted.
	ListTasks(filterFn func(models.Task) bool, sortFn func([]models.Task) []models.Task) ([]models.Task, error)

	// Close releases the file lock and any other held resources.
	Close() error
}
