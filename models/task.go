package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the possible statuses of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is one unit of generated work. IDs are assigned by the upstream
// generator and are only unique within a single generation run.
type Task struct {
	ID                 string       `json:"id" validate:"required"`
	Title              string       `json:"title" validate:"required,min=1"`
	Description        string       `json:"description" validate:"required,min=1"`
	Status             TaskStatus   `json:"status" validate:"required,oneof=todo in_progress completed"`
	Priority           TaskPriority `json:"priority" validate:"required,oneof=low medium high"`
	EstimatedTime      string       `json:"estimatedTime,omitempty"`
	Dependencies       []string     `json:"dependencies,omitempty"`
	Details            string       `json:"details,omitempty"`
	TestStrategy       string       `json:"testStrategy,omitempty"`
	AcceptanceCriteria []string     `json:"acceptanceCriteria,omitempty"`
	// Complexity is always computed locally, never trusted from input.
	Complexity int       `json:"complexity" validate:"min=0,max=10"`
	Subtasks   []Subtask `json:"subtasks,omitempty" validate:"dive"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// Subtask is an enrichment item attached to a complex task after the
// expansion phase. Subtasks are never persisted independently.
type Subtask struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"required,min=1"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed"`
}

// TaskList represents a collection of tasks.
type TaskList struct {
	Tasks      []Task `json:"tasks" validate:"dive"`
	TotalCount int    `json:"totalCount"`
}

// CoreStatuses returns the statuses a task moves through, in order.
func CoreStatuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted}
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// NormalizePriority maps an untrusted priority string to a known level,
// defaulting to medium for anything unrecognized.
func NormalizePriority(p string) TaskPriority {
	switch TaskPriority(strings.ToLower(strings.TrimSpace(p))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// NewTask creates a task with the defaults new tasks start with.
func NewTask(id, title, description string) *Task {
	now := time.Now()
	return &Task{
		ID:           id,
		Title:        title,
		Description:  description,
		Status:       StatusTodo,
		Priority:     PriorityMedium,
		Dependencies: []string{},
		Subtasks:     []Subtask{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
