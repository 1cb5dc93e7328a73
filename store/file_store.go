package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	yaml "gopkg.in/yaml.v3"

	"github.com/cliky/cliky/models"
)

const (
	defaultDataFile   = "tasks.json"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"
)

// ErrTaskNotFound is returned for lookups of unknown task ids.
var ErrTaskNotFound = errors.New("task not found")

// taskFile is the on-disk shape. Order is significant: it is the order
// tasks were first parsed in.
type taskFile struct {
	Tasks []models.Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// FileTaskStore implements TaskStore with a single data file in JSON,
// YAML, or TOML, guarded by an OS-level file lock held from Initialize
// to Close.
type FileTaskStore struct {
	filePath string
	format   string
	flk      *flock.Flock
	tasks    []models.Task
	index    map[string]int
}

// NewFileTaskStore creates an uninitialized store; Initialize must be
// called before use.
func NewFileTaskStore() *FileTaskStore {
	return &FileTaskStore{index: make(map[string]int)}
}

// Initialize configures the store, acquires the file lock, and loads
// existing tasks if the data file exists.
func (s *FileTaskStore) Initialize(config map[string]string) error {
	s.filePath = config[dataFileKey]
	if s.filePath == "" {
		s.filePath = defaultDataFile
	}
	s.format = strings.ToLower(config[dataFileFormatKey])
	if s.format == "" {
		s.format = formatFromExtension(s.filePath)
	}
	switch s.format {
	case formatJSON, formatYAML, formatTOML:
	default:
		return fmt.Errorf("unsupported data format %q", s.format)
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	s.flk = flock.New(s.filePath + ".lock")
	locked, err := s.flk.TryLock()
	if err != nil {
		return fmt.Errorf("acquire task file lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("task file %s is locked by another process", s.filePath)
	}

	if err := s.load(); err != nil {
		_ = s.flk.Unlock()
		return err
	}
	return nil
}

func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

func (s *FileTaskStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.tasks = nil
		s.reindex()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read task file: %w", err)
	}
	if err := s.verifyChecksum(data); err != nil {
		return err
	}

	var file taskFile
	switch s.format {
	case formatJSON:
		err = json.Unmarshal(data, &file)
	case formatYAML:
		err = yaml.Unmarshal(data, &file)
	case formatTOML:
		err = toml.Unmarshal(data, &file)
	}
	if err != nil {
		return fmt.Errorf("decode task file %s: %w", s.filePath, err)
	}
	s.tasks = file.Tasks
	s.reindex()
	return nil
}

func (s *FileTaskStore) save() error {
	file := taskFile{Tasks: s.tasks}
	var (
		data []byte
		err  error
	)
	switch s.format {
	case formatJSON:
		data, err = json.MarshalIndent(file, "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(file)
	case formatTOML:
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(file)
		data = []byte(sb.String())
	}
	if err != nil {
		return fmt.Errorf("encode task file: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace task file: %w", err)
	}
	sum := sha256.Sum256(data)
	if err := os.WriteFile(s.filePath+checksumSuffix, []byte(hex.EncodeToString(sum[:])), 0o644); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	return nil
}

func (s *FileTaskStore) verifyChecksum(data []byte) error {
	stored, err := os.ReadFile(s.filePath + checksumSuffix)
	if errors.Is(err, os.ErrNotExist) {
		// legacy file without a sidecar; accepted once, rewritten on save
		return nil
	}
	if err != nil {
		return fmt.Errorf("read checksum: %w", err)
	}
	sum := sha256.Sum256(data)
	if strings.TrimSpace(string(stored)) != hex.EncodeToString(sum[:]) {
		return fmt.Errorf("task file %s failed checksum verification", s.filePath)
	}
	return nil
}

func (s *FileTaskStore) reindex() {
	s.index = make(map[string]int, len(s.tasks))
	for i, t := range s.tasks {
		s.index[t.ID] = i
	}
}

// CreateTask adds a task, assigning a UUID when no id is supplied.
func (s *FileTaskStore) CreateTask(task models.Task) (models.Task, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if _, exists := s.index[task.ID]; exists {
		return models.Task{}, fmt.Errorf("task %s already exists", task.ID)
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	s.tasks = append(s.tasks, task)
	s.index[task.ID] = len(s.tasks) - 1
	if err := s.save(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ReplaceAllTasks swaps the stored list for a finalized run's list.
func (s *FileTaskStore) ReplaceAllTasks(tasks []models.Task) error {
	now := time.Now()
	next := make([]models.Task, len(tasks))
	for i, t := range tasks {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
		if err := models.ValidateStruct(t); err != nil {
			return fmt.Errorf("invalid task %s: %w", t.ID, err)
		}
		next[i] = t
	}
	s.tasks = next
	s.reindex()
	return s.save()
}

// GetTask retrieves a task by id.
func (s *FileTaskStore) GetTask(id string) (models.Task, error) {
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.tasks[i], nil
}

// UpdateTask applies a narrow set of field updates: title, description,
// priority, status, estimatedTime, details.
func (s *FileTaskStore) UpdateTask(id string, updates map[string]interface{}) (models.Task, error) {
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	task := s.tasks[i]
	for field, value := range updates {
		str, isStr := value.(string)
		if !isStr {
			return models.Task{}, fmt.Errorf("field %q expects a string value", field)
		}
		switch field {
		case "title":
			task.Title = str
		case "description":
			task.Description = str
		case "priority":
			task.Priority = models.NormalizePriority(str)
		case "status":
			st := models.TaskStatus(str)
			if !models.ValidStatus(st) {
				return models.Task{}, fmt.Errorf("invalid status %q", str)
			}
			task.Status = st
		case "estimatedTime":
			task.EstimatedTime = str
		case "details":
			task.Details = str
		default:
			return models.Task{}, fmt.Errorf("field %q cannot be updated", field)
		}
	}
	task.UpdatedAt = time.Now()
	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, fmt.Errorf("invalid update: %w", err)
	}
	s.tasks[i] = task
	if err := s.save(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// SetSubtasks replaces a task's subtasks only; the expansion merge path.
func (s *FileTaskStore) SetSubtasks(id string, subtasks []models.Subtask) (models.Task, error) {
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.tasks[i].Subtasks = append([]models.Subtask(nil), subtasks...)
	s.tasks[i].UpdatedAt = time.Now()
	if err := s.save(); err != nil {
		return models.Task{}, err
	}
	return s.tasks[i], nil
}

// MarkTaskDone sets a task's status to completed.
func (s *FileTaskStore) MarkTaskDone(id string) (models.Task, error) {
	return s.UpdateTask(id, map[string]interface{}{"status": string(models.StatusCompleted)})
}

// DeleteTask removes a task by id.
func (s *FileTaskStore) DeleteTask(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.reindex()
	return s.save()
}

// DeleteAllTasks removes every task.
func (s *FileTaskStore) DeleteAllTasks() error {
	s.tasks = nil
	s.reindex()
	return s.save()
}

// ListTasks returns tasks in stored order, optionally filtered and
// re-sorted.
func (s *FileTaskStore) ListTasks(filterFn func(models.Task) bool, sortFn func([]models.Task) []models.Task) ([]models.Task, error) {
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filterFn == nil || filterFn(t) {
			out = append(out, t)
		}
	}
	if sortFn != nil {
		out = sortFn(out)
	}
	return out, nil
}

// Close releases the file lock.
func (s *FileTaskStore) Close() error {
	if s.flk != nil {
		if err := s.flk.Unlock(); err != nil {
			return fmt.Errorf("release task file lock: %w", err)
		}
		s.flk = nil
	}
	return nil
}
