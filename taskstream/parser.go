package taskstream

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/cliky/cliky/models"
)

// rawLine is the untrusted shape of one JSON-Lines record. The generator
// may emit ids and dependency entries as numbers or strings.
type rawLine struct {
	ID                 any      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Priority           string   `json:"priority"`
	EstimatedTime      string   `json:"estimatedTime"`
	Dependencies       []any    `json:"dependencies"`
	Status             string   `json:"status"`
	Details            string   `json:"details"`
	TestStrategy       string   `json:"testStrategy"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
}

var fenceOpen = regexp.MustCompile("^`{3,}[a-zA-Z0-9_-]*[ \t]*")

// ParseLine converts one line of generator output into a validated Task.
// It is total: any malformed line reports ok=false, it never panics and
// never returns a partially-valid task. Parse strategies are tried in
// order — the line as-is, then with code-fence markers stripped.
func ParseLine(raw string) (models.Task, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return models.Task{}, false
	}

	rec, err := decodeObject(line)
	if err != nil {
		stripped := stripFences(line)
		if stripped == line || stripped == "" {
			return models.Task{}, false
		}
		if rec, err = decodeObject(stripped); err != nil {
			return models.Task{}, false
		}
	}

	id := coerceID(rec.ID)
	title := strings.TrimSpace(rec.Title)
	description := strings.TrimSpace(rec.Description)
	if id == "" || title == "" || description == "" {
		return models.Task{}, false
	}

	task := models.Task{
		ID:                 id,
		Title:              title,
		Description:        description,
		Status:             normalizeStatus(rec.Status),
		Priority:           models.NormalizePriority(rec.Priority),
		EstimatedTime:      strings.TrimSpace(rec.EstimatedTime),
		Dependencies:       coerceIDs(rec.Dependencies),
		Details:            rec.Details,
		TestStrategy:       rec.TestStrategy,
		AcceptanceCriteria: rec.AcceptanceCriteria,
		Subtasks:           []models.Subtask{},
	}
	task.Complexity = Score(task)

	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, false
	}
	return task, true
}

// decodeObject parses s as a single JSON object. Numbers are kept as
// json.Number so integer ids survive coercion without float formatting.
func decodeObject(s string) (rawLine, error) {
	var rec rawLine
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return rawLine{}, err
	}
	return rec, nil
}

// stripFences removes a wrapping Markdown code-fence marker, optionally
// carrying a language tag, from a single line. Generators occasionally
// wrap individual lines this way.
func stripFences(s string) string {
	s = fenceOpen.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// coerceID renders a JSON id value (string or number) as a string key.
func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

func coerceIDs(vs []any) []string {
	if len(vs) == 0 {
		return []string{}
	}
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		if id := coerceID(v); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// normalizeStatus keeps a recognized status and defaults everything else
// to todo; this subsystem itself never changes a task's status.
func normalizeStatus(s string) models.TaskStatus {
	st := models.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if models.ValidStatus(st) {
		return st
	}
	return models.StatusTodo
}
