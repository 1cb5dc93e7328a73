package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/cliky/cliky/prompts"
	"github.com/cliky/cliky/taskstream"
)

// Expander is the enrichment collaborator: one batched request breaking
// a run's complex tasks into subtasks. It implements taskstream.Expander.
type Expander struct {
	model model.BaseChatModel
}

// NewExpander wraps a chat model as a batch task expander.
func NewExpander(m model.BaseChatModel) *Expander {
	return &Expander{model: m}
}

// expansionResponse is the expected wrapper object in the model's reply.
type expansionResponse struct {
	Expansions []taskstream.TaskExpansion `json:"expansions"`
}

// ExpandTasks sends the complex-task batch and parses the returned
// subtask groups. The whole batch fails as a unit; callers treat any
// error as a non-fatal warning.
func (e *Expander) ExpandTasks(ctx context.Context, reqs []taskstream.ExpandRequest) ([]taskstream.TaskExpansion, error) {
	payload, err := json.Marshal(reqs)
	if err != nil {
		return nil, fmt.Errorf("encode expansion batch: %w", err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(prompts.ExpandTasksSystemPrompt),
		schema.UserMessage(string(payload)),
	}

	msg, err := e.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("expansion request: %w", err)
	}

	content := extractJSONObject(msg.Content)
	if content == "" {
		return nil, fmt.Errorf("expansion response contains no JSON object")
	}

	var resp expansionResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("parse expansion response: %w", err)
	}
	if len(resp.Expansions) == 0 {
		return nil, fmt.Errorf("expansion response is empty")
	}
	return resp.Expansions, nil
}

// extractJSONObject cuts the first JSON object out of a model reply,
// tolerating Markdown code fences and prose around it.
func extractJSONObject(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return ""
	}
	return response[start : end+1]
}
