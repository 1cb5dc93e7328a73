package taskstream

import (
	"context"
	"fmt"

	"github.com/cliky/cliky/models"
)

// ExpandRequest carries the fields of one complex task to the enrichment
// collaborator.
type ExpandRequest struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Details       string              `json:"details,omitempty"`
	Priority      models.TaskPriority `json:"priority"`
	EstimatedTime string              `json:"estimatedTime,omitempty"`
}

// TaskExpansion is one enrichment result: the subtasks generated for a
// single complex task.
type TaskExpansion struct {
	TaskID   string           `json:"taskId"`
	Subtasks []models.Subtask `json:"subtasks"`
}

// Expander is the enrichment collaborator. It receives one batched
// request for all complex tasks of a run and may fail as a unit; no
// partial-batch semantics are assumed.
type Expander interface {
	ExpandTasks(ctx context.Context, reqs []ExpandRequest) ([]TaskExpansion, error)
}

// expand runs the best-effort enrichment phase for one finalized run. It
// has its own failure domain: any error is downgraded to a warning and
// the tasks simply keep empty subtasks. No retry.
func (s *Session) expand(ctx context.Context, gen int, complex []models.Task) {
	reqs := make([]ExpandRequest, 0, len(complex))
	for _, t := range complex {
		reqs = append(reqs, ExpandRequest{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Details:       t.Details,
			Priority:      t.Priority,
			EstimatedTime: t.EstimatedTime,
		})
	}

	results, err := s.expander.ExpandTasks(ctx, reqs)

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		// session was reset while the request was in flight
		s.mu.Unlock()
		return
	}
	s.expandCancel = nil
	if err != nil {
		s.mu.Unlock()
		if s.cb.OnExpansionWarning != nil {
			s.cb.OnExpansionWarning(fmt.Errorf("expand complex tasks: %w", err))
		}
		return
	}

	// Merge by id: only the matched tasks' subtasks change; order,
	// statuses and every other task stay untouched.
	for _, res := range results {
		if res.TaskID == "" || len(res.Subtasks) == 0 {
			continue
		}
		for i := range s.tasks {
			if s.tasks[i].ID == res.TaskID {
				s.tasks[i].Subtasks = append([]models.Subtask(nil), res.Subtasks...)
				break
			}
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.cb.OnExpansionMerged != nil {
		s.cb.OnExpansionMerged(snapshot)
	}
}
