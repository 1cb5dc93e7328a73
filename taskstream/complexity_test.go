package taskstream

import (
	"strings"
	"testing"

	"github.com/cliky/cliky/models"
)

func TestScore_PointTable(t *testing.T) {
	tests := []struct {
		name string
		task models.Task
		want int
	}{
		{
			name: "zero points for bare low-priority task",
			task: models.Task{Title: "Tweak copy", Description: "Change a word", Priority: models.PriorityLow},
			want: 0,
		},
		{
			name: "medium priority alone",
			task: models.Task{Title: "Fix typo", Description: "Correct a label", Priority: models.PriorityMedium},
			want: 1,
		},
		{
			name: "two hours",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, EstimatedTime: "2 hours"},
			want: 1,
		},
		{
			name: "four hours",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, EstimatedTime: "4 hrs"},
			want: 2,
		},
		{
			name: "six hours",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, EstimatedTime: "6 hours"},
			want: 3,
		},
		{
			name: "range estimate uses integer before unit",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, EstimatedTime: "3-4 hours"},
			want: 2,
		},
		{
			name: "unparseable estimate",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, EstimatedTime: "a while"},
			want: 0,
		},
		{
			name: "minutes are not hours",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, EstimatedTime: "90 minutes"},
			want: 0,
		},
		{
			name: "combined text at 100 chars",
			task: models.Task{Title: "Task", Description: strings.Repeat("a", 60), Details: strings.Repeat("b", 40), Priority: models.PriorityLow},
			want: 1,
		},
		{
			name: "combined text at 200 chars",
			task: models.Task{Title: "Task", Description: strings.Repeat("a", 200), Priority: models.PriorityLow},
			want: 2,
		},
		{
			name: "one dependency",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, Dependencies: []string{"1"}},
			want: 1,
		},
		{
			name: "two dependencies",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityLow, Dependencies: []string{"1", "2"}},
			want: 2,
		},
		{
			name: "high priority",
			task: models.Task{Title: "Task", Description: "work", Priority: models.PriorityHigh},
			want: 2,
		},
		{
			name: "risk keyword is flat plus one",
			task: models.Task{Title: "Security migration", Description: "authentication and payment work", Priority: models.PriorityLow},
			want: 1,
		},
		{
			name: "keyword matched case-insensitively in details",
			task: models.Task{Title: "Task", Description: "work", Details: "touches the DATABASE", Priority: models.PriorityLow},
			want: 1,
		},
		{
			name: "everything maxes out at ten",
			task: models.Task{
				Title:         "Integration",
				Description:   strings.Repeat("d", 250),
				Priority:      models.PriorityHigh,
				EstimatedTime: "8 hours",
				Dependencies:  []string{"1", "2", "3"},
			},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.task); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	task := models.Task{
		Title:         "Set up auth",
		Description:   "Integrate OAuth login with third-party provider",
		Priority:      models.PriorityHigh,
		EstimatedTime: "6 hours",
		Dependencies:  []string{"1", "2"},
	}
	first := Score(task)
	for i := 0; i < 100; i++ {
		if got := Score(task); got != first {
			t.Fatalf("Score() not deterministic: got %d then %d", first, got)
		}
	}
}

func TestScore_AuthScenario(t *testing.T) {
	// 6 hours (+3), short description (+0), two dependencies (+2),
	// high priority (+2), risk keyword (+1) = 8
	task := models.Task{
		Title:         "Set up auth",
		Description:   "Integrate OAuth login with third-party provider",
		Priority:      models.PriorityHigh,
		EstimatedTime: "6 hours",
		Dependencies:  []string{"1", "2"},
	}
	if got := Score(task); got != 8 {
		t.Fatalf("Score() = %d, want 8", got)
	}
	task.Complexity = Score(task)
	if !IsComplex(task) {
		t.Error("task with score 8 should be complex")
	}
}

func TestIsComplex_Threshold(t *testing.T) {
	for score := 0; score <= 10; score++ {
		task := models.Task{Complexity: score}
		if got, want := IsComplex(task), score >= ComplexThreshold; got != want {
			t.Errorf("IsComplex(score=%d) = %v, want %v", score, got, want)
		}
	}
}
