package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/taskstream"
)

// fakeChatModel replays canned chunks/replies for collaborator tests.
type fakeChatModel struct {
	chunks    []string
	reply     string
	streamErr error
	genErr    error
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if f.genErr != nil {
		return nil, f.genErr
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func TestGenerator_StreamsIntoSession(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{
		`{"id":1,"title":"A","descri`,
		`ption":"d"}` + "\n" + `{"id":2,`,
		`"title":"B","description":"d"}` + "\n",
	}}

	finalized := make(chan []models.Task, 1)
	session := taskstream.NewSession(taskstream.Callbacks{
		OnFinalized: func(tasks []models.Task) { finalized <- tasks },
	}, taskstream.WithDebounce(5*time.Millisecond))

	g := NewGenerator(fake)
	if err := g.GenerateTasks(context.Background(), "a todo app", session); err != nil {
		t.Fatalf("GenerateTasks() error: %v", err)
	}

	select {
	case tasks := <-finalized:
		if len(tasks) != 2 || tasks[0].ID != "1" || tasks[1].ID != "2" {
			t.Fatalf("finalized tasks = %+v", tasks)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for finalization")
	}
}

func TestGenerator_EmptyStreamFailsRun(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{"sorry, I cannot help with that"}}
	failures := make(chan error, 1)
	session := taskstream.NewSession(taskstream.Callbacks{
		OnFinalizeError: func(err error) { failures <- err },
	})

	g := NewGenerator(fake)
	err := g.GenerateTasks(context.Background(), "a todo app", session)
	if !errors.Is(err, taskstream.ErrNoTasks) {
		t.Fatalf("GenerateTasks() = %v, want ErrNoTasks", err)
	}
	select {
	case <-failures:
	case <-time.After(time.Second):
		t.Fatal("OnFinalizeError not fired")
	}
}

func TestGenerator_TransportErrorFailsSession(t *testing.T) {
	fake := &fakeChatModel{streamErr: errors.New("boom")}
	failures := make(chan error, 1)
	session := taskstream.NewSession(taskstream.Callbacks{
		OnFinalizeError: func(err error) { failures <- err },
	})

	g := NewGenerator(fake)
	if err := g.GenerateTasks(context.Background(), "a todo app", session); err == nil {
		t.Fatal("expected transport error")
	}
	select {
	case err := <-failures:
		if !errors.Is(err, taskstream.ErrStreamFailed) {
			t.Fatalf("session error = %v, want ErrStreamFailed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("OnFinalizeError not fired")
	}
}

func TestExpander_ParsesWrappedResponse(t *testing.T) {
	fake := &fakeChatModel{reply: "```json\n{\"expansions\":[{\"taskId\":\"1\",\"subtasks\":[{\"id\":\"1.1\",\"title\":\"Sub\"}]}]}\n```"}
	e := NewExpander(fake)

	got, err := e.ExpandTasks(context.Background(), []taskstream.ExpandRequest{{ID: "1", Title: "T", Description: "d"}})
	if err != nil {
		t.Fatalf("ExpandTasks() error: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "1" || len(got[0].Subtasks) != 1 {
		t.Fatalf("ExpandTasks() = %+v", got)
	}
}

func TestExpander_MalformedResponse(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose only", "I could not expand these tasks."},
		{"broken json", `{"expansions": [`},
		{"empty expansions", `{"expansions": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpander(&fakeChatModel{reply: tt.reply})
			if _, err := e.ExpandTasks(context.Background(), []taskstream.ExpandRequest{{ID: "1"}}); err == nil {
				t.Fatal("expected error for malformed response")
			}
		})
	}
}

func TestValidateProvider(t *testing.T) {
	for _, ok := range []string{"openai", "anthropic", "gemini", "ollama"} {
		if _, err := ValidateProvider(ok); err != nil {
			t.Errorf("ValidateProvider(%q) error: %v", ok, err)
		}
	}
	if _, err := ValidateProvider("bedrock"); err == nil {
		t.Error("ValidateProvider should reject unknown providers")
	}
}
