package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/cliky/cliky/prompts"
	"github.com/cliky/cliky/taskstream"
)

// Generator is the upstream text-stream collaborator: it streams a task
// breakdown for a product idea and drives a taskstream.Session with the
// growing buffer, so tasks surface while the model is still writing.
type Generator struct {
	model model.BaseChatModel
}

// NewGenerator wraps a chat model as a task generator.
func NewGenerator(m model.BaseChatModel) *Generator {
	return &Generator{model: m}
}

// GenerateTasks streams the breakdown for idea into session. Each chunk
// updates the session's buffer; on normal end the session is completed
// with the full text, on transport error it is failed. The returned
// error mirrors what the session surfaced.
func (g *Generator) GenerateTasks(ctx context.Context, idea string, session *taskstream.Session) error {
	messages := []*schema.Message{
		schema.SystemMessage(prompts.GenerateTasksSystemPrompt),
		schema.UserMessage(idea),
	}

	stream, err := g.model.Stream(ctx, messages)
	if err != nil {
		err = fmt.Errorf("start task stream: %w", err)
		session.Fail(err)
		return err
	}
	defer stream.Close()

	var buf strings.Builder
	chunks := 0
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			err = fmt.Errorf("recv task stream: %w", err)
			session.Fail(err)
			return err
		}
		if msg.Content == "" {
			continue
		}
		buf.WriteString(msg.Content)
		session.UpdateBuffer(buf.String())
		chunks++
	}
	slog.Debug("task stream ended", "chunks", chunks, "bytes", buf.Len())

	return session.Complete(buf.String())
}
