package cmd

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/cliky/cliky/llm"
)

// newChatModel builds the configured chat model for commands that talk
// to an LLM.
func newChatModel(ctx context.Context) (model.BaseChatModel, error) {
	config := GetConfig()

	provider, err := llm.ValidateProvider(config.LLM.Provider)
	if err != nil {
		return nil, err
	}

	m, err := llm.NewChatModel(ctx, llm.Config{
		Provider: provider,
		Model:    config.LLM.ModelName,
		APIKey:   config.LLM.APIKey,
		BaseURL:  config.LLM.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", provider, err)
	}
	return m, nil
}
