// Package assistant answers free-form market questions with an
// OpenAI-compatible chat model.
package assistant

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"market-bot/internal/config"
	apperrors "market-bot/internal/errors"
)

// LLMClient defines the interface for LLM interactions.
type LLMClient interface {
	// CompleteWithSystem sends a prompt with a system message.
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// OpenAIClient implements LLMClient using the OpenAI chat API. Any server
// speaking the same protocol works, including a local Ollama.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg config.LLMConfig, apiKey string) *OpenAIClient {
	if apiKey == "" {
		// Ollama ignores the key but the client sends the header regardless.
		apiKey = "ollama"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// CompleteWithSystem sends a prompt with system message to the LLM.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", apperrors.NewAgentError(c.model, "chat_completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewAgentError(c.model, "chat_completion", fmt.Errorf("no choices in response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name.
func (c *OpenAIClient) Model() string {
	return c.model
}
