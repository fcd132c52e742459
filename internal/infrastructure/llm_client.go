package infrastructure

import (
	"context"
	"errors"
	"time"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements LLMClient on the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

func NewOpenAIClient(apiKey, model string, logger *logger.Logger) *OpenAIClient {
	c := &OpenAIClient{model: model, logger: logger}
	if apiKey != "" {
		c.client = openai.NewClient(apiKey)
	}
	return c
}

// Complete sends one system+user exchange and returns the raw
// completion text.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.client == nil {
		return "", domain.ErrLLMNotConfigured
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		MaxTokens:   1200,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"model":    c.model,
		"duration": time.Since(start),
		"tokens":   resp.Usage.TotalTokens,
	}).Info("LLM completion finished")

	return resp.Choices[0].Message.Content, nil
}
