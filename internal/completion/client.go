// Package completion generates short city descriptions with a chat
// completion model.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/findfun-api/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o-mini"

var (
	ErrMissingAPIKey = errors.New("completion: api key is not configured")
	ErrEmptyResponse = errors.New("completion: no choices returned")
)

const systemPrompt = `You are a friendly travel guide. Describe the given city for a visitor
planning a day out in two or three sentences. Mention what makes it a good
place for the listed activities. Reply with plain text only.`

// Client wraps the OpenAI chat completion API
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a client from configuration. A client without an API
// key is valid and fails every call with ErrMissingAPIKey.
func NewClient(cfg config.CompletionConfig, logger *zap.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	c := &Client{model: model, logger: logger}
	if cfg.APIKey == "" {
		return c
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	c.client = openai.NewClientWithConfig(clientConfig)
	return c
}

// Describe returns a short description of city in the context of activities
func (c *Client) Describe(ctx context.Context, city string, activities []string) (string, error) {
	if c.client == nil {
		return "", ErrMissingAPIKey
	}

	userPrompt := fmt.Sprintf("City: %s", city)
	if len(activities) > 0 {
		userPrompt += fmt.Sprintf("\nActivities: %s", strings.Join(activities, ", "))
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("city description generated",
		zap.String("city", city),
		zap.String("model", c.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return text, nil
}
