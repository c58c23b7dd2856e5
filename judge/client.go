// judge/client.go
package judge

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Config identifies the external judge endpoint and model. APIKey may carry
// an ${ENV_VAR} placeholder in the config file; it is expanded during config
// loading, before the client is built.
type Config struct {
	URL    string `json:"url,omitempty"`
	APIKey string `json:"apiKey,omitempty"`
	Model  string `json:"model,omitempty"`
}

// Caller sends a completed grading prompt to an external judge and returns
// the raw reply text.
type Caller interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is a Caller backed by an OpenAI-compatible chat completion
// endpoint. The URL may point at a hosted provider or a local llama.cpp
// server acting as judge.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a judge client from its configuration.
func NewClient(cfg Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.URL != "" {
		clientConfig.BaseURL = cfg.URL
	}
	return &Client{
		api:   openai.NewClientWithConfig(clientConfig),
		model: cfg.Model,
	}
}

// Model returns the judge's configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the grading prompt as a single user message and returns the
// judge's raw reply. Temperature is pinned to zero to keep verdicts as
// stable as the judge model allows.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("judge request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("judge returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
