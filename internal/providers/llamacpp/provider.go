// internal/providers/llamacpp/provider.go
// Package llamacpp provides a ChatProvider backed by llama.cpp's OpenAI-compatible HTTP API.
package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mwiater/gauntlet/internal/appconfig"
	"github.com/mwiater/gauntlet/internal/logging"
	"github.com/mwiater/gauntlet/internal/providers"
)

// Provider implements providers.ChatProvider using llama.cpp's
// /v1/chat/completions endpoint. Requests are non-streaming; llama.cpp
// reports prompt and generation timings in the completion payload, which is
// all the benchmark needs.
type Provider struct {
	client *http.Client
	debug  bool
}

// New constructs a Provider. The HTTP client carries no timeout because the
// benchmark runner races each call against its own per-test deadline.
func New(cfg *appconfig.Config) *Provider {
	return &Provider{
		client: &http.Client{
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		debug: cfg.Debug,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Timings struct {
		PromptMs           float64 `json:"prompt_ms"`
		PredictedMs        float64 `json:"predicted_ms"`
		PredictedN         int     `json:"predicted_n"`
		PredictedPerSecond float64 `json:"predicted_per_second"`
	} `json:"timings"`
}

// Generate sends one prompt and returns the full response with llama.cpp's
// timing metadata mapped onto the provider-neutral fields.
func (p *Provider) Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload := map[string]any{
		"model":    req.Model,
		"messages": messages,
		"stream":   false,
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}
	applyParameters(payload, req.Parameters)

	body, err := json.Marshal(payload)
	if err != nil {
		return providers.GenerateResponse{}, err
	}
	if p.debug {
		logging.LogRequest("GAUNTLET->LLM", req.Host.URL, req.Model, body)
	}

	endpoint := strings.TrimSuffix(req.Host.URL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.GenerateResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return providers.GenerateResponse{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.GenerateResponse{}, err
	}
	if p.debug {
		logging.LogRequest("LLM->GAUNTLET", req.Host.URL, req.Model, respBody)
	}
	if resp.StatusCode >= 400 {
		return providers.GenerateResponse{}, fmt.Errorf("llama.cpp: %s returned %s: %s", endpoint, resp.Status, strings.TrimSpace(string(respBody)))
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return providers.GenerateResponse{}, fmt.Errorf("llama.cpp: could not decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return providers.GenerateResponse{}, fmt.Errorf("llama.cpp: completion contained no choices")
	}

	out := providers.GenerateResponse{
		Text:             completion.Choices[0].Message.Content,
		TTFTMs:           completion.Timings.PromptMs,
		GenerationTimeMs: completion.Timings.PredictedMs,
		TokensGenerated:  completion.Timings.PredictedN,
		TokensPerSecond:  completion.Timings.PredictedPerSecond,
	}
	if out.TokensGenerated == 0 {
		out.TokensGenerated = completion.Usage.CompletionTokens
	}
	return out, nil
}

// Close implements providers.ChatProvider. The HTTP client holds no
// resources beyond idle connections.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// applyParameters copies the configured generation parameters into the
// request payload under llama.cpp's key names. Nil values are omitted so the
// server's own defaults apply.
func applyParameters(payload map[string]any, params appconfig.Parameters) {
	if params.Temperature != nil {
		payload["temperature"] = *params.Temperature
	}
	if params.TopK != nil {
		payload["top_k"] = *params.TopK
	}
	if params.TopP != nil {
		payload["top_p"] = *params.TopP
	}
	if params.MinP != nil {
		payload["min_p"] = *params.MinP
	}
	if params.RepeatPenalty != nil {
		payload["repeat_penalty"] = *params.RepeatPenalty
	}
	if params.Seed != nil {
		payload["seed"] = *params.Seed
	}
}
