// internal/providers/provider.go

// Package providers defines the interface the benchmark runner uses to reach
// the model under test, independent of the serving backend. Providers report
// whatever timing metadata their backend exposes; the runner imposes
// deadlines externally, so providers carry no timeout of their own.
package providers

import (
	"context"

	"github.com/mwiater/gauntlet/internal/appconfig"
)

// GenerateRequest is one fully-formed prompt sent to the model under test.
// Parameters are forwarded verbatim to the backend.
type GenerateRequest struct {
	Host         appconfig.Host
	Model        string
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Parameters   appconfig.Parameters
}

// GenerateResponse carries the response text plus whatever timing metadata
// the backend reported. A zero metric means the backend did not report it.
type GenerateResponse struct {
	Text             string
	TTFTMs           float64
	GenerationTimeMs float64
	TokensGenerated  int
	TokensPerSecond  float64
}

// ChatProvider is the interface every serving backend implements.
type ChatProvider interface {
	// Generate sends one prompt and blocks until the full response is
	// available. Deadlines come from the caller's context; the provider
	// enforces none internally.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	// Close releases any resources held by the provider.
	Close() error
}
