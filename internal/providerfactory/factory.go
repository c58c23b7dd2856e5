// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/mwiater/gauntlet/internal/appconfig"
	"github.com/mwiater/gauntlet/internal/providers"
	"github.com/mwiater/gauntlet/internal/providers/llamacpp"
)

// NewChatProvider selects and configures the provider for the configured
// host type. An empty type defaults to llama.cpp, which is where GGUF
// exports of fine-tuned models end up being served.
func NewChatProvider(cfg *appconfig.Config) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Host.Type)) {
	case "", "llamacpp", "llama.cpp":
		return llamacpp.New(cfg), nil
	}
	return nil, fmt.Errorf("unsupported host type %q", cfg.Host.Type)
}
