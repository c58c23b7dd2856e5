// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mwiater/gauntlet/judge"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultTestTimeout is the per-test deadline applied when the config omits one.
	defaultTestTimeout = 30 * time.Second
	// defaultMaxTokens bounds generation when the config omits a budget.
	defaultMaxTokens = 512
)

// Config represents the top-level application configuration. It is an
// explicit record handed to constructors; nothing in the core reads ambient
// process-wide state.
type Config struct {
	Host       Host         `json:"host"`
	Judge      judge.Config `json:"judge,omitempty"`
	Debug      bool         `json:"debug"`
	TimeoutMs  int          `json:"timeoutMs,omitempty"`
	MaxTokens  int          `json:"maxTokens,omitempty"`
	OutputDir  string       `json:"outputDir,omitempty"`
	LogFile    string       `json:"logFile,omitempty"`
	ConfigPath string       `json:"-"`
}

// Host identifies the serving endpoint for the model under test.
type Host struct {
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Type       string     `json:"type,omitempty"`
	Model      string     `json:"model"`
	Parameters Parameters `json:"parameters,omitempty"`
}

// Parameters defines the generation parameters forwarded verbatim to the
// serving backend. The runner treats them as opaque.
type Parameters struct {
	Temperature   *float64 `json:"temperature,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	MinP          *float64 `json:"min_p,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
	Seed          *int     `json:"seed,omitempty"`
	Threads       *int     `json:"threads,omitempty"`
	ContextSize   *int     `json:"context_size,omitempty"`
	BatchSize     *int     `json:"batch_size,omitempty"`
}

// TestTimeout returns the per-test deadline, falling back to the default if
// the config omits or zeroes it.
func (c Config) TestTimeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return defaultTestTimeout
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// MaxTokenBudget returns the generation token budget with its default applied.
func (c Config) MaxTokenBudget() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := strings.TrimSpace(c.LogFile); path != "" {
		return path
	}
	return "gauntlet.log"
}

// OutputDirPath returns the directory benchmark artifacts are written to.
func (c Config) OutputDirPath() string {
	if dir := strings.TrimSpace(c.OutputDir); dir != "" {
		return dir
	}
	return "results"
}

// Load reads the application configuration from the specified path. Judge
// credentials may use ${ENV_VAR} placeholder syntax; they are expanded here
// so the rest of the program only ever sees resolved values.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if strings.TrimSpace(config.Host.URL) == "" {
		return Config{}, errors.New("config must set host.url")
	}
	config.ConfigPath = path
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	config.Judge.APIKey = os.ExpandEnv(config.Judge.APIKey)
	config.Judge.URL = os.ExpandEnv(config.Judge.URL)
	return config, nil
}
