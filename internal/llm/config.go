package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TaskType names a kind of model call. Each has its own sampling and
// timeout budget.
type TaskType string

const (
	// TaskParse turns a free-text project description into line items.
	TaskParse TaskType = "parse"
)

type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides Config.TimeoutMs if > 0
}

// Config is the model endpoint configuration. The parser is off unless
// BUILDSEQ_LLM_ENABLED is set.
type Config struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	TimeoutMs  int
	MaxRetries int
	// RetryBackoffMs is the pause before the n-th retry, multiplied by n.
	RetryBackoffMs int
	Tasks          map[TaskType]TaskConfig
}

func DefaultConfig() Config {
	return Config{
		Endpoint:       "http://localhost:11434",
		Model:          "llama3.2",
		TimeoutMs:      10000,
		MaxRetries:     1,
		RetryBackoffMs: 250,
		Tasks: map[TaskType]TaskConfig{
			TaskParse: {Temperature: 0.1, MaxTokens: 2048, TimeoutMs: 20000},
		},
	}
}

// LoadConfig overlays BUILDSEQ_LLM_* environment variables on the
// defaults. Malformed values are ignored.
func LoadConfig() Config {
	cfg := DefaultConfig()

	envBool("BUILDSEQ_LLM_ENABLED", &cfg.Enabled)
	envBool("BUILDSEQ_LLM_LOG_CALLS", &cfg.LogCalls)
	if v := strings.TrimSpace(os.Getenv("BUILDSEQ_LLM_ENDPOINT")); v != "" {
		cfg.Endpoint = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("BUILDSEQ_LLM_MODEL")); v != "" {
		cfg.Model = v
	}
	envInt("BUILDSEQ_LLM_TIMEOUT_MS", 1, &cfg.TimeoutMs)
	envInt("BUILDSEQ_LLM_MAX_RETRIES", 0, &cfg.MaxRetries)
	envInt("BUILDSEQ_LLM_RETRY_BACKOFF_MS", 0, &cfg.RetryBackoffMs)

	parse := cfg.Tasks[TaskParse]
	envInt("BUILDSEQ_LLM_PARSE_TIMEOUT_MS", 1, &parse.TimeoutMs)
	cfg.Tasks[TaskParse] = parse

	return cfg
}

// Validate reports settings that make an enabled client unusable.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("llm endpoint is required when the parser is enabled")
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("llm endpoint %q must be an http(s) URL", c.Endpoint)
	}
	if c.Model == "" {
		return fmt.Errorf("llm model is required when the parser is enabled")
	}
	return nil
}

// TaskTimeout returns the effective timeout for task in milliseconds.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, min int, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= min {
			*dst = n
		}
	}
}
