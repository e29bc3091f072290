package llm

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskExtract TaskType = "extract"
	TaskClarity TaskType = "clarity"
)

// Provider selects the completion backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Provider         Provider
	APIKey           string
	Endpoint         string
	Model            string
	AnthropicVersion string
	TimeoutMs        int
	LogCalls         bool
	Tasks            map[TaskType]TaskConfig
}

// DefaultConfig returns the production defaults: Anthropic, low temperature
// for extraction and a warmer one for the narrative clarity message.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:         ProviderAnthropic,
		Endpoint:         "https://api.anthropic.com",
		Model:            "claude-sonnet-4-5-20250929",
		AnthropicVersion: "2023-06-01",
		TimeoutMs:        60000,
		Tasks: map[TaskType]TaskConfig{
			TaskExtract: {Temperature: 0.1, MaxTokens: 2048, TimeoutMs: 90000},
			TaskClarity: {Temperature: 0.8, MaxTokens: 2048, TimeoutMs: 60000},
		},
	}
}

// DefaultOllamaEndpoint is used when the provider is Ollama and no endpoint
// was configured.
const DefaultOllamaEndpoint = "http://localhost:11434"

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	if c.TimeoutMs <= 0 {
		return 60000
	}
	return c.TimeoutMs
}

// resolve merges request overrides with the task defaults.
func (c LLMConfig) resolve(req GenerateRequest) (temp float64, maxTokens int) {
	tc := c.Tasks[req.Task]
	temp, maxTokens = tc.Temperature, tc.MaxTokens
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return temp, maxTokens
}
