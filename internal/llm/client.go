package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text         string
	Model        string
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
}

// LLMClient provides access to a language model for text generation.
// Each Generate issues exactly one request; there are no retries.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available reports whether the provider looks usable.
	Available(ctx context.Context) bool
}

// NewClient builds the client for cfg.Provider.
func NewClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderAnthropic, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: anthropic api key is not configured", ErrUnauthorized)
		}
		return NewAnthropicClient(cfg, observer), nil
	case ProviderOllama:
		return NewOllamaClient(cfg, observer), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
		},
	}
}

// anthropicClient calls the Anthropic Messages API.
type anthropicClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewAnthropicClient creates an LLMClient backed by the Messages API.
func NewAnthropicClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &anthropicClient{cfg: cfg, http: newHTTPClient(), observer: observer}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	temp, maxTok := c.cfg.resolve(req)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TaskTimeout(req.Task))*time.Millisecond)
	defer cancel()

	body := anthropicRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxTok,
		Temperature: temp,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
	}

	resp, err := c.doRequest(ctx, body)
	if err != nil {
		err = classify(ctx, err)
		c.observer.OnCallComplete(LLMCallEvent{
			Task:      req.Task,
			Model:     c.cfg.Model,
			LatencyMs: time.Since(start).Milliseconds(),
			ErrorCode: errorCode(err),
		})
		return nil, err
	}

	latency := time.Since(start).Milliseconds()
	c.observer.OnCallComplete(LLMCallEvent{
		Task:         req.Task,
		Model:        resp.Model,
		LatencyMs:    latency,
		Success:      true,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: no text content in response", ErrInvalidOutput)
	}

	return &GenerateResponse{
		Text:         text.String(),
		Model:        resp.Model,
		LatencyMs:    latency,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

func (c *anthropicClient) doRequest(ctx context.Context, body anthropicRequest) (*anthropicResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", c.cfg.AnthropicVersion)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, statusError("anthropic", httpResp.StatusCode, respBody)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response envelope: %v", ErrInvalidOutput, err)
	}
	return &resp, nil
}

// Available only checks that a key is configured; the Messages API has no
// free health endpoint.
func (c *anthropicClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}

// classify turns transport failures into sentinels. Errors that already
// carry a sentinel pass through.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrUnavailable), errors.Is(err, ErrInvalidOutput):
		return err
	case ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
