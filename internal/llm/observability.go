package llm

import (
	"io"
	"log/slog"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task         TaskType
	Model        string
	LatencyMs    int64
	Success      bool
	ErrorCode    string
	InputTokens  int
	OutputTokens int
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events through slog.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events as text to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{logger: slog.New(slog.NewTextHandler(w, nil))}
}

// NewSlogObserver logs through an existing logger.
func NewSlogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	attrs := []any{
		"task", event.Task,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"input_tokens", event.InputTokens,
		"output_tokens", event.OutputTokens,
	}
	if !event.Success {
		o.logger.Warn("llm_call", append(attrs, "status", "err", "error_code", event.ErrorCode)...)
		return
	}
	o.logger.Info("llm_call", append(attrs, "status", "ok")...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

// MultiObserver fans one event out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event LLMCallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}
