package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/llm"
)

// DefaultMaxDumpChars bounds a single thought dump.
const DefaultMaxDumpChars = 20000

// ExtractedItem is one candidate task as returned by the model. Every field
// except Title is optional; unknown keys are rejected at decode time.
type ExtractedItem struct {
	Type              string   `json:"type,omitempty"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	OriginalFragment  string   `json:"original_fragment,omitempty"`
	Priority          string   `json:"priority,omitempty"`
	EffortLevel       string   `json:"effort_level,omitempty"`
	EnergyLevel       string   `json:"energy_level,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Subtasks          []string `json:"subtasks,omitempty"`
	SuggestedNextStep string   `json:"suggested_next_step,omitempty"`
	EstimatedTime     string   `json:"estimated_time,omitempty"`
	When              string   `json:"when,omitempty"`
	DeadlineAt        string   `json:"deadline_at,omitempty"`
}

// FocusResult is the Focus mode response shape.
type FocusResult struct {
	Top3  []ExtractedItem `json:"top_3"`
	Bench []ExtractedItem `json:"bench"`
}

// OrganizerResult is the Organizer mode response shape.
type OrganizerResult struct {
	Items []ExtractedItem `json:"items"`
}

// ExtractionResult is a tagged union: exactly one of Focus or Organizer is
// set, matching Mode.
type ExtractionResult struct {
	Mode      domain.CaptureMode
	Focus     *FocusResult
	Organizer *OrganizerResult
	Model     string
}

// Count is the number of extracted entries.
func (r *ExtractionResult) Count() int {
	switch {
	case r == nil:
		return 0
	case r.Focus != nil:
		return len(r.Focus.Top3) + len(r.Focus.Bench)
	case r.Organizer != nil:
		return len(r.Organizer.Items)
	}
	return 0
}

// ExtractionRequest is the input to one extraction call.
type ExtractionRequest struct {
	Content string
	Mode    domain.CaptureMode
	// RecentContext lists titles the model should not extract again.
	RecentContext []string
}

// ExtractionService turns raw capture text into structured candidate tasks.
type ExtractionService interface {
	// Extract issues exactly one completion call. Provider failures surface
	// as llm.ErrUnauthorized, llm.ErrRateLimited, llm.ErrUnavailable or
	// llm.ErrTimeout; a response that does not match the mode's shape
	// surfaces as llm.ErrInvalidOutput.
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error)
}

type extractionService struct {
	client   llm.LLMClient
	maxChars int
}

// NewExtractionService creates an ExtractionService. maxChars <= 0 uses
// DefaultMaxDumpChars.
func NewExtractionService(client llm.LLMClient, maxChars int) ExtractionService {
	if maxChars <= 0 {
		maxChars = DefaultMaxDumpChars
	}
	return &extractionService{client: client, maxChars: maxChars}
}

// ValidateContent checks the capture text bounds.
func ValidateContent(content string, maxChars int) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(content); n > maxChars {
		return fmt.Errorf("%w: content is %d characters, maximum is %d", domain.ErrInvalidInput, n, maxChars)
	}
	return nil
}

func (s *extractionService) Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, req.Mode)
	}
	if err := ValidateContent(req.Content, s.maxChars); err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskExtract,
		SystemPrompt: ExtractionPrompt(req.Mode, req.RecentContext),
		UserPrompt:   req.Content,
	})
	if err != nil {
		return nil, err
	}

	result, err := DecodeExtraction(req.Mode, resp.Text)
	if err != nil {
		return nil, err
	}
	result.Model = resp.Model
	return result, nil
}

// DecodeExtraction strict-decodes raw model text against the schema for mode.
func DecodeExtraction(mode domain.CaptureMode, raw string) (*ExtractionResult, error) {
	switch mode {
	case domain.ModeFocus:
		focus, err := llm.DecodeStrict(raw, validateFocus)
		if err != nil {
			return nil, err
		}
		return &ExtractionResult{Mode: mode, Focus: &focus}, nil
	case domain.ModeOrganizer:
		org, err := llm.DecodeStrict(raw, validateOrganizer)
		if err != nil {
			return nil, err
		}
		return &ExtractionResult{Mode: mode, Organizer: &org}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, mode)
	}
}

func validateFocus(r FocusResult) error {
	if r.Top3 == nil && r.Bench == nil {
		return errors.New("expected top_3 and bench")
	}
	return validateEntries(append(append([]ExtractedItem{}, r.Top3...), r.Bench...))
}

func validateOrganizer(r OrganizerResult) error {
	if r.Items == nil {
		return errors.New("expected items")
	}
	return validateEntries(r.Items)
}

func validateEntries(items []ExtractedItem) error {
	for i, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			return fmt.Errorf("entry %d has an empty title", i)
		}
	}
	return nil
}
