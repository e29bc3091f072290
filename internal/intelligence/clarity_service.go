package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/llm"
)

// ErrClarityFailed wraps every provider or parse failure while generating
// a daily clarity plan. There is no degraded output.
var ErrClarityFailed = errors.New("failed to generate clarity")

// ClarityItem is the slice of an active item the model sees.
type ClarityItem struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Type              domain.ItemType     `json:"type"`
	Priority          domain.Priority     `json:"priority"`
	EffortLevel       *domain.EffortLevel `json:"effort_level"`
	SuggestedNextStep *string             `json:"suggested_next_step"`
	OriginalFragment  *string             `json:"original_fragment"`
}

// ClarityItemFrom projects a stored item.
func ClarityItemFrom(it *domain.Item) ClarityItem {
	return ClarityItem{
		ID:                it.ID,
		Title:             it.Title,
		Type:              it.Type,
		Priority:          it.EffectivePriority(),
		EffortLevel:       it.EffortLevel,
		SuggestedNextStep: it.SuggestedNextStep,
		OriginalFragment:  it.OriginalFragment,
	}
}

// ClarityInput is everything one generation call needs.
type ClarityInput struct {
	Items []ClarityItem
	// EmotionalTags are recent tags, newest first and already deduplicated.
	EmotionalTags []string
}

// ClarityPlan is the validated model output.
type ClarityPlan struct {
	MorningMessage     string
	FocusItems         []string
	ParkedSuggestions  []string
	DroppedSuggestions []string
	EmotionalContext   *string
	Model              string
	// Calm is true when no call was made because nothing is active.
	Calm bool
}

type clarityResponse struct {
	MorningMessage     string   `json:"morning_message"`
	FocusItems         []string `json:"focus_items"`
	ParkedSuggestions  []string `json:"parked_suggestions"`
	DroppedSuggestions []string `json:"dropped_suggestions"`
	EmotionalContext   *string  `json:"emotional_context"`
}

// ClarityService picks today's focus items and writes the morning message.
type ClarityService interface {
	Plan(ctx context.Context, in ClarityInput) (*ClarityPlan, error)
}

type clarityService struct {
	client llm.LLMClient
}

// NewClarityService creates a ClarityService backed by an LLM client.
func NewClarityService(client llm.LLMClient) ClarityService {
	return &clarityService{client: client}
}

func (s *clarityService) Plan(ctx context.Context, in ClarityInput) (*ClarityPlan, error) {
	if len(in.Items) == 0 {
		return &ClarityPlan{
			MorningMessage:     domain.CalmMessage,
			FocusItems:         []string{},
			ParkedSuggestions:  []string{},
			DroppedSuggestions: []string{},
			Calm:               true,
		}, nil
	}

	prompt, err := clarityUserPrompt(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClarityFailed, err)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskClarity,
		SystemPrompt: claritySystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClarityFailed, err)
	}

	out, err := llm.ExtractJSON(resp.Text, func(r clarityResponse) error {
		if strings.TrimSpace(r.MorningMessage) == "" {
			return errors.New("morning_message is required")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClarityFailed, err)
	}

	active := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		active[it.ID] = true
	}

	focus := filterIDs(out.FocusItems, active, nil)
	if len(focus) > domain.MaxFocusItems {
		focus = focus[:domain.MaxFocusItems]
	}
	taken := toSet(focus)
	parked := filterIDs(out.ParkedSuggestions, active, taken)
	for _, id := range parked {
		taken[id] = true
	}
	dropped := filterIDs(out.DroppedSuggestions, active, taken)

	var emotional *string
	if out.EmotionalContext != nil {
		emotional = domain.StrPtr(*out.EmotionalContext)
	}

	return &ClarityPlan{
		MorningMessage:     strings.TrimSpace(out.MorningMessage),
		FocusItems:         focus,
		ParkedSuggestions:  parked,
		DroppedSuggestions: dropped,
		EmotionalContext:   emotional,
		Model:              resp.Model,
	}, nil
}

func clarityUserPrompt(in ClarityInput) (string, error) {
	itemsJSON, err := json.MarshalIndent(in.Items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling items: %w", err)
	}
	var b strings.Builder
	b.WriteString("Here are my active items:\n\n")
	b.Write(itemsJSON)
	if len(in.EmotionalTags) > 0 {
		b.WriteString("\n\nRecent emotional context: ")
		b.WriteString(strings.Join(in.EmotionalTags, ", "))
	}
	b.WriteString("\n\nPlease create my daily clarity plan.")
	return b.String(), nil
}

// filterIDs keeps ids present in allowed and absent from exclude, dropping
// duplicates. The result is never nil.
func filterIDs(ids []string, allowed, exclude map[string]bool) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !allowed[id] || exclude[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
