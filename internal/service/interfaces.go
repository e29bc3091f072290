package service

import (
	"context"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
)

// CaptureService owns the thought dump lifecycle and the capture pipeline.
type CaptureService interface {
	CreateDump(ctx context.Context, req DumpRequest) (*domain.ThoughtDump, error)
	MarkDumpCompleted(ctx context.Context, userID, dumpID string, extracted int) error
	MarkDumpFailed(ctx context.Context, userID, dumpID, errText string) error
	// InsertItems writes the whole batch in one transaction or nothing.
	InsertItems(ctx context.Context, items []domain.Item) error
	// Process runs dump, extraction, normalization and insert.
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
}

type ItemService interface {
	// List filters by status; "" means active and "all" means every status.
	List(ctx context.Context, userID, status string) ([]*domain.Item, error)
	Get(ctx context.Context, userID, itemID string) (*domain.Item, error)
	ApplyAction(ctx context.Context, userID, itemID string, t domain.Transition) (*domain.Item, error)
	SetPriority(ctx context.Context, userID, itemID string, p domain.Priority) (*domain.Item, error)
	// SetDeadline with nil moves the item to "someday".
	SetDeadline(ctx context.Context, userID, itemID string, deadline *time.Time) (*domain.Item, error)
	Patch(ctx context.Context, userID, itemID string, patch ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, userID, itemID string) error
}

type ClarityService interface {
	// Today returns the stored record for the current date, or a view with
	// NeedsGeneration set when there is none. It never calls the model.
	Today(ctx context.Context, userID string) (*ClarityView, error)
	// Generate (re)computes today's record and replaces any existing one.
	Generate(ctx context.Context, userID string) (*ClarityView, error)
	// ResetToday stores a neutral record for today. Items are untouched.
	ResetToday(ctx context.Context, userID string) (*domain.DailyClarity, error)
}

type NoiseService interface {
	Record(ctx context.Context, userID, content string, tags []string) (*domain.NoiseEntry, error)
	// RecentTags is the emotional context fed to clarity generation.
	RecentTags(ctx context.Context, userID string) ([]string, error)
}

// DumpRequest creates a thought dump.
type DumpRequest struct {
	UserID       string
	Content      string
	Source       domain.Source
	Mode         domain.CaptureMode
	VoiceFileURL *string
}

// ProcessRequest is one capture submission.
type ProcessRequest DumpRequest

type ProcessResult struct {
	ThoughtDumpID  string        `json:"thought_dump_id"`
	ExtractedCount int           `json:"extracted_count"`
	Items          []domain.Item `json:"items"`
}

// ItemPatch combines an action, a priority and a deadline change. Fields
// left nil are not touched. Deadline distinguishes "absent" (DeadlineSet
// false) from "clear" (DeadlineSet true, Deadline nil).
type ItemPatch struct {
	Action      *domain.Action
	ParkedUntil *time.Time
	Priority    *domain.Priority
	DeadlineSet bool
	Deadline    *time.Time
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Action == nil && p.Priority == nil && !p.DeadlineSet && p.ParkedUntil == nil
}

// ClarityView is a clarity record with its focus items resolved.
type ClarityView struct {
	Clarity          *domain.DailyClarity `json:"clarity,omitempty"`
	FocusItemDetails []*domain.Item       `json:"focus_items_details"`
	NeedsGeneration  bool                 `json:"needs_generation"`
}
