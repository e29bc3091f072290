package testutil

import (
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/google/uuid"
)

// Item options
type ItemOption func(*domain.Item)

func WithStatus(s domain.ItemStatus) ItemOption {
	return func(it *domain.Item) {
		it.Status = s
	}
}

func WithPriority(p domain.Priority) ItemOption {
	return func(it *domain.Item) {
		it.Priority = &p
	}
}

func WithDeadline(d time.Time) ItemOption {
	return func(it *domain.Item) {
		it.DeadlineAt = &d
	}
}

func WithDescription(s string) ItemOption {
	return func(it *domain.Item) {
		it.Description = &s
	}
}

func WithDump(dumpID string) ItemOption {
	return func(it *domain.Item) {
		it.ThoughtDumpID = &dumpID
	}
}

func WithCreatedAt(t time.Time) ItemOption {
	return func(it *domain.Item) {
		it.CreatedAt = t
		it.UpdatedAt = t
	}
}

func WithTags(tags ...string) ItemOption {
	return func(it *domain.Item) {
		it.Metadata.Tags = tags
	}
}

// NewTestItem returns an active, medium-priority task owned by userID.
func NewTestItem(userID, title string, opts ...ItemOption) *domain.Item {
	now := time.Now().UTC().Truncate(time.Second)
	p := domain.PriorityMedium
	it := &domain.Item{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      domain.ItemTask,
		Title:     title,
		Status:    domain.StatusActive,
		Priority:  &p,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// NewTestDump returns a processing text dump in focus mode.
func NewTestDump(userID, content string) *domain.ThoughtDump {
	return &domain.ThoughtDump{
		ID:               uuid.New().String(),
		UserID:           userID,
		Content:          content,
		Source:           domain.SourceText,
		ProcessingStatus: domain.ProcessingInProgress,
		Metadata:         domain.DumpMetadata{Mode: domain.ModeFocus},
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
	}
}

// NewTestNoise returns a noise entry created at the given time.
func NewTestNoise(userID string, at time.Time, tags ...string) *domain.NoiseEntry {
	return &domain.NoiseEntry{
		ID:            uuid.New().String(),
		UserID:        userID,
		Content:       "feeling things",
		EmotionalTags: tags,
		CreatedAt:     at,
	}
}
