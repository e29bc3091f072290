package intelligence

import (
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/google/uuid"
)

const (
	TagFocus = "#Focus"
	TagBench = "#Bench"
)

// Normalize converts an extraction result into insertable items owned by
// userID and tied to dumpID. Focus top_3 entries become high priority, bench
// entries medium; organizer entries keep a valid extracted priority. Status
// is always active. A nil or empty result yields an empty slice.
func Normalize(result *ExtractionResult, userID, dumpID string, now time.Time, loc *time.Location) []domain.Item {
	items := []domain.Item{}
	if result == nil {
		return items
	}

	switch {
	case result.Focus != nil:
		for _, e := range result.Focus.Top3 {
			items = append(items, toItem(e, domain.ModeFocus, domain.PriorityHigh, TagFocus, userID, dumpID, now, loc))
		}
		for _, e := range result.Focus.Bench {
			items = append(items, toItem(e, domain.ModeFocus, domain.PriorityMedium, TagBench, userID, dumpID, now, loc))
		}
	case result.Organizer != nil:
		for _, e := range result.Organizer.Items {
			p := domain.Priority(strings.ToLower(strings.TrimSpace(e.Priority)))
			if !p.Valid() {
				p = domain.PriorityMedium
			}
			items = append(items, toItem(e, domain.ModeOrganizer, p, "", userID, dumpID, now, loc))
		}
	}
	return items
}

func toItem(e ExtractedItem, mode domain.CaptureMode, p domain.Priority, bucketTag, userID, dumpID string, now time.Time, loc *time.Location) domain.Item {
	typ := domain.ItemType(strings.ToLower(strings.TrimSpace(e.Type)))
	if !typ.Valid() {
		typ = domain.ItemTask
	}

	var effort *domain.EffortLevel
	if el := domain.EffortLevel(strings.ToLower(strings.TrimSpace(e.EffortLevel))); el.Valid() {
		effort = &el
	}

	var when domain.TimeHint
	if h := domain.TimeHint(strings.ToLower(strings.TrimSpace(e.When))); h.Valid() {
		when = h
	}

	var dump *string
	if dumpID != "" {
		dump = &dumpID
	}

	return domain.Item{
		ID:                uuid.New().String(),
		UserID:            userID,
		ThoughtDumpID:     dump,
		Type:              typ,
		Title:             strings.TrimSpace(e.Title),
		Description:       ComposeDescription(e.EstimatedTime, e.Description),
		OriginalFragment:  domain.StrPtr(e.OriginalFragment),
		Status:            domain.StatusActive,
		Priority:          &p,
		EffortLevel:       effort,
		SuggestedNextStep: domain.StrPtr(e.SuggestedNextStep),
		DeadlineAt:        DeadlineFor(e.DeadlineAt, e.When, now, loc),
		Metadata: domain.ItemMetadata{
			Tags:          mergeTags(bucketTag, e.Tags),
			Subtasks:      nonBlank(e.Subtasks),
			Mode:          mode,
			When:          when,
			EstimatedTime: strings.TrimSpace(e.EstimatedTime),
			EnergyLevel:   strings.TrimSpace(e.EnergyLevel),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// mergeTags puts the bucket tag first and drops blanks and duplicates.
func mergeTags(bucket string, tags []string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			return
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	add(bucket)
	for _, t := range tags {
		add(t)
	}
	return out
}

func nonBlank(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
