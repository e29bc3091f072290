package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/llm"
	"github.com/alexanderramin/unload/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_NoActiveItemsIsCalmWithoutCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, testutil.NewTestItem("u1", "done already", testutil.WithStatus(domain.StatusDone)))

	view, err := f.claritySv.Generate(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, 0, f.llm.calls)
	assert.Equal(t, domain.CalmMessage, view.Clarity.MorningMessage)
	assert.Empty(t, view.Clarity.FocusItems)
	assert.Empty(t, view.Clarity.ParkedSuggestions)
	assert.Empty(t, view.Clarity.DroppedSuggestions)
	assert.Equal(t, domain.ClarityCalm, view.Clarity.Metadata.Source)
	assert.Empty(t, view.FocusItemDetails)
}

func TestGenerate_FiltersIDsAndResolvesDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, testutil.NewTestItem("u1", "Write report"))
	b := f.seed(t, testutil.NewTestItem("u1", "Book flights"))
	foreign := f.seed(t, testutil.NewTestItem("u2", "Not mine"))
	f.llm.response = fmt.Sprintf(`{"morning_message":"Morning! Two things today.","focus_items":[%q,%q,%q],"parked_suggestions":[],"dropped_suggestions":[],"emotional_context":null}`,
		b.ID, foreign.ID, a.ID)

	view, err := f.claritySv.Generate(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, 1, f.llm.calls)
	assert.Equal(t, llm.TaskClarity, f.llm.last.Task)
	assert.Equal(t, []string{b.ID, a.ID}, view.Clarity.FocusItems)
	require.Len(t, view.FocusItemDetails, 2)
	assert.Equal(t, "Book flights", view.FocusItemDetails[0].Title)
	assert.Equal(t, "2025-03-10", view.Clarity.ClarityDate)
	assert.Equal(t, domain.ClarityGenerated, view.Clarity.Metadata.Source)
	assert.Equal(t, 2, view.Clarity.Metadata.ActiveCount)
}

func TestGenerate_RegenerationReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, testutil.NewTestItem("u1", "Something"))

	f.llm.response = `{"morning_message":"first","focus_items":[]}`
	_, err := f.claritySv.Generate(ctx, "u1")
	require.NoError(t, err)

	f.llm.response = `{"morning_message":"second","focus_items":[]}`
	_, err = f.claritySv.Generate(ctx, "u1")
	require.NoError(t, err)

	n, err := f.clarity.Count(ctx, "u1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	view, err := f.claritySv.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "second", view.Clarity.MorningMessage)
}

func TestGenerate_FailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, testutil.NewTestItem("u1", "Something"))
	f.llm.response = "no json here"

	_, err := f.claritySv.Generate(ctx, "u1")

	assert.ErrorIs(t, err, intelligence.ErrClarityFailed)
	n, err := f.clarity.Count(ctx, "u1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGenerate_UsesEmotionalContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, testutil.NewTestItem("u1", "Something"))
	require.NoError(t, f.noise.Create(ctx, testutil.NewTestNoise("u1", f.now.Add(-time.Hour), "anxious", "tired")))
	require.NoError(t, f.noise.Create(ctx, testutil.NewTestNoise("u1", f.now.Add(-2*time.Hour), "tired", "hopeful")))
	require.NoError(t, f.noise.Create(ctx, testutil.NewTestNoise("u1", f.now.Add(-8*24*time.Hour), "ancient")))
	f.llm.response = `{"morning_message":"hi","focus_items":[]}`

	_, err := f.claritySv.Generate(ctx, "u1")

	require.NoError(t, err)
	assert.Contains(t, f.llm.last.UserPrompt, "Recent emotional context: anxious, tired, hopeful")
	assert.NotContains(t, f.llm.last.UserPrompt, "ancient")
}

func TestToday_NeedsGenerationWithoutCall(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testutil.NewTestItem("u1", "Something"))

	view, err := f.claritySv.Today(context.Background(), "u1")

	require.NoError(t, err)
	assert.True(t, view.NeedsGeneration)
	assert.Nil(t, view.Clarity)
	assert.Equal(t, 0, f.llm.calls)
}

func TestResetToday_NeutralRecordItemsUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "Keep me", testutil.WithPriority(domain.PriorityHigh)))
	f.llm.response = fmt.Sprintf(`{"morning_message":"hi","focus_items":[%q]}`, it.ID)
	_, err := f.claritySv.Generate(ctx, "u1")
	require.NoError(t, err)

	c, err := f.claritySv.ResetToday(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ResetMessage, c.MorningMessage)
	assert.Empty(t, c.FocusItems)

	view, err := f.claritySv.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ResetMessage, view.Clarity.MorningMessage)
	assert.Empty(t, view.FocusItemDetails)

	stored, err := f.items.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.Equal(t, domain.PriorityHigh, *stored.Priority)

	n, err := f.clarity.Count(ctx, "u1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestToday_CachedRecordSeesWriteFromAnotherProcess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "Write report"))
	f.llm.response = fmt.Sprintf(`{"morning_message":"Morning!","focus_items":[%q]}`, it.ID)

	_, err := f.claritySv.Generate(ctx, "u1")
	require.NoError(t, err)
	view, err := f.claritySv.Today(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Morning!", view.Clarity.MorningMessage)

	// A second service over the same database, as a CLI run next to the server would be.
	other := NewClarityService(f.items, f.clarity, f.noiseSvc, intelligence.NewClarityService(f.llm), NewClarityCache(), f.cfg)
	_, err = other.ResetToday(ctx, "u1")
	require.NoError(t, err)

	view, err = f.claritySv.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ResetMessage, view.Clarity.MorningMessage)
	assert.Empty(t, view.FocusItemDetails)
}

func TestClarityDate_UsesConfiguredTimezone(t *testing.T) {
	f := newFixture(t)
	late := time.Date(2025, 3, 11, 2, 30, 0, 0, time.UTC) // 22:30 on the 10th in New York
	f.cfg.Now = func() time.Time { return late }
	f.rebuild(f.uow)

	c, err := f.claritySv.ResetToday(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", c.ClarityDate)
}

func TestNoise_RecordAndRecentTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.noiseSvc.Record(ctx, "u1", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := f.noiseSvc.Record(ctx, "u1", "rough night", []string{"tired", " tired ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"tired"}, n.EmotionalTags)

	for i := 0; i < 12; i++ {
		require.NoError(t, f.noise.Create(ctx, testutil.NewTestNoise("u1", f.now.Add(-time.Duration(i+1)*time.Minute), fmt.Sprintf("t%d", i))))
	}

	tags, err := f.noiseSvc.RecentTags(ctx, "u1")
	require.NoError(t, err)
	// Ten newest entries: the recorded one plus t0..t8.
	require.Len(t, tags, 10)
	assert.Equal(t, "tired", tags[0])
	assert.Equal(t, "t8", tags[9])
}
