package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClarityRepo_UpsertTwiceKeepsOneRowSecondWins(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteDailyClarityRepo(testutil.NewTestDB(t))
	now := time.Now().UTC().Truncate(time.Second)

	first := &domain.DailyClarity{
		UserID:         "u1",
		ClarityDate:    "2025-06-15",
		MorningMessage: "first",
		FocusItems:     []string{"a", "b"},
		CreatedAt:      now,
	}
	require.NoError(t, repo.Upsert(ctx, first))
	firstID := first.ID

	emotion := "a bit scattered"
	second := &domain.DailyClarity{
		UserID:            "u1",
		ClarityDate:       "2025-06-15",
		MorningMessage:    "second",
		FocusItems:        []string{"c"},
		ParkedSuggestions: []string{"a"},
		EmotionalContext:  &emotion,
		CreatedAt:         now.Add(time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, second))

	n, err := repo.Count(ctx, "u1", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.Get(ctx, "u1", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "second", got.MorningMessage)
	assert.Equal(t, []string{"c"}, got.FocusItems)
	assert.Equal(t, []string{"a"}, got.ParkedSuggestions)
	assert.Equal(t, []string{}, got.DroppedSuggestions)
	assert.Equal(t, emotion, *got.EmotionalContext)
	assert.Equal(t, firstID, got.ID, "row identity is kept across upserts")
	assert.Equal(t, firstID, second.ID, "caller's record reflects the stored row")
	assert.NotNil(t, got.UpdatedAt)
}

func TestClarityRepo_UpdatedAtTracksEachWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteDailyClarityRepo(testutil.NewTestDB(t))

	_, err := repo.UpdatedAt(ctx, "u1", "2025-06-15")
	assert.ErrorIs(t, err, ErrNotFound)

	c := &domain.DailyClarity{UserID: "u1", ClarityDate: "2025-06-15", MorningMessage: "first", CreatedAt: time.Now()}
	require.NoError(t, repo.Upsert(ctx, c))
	first, err := repo.UpdatedAt(ctx, "u1", "2025-06-15")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Equal(*c.UpdatedAt))

	c.MorningMessage = "second"
	require.NoError(t, repo.Upsert(ctx, c))
	second, err := repo.UpdatedAt(ctx, "u1", "2025-06-15")
	require.NoError(t, err)
	assert.False(t, second.Before(*first))
	assert.True(t, second.Equal(*c.UpdatedAt))

	_, err = repo.UpdatedAt(ctx, "u2", "2025-06-15")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClarityRepo_GetMissing(t *testing.T) {
	repo := NewSQLiteDailyClarityRepo(testutil.NewTestDB(t))
	_, err := repo.Get(context.Background(), "u1", "2025-06-15")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClarityRepo_SeparateUsersAndDates(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteDailyClarityRepo(testutil.NewTestDB(t))
	now := time.Now().UTC()

	for _, c := range []*domain.DailyClarity{
		domain.NeutralClarity("u1", "2025-06-15", "a", domain.ClarityCalm, now),
		domain.NeutralClarity("u1", "2025-06-16", "b", domain.ClarityCalm, now),
		domain.NeutralClarity("u2", "2025-06-15", "c", domain.ClarityCalm, now),
	} {
		require.NoError(t, repo.Upsert(ctx, c))
	}

	got, err := repo.Get(ctx, "u2", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "c", got.MorningMessage)
	assert.Equal(t, domain.ClarityCalm, got.Metadata.Source)
}

func TestNoiseRepo_ListSinceNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteNoiseLogRepo(testutil.NewTestDB(t))
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, testutil.NewTestNoise("u1", now.AddDate(0, 0, -10), "ancient")))
	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Create(ctx, testutil.NewTestNoise("u1", now.Add(-time.Duration(i)*time.Hour), "tired")))
	}
	require.NoError(t, repo.Create(ctx, testutil.NewTestNoise("u2", now, "other")))

	got, err := repo.ListSince(ctx, "u1", now.AddDate(0, 0, -7), 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.True(t, got[0].CreatedAt.Equal(now), "newest first")
	for _, n := range got {
		assert.Equal(t, "u1", n.UserID)
		assert.Equal(t, []string{"tired"}, n.EmotionalTags)
	}
}
