package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThoughtDumpRepo_CreateAndComplete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteThoughtDumpRepo(testutil.NewTestDB(t))

	d := testutil.NewTestDump("u1", "call the dentist")
	require.NoError(t, repo.Create(ctx, d))

	got, err := repo.GetByID(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessingInProgress, got.ProcessingStatus)
	assert.Equal(t, domain.ModeFocus, got.Metadata.Mode)

	require.NoError(t, got.Complete(2))
	require.NoError(t, repo.UpdateStatus(ctx, got))

	reloaded, err := repo.GetByID(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessingCompleted, reloaded.ProcessingStatus)
	assert.Equal(t, 2, reloaded.Metadata.ExtractedCount)
	assert.Equal(t, "call the dentist", reloaded.Content)
}

func TestThoughtDumpRepo_VoiceFields(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteThoughtDumpRepo(testutil.NewTestDB(t))

	d := testutil.NewTestDump("u1", "transcribed words")
	d.Source = domain.SourceVoice
	url := "voice/u1/1718000000000-memo.webm"
	status := domain.TranscriptionCompleted
	d.VoiceFileURL = &url
	d.TranscriptionStatus = &status
	require.NoError(t, repo.Create(ctx, d))

	got, err := repo.GetByID(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceVoice, got.Source)
	assert.Equal(t, url, *got.VoiceFileURL)
	assert.Equal(t, domain.TranscriptionCompleted, *got.TranscriptionStatus)
}

func TestThoughtDumpRepo_ScopedByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteThoughtDumpRepo(testutil.NewTestDB(t))

	d := testutil.NewTestDump("u1", "mine")
	require.NoError(t, repo.Create(ctx, d))

	_, err := repo.GetByID(ctx, "u2", d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	d.UserID = "u2"
	assert.ErrorIs(t, repo.UpdateStatus(ctx, d), ErrNotFound)

	recent, err := repo.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
