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

func TestItemRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteItemRepo(testutil.NewTestDB(t))

	deadline := time.Date(2025, 6, 16, 13, 0, 0, 0, time.UTC)
	it := testutil.NewTestItem("u1", "Email landlord",
		testutil.WithDescription("15m · about the lease"),
		testutil.WithDeadline(deadline),
		testutil.WithTags("#Focus"),
	)
	effort := domain.EffortSmall
	it.EffortLevel = &effort
	require.NoError(t, repo.Create(ctx, it))

	got, err := repo.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Email landlord", got.Title)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, domain.PriorityMedium, *got.Priority)
	assert.Equal(t, domain.EffortSmall, *got.EffortLevel)
	assert.Equal(t, "15m · about the lease", *got.Description)
	assert.True(t, deadline.Equal(*got.DeadlineAt))
	assert.Equal(t, []string{"#Focus"}, got.Metadata.Tags)
	assert.Nil(t, got.ThoughtDumpID)
	assert.Nil(t, got.CompletedAt)
}

func TestItemRepo_ForeignOwnerIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteItemRepo(testutil.NewTestDB(t))

	it := testutil.NewTestItem("owner", "Private task")
	require.NoError(t, repo.Create(ctx, it))

	_, err := repo.GetByID(ctx, "intruder", it.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, missingErr := repo.GetByID(ctx, "intruder", "does-not-exist")
	assert.ErrorIs(t, missingErr, ErrNotFound)
	assert.Equal(t, missingErr.Error(), err.Error(), "foreign and missing must look the same")

	it.UserID = "intruder"
	it.Title = "hijacked"
	assert.ErrorIs(t, repo.Update(ctx, it), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "intruder", it.ID), ErrNotFound)

	got, err := repo.GetByID(ctx, "owner", it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private task", got.Title)
}

func TestItemRepo_UpdateWritesLifecycleFields(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteItemRepo(testutil.NewTestDB(t))

	it := testutil.NewTestItem("u1", "Pay rent")
	require.NoError(t, repo.Create(ctx, it))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, it.Apply(domain.Transition{Action: domain.ActionDone}, now))
	require.NoError(t, repo.Update(ctx, it))

	got, err := repo.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, now.Equal(*got.CompletedAt))

	require.NoError(t, got.Apply(domain.Transition{Action: domain.ActionFocus}, now))
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, again.Status)
	assert.Nil(t, again.CompletedAt)
	assert.Nil(t, again.ParkedUntil)
	assert.Nil(t, again.DroppedAt)
}

func TestItemRepo_ListByUserFiltersStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteItemRepo(testutil.NewTestDB(t))
	base := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	older := testutil.NewTestItem("u1", "older", testutil.WithCreatedAt(base))
	newer := testutil.NewTestItem("u1", "newer", testutil.WithCreatedAt(base.Add(time.Minute)))
	done := testutil.NewTestItem("u1", "done", testutil.WithStatus(domain.StatusDone))
	other := testutil.NewTestItem("u2", "someone else")
	for _, it := range []*domain.Item{older, newer, done, other} {
		require.NoError(t, repo.Create(ctx, it))
	}

	active, err := repo.ListByUser(ctx, "u1", domain.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "newer", active[0].Title, "newest first")
	assert.Equal(t, "older", active[1].Title)

	all, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestItemRepo_ListByIDsKeepsOrderAndOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteItemRepo(testutil.NewTestDB(t))

	a := testutil.NewTestItem("u1", "a")
	b := testutil.NewTestItem("u1", "b")
	foreign := testutil.NewTestItem("u2", "foreign")
	for _, it := range []*domain.Item{a, b, foreign} {
		require.NoError(t, repo.Create(ctx, it))
	}

	got, err := repo.ListByIDs(ctx, "u1", []string{b.ID, foreign.ID, a.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
}

func TestItemRepo_ListUsersWithActiveItems(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteItemRepo(testutil.NewTestDB(t))

	require.NoError(t, repo.Create(ctx, testutil.NewTestItem("u2", "x")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestItem("u1", "y")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestItem("u1", "z")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestItem("u3", "gone", testutil.WithStatus(domain.StatusDropped))))

	users, err := repo.ListUsersWithActiveItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestItemRepo_DumpReferenceSurvivesAndLists(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	dumps := NewSQLiteThoughtDumpRepo(database)
	items := NewSQLiteItemRepo(database)

	dump := testutil.NewTestDump("u1", "call mom, buy milk")
	require.NoError(t, dumps.Create(ctx, dump))
	require.NoError(t, items.Create(ctx, testutil.NewTestItem("u1", "Call mom", testutil.WithDump(dump.ID))))
	require.NoError(t, items.Create(ctx, testutil.NewTestItem("u1", "Buy milk", testutil.WithDump(dump.ID))))

	got, err := items.ListByDump(ctx, "u1", dump.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Call mom", got[0].Title)
	assert.Equal(t, dump.ID, *got[1].ThoughtDumpID)
}
