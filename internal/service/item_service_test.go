package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/repository"
	"github.com/alexanderramin/unload/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionPtr(a domain.Action) *domain.Action        { return &a }
func priorityPtr(p domain.Priority) *domain.Priority { return &p }

func TestPatch_ParkWithoutParkedUntilMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "Taxes"))

	_, err := f.itemSvc.Patch(ctx, "u1", it.ID, ItemPatch{Action: actionPtr(domain.ActionPark)})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	stored, err := f.items.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.Nil(t, stored.ParkedUntil)
	assert.True(t, it.UpdatedAt.Equal(stored.UpdatedAt))
}

func TestApplyAction_DoneThenFocus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "Laundry"))

	done, err := f.itemSvc.ApplyAction(ctx, "u1", it.ID, domain.Transition{Action: domain.ActionDone})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, f.now.Equal(*done.CompletedAt))

	back, err := f.itemSvc.ApplyAction(ctx, "u1", it.ID, domain.Transition{Action: domain.ActionFocus})
	require.NoError(t, err)

	stored, err := f.items.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	for _, got := range []*domain.Item{back, stored} {
		assert.Equal(t, domain.StatusActive, got.Status)
		assert.Nil(t, got.CompletedAt)
		assert.Nil(t, got.DroppedAt)
		assert.Nil(t, got.ParkedUntil)
	}
}

func TestApplyAction_ParkAndDrop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "Gym"))
	until := f.now.Add(48 * time.Hour)

	parked, err := f.itemSvc.ApplyAction(ctx, "u1", it.ID, domain.Transition{Action: domain.ActionPark, ParkedUntil: &until})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusParked, parked.Status)
	assert.True(t, until.Equal(*parked.ParkedUntil))

	dropped, err := f.itemSvc.ApplyAction(ctx, "u1", it.ID, domain.Transition{Action: domain.ActionDrop})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDropped, dropped.Status)
	assert.NotNil(t, dropped.DroppedAt)
	assert.Nil(t, dropped.ParkedUntil)

	past := f.now.Add(-time.Hour)
	_, err = f.itemSvc.ApplyAction(ctx, "u1", it.ID, domain.Transition{Action: domain.ActionPark, ParkedUntil: &past})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.itemSvc.ApplyAction(ctx, "u1", it.ID, domain.Transition{Action: domain.ActionPark, ParkedUntil: &until})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestItemService_OwnershipIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("owner", "Secret"))
	deadline := f.now.Add(time.Hour)

	_, err := f.itemSvc.ApplyAction(ctx, "intruder", it.ID, domain.Transition{Action: domain.ActionDone})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.itemSvc.SetPriority(ctx, "intruder", it.ID, domain.PriorityUrgent)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.itemSvc.SetDeadline(ctx, "intruder", it.ID, &deadline)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.itemSvc.Get(ctx, "intruder", it.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, f.itemSvc.Delete(ctx, "intruder", it.ID), repository.ErrNotFound)

	_, errMissing := f.itemSvc.SetPriority(ctx, "intruder", "no-such-id", domain.PriorityUrgent)
	assert.ErrorIs(t, errMissing, repository.ErrNotFound)

	stored, err := f.items.GetByID(ctx, "owner", it.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.Equal(t, domain.PriorityMedium, *stored.Priority)
	assert.Nil(t, stored.DeadlineAt)
}

func TestSetPriorityAndDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "Report", testutil.WithDeadline(f.now.Add(time.Hour))))

	got, err := f.itemSvc.SetPriority(ctx, "u1", it.ID, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, *got.Priority)

	_, err = f.itemSvc.SetPriority(ctx, "u1", it.ID, "critical")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err = f.itemSvc.SetDeadline(ctx, "u1", it.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.DeadlineAt)

	stored, err := f.items.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DeadlineAt)
	assert.Equal(t, domain.PriorityHigh, *stored.Priority)
}

func TestPatch_FocusWithPriorityUnparksToBench(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	until := f.now.Add(24 * time.Hour)
	it := f.seed(t, testutil.NewTestItem("u1", "Read", testutil.WithPriority(domain.PriorityHigh)))
	_, err := f.itemSvc.ApplyAction(ctx, "u1", it.ID, domain.Transition{Action: domain.ActionPark, ParkedUntil: &until})
	require.NoError(t, err)

	got, err := f.itemSvc.Patch(ctx, "u1", it.ID, ItemPatch{
		Action:   actionPtr(domain.ActionFocus),
		Priority: priorityPtr(domain.PriorityMedium),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, domain.PriorityMedium, *got.Priority)
	assert.Nil(t, got.ParkedUntil)
}

func TestPatch_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "Thing"))
	until := f.now.Add(time.Hour)

	for name, patch := range map[string]ItemPatch{
		"empty":                   {},
		"unknown action":          {Action: actionPtr("snooze")},
		"unknown priority":        {Priority: priorityPtr("critical")},
		"parked_until alone":      {ParkedUntil: &until},
		"parked_until with done":  {Action: actionPtr(domain.ActionDone), ParkedUntil: &until},
		"valid priority bad park": {Priority: priorityPtr(domain.PriorityLow), Action: actionPtr(domain.ActionPark)},
	} {
		_, err := f.itemSvc.Patch(ctx, "u1", it.ID, patch)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}

	stored, err := f.items.GetByID(ctx, "u1", it.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, *stored.Priority)
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, testutil.NewTestItem("u1", "a"))
	f.seed(t, testutil.NewTestItem("u1", "b", testutil.WithStatus(domain.StatusDone)))
	f.seed(t, testutil.NewTestItem("u2", "c"))

	active, err := f.itemSvc.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := f.itemSvc.List(ctx, "u1", StatusAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := f.itemSvc.List(ctx, "u1", "done")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "b", done[0].Title)

	_, err = f.itemSvc.List(ctx, "u1", "archived")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, testutil.NewTestItem("u1", "gone"))

	require.NoError(t, f.itemSvc.Delete(ctx, "u1", it.ID))
	_, err := f.itemSvc.Get(ctx, "u1", it.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, f.itemSvc.Delete(ctx, "u1", it.ID), repository.ErrNotFound)
}
