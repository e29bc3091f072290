package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func lifecycleFieldsSet(it *Item) int {
	n := 0
	for _, f := range []*time.Time{it.CompletedAt, it.DroppedAt, it.ParkedUntil} {
		if f != nil {
			n++
		}
	}
	return n
}

func TestApply_Done(t *testing.T) {
	it := &Item{Status: StatusActive}
	require.NoError(t, it.Apply(Transition{Action: ActionDone}, testNow))

	assert.Equal(t, StatusDone, it.Status)
	require.NotNil(t, it.CompletedAt)
	assert.Equal(t, testNow, *it.CompletedAt)
	assert.Equal(t, testNow, it.UpdatedAt)
	assert.Equal(t, 1, lifecycleFieldsSet(it))
}

func TestApply_DoneTwiceKeepsFirstTimestamp(t *testing.T) {
	earlier := testNow.Add(-time.Hour)
	it := &Item{Status: StatusDone, CompletedAt: &earlier}
	require.NoError(t, it.Apply(Transition{Action: ActionDone}, testNow))
	assert.Equal(t, earlier, *it.CompletedAt)
}

func TestApply_ParkRequiresUntil(t *testing.T) {
	it := &Item{Status: StatusActive}
	err := it.Apply(Transition{Action: ActionPark}, testNow)

	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, StatusActive, it.Status, "item must not change")
	assert.Nil(t, it.ParkedUntil)
}

func TestApply_ParkRejectsPast(t *testing.T) {
	it := &Item{Status: StatusActive}
	err := it.Apply(Transition{Action: ActionPark, ParkedUntil: ptrTime(testNow.Add(-time.Minute))}, testNow)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestApply_Park(t *testing.T) {
	until := testNow.Add(48 * time.Hour)
	it := &Item{Status: StatusActive}
	require.NoError(t, it.Apply(Transition{Action: ActionPark, ParkedUntil: &until}, testNow))

	assert.Equal(t, StatusParked, it.Status)
	assert.Equal(t, until, *it.ParkedUntil)
	assert.Equal(t, 1, lifecycleFieldsSet(it))
}

func TestApply_Drop(t *testing.T) {
	until := testNow.Add(time.Hour)
	it := &Item{Status: StatusParked, ParkedUntil: &until}
	require.NoError(t, it.Apply(Transition{Action: ActionDrop}, testNow))

	assert.Equal(t, StatusDropped, it.Status)
	assert.Equal(t, testNow, *it.DroppedAt)
	assert.Nil(t, it.ParkedUntil, "drop clears parked_until")
	assert.Equal(t, 1, lifecycleFieldsSet(it))
}

func TestApply_FocusClearsEverything(t *testing.T) {
	cases := []*Item{
		{Status: StatusDone, CompletedAt: ptrTime(testNow)},
		{Status: StatusParked, ParkedUntil: ptrTime(testNow.Add(time.Hour))},
		{Status: StatusDropped, DroppedAt: ptrTime(testNow)},
		{Status: StatusActive},
	}
	for _, it := range cases {
		from := it.Status
		require.NoError(t, it.Apply(Transition{Action: ActionFocus}, testNow), "from %s", from)
		assert.Equal(t, StatusActive, it.Status)
		assert.Zero(t, lifecycleFieldsSet(it), "from %s", from)
	}
}

func TestApply_RejectsIllegalTransitions(t *testing.T) {
	cases := []struct {
		from   ItemStatus
		action Action
	}{
		{StatusDropped, ActionDone},
		{StatusDone, ActionPark},
		{StatusDone, ActionDrop},
		{StatusDropped, ActionPark},
	}
	for _, tc := range cases {
		it := &Item{Status: tc.from}
		tr := Transition{Action: tc.action}
		if tc.action == ActionPark {
			tr.ParkedUntil = ptrTime(testNow.Add(time.Hour))
		}
		err := it.Apply(tr, testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.action)
		assert.Equal(t, tc.from, it.Status)
	}
}

func TestApply_AcceptsAllowedSources(t *testing.T) {
	cases := []struct {
		from   ItemStatus
		action Action
	}{
		{StatusActive, ActionDone}, {StatusParked, ActionDone}, {StatusDone, ActionDone},
		{StatusActive, ActionPark}, {StatusParked, ActionPark},
		{StatusActive, ActionDrop}, {StatusParked, ActionDrop}, {StatusDropped, ActionDrop},
		{StatusActive, ActionFocus}, {StatusParked, ActionFocus}, {StatusDone, ActionFocus}, {StatusDropped, ActionFocus},
	}
	for _, tc := range cases {
		it := &Item{Status: tc.from}
		tr := Transition{Action: tc.action}
		if tc.action == ActionPark {
			tr.ParkedUntil = ptrTime(testNow.Add(time.Hour))
		}
		require.NoError(t, it.Apply(tr, testNow), "%s -> %s", tc.from, tc.action)
		assert.LessOrEqual(t, lifecycleFieldsSet(it), 1)
	}
}

func TestApply_UnknownAction(t *testing.T) {
	it := &Item{Status: StatusActive}
	assert.ErrorIs(t, it.Apply(Transition{Action: "snooze"}, testNow), ErrInvalidInput)
}

func TestSetPriority(t *testing.T) {
	it := &Item{Status: StatusParked}
	require.NoError(t, it.SetPriority(PriorityUrgent, testNow))
	assert.Equal(t, PriorityUrgent, it.EffectivePriority())
	assert.Equal(t, StatusParked, it.Status, "priority is independent of status")

	assert.ErrorIs(t, it.SetPriority("critical", testNow), ErrInvalidInput)
}

func TestSetDeadline_NilMeansSomeday(t *testing.T) {
	it := &Item{DeadlineAt: ptrTime(testNow)}
	it.SetDeadline(nil, testNow)
	assert.Nil(t, it.DeadlineAt)
}

func TestEffectivePriority_DefaultsToMedium(t *testing.T) {
	assert.Equal(t, PriorityMedium, (&Item{}).EffectivePriority())
}
