package view

import (
	"testing"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestTimeSlot(t *testing.T) {
	tests := []struct {
		title, desc string
		want        int
	}{
		{"Morning run", "", SlotMorning},
		{"Call bank", "before 9:30", SlotMorning},
		{"Take pills", "7am with breakfast", SlotMorning},
		{"Lunch with Sam", "", SlotMidday},
		{"Dentist", "at 2pm", SlotMidday},
		{"Cook dinner", "", SlotEvening},
		{"Gym", "around 6pm", SlotEvening},
		{"File taxes", "", SlotMidday},
		{"EVENING walk", "", SlotEvening},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeSlot(tt.title, tt.desc))
		})
	}
}

func TestFocusPartition_CapsPriorityAndSortsBySlot(t *testing.T) {
	high := testutil.WithPriority(domain.PriorityHigh)
	items := []*domain.Item{
		testutil.NewTestItem("u", "Dinner prep", high),
		testutil.NewTestItem("u", "Taxes", high),
		testutil.NewTestItem("u", "Morning pages", testutil.WithPriority(domain.PriorityUrgent)),
		testutil.NewTestItem("u", "Evening call", high),
		testutil.NewTestItem("u", "Buy stamps"),
		testutil.NewTestItem("u", "Old", testutil.WithStatus(domain.StatusDone), high),
	}

	v := FocusPartition(items)

	assert.Equal(t, []string{"Morning pages", "Taxes", "Dinner prep"}, titles(v.Priority))
	assert.Equal(t, []string{"Buy stamps", "Evening call"}, titles(v.Bench))
}

func TestFocusPartition_NilPriorityIsBench(t *testing.T) {
	it := testutil.NewTestItem("u", "No priority")
	it.Priority = nil

	v := FocusPartition([]*domain.Item{it})

	assert.Empty(t, v.Priority)
	require.Len(t, v.Bench, 1)
}

func TestOrganizerPartition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)

	items := []*domain.Item{
		testutil.NewTestItem("u", "someday"),
		testutil.NewTestItem("u", "tonight", testutil.WithDeadline(time.Date(2025, 3, 10, 23, 59, 0, 0, loc))),
		testutil.NewTestItem("u", "overdue", testutil.WithDeadline(now.Add(-48*time.Hour))),
		testutil.NewTestItem("u", "tomorrow", testutil.WithDeadline(time.Date(2025, 3, 11, 9, 0, 0, 0, loc))),
		testutil.NewTestItem("u", "parked", testutil.WithStatus(domain.StatusParked)),
	}

	v := OrganizerPartition(items, now, loc)

	assert.Equal(t, []string{"someday", "tonight", "overdue"}, titles(v.Today))
	assert.Equal(t, []string{"tomorrow"}, titles(v.Upcoming))
}

func TestApplyOrder_DropsUnknownAppendsNew(t *testing.T) {
	a := testutil.NewTestItem("u", "a")
	b := testutil.NewTestItem("u", "b")
	c := testutil.NewTestItem("u", "c")

	got := applyOrder([]*domain.Item{a, b, c}, []string{c.ID, "gone", a.ID})

	assert.Equal(t, []string{"c", "a", "b"}, titles(got))
}
