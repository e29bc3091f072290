package view

import (
	"sort"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
)

// FocusView is the priority/bench split of the active items.
type FocusView struct {
	Priority []*domain.Item
	Bench    []*domain.Item
}

// OrganizerView is the today/upcoming split of the active items.
type OrganizerView struct {
	Today    []*domain.Item
	Upcoming []*domain.Item
}

func isPriority(it *domain.Item) bool {
	return it.EffectivePriority().IsPriority()
}

func activeOnly(items []*domain.Item) []*domain.Item {
	out := make([]*domain.Item, 0, len(items))
	for _, it := range items {
		if it.Status == domain.StatusActive {
			out = append(out, it)
		}
	}
	return out
}

// sortBySlot orders items morning to evening, keeping input order on ties.
func sortBySlot(items []*domain.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return itemSlot(items[i]) < itemSlot(items[j])
	})
}

// FocusPartition puts up to MaxFocusItems high or urgent items into
// Priority. Everything else, including priority overflow, goes to Bench.
func FocusPartition(items []*domain.Item) FocusView {
	return focusPartition(items, nil)
}

// focusPartition ranks high items by priorityOrder before applying the cap,
// so a session's local order decides which of them hold the slots.
func focusPartition(items []*domain.Item, priorityOrder []string) FocusView {
	var high, rest []*domain.Item
	for _, it := range activeOnly(items) {
		if isPriority(it) {
			high = append(high, it)
		} else {
			rest = append(rest, it)
		}
	}
	sortBySlot(high)
	high = applyOrder(high, priorityOrder)

	v := FocusView{Priority: []*domain.Item{}, Bench: rest}
	if len(high) > domain.MaxFocusItems {
		v.Priority = append(v.Priority, high[:domain.MaxFocusItems]...)
		v.Bench = append(v.Bench, high[domain.MaxFocusItems:]...)
	} else {
		v.Priority = append(v.Priority, high...)
	}
	if v.Bench == nil {
		v.Bench = []*domain.Item{}
	}
	sortBySlot(v.Bench)
	return v
}

// OrganizerPartition puts items without a deadline, or due by the end of
// today in loc, into Today. Later deadlines are Upcoming.
func OrganizerPartition(items []*domain.Item, now time.Time, loc *time.Location) OrganizerView {
	end := intelligence.EndOfDay(now, loc)
	v := OrganizerView{Today: []*domain.Item{}, Upcoming: []*domain.Item{}}
	for _, it := range activeOnly(items) {
		if it.DeadlineAt == nil || !it.DeadlineAt.After(end) {
			v.Today = append(v.Today, it)
		} else {
			v.Upcoming = append(v.Upcoming, it)
		}
	}
	return v
}

// applyOrder reorders items by a remembered id order. Ids that are no
// longer present are ignored; items the order does not know keep their
// relative position after the known ones.
func applyOrder(items []*domain.Item, order []string) []*domain.Item {
	if len(order) == 0 {
		return items
	}
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	out := append([]*domain.Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].ID]
		rj, jok := rank[out[j].ID]
		if iok != jok {
			return iok
		}
		return iok && ri < rj
	})
	return out
}

func ids(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
