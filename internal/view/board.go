package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/service"
)

// Section names one list on the board.
type Section string

const (
	SectionPriority Section = "priority"
	SectionBench    Section = "bench"
	SectionToday    Section = "today"
	SectionUpcoming Section = "upcoming"
)

// ErrUnknownItem is returned when a board operation names an item that is
// not on the board.
var ErrUnknownItem = errors.New("item not on board")

// Mutator is the server side of the board. service.ItemService satisfies it.
type Mutator interface {
	List(ctx context.Context, userID, status string) ([]*domain.Item, error)
	Patch(ctx context.Context, userID, itemID string, patch service.ItemPatch) (*domain.Item, error)
}

// Confirm sends an optimistic change to the server. If the server rejects
// it, the board reloads the full list and the server error is returned.
type Confirm func(ctx context.Context) error

// Board holds one session's view of the active items. Mutations change the
// local copy immediately and hand back a Confirm for the server round trip.
// Local ordering lives only here and is never persisted.
type Board struct {
	mu     sync.Mutex
	mut    Mutator
	userID string
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger

	items []*domain.Item
	order map[Section][]string
}

type BoardOption func(*Board)

func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

func WithLocation(loc *time.Location) BoardOption {
	return func(b *Board) { b.loc = loc }
}

func WithLogger(l *slog.Logger) BoardOption {
	return func(b *Board) { b.logger = l }
}

func NewBoard(mut Mutator, userID string, opts ...BoardOption) *Board {
	b := &Board{
		mut:    mut,
		userID: userID,
		loc:    time.UTC,
		now:    time.Now,
		logger: slog.Default(),
		order:  map[Section][]string{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the local items with the server's active list. Remembered
// ordering survives and is re-applied on top.
func (b *Board) Load(ctx context.Context) error {
	items, err := b.mut.List(ctx, b.userID, string(domain.StatusActive))
	if err != nil {
		return fmt.Errorf("loading board: %w", err)
	}
	b.mu.Lock()
	b.items = items
	b.mu.Unlock()
	return nil
}

// Focus returns the priority/bench split with local ordering applied.
func (b *Board) Focus() FocusView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focusLocked()
}

func (b *Board) focusLocked() FocusView {
	v := focusPartition(b.items, b.order[SectionPriority])
	return FocusView{
		Priority: v.Priority,
		Bench:    applyOrder(v.Bench, b.order[SectionBench]),
	}
}

// Organizer returns the today/upcoming split with local ordering applied.
func (b *Board) Organizer() OrganizerView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.organizerLocked()
}

func (b *Board) organizerLocked() OrganizerView {
	v := OrganizerPartition(b.items, b.now(), b.loc)
	return OrganizerView{
		Today:    applyOrder(v.Today, b.order[SectionToday]),
		Upcoming: applyOrder(v.Upcoming, b.order[SectionUpcoming]),
	}
}

func (b *Board) sectionLocked(s Section) ([]*domain.Item, error) {
	switch s {
	case SectionPriority:
		return b.focusLocked().Priority, nil
	case SectionBench:
		return b.focusLocked().Bench, nil
	case SectionToday:
		return b.organizerLocked().Today, nil
	case SectionUpcoming:
		return b.organizerLocked().Upcoming, nil
	}
	return nil, fmt.Errorf("%w: unknown section %q", domain.ErrInvalidInput, s)
}

// Reorder moves the item at index from to index to inside one section.
// It is local only.
func (b *Board) Reorder(s Section, from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.sectionLocked(s)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return fmt.Errorf("%w: position out of range", domain.ErrInvalidInput)
	}
	order := ids(list)
	id := order[from]
	order = append(order[:from], order[from+1:]...)
	order = append(order[:to], append([]string{id}, order[to:]...)...)
	b.order[s] = order
	return nil
}

func (b *Board) findLocked(id string) (*domain.Item, error) {
	for _, it := range b.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
}

func (b *Board) removeLocked(id string) {
	kept := b.items[:0]
	for _, it := range b.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	b.items = kept
}

// replaceLocked edits a copy of the item so earlier snapshots are not mutated.
func (b *Board) replaceLocked(id string, edit func(*domain.Item)) {
	for i, it := range b.items {
		if it.ID == id {
			cp := *it
			edit(&cp)
			b.items[i] = &cp
			return
		}
	}
}

type patchStep struct {
	itemID string
	patch  service.ItemPatch
}

// confirm runs the steps in order. The first failure triggers a reload.
func (b *Board) confirm(steps ...patchStep) Confirm {
	return func(ctx context.Context) error {
		for _, s := range steps {
			if _, err := b.mut.Patch(ctx, b.userID, s.itemID, s.patch); err != nil {
				if lerr := b.Load(ctx); lerr != nil {
					b.logger.WarnContext(ctx, "board reload after failed update",
						slog.String("item_id", s.itemID), slog.String("error", lerr.Error()))
				}
				return err
			}
		}
		return nil
	}
}

func priorityPatch(p domain.Priority) service.ItemPatch {
	return service.ItemPatch{Priority: &p}
}

func actionPatch(a domain.Action, parkedUntil *time.Time) service.ItemPatch {
	return service.ItemPatch{Action: &a, ParkedUntil: parkedUntil}
}

// Promote moves an item into the priority section. When the section is
// already full its last item is demoted to medium first. The promoted item
// is pinned into the local priority order so it holds a slot even when more
// than MaxFocusItems items are high.
func (b *Board) Promote(id string) (Confirm, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findLocked(id); err != nil {
		return nil, err
	}
	priority := b.focusLocked().Priority
	for _, it := range priority {
		if it.ID == id {
			return func(context.Context) error { return nil }, nil
		}
	}

	var steps []patchStep
	if len(priority) >= domain.MaxFocusItems {
		bumped := priority[len(priority)-1]
		priority = priority[:len(priority)-1]
		b.replaceLocked(bumped.ID, func(it *domain.Item) { it.Priority = ptr(domain.PriorityMedium) })
		steps = append(steps, patchStep{bumped.ID, priorityPatch(domain.PriorityMedium)})
	}
	b.replaceLocked(id, func(it *domain.Item) { it.Priority = ptr(domain.PriorityHigh) })
	b.order[SectionPriority] = append(ids(priority), id)
	steps = append(steps, patchStep{id, priorityPatch(domain.PriorityHigh)})
	return b.confirm(steps...), nil
}

// Demote moves an item to the bench by setting it to medium.
func (b *Board) Demote(id string) (Confirm, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findLocked(id); err != nil {
		return nil, err
	}
	b.replaceLocked(id, func(it *domain.Item) { it.Priority = ptr(domain.PriorityMedium) })
	return b.confirm(patchStep{id, priorityPatch(domain.PriorityMedium)}), nil
}

// MoveToToday clears the deadline, which files the item under today.
func (b *Board) MoveToToday(id string) (Confirm, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findLocked(id); err != nil {
		return nil, err
	}
	b.replaceLocked(id, func(it *domain.Item) { it.DeadlineAt = nil })
	return b.confirm(patchStep{id, service.ItemPatch{DeadlineSet: true}}), nil
}

// MoveToUpcoming sets the deadline to 09:00 tomorrow.
func (b *Board) MoveToUpcoming(id string) (Confirm, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findLocked(id); err != nil {
		return nil, err
	}
	deadline := intelligence.TomorrowMorning(b.now(), b.loc)
	b.replaceLocked(id, func(it *domain.Item) { it.DeadlineAt = &deadline })
	return b.confirm(patchStep{id, service.ItemPatch{DeadlineSet: true, Deadline: &deadline}}), nil
}

func (b *Board) Complete(id string) (Confirm, error) {
	return b.leave(id, actionPatch(domain.ActionDone, nil))
}

func (b *Board) Drop(id string) (Confirm, error) {
	return b.leave(id, actionPatch(domain.ActionDrop, nil))
}

func (b *Board) Park(id string, until time.Time) (Confirm, error) {
	return b.leave(id, actionPatch(domain.ActionPark, &until))
}

// leave takes an item off the board for a transition out of active.
func (b *Board) leave(id string, patch service.ItemPatch) (Confirm, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findLocked(id); err != nil {
		return nil, err
	}
	b.removeLocked(id)
	return b.confirm(patchStep{id, patch}), nil
}

func ptr[T any](v T) *T { return &v }
