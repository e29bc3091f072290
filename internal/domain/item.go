package domain

import (
	"fmt"
	"time"
)

// Item is one actionable unit extracted from a thought dump.
type Item struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id"`
	ThoughtDumpID     *string      `json:"thought_dump_id"`
	Type              ItemType     `json:"type"`
	Title             string       `json:"title"`
	Description       *string      `json:"description"`
	OriginalFragment  *string      `json:"original_fragment"`
	Status            ItemStatus   `json:"status"`
	Priority          *Priority    `json:"priority"`
	EffortLevel       *EffortLevel `json:"effort_level"`
	SuggestedNextStep *string      `json:"suggested_next_step"`
	DeadlineAt        *time.Time   `json:"deadline_at"`
	ParkedUntil       *time.Time   `json:"parked_until"`
	CompletedAt       *time.Time   `json:"completed_at"`
	DroppedAt         *time.Time   `json:"dropped_at"`
	Metadata          ItemMetadata `json:"metadata"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ItemMetadata holds extraction leftovers that have no column of their own.
type ItemMetadata struct {
	Tags          []string    `json:"tags,omitempty"`
	Subtasks      []string    `json:"subtasks,omitempty"`
	Mode          CaptureMode `json:"mode,omitempty"`
	When          TimeHint    `json:"when,omitempty"`
	EstimatedTime string      `json:"estimated_time,omitempty"`
	EnergyLevel   string      `json:"energy_level,omitempty"`
}

// EffectivePriority treats a missing priority as medium.
func (it *Item) EffectivePriority() Priority {
	if it.Priority == nil {
		return PriorityMedium
	}
	return *it.Priority
}

// Transition is a requested status change with its parameters.
//
// Source states that Apply rejects with ErrInvalidTransition:
//   - done from dropped
//   - park from done or dropped
//   - drop from done
//
// focus is accepted from every state. Repeating done or drop on an item
// already in that state keeps the original timestamp.
type Transition struct {
	Action      Action
	ParkedUntil *time.Time
}

// allowedFrom lists the states each action may start from.
var allowedFrom = map[Action]map[ItemStatus]bool{
	ActionDone:  {StatusActive: true, StatusParked: true, StatusDone: true},
	ActionPark:  {StatusActive: true, StatusParked: true},
	ActionDrop:  {StatusActive: true, StatusParked: true, StatusDropped: true},
	ActionFocus: {StatusActive: true, StatusParked: true, StatusDropped: true, StatusDone: true},
}

// Validate checks the transition's own parameters, independent of any item.
func (t Transition) Validate(now time.Time) error {
	if !t.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, t.Action)
	}
	if t.Action == ActionPark {
		if t.ParkedUntil == nil {
			return fmt.Errorf("%w: park requires parked_until", ErrInvalidInput)
		}
		if !t.ParkedUntil.After(now) {
			return fmt.Errorf("%w: parked_until must be in the future", ErrInvalidInput)
		}
	} else if t.ParkedUntil != nil {
		return fmt.Errorf("%w: parked_until is only valid with park", ErrInvalidInput)
	}
	return nil
}

// Apply performs the transition. Each branch writes the complete set of
// lifecycle fields so at most one of CompletedAt, DroppedAt and ParkedUntil
// is ever set, and it always agrees with Status.
func (it *Item) Apply(t Transition, now time.Time) error {
	if err := t.Validate(now); err != nil {
		return err
	}
	if !allowedFrom[t.Action][it.Status] {
		return fmt.Errorf("%w: cannot %s an item that is %s", ErrInvalidTransition, t.Action, it.Status)
	}

	switch t.Action {
	case ActionDone:
		completed := now
		if it.Status == StatusDone && it.CompletedAt != nil {
			completed = *it.CompletedAt
		}
		it.Status = StatusDone
		it.CompletedAt = &completed
		it.DroppedAt = nil
		it.ParkedUntil = nil
	case ActionPark:
		until := *t.ParkedUntil
		it.Status = StatusParked
		it.ParkedUntil = &until
		it.CompletedAt = nil
		it.DroppedAt = nil
	case ActionDrop:
		dropped := now
		if it.Status == StatusDropped && it.DroppedAt != nil {
			dropped = *it.DroppedAt
		}
		it.Status = StatusDropped
		it.DroppedAt = &dropped
		it.CompletedAt = nil
		it.ParkedUntil = nil
	case ActionFocus:
		it.Status = StatusActive
		it.CompletedAt = nil
		it.DroppedAt = nil
		it.ParkedUntil = nil
	}
	it.UpdatedAt = now
	return nil
}

// SetPriority changes priority without touching status.
func (it *Item) SetPriority(p Priority, now time.Time) error {
	if !p.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, p)
	}
	it.Priority = &p
	it.UpdatedAt = now
	return nil
}

// SetDeadline replaces the deadline; nil moves the item to "someday".
func (it *Item) SetDeadline(deadline *time.Time, now time.Time) {
	if deadline == nil {
		it.DeadlineAt = nil
	} else {
		d := deadline.UTC()
		it.DeadlineAt = &d
	}
	it.UpdatedAt = now
}
