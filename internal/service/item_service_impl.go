package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/repository"
)

// StatusAll lists items regardless of status.
const StatusAll = "all"

type itemService struct {
	items    repository.ItemRepo
	uow      db.UnitOfWork
	cfg      Config
	observer UseCaseObserver
}

func NewItemService(items repository.ItemRepo, uow db.UnitOfWork, cfg Config, observers ...UseCaseObserver) ItemService {
	return &itemService{items: items, uow: uow, cfg: cfg.withDefaults(), observer: useCaseObserverOrNoop(observers)}
}

func (s *itemService) List(ctx context.Context, userID, status string) ([]*domain.Item, error) {
	switch status {
	case "":
		return s.items.ListByUser(ctx, userID, domain.StatusActive)
	case StatusAll:
		return s.items.ListByUser(ctx, userID)
	}
	st := domain.ItemStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.items.ListByUser(ctx, userID, st)
}

func (s *itemService) Get(ctx context.Context, userID, itemID string) (*domain.Item, error) {
	return s.items.GetByID(ctx, userID, itemID)
}

func (s *itemService) ApplyAction(ctx context.Context, userID, itemID string, t domain.Transition) (*domain.Item, error) {
	return s.Patch(ctx, userID, itemID, ItemPatch{Action: &t.Action, ParkedUntil: t.ParkedUntil})
}

func (s *itemService) SetPriority(ctx context.Context, userID, itemID string, p domain.Priority) (*domain.Item, error) {
	return s.Patch(ctx, userID, itemID, ItemPatch{Priority: &p})
}

func (s *itemService) SetDeadline(ctx context.Context, userID, itemID string, deadline *time.Time) (*domain.Item, error) {
	return s.Patch(ctx, userID, itemID, ItemPatch{DeadlineSet: true, Deadline: deadline})
}

// Patch validates every part of the patch before touching storage, then
// applies action, priority and deadline in one transaction.
func (s *itemService) Patch(ctx context.Context, userID, itemID string, patch ItemPatch) (result *domain.Item, err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "item.patch", start, err, map[string]any{"item_id": itemID})
	}()

	now := s.cfg.now()
	if err := validatePatch(patch, now); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteItemRepo(tx)
		it, err := repo.GetByID(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if patch.Action != nil {
			if err := it.Apply(domain.Transition{Action: *patch.Action, ParkedUntil: patch.ParkedUntil}, now); err != nil {
				return err
			}
		}
		if patch.Priority != nil {
			if err := it.SetPriority(*patch.Priority, now); err != nil {
				return err
			}
		}
		if patch.DeadlineSet {
			it.SetDeadline(patch.Deadline, now)
		}
		if err := repo.Update(ctx, it); err != nil {
			return err
		}
		result = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validatePatch(p ItemPatch, now time.Time) error {
	if p.Empty() {
		return fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if p.Action != nil {
		if err := (domain.Transition{Action: *p.Action, ParkedUntil: p.ParkedUntil}).Validate(now); err != nil {
			return err
		}
	} else if p.ParkedUntil != nil {
		return fmt.Errorf("%w: parked_until requires action park", domain.ErrInvalidInput)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, *p.Priority)
	}
	return nil
}

func (s *itemService) Delete(ctx context.Context, userID, itemID string) error {
	return s.items.Delete(ctx, userID, itemID)
}
