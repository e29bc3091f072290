package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
)

// ErrNotFound is returned for missing rows and for rows owned by another
// user. Callers cannot tell the two apart.
var ErrNotFound = errors.New("not found")

type ThoughtDumpRepo interface {
	Create(ctx context.Context, d *domain.ThoughtDump) error
	GetByID(ctx context.Context, userID, id string) (*domain.ThoughtDump, error)
	UpdateStatus(ctx context.Context, d *domain.ThoughtDump) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*domain.ThoughtDump, error)
}

type ItemRepo interface {
	Create(ctx context.Context, it *domain.Item) error
	GetByID(ctx context.Context, userID, id string) (*domain.Item, error)
	// ListByUser returns items newest first. No statuses means all.
	ListByUser(ctx context.Context, userID string, statuses ...domain.ItemStatus) ([]*domain.Item, error)
	ListByIDs(ctx context.Context, userID string, ids []string) ([]*domain.Item, error)
	ListByDump(ctx context.Context, userID, dumpID string) ([]*domain.Item, error)
	Update(ctx context.Context, it *domain.Item) error
	Delete(ctx context.Context, userID, id string) error
	ListUsersWithActiveItems(ctx context.Context) ([]string, error)
}

type DailyClarityRepo interface {
	// Upsert replaces any existing record for (UserID, ClarityDate).
	Upsert(ctx context.Context, c *domain.DailyClarity) error
	Get(ctx context.Context, userID, date string) (*domain.DailyClarity, error)
	UpdatedAt(ctx context.Context, userID, date string) (*time.Time, error)
	Count(ctx context.Context, userID, date string) (int, error)
}

type NoiseLogRepo interface {
	Create(ctx context.Context, n *domain.NoiseEntry) error
	// ListSince returns entries newest first, at most limit.
	ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.NoiseEntry, error)
}
