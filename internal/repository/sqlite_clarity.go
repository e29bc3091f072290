package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/google/uuid"
)

type SQLiteDailyClarityRepo struct {
	db db.DBTX
}

func NewSQLiteDailyClarityRepo(db db.DBTX) *SQLiteDailyClarityRepo {
	return &SQLiteDailyClarityRepo{db: db}
}

// Upsert inserts or overwrites the record for (user, date). The row id and
// created_at of an existing record are kept; c is updated to match the
// stored row.
func (r *SQLiteDailyClarityRepo) Upsert(ctx context.Context, c *domain.DailyClarity) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	focus, err := marshalJSON(nonNil(c.FocusItems))
	if err != nil {
		return err
	}
	parked, err := marshalJSON(nonNil(c.ParkedSuggestions))
	if err != nil {
		return err
	}
	dropped, err := marshalJSON(nonNil(c.DroppedSuggestions))
	if err != nil {
		return err
	}
	meta, err := marshalJSON(c.Metadata)
	if err != nil {
		return err
	}
	// Nanosecond precision so UpdatedAt tells apart writes in the same second.
	now := time.Now().UTC().Format(time.RFC3339Nano)

	query := `INSERT INTO daily_clarity (id, user_id, clarity_date, morning_message, focus_items,
			parked_suggestions, dropped_suggestions, emotional_context, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, clarity_date) DO UPDATE SET
			morning_message = excluded.morning_message,
			focus_items = excluded.focus_items,
			parked_suggestions = excluded.parked_suggestions,
			dropped_suggestions = excluded.dropped_suggestions,
			emotional_context = excluded.emotional_context,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.ClarityDate, c.MorningMessage, focus, parked, dropped,
		nullableString(c.EmotionalContext), meta, formatTime(c.CreatedAt), now,
	)
	if err != nil {
		return fmt.Errorf("upserting daily clarity: %w", err)
	}

	stored, err := r.Get(ctx, c.UserID, c.ClarityDate)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

func (r *SQLiteDailyClarityRepo) Get(ctx context.Context, userID, date string) (*domain.DailyClarity, error) {
	var (
		c                                    domain.DailyClarity
		focus, parked, dropped, meta, create string
		emotional, updated                   sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, clarity_date, morning_message, focus_items, parked_suggestions,
			dropped_suggestions, emotional_context, metadata, created_at, updated_at
		FROM daily_clarity WHERE user_id = ? AND clarity_date = ?`, userID, date,
	).Scan(&c.ID, &c.UserID, &c.ClarityDate, &c.MorningMessage, &focus, &parked,
		&dropped, &emotional, &meta, &create, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("daily clarity: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning daily clarity: %w", err)
	}

	for _, col := range []struct {
		raw string
		dst *[]string
	}{{focus, &c.FocusItems}, {parked, &c.ParkedSuggestions}, {dropped, &c.DroppedSuggestions}} {
		if err := unmarshalJSON(col.raw, col.dst); err != nil {
			return nil, err
		}
		*col.dst = nonNil(*col.dst)
	}
	if err := unmarshalJSON(meta, &c.Metadata); err != nil {
		return nil, err
	}
	c.EmotionalContext = stringPtr(emotional)
	c.UpdatedAt = parseNullableTime(updated)
	if c.CreatedAt, err = parseTime(create); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdatedAt returns the last write time of the record for (user, date). It
// lets readers check a cached copy without loading the full row.
func (r *SQLiteDailyClarityRepo) UpdatedAt(ctx context.Context, userID, date string) (*time.Time, error) {
	var updated sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM daily_clarity WHERE user_id = ? AND clarity_date = ?`, userID, date,
	).Scan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("daily clarity: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("reading daily clarity updated_at: %w", err)
	}
	return parseNullableTime(updated), nil
}

func (r *SQLiteDailyClarityRepo) Count(ctx context.Context, userID, date string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_clarity WHERE user_id = ? AND clarity_date = ?`, userID, date,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting daily clarity: %w", err)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
