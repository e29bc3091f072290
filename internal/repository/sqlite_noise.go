package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/domain"
)

type SQLiteNoiseLogRepo struct {
	db db.DBTX
}

func NewSQLiteNoiseLogRepo(db db.DBTX) *SQLiteNoiseLogRepo {
	return &SQLiteNoiseLogRepo{db: db}
}

func (r *SQLiteNoiseLogRepo) Create(ctx context.Context, n *domain.NoiseEntry) error {
	tags, err := marshalJSON(nonNil(n.EmotionalTags))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO noise_log (id, user_id, content, emotional_tags, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Content, tags, formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting noise entry: %w", err)
	}
	return nil
}

func (r *SQLiteNoiseLogRepo) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.NoiseEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, content, emotional_tags, created_at FROM noise_log
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		userID, formatTime(since), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing noise entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.NoiseEntry
	for rows.Next() {
		var (
			n               domain.NoiseEntry
			tags, createdAt string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &tags, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning noise entry: %w", err)
		}
		if err := unmarshalJSON(tags, &n.EmotionalTags); err != nil {
			return nil, err
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, &n)
	}
	return entries, rows.Err()
}
