package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/domain"
)

// SQLiteItemRepo implements ItemRepo. Every read and write is scoped by
// user_id.
type SQLiteItemRepo struct {
	db db.DBTX
}

func NewSQLiteItemRepo(db db.DBTX) *SQLiteItemRepo {
	return &SQLiteItemRepo{db: db}
}

const itemColumns = `id, user_id, thought_dump_id, type, title, description, original_fragment,
	status, priority, effort_level, suggested_next_step, deadline_at, parked_until,
	completed_at, dropped_at, metadata, created_at, updated_at`

func (r *SQLiteItemRepo) Create(ctx context.Context, it *domain.Item) error {
	meta, err := marshalJSON(it.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		it.ID,
		it.UserID,
		nullableString(it.ThoughtDumpID),
		string(it.Type),
		it.Title,
		nullableString(it.Description),
		nullableString(it.OriginalFragment),
		string(it.Status),
		nullableEnum(it.Priority),
		nullableEnum(it.EffortLevel),
		nullableString(it.SuggestedNextStep),
		nullableTime(it.DeadlineAt),
		nullableTime(it.ParkedUntil),
		nullableTime(it.CompletedAt),
		nullableTime(it.DroppedAt),
		meta,
		formatTime(it.CreatedAt),
		formatTime(it.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func (r *SQLiteItemRepo) GetByID(ctx context.Context, userID, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ? AND user_id = ?`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	return it, nil
}

func (r *SQLiteItemRepo) ListByUser(ctx context.Context, userID string, statuses ...domain.ItemStatus) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ?`
	args := []any{userID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + placeholders(len(statuses)) + `)`
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	return r.query(ctx, query, args...)
}

func (r *SQLiteItemRepo) ListByIDs(ctx context.Context, userID string, ids []string) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	items, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	// Preserve the caller's order.
	byID := make(map[string]*domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	ordered := make([]*domain.Item, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
			delete(byID, id)
		}
	}
	return ordered, nil
}

func (r *SQLiteItemRepo) ListByDump(ctx context.Context, userID, dumpID string) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ? AND thought_dump_id = ?
		ORDER BY rowid`
	return r.query(ctx, query, userID, dumpID)
}

// Update writes every mutable column. The row must belong to it.UserID.
func (r *SQLiteItemRepo) Update(ctx context.Context, it *domain.Item) error {
	meta, err := marshalJSON(it.Metadata)
	if err != nil {
		return err
	}
	query := `UPDATE items SET type = ?, title = ?, description = ?, status = ?, priority = ?,
		effort_level = ?, suggested_next_step = ?, deadline_at = ?, parked_until = ?,
		completed_at = ?, dropped_at = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(it.Type),
		it.Title,
		nullableString(it.Description),
		string(it.Status),
		nullableEnum(it.Priority),
		nullableEnum(it.EffortLevel),
		nullableString(it.SuggestedNextStep),
		nullableTime(it.DeadlineAt),
		nullableTime(it.ParkedUntil),
		nullableTime(it.CompletedAt),
		nullableTime(it.DroppedAt),
		meta,
		formatTime(it.UpdatedAt),
		it.ID,
		it.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return rowsAffectedOrNotFound(res, "item")
}

func (r *SQLiteItemRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return rowsAffectedOrNotFound(res, "item")
}

func (r *SQLiteItemRepo) ListUsersWithActiveItems(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM items WHERE status = 'active' ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing users with active items: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteItemRepo) query(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		it                                                 domain.Item
		typ, status, meta, createdAt, updatedAt            string
		dumpID, desc, fragment, priority, effort, nextStep sql.NullString
		deadline, parked, completed, dropped               sql.NullString
	)
	err := row.Scan(
		&it.ID, &it.UserID, &dumpID, &typ, &it.Title, &desc, &fragment,
		&status, &priority, &effort, &nextStep, &deadline, &parked,
		&completed, &dropped, &meta, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.ThoughtDumpID = stringPtr(dumpID)
	it.Type = domain.ItemType(typ)
	it.Description = stringPtr(desc)
	it.OriginalFragment = stringPtr(fragment)
	it.Status = domain.ItemStatus(status)
	it.Priority = enumPtr[domain.Priority](priority)
	it.EffortLevel = enumPtr[domain.EffortLevel](effort)
	it.SuggestedNextStep = stringPtr(nextStep)
	it.DeadlineAt = parseNullableTime(deadline)
	it.ParkedUntil = parseNullableTime(parked)
	it.CompletedAt = parseNullableTime(completed)
	it.DroppedAt = parseNullableTime(dropped)

	if err := unmarshalJSON(meta, &it.Metadata); err != nil {
		return nil, err
	}
	if it.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}
