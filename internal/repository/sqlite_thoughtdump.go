package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/domain"
)

type SQLiteThoughtDumpRepo struct {
	db db.DBTX
}

func NewSQLiteThoughtDumpRepo(db db.DBTX) *SQLiteThoughtDumpRepo {
	return &SQLiteThoughtDumpRepo{db: db}
}

const dumpColumns = `id, user_id, content, source, voice_file_url, transcription_status,
	processing_status, error_message, metadata, created_at`

func (r *SQLiteThoughtDumpRepo) Create(ctx context.Context, d *domain.ThoughtDump) error {
	meta, err := marshalJSON(d.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO thought_dumps (` + dumpColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		d.UserID,
		d.Content,
		string(d.Source),
		nullableString(d.VoiceFileURL),
		nullableEnum(d.TranscriptionStatus),
		string(d.ProcessingStatus),
		nullableString(d.ErrorMessage),
		meta,
		formatTime(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting thought dump: %w", err)
	}
	return nil
}

func (r *SQLiteThoughtDumpRepo) GetByID(ctx context.Context, userID, id string) (*domain.ThoughtDump, error) {
	query := `SELECT ` + dumpColumns + ` FROM thought_dumps WHERE id = ? AND user_id = ?`
	d, err := scanDump(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("thought dump: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning thought dump: %w", err)
	}
	return d, nil
}

// UpdateStatus persists the processing fields only; content is immutable.
func (r *SQLiteThoughtDumpRepo) UpdateStatus(ctx context.Context, d *domain.ThoughtDump) error {
	meta, err := marshalJSON(d.Metadata)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE thought_dumps SET processing_status = ?, error_message = ?, metadata = ?
		WHERE id = ? AND user_id = ?`,
		string(d.ProcessingStatus), nullableString(d.ErrorMessage), meta, d.ID, d.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating thought dump status: %w", err)
	}
	return rowsAffectedOrNotFound(res, "thought dump")
}

func (r *SQLiteThoughtDumpRepo) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.ThoughtDump, error) {
	query := `SELECT ` + dumpColumns + ` FROM thought_dumps WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing thought dumps: %w", err)
	}
	defer rows.Close()

	var dumps []*domain.ThoughtDump
	for rows.Next() {
		d, err := scanDump(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning thought dump row: %w", err)
		}
		dumps = append(dumps, d)
	}
	return dumps, rows.Err()
}

func scanDump(row rowScanner) (*domain.ThoughtDump, error) {
	var (
		d                                  domain.ThoughtDump
		source, status, meta, createdAt    string
		voiceURL, transcription, errorText sql.NullString
	)
	err := row.Scan(&d.ID, &d.UserID, &d.Content, &source, &voiceURL, &transcription,
		&status, &errorText, &meta, &createdAt)
	if err != nil {
		return nil, err
	}
	d.Source = domain.Source(source)
	d.VoiceFileURL = stringPtr(voiceURL)
	d.TranscriptionStatus = enumPtr[domain.TranscriptionStatus](transcription)
	d.ProcessingStatus = domain.ProcessingStatus(status)
	d.ErrorMessage = stringPtr(errorText)
	if err := unmarshalJSON(meta, &d.Metadata); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &d, nil
}
