package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS thought_dumps (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL,
		content              TEXT NOT NULL,
		source               TEXT NOT NULL CHECK(source IN ('text','voice')),
		voice_file_url       TEXT,
		transcription_status TEXT,
		processing_status    TEXT NOT NULL DEFAULT 'pending'
		                     CHECK(processing_status IN ('pending','processing','completed','failed')),
		error_message        TEXT,
		metadata             TEXT NOT NULL DEFAULT '{}',
		created_at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_thought_dumps_user ON thought_dumps(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS items (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		thought_dump_id     TEXT REFERENCES thought_dumps(id) ON DELETE SET NULL,
		type                TEXT NOT NULL DEFAULT 'task'
		                    CHECK(type IN ('task','commitment','deadline','reminder')),
		title               TEXT NOT NULL CHECK(length(trim(title)) > 0),
		description         TEXT,
		original_fragment   TEXT,
		status              TEXT NOT NULL DEFAULT 'active'
		                    CHECK(status IN ('active','done','parked','dropped')),
		priority            TEXT CHECK(priority IS NULL OR priority IN ('low','medium','high','urgent')),
		effort_level        TEXT CHECK(effort_level IS NULL OR effort_level IN ('tiny','small','medium','large')),
		suggested_next_step TEXT,
		deadline_at         TEXT,
		parked_until        TEXT,
		completed_at        TEXT,
		dropped_at          TEXT,
		metadata            TEXT NOT NULL DEFAULT '{}',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_user_status ON items(user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_items_dump ON items(thought_dump_id)`,

	`CREATE TABLE IF NOT EXISTS daily_clarity (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		clarity_date        TEXT NOT NULL,
		morning_message     TEXT NOT NULL,
		focus_items         TEXT NOT NULL DEFAULT '[]',
		parked_suggestions  TEXT NOT NULL DEFAULT '[]',
		dropped_suggestions TEXT NOT NULL DEFAULT '[]',
		emotional_context   TEXT,
		metadata            TEXT NOT NULL DEFAULT '{}',
		created_at          TEXT NOT NULL,
		UNIQUE(user_id, clarity_date)
	)`,

	`CREATE TABLE IF NOT EXISTS noise_log (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		content        TEXT NOT NULL DEFAULT '',
		emotional_tags TEXT NOT NULL DEFAULT '[]',
		created_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_noise_log_user ON noise_log(user_id, created_at)`,

	// v2: regeneration timestamp for clarity records.
	`ALTER TABLE daily_clarity ADD COLUMN updated_at TEXT`,
}
