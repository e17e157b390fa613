// Package sqlite provides SQLite-based persistent storage for GamePilot:
// per-user signals and game libraries plus the mood, session and feedback
// histories the analytics engine is restored from.
// Connections run in WAL mode with foreign keys enforced.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/gamepilot/gamepilot/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db, now: time.Now}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL
		)`,

		// Latest signals per user, stored as the validated JSON document.
		`CREATE TABLE IF NOT EXISTS user_signals (
			user_id    TEXT PRIMARY KEY REFERENCES users(user_id),
			signals    TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Candidate pool per user; position preserves upload order.
		`CREATE TABLE IF NOT EXISTS library_games (
			user_id  TEXT NOT NULL REFERENCES users(user_id),
			game_id  TEXT NOT NULL,
			position INTEGER NOT NULL,
			game     TEXT NOT NULL,
			PRIMARY KEY (user_id, game_id)
		)`,

		// ─── History ───────────────────────────────────────────────────
		`CREATE TABLE IF NOT EXISTS mood_events (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      TEXT NOT NULL REFERENCES users(user_id),
			event_id     TEXT NOT NULL DEFAULT '',
			mood_id      TEXT NOT NULL,
			intensity    INTEGER NOT NULL,
			ts           INTEGER NOT NULL,
			context      TEXT NOT NULL DEFAULT '',
			game_id      TEXT NOT NULL DEFAULT '',
			mood_tags    TEXT NOT NULL DEFAULT '[]',
			hour_of_day  INTEGER NOT NULL,
			day_of_week  INTEGER NOT NULL,
			week_of_year INTEGER NOT NULL,
			session_id   TEXT,
			is_pre       BOOLEAN DEFAULT 0,
			is_post      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_moods_user_ts ON mood_events(user_id, ts)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			user_id          TEXT NOT NULL REFERENCES users(user_id),
			session_id       TEXT NOT NULL,
			game_id          TEXT NOT NULL DEFAULT '',
			start_time       INTEGER NOT NULL,
			end_time         INTEGER,
			pre_mood         TEXT,
			post_mood        TEXT,
			duration_minutes REAL,
			mood_delta       INTEGER,
			PRIMARY KEY (user_id, session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON sessions(user_id, start_time)`,

		`CREATE TABLE IF NOT EXISTS recommendation_feedback (
			seq               INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id           TEXT NOT NULL REFERENCES users(user_id),
			recommendation_id TEXT NOT NULL,
			feedback          TEXT NOT NULL,
			game_id           TEXT NOT NULL DEFAULT '',
			mood_at_time      TEXT,
			confidence        REAL NOT NULL DEFAULT 0,
			ts                INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_user_ts ON recommendation_feedback(user_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Users ──────────────────────────────────────────────────────────────────

// EnsureUser registers userID if it is not known yet.
func (d *DB) EnsureUser(userID string) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO users (user_id, created_at) VALUES (?, ?)`,
		userID, d.now().UnixMilli(),
	)
	return err
}

// UserExists reports whether userID has ever been written.
func (d *DB) UserExists(userID string) (bool, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM users WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUsers returns every known user id, sorted.
func (d *DB) ListUsers() ([]string, error) {
	rows, err := d.db.Query(`SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// requireUser returns domain.ErrUserNotFound for unknown users.
func (d *DB) requireUser(userID string) error {
	ok, err := d.UserExists(userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return nil
}

// ─── Meta ───────────────────────────────────────────────────────────────────

// SetMeta stores a key-value pair in meta.
func (d *DB) SetMeta(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetMeta retrieves a value from meta. Returns "" if key not found.
func (d *DB) GetMeta(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
