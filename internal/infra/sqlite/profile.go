package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// ─── Signals ────────────────────────────────────────────────────────────────

// PutSignals stores the latest validated signals for userID.
func (d *DB) PutSignals(userID string, s domain.RawPlayerSignals) error {
	if err := d.EnsureUser(userID); err != nil {
		return err
	}
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode signals: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO user_signals (user_id, signals, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET signals=excluded.signals, updated_at=excluded.updated_at`,
		userID, string(doc), d.now().UnixMilli(),
	)
	return err
}

// GetSignals returns the stored signals for userID, or nil if none were
// stored. Unknown users return domain.ErrUserNotFound.
func (d *DB) GetSignals(userID string) (*domain.RawPlayerSignals, error) {
	if err := d.requireUser(userID); err != nil {
		return nil, err
	}
	var doc string
	err := d.db.QueryRow(`SELECT signals FROM user_signals WHERE user_id = ?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s domain.RawPlayerSignals
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	return &s, nil
}

// ─── Library ────────────────────────────────────────────────────────────────

// ReplaceLibrary swaps userID's candidate pool for games in one transaction.
// Duplicate ids keep the last entry.
func (d *DB) ReplaceLibrary(userID string, games []domain.CandidateGame) error {
	if err := d.EnsureUser(userID); err != nil {
		return err
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM library_games WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for i, g := range games {
		doc, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encode game %s: %w", g.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO library_games (user_id, game_id, position, game) VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, game_id) DO UPDATE SET position=excluded.position, game=excluded.game`,
			userID, g.ID, i, string(doc),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Library returns userID's games in upload order. An empty result means the
// user has not uploaded a library.
func (d *DB) Library(userID string) ([]domain.CandidateGame, error) {
	if err := d.requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT game FROM library_games WHERE user_id = ? ORDER BY position`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []domain.CandidateGame
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var g domain.CandidateGame
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			return nil, fmt.Errorf("decode game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
