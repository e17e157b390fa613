package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// ─── Mood Events ────────────────────────────────────────────────────────────

// InsertMoodEvent appends ev to userID's mood history.
func (d *DB) InsertMoodEvent(userID string, ev domain.MoodEvent) error {
	if err := d.EnsureUser(userID); err != nil {
		return err
	}
	tags, err := json.Marshal(nonNil(ev.MoodTags))
	if err != nil {
		return fmt.Errorf("encode mood tags: %w", err)
	}
	var sessionID sql.NullString
	var pre, post bool
	if sc := ev.SessionContext; sc != nil {
		sessionID = sql.NullString{String: sc.SessionID, Valid: true}
		pre, post = sc.IsPreSession, sc.IsPostSession
	}
	_, err = d.db.Exec(
		`INSERT INTO mood_events (user_id, event_id, mood_id, intensity, ts, context, game_id, mood_tags,
			hour_of_day, day_of_week, week_of_year, session_id, is_pre, is_post)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, ev.ID, string(ev.MoodID), ev.Intensity, ev.Timestamp.UnixMilli(), ev.Context, ev.GameID, string(tags),
		ev.TemporalContext.HourOfDay, ev.TemporalContext.DayOfWeek, ev.TemporalContext.WeekOfYear,
		sessionID, pre, post,
	)
	return err
}

// RecentMoodEvents returns the newest limit mood events for userID, oldest
// first. limit <= 0 returns all of them.
func (d *DB) RecentMoodEvents(userID string, limit int) ([]domain.MoodEvent, error) {
	if err := d.requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT event_id, mood_id, intensity, ts, context, game_id, mood_tags,
			hour_of_day, day_of_week, week_of_year, session_id, is_pre, is_post
		 FROM mood_events WHERE user_id = ? ORDER BY seq DESC LIMIT ?`,
		userID, sqlLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.MoodEvent
	for rows.Next() {
		ev, err := scanMoodEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(events)
	return events, nil
}

func scanMoodEvent(s scanner) (domain.MoodEvent, error) {
	var ev domain.MoodEvent
	var moodID, tags string
	var ts int64
	var sessionID sql.NullString
	var pre, post bool

	err := s.Scan(&ev.ID, &moodID, &ev.Intensity, &ts, &ev.Context, &ev.GameID, &tags,
		&ev.TemporalContext.HourOfDay, &ev.TemporalContext.DayOfWeek, &ev.TemporalContext.WeekOfYear,
		&sessionID, &pre, &post)
	if err != nil {
		return ev, err
	}
	ev.MoodID = domain.MoodID(moodID)
	ev.Timestamp = fromMillis(ts)
	if err := json.Unmarshal([]byte(tags), &ev.MoodTags); err != nil {
		return ev, fmt.Errorf("decode mood tags: %w", err)
	}
	if sessionID.Valid {
		ev.SessionContext = &domain.SessionContext{
			SessionID:     sessionID.String,
			IsPreSession:  pre,
			IsPostSession: post,
		}
	}
	return ev, nil
}

// ─── Sessions ───────────────────────────────────────────────────────────────

// UpsertSession writes s, inserting it on start and completing it on end.
func (d *DB) UpsertSession(userID string, s domain.SessionEvent) error {
	if err := d.EnsureUser(userID); err != nil {
		return err
	}
	pre, err := encodeMood(s.PreMood)
	if err != nil {
		return err
	}
	post, err := encodeMood(s.PostMood)
	if err != nil {
		return err
	}
	var duration sql.NullFloat64
	if s.DurationMinutes != nil {
		duration = sql.NullFloat64{Float64: *s.DurationMinutes, Valid: true}
	}
	var delta sql.NullInt64
	if s.MoodDelta != nil {
		delta = sql.NullInt64{Int64: int64(*s.MoodDelta), Valid: true}
	}

	_, err = d.db.Exec(
		`INSERT INTO sessions (user_id, session_id, game_id, start_time, end_time, pre_mood, post_mood, duration_minutes, mood_delta)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, session_id) DO UPDATE SET
			game_id=excluded.game_id,
			start_time=excluded.start_time,
			end_time=excluded.end_time,
			pre_mood=excluded.pre_mood,
			post_mood=excluded.post_mood,
			duration_minutes=excluded.duration_minutes,
			mood_delta=excluded.mood_delta`,
		userID, s.SessionID, s.GameID, s.StartTime.UnixMilli(), nullableMillis(s.EndTime),
		pre, post, duration, delta,
	)
	return err
}

// RecentSessions returns every open session plus the newest limit completed
// sessions for userID, ordered by start time. limit <= 0 returns all.
func (d *DB) RecentSessions(userID string, limit int) ([]domain.SessionEvent, error) {
	if err := d.requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT session_id, game_id, start_time, end_time, pre_mood, post_mood, duration_minutes, mood_delta FROM (
			SELECT * FROM sessions WHERE user_id = ? AND end_time IS NULL
			UNION ALL
			SELECT * FROM (
				SELECT * FROM sessions WHERE user_id = ? AND end_time IS NOT NULL
				ORDER BY end_time DESC LIMIT ?
			)
		 ) ORDER BY start_time, session_id`,
		userID, userID, sqlLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.SessionEvent
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		s.UserID = userID
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(sc scanner) (domain.SessionEvent, error) {
	var s domain.SessionEvent
	var start int64
	var end sql.NullInt64
	var pre, post sql.NullString
	var duration sql.NullFloat64
	var delta sql.NullInt64

	if err := sc.Scan(&s.SessionID, &s.GameID, &start, &end, &pre, &post, &duration, &delta); err != nil {
		return s, err
	}
	s.StartTime = fromMillis(start)
	if end.Valid {
		t := fromMillis(end.Int64)
		s.EndTime = &t
	}
	var err error
	if s.PreMood, err = decodeMood(pre); err != nil {
		return s, err
	}
	if s.PostMood, err = decodeMood(post); err != nil {
		return s, err
	}
	if duration.Valid {
		v := duration.Float64
		s.DurationMinutes = &v
	}
	if delta.Valid {
		v := int(delta.Int64)
		s.MoodDelta = &v
	}
	return s, nil
}

// ─── Feedback ───────────────────────────────────────────────────────────────

// InsertFeedback appends f to userID's feedback log.
func (d *DB) InsertFeedback(userID string, f domain.RecommendationFeedback) error {
	if err := d.EnsureUser(userID); err != nil {
		return err
	}
	mood, err := encodeMood(f.MoodAtTime)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		`INSERT INTO recommendation_feedback (user_id, recommendation_id, feedback, game_id, mood_at_time, confidence, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, f.RecommendationID, string(f.Feedback), f.GameID, mood, f.Confidence, f.Timestamp.UnixMilli(),
	)
	return err
}

// RecentFeedback returns the newest limit feedback entries, oldest first.
// limit <= 0 returns all.
func (d *DB) RecentFeedback(userID string, limit int) ([]domain.RecommendationFeedback, error) {
	if err := d.requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT recommendation_id, feedback, game_id, mood_at_time, confidence, ts
		 FROM recommendation_feedback WHERE user_id = ? ORDER BY seq DESC LIMIT ?`,
		userID, sqlLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RecommendationFeedback
	for rows.Next() {
		var f domain.RecommendationFeedback
		var kind string
		var mood sql.NullString
		var ts int64
		if err := rows.Scan(&f.RecommendationID, &kind, &f.GameID, &mood, &f.Confidence, &ts); err != nil {
			return nil, err
		}
		f.Feedback = domain.FeedbackKind(kind)
		f.Timestamp = fromMillis(ts)
		if f.MoodAtTime, err = decodeMood(mood); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// sqlLimit maps limit <= 0 to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func encodeMood(m *domain.MoodState) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode mood: %w", err)
	}
	return sql.NullString{String: string(doc), Valid: true}, nil
}

func decodeMood(v sql.NullString) (*domain.MoodState, error) {
	if !v.Valid {
		return nil, nil
	}
	var m domain.MoodState
	if err := json.Unmarshal([]byte(v.String), &m); err != nil {
		return nil, fmt.Errorf("decode mood: %w", err)
	}
	return &m, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
