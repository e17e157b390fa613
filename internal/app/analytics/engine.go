// Package analytics keeps a user's mood, session and recommendation-feedback
// history and mines it for temporal and per-session patterns.
//
// An Engine is owned by one user and is not safe for concurrent use; callers
// that share one across goroutines must serialize access themselves.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gamepilot/gamepilot/internal/app/persona"
	"github.com/gamepilot/gamepilot/internal/domain"
)

// DefaultMaxHistorySize caps each history list when Config leaves it unset.
const DefaultMaxHistorySize = 500

// Config is injected at construction.
type Config struct {
	MaxHistorySize int
	EnableTemporal bool
	EnableCompound bool
	// Location is used to derive hour/day/week buckets. Defaults to UTC.
	Location *time.Location
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// NewID mints mood event ids. Defaults to uuid.NewString.
	NewID func() string
}

// DefaultConfig enables every analytics feature.
func DefaultConfig() Config {
	return Config{
		MaxHistorySize: DefaultMaxHistorySize,
		EnableTemporal: true,
		EnableCompound: true,
		Location:       time.UTC,
	}
}

// Engine owns the three bounded history lists plus the set of open sessions.
type Engine struct {
	cfg      Config
	moods    []domain.MoodEvent
	sessions []domain.SessionEvent
	feedback []domain.RecommendationFeedback
	open     map[string]domain.SessionEvent
}

// NewEngine creates an empty engine.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxHistorySize <= 0 {
		cfg.MaxHistorySize = DefaultMaxHistorySize
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Engine{cfg: cfg, open: make(map[string]domain.SessionEvent)}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// appendCapped appends v and drops the oldest entries beyond limit in the
// same step, so the list never exceeds limit.
func appendCapped[T any](list []T, v T, limit int) []T {
	list = append(list, v)
	if over := len(list) - limit; over > 0 {
		list = append(list[:0:0], list[over:]...)
	}
	return list
}

// ─── Moods ──────────────────────────────────────────────────────────────────

// RecordMoodEvent clamps the intensity, fills the id and the temporal context
// and appends the event to the history.
func (e *Engine) RecordMoodEvent(ev domain.MoodEvent) domain.MoodEvent {
	if ev.ID == "" {
		ev.ID = e.cfg.NewID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.cfg.Now()
	}
	ev.Intensity = persona.ClampIntensity(ev.Intensity)
	ev.TemporalContext = TemporalContextFor(ev.Timestamp, e.cfg.Location)
	if ev.MoodTags == nil {
		ev.MoodTags = []string{}
	}
	e.moods = appendCapped(e.moods, ev, e.cfg.MaxHistorySize)
	return ev
}

// MoodHistory returns the retained mood events, oldest first.
func (e *Engine) MoodHistory() []domain.MoodEvent {
	return append([]domain.MoodEvent(nil), e.moods...)
}

// LatestMood returns the most recent mood reading, if any.
func (e *Engine) LatestMood() (domain.MoodState, bool) {
	ev, ok := e.LastMoodEvent()
	return ev.State(), ok
}

// LastMoodEvent returns the most recently recorded mood event, if any.
func (e *Engine) LastMoodEvent() (domain.MoodEvent, bool) {
	if len(e.moods) == 0 {
		return domain.MoodEvent{}, false
	}
	return e.moods[len(e.moods)-1], true
}

// TemporalContextFor derives hour, weekday and ISO week in loc.
func TemporalContextFor(ts time.Time, loc *time.Location) domain.TemporalContext {
	if loc == nil {
		loc = time.UTC
	}
	local := ts.In(loc)
	_, week := local.ISOWeek()
	return domain.TemporalContext{
		HourOfDay:  local.Hour(),
		DayOfWeek:  int(local.Weekday()),
		WeekOfYear: week,
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

// RecordSessionStart opens a session. A pre-session mood, when given, is also
// logged as a mood event tied to the session.
func (e *Engine) RecordSessionStart(sessionID, gameID string, preMood *domain.MoodState) (domain.SessionEvent, error) {
	if sessionID == "" {
		return domain.SessionEvent{}, domain.NewValidationError("sessionId", "is required")
	}
	if _, ok := e.open[sessionID]; ok {
		return domain.SessionEvent{}, fmt.Errorf("%w: %s", domain.ErrSessionAlreadyOpen, sessionID)
	}

	s := domain.SessionEvent{
		SessionID: sessionID,
		StartTime: e.cfg.Now(),
		GameID:    gameID,
	}
	if preMood != nil {
		m := *preMood
		m.Intensity = persona.ClampIntensity(m.Intensity)
		if m.Timestamp.IsZero() {
			m.Timestamp = s.StartTime
		}
		s.PreMood = &m
		e.recordSessionMood(s, m, true)
	}
	e.open[sessionID] = s
	return s, nil
}

// RecordSessionEnd completes an open session, computing its duration and,
// when both moods are known, moodDelta = post - pre. Ending a session that is
// not open returns domain.ErrSessionNotOpen.
func (e *Engine) RecordSessionEnd(sessionID string, postMood *domain.MoodState) (domain.SessionEvent, error) {
	s, ok := e.open[sessionID]
	if !ok {
		return domain.SessionEvent{}, fmt.Errorf("%w: %s", domain.ErrSessionNotOpen, sessionID)
	}
	delete(e.open, sessionID)

	end := e.cfg.Now()
	if end.Before(s.StartTime) {
		end = s.StartTime
	}
	s.EndTime = &end
	minutes := end.Sub(s.StartTime).Minutes()
	s.DurationMinutes = &minutes

	if postMood != nil {
		m := *postMood
		m.Intensity = persona.ClampIntensity(m.Intensity)
		if m.Timestamp.IsZero() {
			m.Timestamp = end
		}
		s.PostMood = &m
		e.recordSessionMood(s, m, false)
	}
	if s.PreMood != nil && s.PostMood != nil {
		delta := s.PostMood.Intensity - s.PreMood.Intensity
		s.MoodDelta = &delta
	}

	e.sessions = appendCapped(e.sessions, s, e.cfg.MaxHistorySize)
	return s, nil
}

func (e *Engine) recordSessionMood(s domain.SessionEvent, m domain.MoodState, pre bool) {
	e.RecordMoodEvent(domain.MoodEvent{
		MoodID:    m.MoodID,
		Intensity: m.Intensity,
		Timestamp: m.Timestamp,
		GameID:    s.GameID,
		SessionContext: &domain.SessionContext{
			SessionID:     s.SessionID,
			IsPreSession:  pre,
			IsPostSession: !pre,
		},
	})
}

// OpenSession returns the open session with the given id.
func (e *Engine) OpenSession(sessionID string) (domain.SessionEvent, bool) {
	s, ok := e.open[sessionID]
	return s, ok
}

// OpenSessions returns sessions that have started but not ended, ordered by
// start time.
func (e *Engine) OpenSessions() []domain.SessionEvent {
	out := make([]domain.SessionEvent, 0, len(e.open))
	for _, s := range e.open {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// SessionHistory returns completed sessions, oldest first.
func (e *Engine) SessionHistory() []domain.SessionEvent {
	return append([]domain.SessionEvent(nil), e.sessions...)
}

// ─── Feedback ───────────────────────────────────────────────────────────────

// RecordFeedback appends a feedback entry.
func (e *Engine) RecordFeedback(f domain.RecommendationFeedback) (domain.RecommendationFeedback, error) {
	if f.RecommendationID == "" {
		return f, domain.NewValidationError("recommendationId", "is required")
	}
	if !f.Feedback.Valid() {
		return f, domain.NewValidationError("feedback", "must be one of matched, partial, missed, skip")
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = e.cfg.Now()
	}
	e.feedback = appendCapped(e.feedback, f, e.cfg.MaxHistorySize)
	return f, nil
}

// FeedbackHistory returns feedback entries, oldest first.
func (e *Engine) FeedbackHistory() []domain.RecommendationFeedback {
	return append([]domain.RecommendationFeedback(nil), e.feedback...)
}

// ─── Restore ────────────────────────────────────────────────────────────────

// Restore replaces the histories with persisted ones, keeping only the newest
// MaxHistorySize entries of each. Open sessions are re-opened as given.
func (e *Engine) Restore(moods []domain.MoodEvent, sessions []domain.SessionEvent, feedback []domain.RecommendationFeedback) {
	e.moods = tail(moods, e.cfg.MaxHistorySize)
	e.feedback = tail(feedback, e.cfg.MaxHistorySize)

	e.open = make(map[string]domain.SessionEvent)
	var done []domain.SessionEvent
	for _, s := range sessions {
		if s.Completed() {
			done = append(done, s)
		} else {
			e.open[s.SessionID] = s
		}
	}
	e.sessions = tail(done, e.cfg.MaxHistorySize)
}

func tail[T any](list []T, limit int) []T {
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	return append([]T(nil), list...)
}

// ─── Analytics ──────────────────────────────────────────────────────────────

// TemporalPatterns runs TemporalMoodPatterns over the mood history.
func (e *Engine) TemporalPatterns(k int) (TemporalPatterns, error) {
	if !e.cfg.EnableTemporal {
		return TemporalPatterns{}, fmt.Errorf("%w: temporal patterns", domain.ErrFeatureDisabled)
	}
	return TemporalMoodPatterns(e.moods, k), nil
}

// CompoundSuggestions runs CompoundMoodSuggestions over the mood history.
func (e *Engine) CompoundSuggestions() ([]CompoundMood, error) {
	if !e.cfg.EnableCompound {
		return nil, fmt.Errorf("%w: compound moods", domain.ErrFeatureDisabled)
	}
	return CompoundMoodSuggestions(e.moods), nil
}

// SessionStats runs SessionMoodDelta over completed sessions.
func (e *Engine) SessionStats() SessionMoodStats {
	return SessionMoodDelta(e.sessions)
}

// FeedbackStats runs FeedbackSummary over the feedback log.
func (e *Engine) FeedbackStats() FeedbackStats {
	return FeedbackSummary(e.feedback)
}
