package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gamepilot/gamepilot/internal/app/analytics"
	"github.com/gamepilot/gamepilot/internal/domain"
	"github.com/gamepilot/gamepilot/internal/infra/metrics"
)

// ─── Moods ──────────────────────────────────────────────────────────────────

type moodRequest struct {
	MoodID    domain.MoodID `json:"moodId"`
	Intensity int           `json:"intensity"`
	Timestamp *time.Time    `json:"timestamp"`
	Context   string        `json:"context"`
	GameID    string        `json:"gameId"`
	MoodTags  []string      `json:"moodTags"`
}

func (s *Server) handleRecordMood(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req moodRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if req.MoodID == "" {
		s.writeDomainError(w, r, domain.NewValidationError("moodId", "is required"))
		return
	}
	ev := domain.MoodEvent{
		MoodID:    req.MoodID,
		Intensity: req.Intensity,
		Context:   req.Context,
		GameID:    req.GameID,
		MoodTags:  req.MoodTags,
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}

	var out domain.MoodEvent
	err := s.users.update(userID, func(eng *analytics.Engine) error {
		out = eng.RecordMoodEvent(ev)
		return nil
	}, func(*analytics.Engine) error {
		if err := s.db.InsertMoodEvent(userID, out); err != nil {
			return err
		}
		s.snapshots.invalidate(userID)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.EventsRecorded.WithLabelValues("mood").Inc()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListMoods(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var moods []domain.MoodEvent
	err = s.read(userID, func(eng *analytics.Engine) error {
		moods = eng.MoodHistory()
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if limit > 0 && len(moods) > limit {
		moods = moods[len(moods)-limit:]
	}
	if moods == nil {
		moods = []domain.MoodEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"moods": moods})
}

// ─── Sessions ───────────────────────────────────────────────────────────────

type sessionStartRequest struct {
	SessionID string            `json:"sessionId"`
	GameID    string            `json:"gameId"`
	PreMood   *domain.MoodState `json:"preMood"`
}

type sessionEndRequest struct {
	PostMood *domain.MoodState `json:"postMood"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req sessionStartRequest
	if err := decodeBody(r, &req, true); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := validateSessionMood("preMood", req.PreMood); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	var out domain.SessionEvent
	err := s.users.update(userID, func(eng *analytics.Engine) error {
		var err error
		out, err = eng.RecordSessionStart(req.SessionID, req.GameID, req.PreMood)
		return err
	}, func(eng *analytics.Engine) error {
		return s.persistSession(eng, userID, out, req.PreMood != nil)
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.EventsRecorded.WithLabelValues("session_start").Inc()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sessionID := chi.URLParam(r, "sessionID")

	var req sessionEndRequest
	if err := decodeBody(r, &req, true); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := validateSessionMood("postMood", req.PostMood); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var out domain.SessionEvent
	err := s.users.update(userID, func(eng *analytics.Engine) error {
		var err error
		out, err = eng.RecordSessionEnd(sessionID, req.PostMood)
		return err
	}, func(eng *analytics.Engine) error {
		return s.persistSession(eng, userID, out, req.PostMood != nil)
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.EventsRecorded.WithLabelValues("session_end").Inc()
	writeJSON(w, http.StatusOK, out)
}

// persistSession writes the session row and, when the engine logged a mood
// alongside it, that mood event. It runs under the user's engine lock.
func (s *Server) persistSession(eng *analytics.Engine, userID string, sess domain.SessionEvent, withMood bool) error {
	if err := s.db.UpsertSession(userID, sess); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !withMood {
		return nil
	}
	ev, ok := eng.LastMoodEvent()
	if !ok {
		return nil
	}
	if err := s.db.InsertMoodEvent(userID, ev); err != nil {
		return fmt.Errorf("store session mood: %w", err)
	}
	s.snapshots.invalidate(userID)
	return nil
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var open, completed []domain.SessionEvent
	err := s.read(userID, func(eng *analytics.Engine) error {
		open = eng.OpenSessions()
		completed = eng.SessionHistory()
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if completed == nil {
		completed = []domain.SessionEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"open": open, "completed": completed})
}

func validateSessionMood(field string, m *domain.MoodState) error {
	if m != nil && m.MoodID == "" {
		return domain.NewValidationError(field+".moodId", "is required")
	}
	return nil
}

// ─── Feedback ───────────────────────────────────────────────────────────────

func (s *Server) handleRecordFeedback(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req domain.RecommendationFeedback
	if err := decodeBody(r, &req, false); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var out domain.RecommendationFeedback
	err := s.users.update(userID, func(eng *analytics.Engine) error {
		var err error
		out, err = eng.RecordFeedback(req)
		return err
	}, func(*analytics.Engine) error {
		return s.db.InsertFeedback(userID, out)
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.EventsRecorded.WithLabelValues("feedback").Inc()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var feedback []domain.RecommendationFeedback
	err := s.read(userID, func(eng *analytics.Engine) error {
		feedback = eng.FeedbackHistory()
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if feedback == nil {
		feedback = []domain.RecommendationFeedback{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": feedback})
}

// ─── Analytics ──────────────────────────────────────────────────────────────

func (s *Server) handleTemporal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	k, err := intQuery(r, "k", analytics.DefaultTopHours)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var out analytics.TemporalPatterns
	err = s.read(userID, func(eng *analytics.Engine) error {
		var err error
		out, err = eng.TemporalPatterns(k)
		return err
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompound(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var out []analytics.CompoundMood
	err := s.read(userID, func(eng *analytics.Engine) error {
		var err error
		out, err = eng.CompoundSuggestions()
		return err
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if out == nil {
		out = []analytics.CompoundMood{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var out analytics.SessionMoodStats
	err := s.read(userID, func(eng *analytics.Engine) error {
		out = eng.SessionStats()
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var out analytics.FeedbackStats
	err := s.read(userID, func(eng *analytics.Engine) error {
		out = eng.FeedbackStats()
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Engine access ──────────────────────────────────────────────────────────

// read runs fn against an existing user's engine. Unknown users return
// domain.ErrUserNotFound.
func (s *Server) read(userID string, fn func(*analytics.Engine) error) error {
	if err := s.requireUser(userID); err != nil {
		return err
	}
	return s.users.with(userID, fn)
}

func (s *Server) requireUser(userID string) error {
	ok, err := s.db.UserExists(userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return nil
}
