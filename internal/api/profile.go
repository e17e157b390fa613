package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gamepilot/gamepilot/internal/app/analytics"
	"github.com/gamepilot/gamepilot/internal/app/persona"
	"github.com/gamepilot/gamepilot/internal/domain"
	"github.com/gamepilot/gamepilot/internal/infra/catalog"
	"github.com/gamepilot/gamepilot/internal/infra/metrics"
)

// Pool sources reported by the library and recommendation endpoints.
const (
	sourceLibrary = "library"
	sourceCatalog = "catalog"
)

// ─── Signals ────────────────────────────────────────────────────────────────

func (s *Server) handlePutSignals(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var in domain.SignalsInput
	if err := decodeBody(r, &in, false); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	signals, err := persona.ValidateSignals(&in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	err = s.users.with(userID, func(*analytics.Engine) error {
		if err := s.db.PutSignals(userID, signals); err != nil {
			return err
		}
		s.snapshots.invalidate(userID)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

func (s *Server) handleGetSignals(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	signals, err := s.db.GetSignals(userID)
	if err == nil && signals == nil {
		err = fmt.Errorf("%w: %s", domain.ErrNoSignals, userID)
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

// ─── Library ────────────────────────────────────────────────────────────────

func (s *Server) handlePutLibrary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var games []domain.CandidateGame
	if err := decodeBody(r, &games, false); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := validateLibrary(games); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.db.ReplaceLibrary(userID, games); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": sourceLibrary, "games": games})
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	games, source, err := s.pool(userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": source, "games": games})
}

func validateLibrary(games []domain.CandidateGame) error {
	for i, g := range games {
		switch {
		case g.ID == "":
			return domain.NewValidationError(fmt.Sprintf("games[%d].id", i), "is required")
		case g.Difficulty != "" && !g.Difficulty.Valid():
			return domain.NewValidationError(fmt.Sprintf("games[%d].difficulty", i), "must be one of Relaxed, Normal, Hard, Brutal")
		}
		switch g.SessionSuitability {
		case "", domain.SessionShort, domain.SessionMedium, domain.SessionLong, domain.SessionFlexible:
		default:
			return domain.NewValidationError(fmt.Sprintf("games[%d].sessionSuitability", i), "must be one of short, medium, long, flexible")
		}
	}
	return nil
}

// pool returns the user's library, or the starter catalog when the user has
// none or is unknown.
func (s *Server) pool(userID string) ([]domain.CandidateGame, string, error) {
	games, err := s.db.Library(userID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}
	if len(games) == 0 {
		return catalog.Games(), sourceCatalog, nil
	}
	return games, sourceLibrary, nil
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

type snapshotRequest struct {
	Signals *domain.SignalsInput `json:"signals"`
	Mood    *domain.MoodState    `json:"mood"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req snapshotRequest
	if err := decodeBody(r, &req, true); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if req.Signals == nil && req.Mood == nil {
		snap, _, err := s.defaultSnapshot(userID)
		if err == nil && snap == nil {
			err = fmt.Errorf("%w: %s", domain.ErrNoSignals, userID)
		}
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
		return
	}

	in := req.Signals
	if in == nil {
		stored, err := s.db.GetSignals(userID)
		if err == nil && stored == nil {
			err = fmt.Errorf("%w: %s", domain.ErrNoSignals, userID)
		}
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		in = stored.Input()
	}
	mood := req.Mood
	if mood == nil {
		var err error
		if mood, err = s.recentMood(userID); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}

	snap, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{Signals: in, MoodEntry: mood})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.SnapshotsBuilt.WithLabelValues(string(snap.Traits.ArchetypeID)).Inc()
	writeJSON(w, http.StatusOK, snap)
}

// defaultSnapshot builds (or serves from cache) the snapshot from the user's
// stored signals and latest recent mood. It returns nil when the user has no
// stored signals. The cache is read and filled under the user's engine lock
// so a concurrent mood or signals write cannot be overwritten by a stale put.
func (s *Server) defaultSnapshot(userID string) (*domain.PersonaSnapshot, *domain.RawPlayerSignals, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, nil, err
	}

	var (
		snap    *domain.PersonaSnapshot
		signals *domain.RawPlayerSignals
	)
	err := s.users.with(userID, func(eng *analytics.Engine) error {
		var err error
		if signals, err = s.db.GetSignals(userID); err != nil || signals == nil {
			return err
		}
		if cached, ok := s.snapshots.get(userID); ok {
			snap = &cached
			return nil
		}

		mood, until := s.recentMoodOf(eng)
		built, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{Signals: signals.Input(), MoodEntry: mood})
		if err != nil {
			return err
		}
		metrics.SnapshotsBuilt.WithLabelValues(string(built.Traits.ArchetypeID)).Inc()
		s.snapshots.put(userID, built, until)
		snap = &built
		return nil
	})
	if err != nil || snap == nil {
		return nil, nil, err
	}
	return snap, signals, nil
}

// recentMood returns the user's latest logged mood if it is within the
// configured maximum age.
func (s *Server) recentMood(userID string) (*domain.MoodState, error) {
	var out *domain.MoodState
	err := s.users.with(userID, func(eng *analytics.Engine) error {
		out, _ = s.recentMoodOf(eng)
		return nil
	})
	return out, err
}

// recentMoodOf returns eng's latest mood while it is recent, along with the
// moment it stops counting as recent.
func (s *Server) recentMoodOf(eng *analytics.Engine) (*domain.MoodState, time.Time) {
	maxAge := s.opts.MoodMaxAgeHours
	if maxAge <= 0 {
		maxAge = persona.DefaultMoodMaxAgeHours
	}
	m, ok := eng.LatestMood()
	if !ok || !persona.IsMoodRecentAt(m, maxAge, s.now()) {
		return nil, time.Time{}
	}
	return &m, m.Timestamp.Add(time.Duration(maxAge * float64(time.Hour)))
}

// ─── Recommendations ────────────────────────────────────────────────────────

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	refresh, err := intQuery(r, "refresh", 0)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	snap, signals, err := s.defaultSnapshot(userID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.writeDomainError(w, r, err)
		return
	}
	games, source, err := s.pool(userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	rec, err := s.scorer.Recommend(snap, games, signals, refresh)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.Recommendations.WithLabelValues("persona", strconv.FormatBool(rec.Fallback)).Inc()
	metrics.RecommendationScore.WithLabelValues("persona").Observe(float64(rec.Score))

	writeJSON(w, http.StatusOK, map[string]any{
		"recommendation": rec,
		"source":         source,
		"refreshIndex":   refresh,
	})
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var profile domain.EmotionalProfile
	if err := decodeBody(r, &profile, false); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	games, source, err := s.pool(userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	res, err := s.coach.Recommend(profile, games)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.Recommendations.WithLabelValues("coach", strconv.FormatBool(res.Fallback)).Inc()
	metrics.RecommendationScore.WithLabelValues("coach").Observe(float64(res.Primary.Score))

	writeJSON(w, http.StatusOK, map[string]any{
		"result": res,
		"source": source,
	})
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
