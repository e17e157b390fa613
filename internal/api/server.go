// Package api provides the HTTP server for GamePilot. It exposes the persona
// engine, the recommendation scorers and each user's mood, session and
// feedback history as a JSON API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gamepilot/gamepilot/internal/app/analytics"
	"github.com/gamepilot/gamepilot/internal/app/recommend"
	"github.com/gamepilot/gamepilot/internal/domain"
	"github.com/gamepilot/gamepilot/internal/health"
	"github.com/gamepilot/gamepilot/internal/infra/metrics"
	"github.com/gamepilot/gamepilot/internal/infra/sqlite"
)

// Options configures a Server.
type Options struct {
	Version     string
	CORSOrigins []string
	// MoodMaxAgeHours bounds how old a logged mood may be to still shape a
	// snapshot when the request does not carry one.
	MoodMaxAgeHours float64
	Engine          analytics.Config
	CacheSize       int
	CacheTTL        time.Duration
	RequestTimeout  time.Duration
}

// Server is the GamePilot HTTP API server.
type Server struct {
	db             *sqlite.DB
	opts           Options
	log            *zap.Logger
	users          *userRegistry
	snapshots      *snapshotCache
	scorer         *recommend.Scorer
	coach          *recommend.Coach
	health         *health.Checker
	metricsEnabled bool
	now            func() time.Time
}

// NewServer creates a new API server.
func NewServer(db *sqlite.DB, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{
		db:        db,
		opts:      opts,
		log:       log,
		users:     newUserRegistry(db, opts.Engine),
		snapshots: newSnapshotCache(opts.CacheSize, opts.CacheTTL),
		scorer:    recommend.NewScorer(),
		coach:     recommend.NewCoach(),
		now:       time.Now,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth sets the checker reported by /api/health/checks.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	r.Use(corsMiddleware(s.opts.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": s.opts.Version})
		})
		r.Get("/health/checks", s.handleHealthChecks)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Put("/signals", s.handlePutSignals)
			r.Get("/signals", s.handleGetSignals)
			r.Put("/library", s.handlePutLibrary)
			r.Get("/library", s.handleGetLibrary)
			r.Post("/snapshot", s.handleSnapshot)
			r.Get("/recommendation", s.handleRecommendation)
			r.Post("/coach", s.handleCoach)

			r.Post("/moods", s.handleRecordMood)
			r.Get("/moods", s.handleListMoods)
			r.Post("/sessions", s.handleStartSession)
			r.Post("/sessions/{sessionID}/end", s.handleEndSession)
			r.Get("/sessions", s.handleListSessions)
			r.Post("/feedback", s.handleRecordFeedback)
			r.Get("/feedback", s.handleListFeedback)

			r.Get("/analytics/temporal", s.handleTemporal)
			r.Get("/analytics/compound", s.handleCompound)
			r.Get("/analytics/sessions", s.handleSessionStats)
			r.Get("/analytics/feedback", s.handleFeedbackStats)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealthChecks(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"healthy": true, "checks": []health.Status{}})
		return
	}
	status := http.StatusOK
	healthy := s.health.IsHealthy()
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy": healthy,
		"checks":  s.health.Statuses(),
	})
}

// ─── Responses ──────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// writeDomainError maps domain errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		metrics.ValidationErrors.WithLabelValues(ve.Field).Inc()
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrInvalidMood):
		writeError(w, http.StatusBadRequest, "invalid_mood", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrNoSignals):
		writeError(w, http.StatusNotFound, "no_signals", err.Error())
	case errors.Is(err, domain.ErrFeatureDisabled):
		writeError(w, http.StatusNotFound, "feature_disabled", err.Error())
	case errors.Is(err, domain.ErrSessionNotOpen), errors.Is(err, domain.ErrSessionAlreadyOpen):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrNoCandidates):
		writeError(w, http.StatusUnprocessableEntity, "no_candidates", err.Error())
	default:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeBody decodes a JSON request body into v. An empty body leaves v
// untouched when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return domain.NewValidationError("body", "must be valid JSON: "+err.Error())
	}
	return nil
}

// ─── Middleware ─────────────────────────────────────────────────────────────

// corsMiddleware adds CORS headers. An empty list or "*" allows any origin.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
