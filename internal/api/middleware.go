package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gamepilot/gamepilot/internal/infra/metrics"
)

// requestLogger logs every request through zap and records HTTP metrics.
// /health and /metrics are served without logging.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/health" || path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		latency := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status/100)+"xx").Inc()
		metrics.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())

		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.String("ip", r.RemoteAddr),
			zap.Duration("latency", latency),
			zap.String("user_agent", r.UserAgent()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		switch {
		case status >= http.StatusInternalServerError:
			s.log.Error("server error", fields...)
		case status >= http.StatusBadRequest:
			s.log.Warn("client error", fields...)
		default:
			s.log.Info("request completed", fields...)
		}
	})
}
